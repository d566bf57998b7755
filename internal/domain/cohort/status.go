// internal/domain/cohort/status.go
package cohort

import (
	"fmt"
	"strings"
	"time"
)

// Labels produced by Classify. Alumni labels carry the entry year and are
// built with AlumniLabel.
const (
	LabelR1           = "R1"
	LabelR2           = "R2"
	LabelCoordination = "Área Técnica"
	LabelAdmin        = "Administrador"
	LabelGuest        = "Convidado"
	alumniPrefix      = "Alumni"
)

// Status is the display classification of a profile.
// Color, Border and Glow are presentation hints only.
type Status struct {
	Label       string
	DefaultRole string // fallback job title when the profile has none
	Color       string
	Border      string
	Glow        string
	IsResident  bool
}

var (
	coordinationStatus = Status{
		Label:       LabelCoordination,
		DefaultRole: "Coordenação REGISS",
		Color:       "text-amber-300",
		Border:      "border-amber-400",
		Glow:        "shadow-amber-500/40",
	}
	adminStatus = Status{
		Label:       LabelAdmin,
		DefaultRole: "Administrador do Sistema",
		Color:       "text-rose-300",
		Border:      "border-rose-400",
		Glow:        "shadow-rose-500/40",
	}
	guestStatus = Status{
		Label:       LabelGuest,
		DefaultRole: "Membro da Rede",
		Color:       "text-slate-300",
		Border:      "border-slate-500",
		Glow:        "shadow-slate-500/20",
	}
)

// AcademicBaseYear returns the entry year of the current R1 cohort.
// The academic year starts on March 1st.
func AcademicBaseYear(now time.Time) int {
	if now.Month() >= time.March {
		return now.Year()
	}
	return now.Year() - 1
}

// AlumniLabel returns the label used for a former resident of the given cohort.
func AlumniLabel(entryYear int) string {
	return fmt.Sprintf("%s '%d", alumniPrefix, entryYear)
}

// Classify derives the cohort status of a profile. Staff roles win over the
// entry year; a missing entry year means onboarding was not completed.
//
// An entry year after the current base year (a cohort that has not started)
// is classified as alumni. Confirm with the program before changing it.
func Classify(entryYear *int, role Role, now time.Time) Status {
	switch role {
	case RoleCoordination:
		return coordinationStatus
	case RoleAdmin:
		return adminStatus
	}

	if entryYear == nil {
		return guestStatus
	}

	base := AcademicBaseYear(now)
	switch *entryYear {
	case base:
		return Status{
			Label:       LabelR1,
			DefaultRole: "Residente R1",
			Color:       "text-emerald-300",
			Border:      "border-emerald-400",
			Glow:        "shadow-emerald-500/40",
			IsResident:  true,
		}
	case base - 1:
		return Status{
			Label:       LabelR2,
			DefaultRole: "Residente R2",
			Color:       "text-sky-300",
			Border:      "border-sky-400",
			Glow:        "shadow-sky-500/40",
			IsResident:  true,
		}
	default:
		return Status{
			Label:       AlumniLabel(*entryYear),
			DefaultRole: "Gestor(a) Hospitalar",
			Color:       "text-violet-300",
			Border:      "border-violet-400",
			Glow:        "shadow-violet-500/30",
		}
	}
}

// IsAlumni reports whether the status label is an alumni label.
func (s Status) IsAlumni() bool {
	return strings.HasPrefix(s.Label, alumniPrefix)
}

// MatchesFilter reports whether a label filter selects the status. An empty
// filter selects every status and a filter starting with "alumni" selects the
// alumni labels it prefixes. Any other filter must equal the label, ignoring case.
func (s Status) MatchesFilter(filter string) bool {
	filter = strings.TrimSpace(filter)
	switch {
	case filter == "":
		return true
	case strings.HasPrefix(strings.ToLower(filter), strings.ToLower(alumniPrefix)):
		return s.IsAlumni() && strings.HasPrefix(strings.ToLower(s.Label), strings.ToLower(filter))
	default:
		return strings.EqualFold(s.Label, filter)
	}
}
