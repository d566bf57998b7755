package profile

import (
	"database/sql"
	"time"

	"regiss_network_bot/internal/domain/cohort"
)

// Profile represents a member of the residency network.
type Profile struct {
	ID         int64
	TelegramID int64
	FullName   string
	EntryYear  sql.NullInt32  // NULL until onboarding is completed
	Role       sql.NullString // NULL means a regular user
	Interests  []string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CohortRole returns the parsed role of the profile.
func (p *Profile) CohortRole() cohort.Role {
	if !p.Role.Valid {
		return cohort.RoleUser
	}
	return cohort.ParseRole(p.Role.String)
}

// Status classifies the profile as of now.
func (p *Profile) Status(now time.Time) cohort.Status {
	var entryYear *int
	if p.EntryYear.Valid {
		y := int(p.EntryYear.Int32)
		entryYear = &y
	}
	return cohort.Classify(entryYear, p.CohortRole(), now)
}
