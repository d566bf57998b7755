package telegram

import (
	"errors"
	"fmt"
	"strings"

	"regiss_network_bot/internal/app"
	"regiss_network_bot/internal/domain/holiday"
	"regiss_network_bot/internal/domain/invite"
	"regiss_network_bot/internal/domain/job"
	idb "regiss_network_bot/internal/infra/database"
)

const (
	msgNotAuthorized = "Erro: você não tem permissão para executar este comando."
	msgNoProfile     = "Você ainda não tem perfil. Envie /start para se cadastrar."
	msgGenericError  = "Ocorreu um erro ao processar o comando. Tente novamente mais tarde."
)

// userMessage maps service errors to the text shown to the member.
func userMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrNotAuthorized):
		return msgNotAuthorized
	case errors.Is(err, idb.ErrProfileNotFound):
		return msgNoProfile
	case errors.Is(err, app.ErrProfileInactive):
		return "Seu perfil está inativo. Fale com a coordenação."
	case errors.Is(err, app.ErrInvalidEntryYear):
		return "Ano de ingresso inválido."
	case errors.Is(err, app.ErrInvalidInterests):
		return "Use no máximo 20 interesses com até 40 caracteres cada."
	case errors.Is(err, idb.ErrJobNotFound):
		return "Vaga não encontrada."
	case errors.Is(err, app.ErrJobClosed):
		return "Esta vaga está encerrada."
	case errors.Is(err, app.ErrEmptyJobTitle), errors.Is(err, errBadJobFormat):
		return "Formato: /vaga <título> | <instituição> | <tag1, tag2>"
	case errors.Is(err, idb.ErrInviteNotFound):
		return "Convite não encontrado."
	case errors.Is(err, app.ErrInviteAlreadyAnswered):
		return "Você já respondeu a este convite."
	default:
		return msgGenericError
	}
}

func formatStatus(ps *app.ProfileStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nStatus: %s\n", ps.Profile.FullName, ps.Status.Label)
	fmt.Fprintf(&b, "Cargo: %s\n", ps.Status.DefaultRole)
	if ps.Profile.EntryYear.Valid {
		fmt.Fprintf(&b, "Ingresso: %d\n", ps.Profile.EntryYear.Int32)
	}
	if len(ps.Profile.Interests) > 0 {
		fmt.Fprintf(&b, "Interesses: %s\n", strings.Join(ps.Profile.Interests, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMatches(title string, matches []app.CandidateMatch) string {
	if len(matches) == 0 {
		return title + "\nNenhum resultado."
	}
	var b strings.Builder
	b.WriteString(title)
	for i, m := range matches {
		fmt.Fprintf(&b, "\n%d. %s (%s) — %d%%", i+1, m.Profile.FullName, m.Status.Label, m.Score)
	}
	return b.String()
}

func formatProfiles(title string, profiles []app.ProfileStatus) string {
	if len(profiles) == 0 {
		return title + "\nNenhum membro encontrado."
	}
	var b strings.Builder
	b.WriteString(title)
	for _, ps := range profiles {
		fmt.Fprintf(&b, "\nTelegram ID: %d, Nome: %s, Status: %s", ps.Profile.TelegramID, ps.Profile.FullName, ps.Status.Label)
	}
	return b.String()
}

func formatHolidays(year int, holidays []holiday.Holiday) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feriados nacionais de %d:", year)
	for _, h := range holidays {
		marker := ""
		if h.Movable {
			marker = " *"
		}
		fmt.Fprintf(&b, "\n%s — %s%s", h.Date.Format("02/01"), h.Name, marker)
	}
	b.WriteString("\n* data móvel (calculada a partir da Páscoa)")
	return b.String()
}

func formatJobs(jobs []*job.Job) string {
	if len(jobs) == 0 {
		return "Nenhuma vaga aberta no momento."
	}
	var b strings.Builder
	b.WriteString("Vagas abertas:")
	for _, j := range jobs {
		fmt.Fprintf(&b, "\n#%d %s", j.ID, j.Title)
		if j.Institution != "" {
			fmt.Fprintf(&b, " — %s", j.Institution)
		}
		if len(j.JobTags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(j.JobTags, ", "))
		}
	}
	return b.String()
}

func inviteStatusText(inv *invite.Invite) string {
	switch inv.Status {
	case invite.StatusAccepted:
		return "aceito"
	case invite.StatusDeclined:
		return "recusado"
	}
	if !inv.SentAt.Valid {
		return "não entregue"
	}
	return "aguardando resposta"
}

func formatInvites(j *job.Job, lines []app.InviteLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Convites da vaga #%d \"%s\"", j.ID, j.Title)
	if !j.IsOpen {
		b.WriteString(" (encerrada)")
	}
	b.WriteString(":")
	if len(lines) == 0 {
		b.WriteString("\nNenhum convite enviado.")
		return b.String()
	}
	for i, l := range lines {
		fmt.Fprintf(&b, "\n%d. %s — %d%% — %s", i+1, l.Profile.FullName, l.Invite.Score, inviteStatusText(l.Invite))
	}
	return b.String()
}
