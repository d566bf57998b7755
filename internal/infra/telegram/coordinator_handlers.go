package telegram

import (
	"context"
	"fmt"
	"strings"

	"regiss_network_bot/internal/app"
	"regiss_network_bot/internal/domain/cohort"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxRankingLines = 20

// RegisterCoordinatorHandlers registers the recruiter and directory tools.
// Authorization is enforced by the services.
func RegisterCoordinatorHandlers(
	ctx context.Context,
	b *telebot.Bot,
	directory *app.DirectoryService,
	matchmaking *app.MatchmakingService,
	inviteTopN int,
	inviteMinScore int,
	baseLogger *logrus.Entry,
) {
	b.Handle("/vaga", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/vaga", "sender_id": c.Sender().ID})
		handlerLogger.Info("Command received")

		title, institution, tags, err := parseJobPayload(c.Message().Payload)
		if err != nil {
			return c.Send(userMessage(err))
		}

		j, err := matchmaking.PostJob(ctx, c.Sender().ID, title, institution, tags)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to post job")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithField("job_id", j.ID).Info("Job posted successfully")
		return c.Send(fmt.Sprintf("Vaga #%d publicada: %s. Use /ranking %d para ver os candidatos.", j.ID, j.Title, j.ID))
	})

	b.Handle("/ranking", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/ranking", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Formato: /ranking <id_vaga>")
		}
		jobID, err := parseID(args[0])
		if err != nil {
			return c.Send("Erro: o ID da vaga deve ser um número.")
		}

		j, matches, err := matchmaking.RankCandidates(ctx, c.Sender().ID, jobID)
		if err != nil {
			handlerLogger.WithError(err).WithField("job_id", jobID).Warn("Failed to rank candidates")
			return c.Send(userMessage(err))
		}
		if len(matches) > maxRankingLines {
			matches = matches[:maxRankingLines]
		}
		handlerLogger.WithFields(logrus.Fields{"job_id": jobID, "candidates": len(matches)}).Info("Ranking sent")
		return c.Send(formatMatches(fmt.Sprintf("Candidatos para \"%s\":", j.Title), matches))
	})

	b.Handle("/convidar", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/convidar", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) < 1 || len(args) > 2 {
			return c.Send("Formato: /convidar <id_vaga> [quantidade]")
		}
		jobID, err := parseID(args[0])
		if err != nil {
			return c.Send("Erro: o ID da vaga deve ser um número.")
		}
		topN := inviteTopN
		if len(args) == 2 {
			if topN, err = parseInt(args[1]); err != nil || topN < 1 {
				return c.Send("Erro: a quantidade deve ser um número positivo.")
			}
		}

		report, err := matchmaking.SendInvites(ctx, c.Sender().ID, jobID, topN, inviteMinScore)
		if err != nil {
			handlerLogger.WithError(err).WithField("job_id", jobID).Warn("Failed to send invites")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithFields(logrus.Fields{
			"job_id":  jobID,
			"sent":    report.Sent,
			"skipped": report.Skipped,
			"failed":  report.Failed,
		}).Info("Invites processed")
		return c.Send(fmt.Sprintf("Convites enviados: %d. Já convidados: %d. Falhas: %d.", report.Sent, report.Skipped, report.Failed))
	})

	b.Handle("/encerrar", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/encerrar", "sender_id": c.Sender().ID})
		handlerLogger.Info("Command received")

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Formato: /encerrar <id_vaga>")
		}
		jobID, err := parseID(args[0])
		if err != nil {
			return c.Send("Erro: o ID da vaga deve ser um número.")
		}

		j, err := matchmaking.CloseJob(ctx, c.Sender().ID, jobID)
		if err != nil {
			handlerLogger.WithError(err).WithField("job_id", jobID).Warn("Failed to close job")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithField("job_id", j.ID).Info("Job closed successfully")
		return c.Send(fmt.Sprintf("Vaga #%d encerrada: %s.", j.ID, j.Title))
	})

	b.Handle("/convites", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/convites", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Formato: /convites <id_vaga>")
		}
		jobID, err := parseID(args[0])
		if err != nil {
			return c.Send("Erro: o ID da vaga deve ser um número.")
		}

		j, lines, err := matchmaking.JobInvites(ctx, c.Sender().ID, jobID)
		if err != nil {
			handlerLogger.WithError(err).WithField("job_id", jobID).Warn("Failed to list job invites")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithFields(logrus.Fields{"job_id": jobID, "invites": len(lines)}).Info("Invite report sent")
		return c.Send(formatInvites(j, lines))
	})

	b.Handle("/turma", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/turma", "sender_id": c.Sender().ID})

		label := strings.TrimSpace(c.Message().Payload)
		profiles, err := directory.ListByLabel(ctx, c.Sender().ID, label)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to list profiles")
			return c.Send(userMessage(err))
		}
		title := "--- Membros ativos ---"
		if label != "" {
			title = fmt.Sprintf("--- Membros: %s ---", label)
		}
		handlerLogger.WithField("profiles_count", len(profiles)).Info("Profile list sent")
		return c.Send(formatProfiles(title, profiles))
	})

	b.Handle("/perfil_papel", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/perfil_papel", "sender_id": c.Sender().ID})
		handlerLogger.Info("Command received")

		args := c.Args()
		if len(args) != 2 {
			return c.Send("Formato: /perfil_papel <TelegramID> <user|coordination|admin>")
		}
		targetID, err := parseID(args[0])
		if err != nil {
			return c.Send("Erro: Telegram ID deve ser um número.")
		}
		role := cohort.ParseRole(args[1])

		st, err := directory.SetRole(ctx, c.Sender().ID, targetID, role)
		if err != nil {
			handlerLogger.WithError(err).WithField("target_telegram_id", targetID).Warn("Failed to set role")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithFields(logrus.Fields{"target_profile_id": st.Profile.ID, "role": role}).Info("Role updated")
		return c.Send(fmt.Sprintf("%s agora é %s.", st.Profile.FullName, st.Status.Label))
	})
}
