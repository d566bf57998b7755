package telegram

import (
	"context"
	"fmt"
	"time"

	"regiss_network_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterMemberHandlers registers the commands available to every member.
func RegisterMemberHandlers(
	ctx context.Context,
	b *telebot.Bot,
	directory *app.DirectoryService,
	matchmaking *app.MatchmakingService,
	calendar *app.CalendarService,
	suggestionLimit int,
	now func() time.Time,
	baseLogger *logrus.Entry,
) {
	b.Handle("/status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/status", "sender_id": c.Sender().ID})

		st, err := directory.StatusOf(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to get status")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithField("label", st.Status.Label).Info("Status sent")
		return c.Send(formatStatus(st))
	})

	b.Handle("/ano", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/ano", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Formato: /ano <ano de ingresso>, por exemplo /ano 2024")
		}
		year, err := parseInt(args[0])
		if err != nil {
			return c.Send("Erro: o ano deve ser um número.")
		}

		st, err := directory.SetEntryYear(ctx, c.Sender().ID, year)
		if err != nil {
			handlerLogger.WithError(err).WithField("year", year).Warn("Failed to set entry year")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithFields(logrus.Fields{"year": year, "label": st.Status.Label}).Info("Entry year set")
		return c.Send(fmt.Sprintf("Ano de ingresso salvo. Seu status: %s.", st.Status.Label))
	})

	b.Handle("/interesses", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/interesses", "sender_id": c.Sender().ID})

		tags := parseTagList(c.Message().Payload)
		p, err := directory.SetInterests(ctx, c.Sender().ID, tags)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to set interests")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithField("interests_count", len(p.Interests)).Info("Interests updated")
		if len(p.Interests) == 0 {
			return c.Send("Seus interesses foram removidos.")
		}
		return c.Send(fmt.Sprintf("Interesses salvos: %d.", len(p.Interests)))
	})

	b.Handle("/sugestoes", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/sugestoes", "sender_id": c.Sender().ID})

		suggestions, err := matchmaking.SuggestConnections(ctx, c.Sender().ID, suggestionLimit)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to suggest connections")
			return c.Send(userMessage(err))
		}
		handlerLogger.WithField("suggestions_count", len(suggestions)).Info("Suggestions sent")
		return c.Send(formatMatches("Colegas com interesses em comum:", suggestions))
	})

	b.Handle("/vagas", func(c telebot.Context) error {
		jobs, err := matchmaking.ListOpenJobs(ctx)
		if err != nil {
			baseLogger.WithError(err).WithField("handler", "/vagas").Error("Failed to list open jobs")
			return c.Send(userMessage(err))
		}
		return c.Send(formatJobs(jobs))
	})

	b.Handle("/feriados", func(c telebot.Context) error {
		year := now().Year()
		if args := c.Args(); len(args) > 0 {
			y, err := parseInt(args[0])
			if err != nil || y < 1583 || y > 9999 {
				return c.Send("Informe um ano entre 1583 e 9999.")
			}
			year = y
		}
		return c.Send(formatHolidays(year, calendar.Holidays(year)))
	})
}
