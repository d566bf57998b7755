// internal/infra/telegram/invite_response_handlers.go
package telegram

import (
	"context"
	"fmt"

	"regiss_network_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterInviteResponseHandlers handles the Accept/Decline buttons attached
// to job invites. The button payload is the invite ID.
func RegisterInviteResponseHandlers(ctx context.Context, b *telebot.Bot, matchmaking *app.MatchmakingService, baseLogger *logrus.Entry) {
	respond := func(accepted bool) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			data := c.Callback().Data
			handlerLogger := baseLogger.WithFields(logrus.Fields{
				"handler":   "invite_response",
				"sender_id": c.Sender().ID,
				"accepted":  accepted,
			})

			inviteID, err := parseID(data)
			if err != nil {
				c.Bot().OnError(fmt.Errorf("invalid invite ID '%s' in callback: %w", data, err), c)
				return c.Respond(&telebot.CallbackResponse{Text: "Erro no ID do convite."})
			}

			_, err = matchmaking.RespondToInvite(ctx, c.Sender().ID, inviteID, accepted)
			if err != nil {
				handlerLogger.WithError(err).WithField("invite_id", inviteID).Warn("Failed to record invite response")
				return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
			}

			handlerLogger.WithField("invite_id", inviteID).Info("Invite response recorded")
			if accepted {
				return c.Respond(&telebot.CallbackResponse{Text: "Interesse registrado! A coordenação entrará em contato."})
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Resposta registrada. Obrigado!"})
		}
	}

	b.Handle(&telebot.Btn{Unique: app.InviteAcceptUnique}, respond(true))
	b.Handle(&telebot.Btn{Unique: app.InviteDeclineUnique}, respond(false))
}
