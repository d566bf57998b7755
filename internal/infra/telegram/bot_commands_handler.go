// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"regiss_network_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	directory *app.DirectoryService,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		sender := c.Sender()
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", sender.ID)
		logCtx.Info("Processing /start command")

		fullName := strings.TrimSpace(sender.FirstName + " " + sender.LastName)
		p, created, err := directory.Register(ctx, sender.ID, fullName)
		if err != nil {
			logCtx.WithError(err).Error("Error registering profile for /start command")
			return c.Send(userMessage(err))
		}
		if !p.IsActive {
			logCtx.WithField("profile_id", p.ID).Info("Inactive profile")
			return c.Send(userMessage(app.ErrProfileInactive))
		}
		if created {
			logCtx.WithField("profile_id", p.ID).Info("New member registered")
			return c.Send(fmt.Sprintf("Bem-vindo(a) à Rede REGISS, %s! Para completar seu perfil, informe o ano de ingresso com /ano <ano> e seus interesses com /interesses <tag1, tag2>.", p.FullName))
		}
		return c.Send(fmt.Sprintf("Olá de novo, %s! Use /help para ver os comandos.", p.FullName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString("Comandos disponíveis:\n\n")
		helpText.WriteString("`/status` - Seu status na residência (R1, R2, Alumni...).\n")
		helpText.WriteString("`/ano <ano>` - Informar o ano de ingresso.\n")
		helpText.WriteString("`/interesses <tag1, tag2>` - Definir suas áreas de interesse.\n")
		helpText.WriteString("`/sugestoes` - Colegas com interesses em comum.\n")
		helpText.WriteString("`/vagas` - Vagas abertas.\n")
		helpText.WriteString("`/feriados [ano]` - Feriados nacionais.\n")

		st, err := directory.StatusOf(ctx, senderID)
		if err == nil && st.Profile.CohortRole().IsStaff() {
			logCtx.Info("User identified as staff, adding coordinator help.")
			helpText.WriteString("\nCoordenação:\n\n")
			helpText.WriteString("`/vaga <título> | <instituição> | <tags>` - Publicar vaga.\n")
			helpText.WriteString("`/ranking <id_vaga>` - Ranking de candidatos por afinidade.\n")
			helpText.WriteString("`/convidar <id_vaga> [n]` - Enviar convite aos melhores candidatos.\n")
			helpText.WriteString("`/convites <id_vaga>` - Situação dos convites da vaga.\n")
			helpText.WriteString("`/encerrar <id_vaga>` - Encerrar vaga.\n")
			helpText.WriteString("`/turma [R1|R2|Alumni]` - Listar membros por status.\n")
			helpText.WriteString("`/perfil_papel <TelegramID> <user|coordination|admin>` - Alterar papel (admin).\n")
		}
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
