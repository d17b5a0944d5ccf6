package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/services"
	"github.com/bwmarrin/discordgo"
)

const (
	translateMenuName     = "Translate"
	translateCommandName  = "translate"
	preferenceCommandName = "prefer_language"

	// Discord rejects message content longer than this.
	maxContentLength = 2000

	// Interaction tokens stay valid for 15 minutes; OCR plus translation
	// should finish well within that.
	interactionTimeout = 2 * time.Minute
)

type bot struct {
	orchestrator *services.Orchestrator
}

// commands returns the user-installable commands, usable in guilds, DMs and
// group DMs.
func commands() []*discordgo.ApplicationCommand {
	integrations := &[]discordgo.ApplicationIntegrationType{
		discordgo.ApplicationIntegrationGuildInstall,
		discordgo.ApplicationIntegrationUserInstall,
	}
	contexts := &[]discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
		discordgo.InteractionContextPrivateChannel,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:             translateMenuName,
			Type:             discordgo.MessageApplicationCommand,
			IntegrationTypes: integrations,
			Contexts:         contexts,
		},
		{
			Name:             translateCommandName,
			Type:             discordgo.ChatApplicationCommand,
			Description:      "Translate some text.",
			IntegrationTypes: integrations,
			Contexts:         contexts,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "Text to translate", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "language", Description: "Target language code, defaults to your preferred language"},
			},
		},
		{
			Name:             preferenceCommandName,
			Type:             discordgo.ChatApplicationCommand,
			Description:      "Set a preferred language for translation.",
			IntegrationTypes: integrations,
			Contexts:         contexts,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "language", Description: "Language code, for example de or ja", Required: true},
			},
		},
	}
}

func (b *bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	userID := interactionUserID(i.Interaction)
	logCtx := slog.With("interactionId", i.ID, "command", data.Name, "userId", userID)

	// Acknowledge first; OCR routinely takes longer than the 3 second reply window.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		logCtx.Error("Failed to acknowledge interaction", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	res := b.dispatch(ctx, userID, data)
	if res == nil {
		logCtx.Warn("Unknown command.")
		return
	}

	content := clampContent(res.Content)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		logCtx.Error("Failed to send reply", "error", err, "status", res.Status)
	}
}

func (b *bot) dispatch(ctx context.Context, userID string, data discordgo.ApplicationCommandInteractionData) *models.Response {
	opts := optionValues(data.Options)

	switch data.Name {
	case translateMenuName:
		// A missing target resolves to an empty message and the nothing-to-translate reply.
		msg, _ := targetMessage(data)
		return b.orchestrator.TranslateMessage(ctx, userID, msg)
	case translateCommandName:
		return b.orchestrator.TranslateText(ctx, userID, opts["text"], opts["language"])
	case preferenceCommandName:
		return b.orchestrator.SetPreference(ctx, userID, opts["language"])
	}
	return nil
}

// interactionUserID returns the invoking user, who sits on Member in guilds
// and on User everywhere else.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func targetMessage(data discordgo.ApplicationCommandInteractionData) (models.Message, bool) {
	if data.Resolved == nil {
		return models.Message{}, false
	}
	m, ok := data.Resolved.Messages[data.TargetID]
	if !ok || m == nil {
		return models.Message{}, false
	}
	return toMessage(m), true
}

func toMessage(m *discordgo.Message) models.Message {
	msg := models.Message{ID: m.ID, Content: m.Content}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, models.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
		})
	}
	return msg
}

func optionValues(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	values := make(map[string]string, len(options))
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			values[opt.Name] = opt.StringValue()
		}
	}
	return values
}

func clampContent(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContentLength {
		return content
	}
	return string(runes[:maxContentLength-1]) + "…"
}
