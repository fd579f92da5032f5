package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// NewSession builds the discordgo session shared by the Bot (gateway) and
// the Notifier (REST).
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessageReactions
	return s, nil
}

// Bot is the Discord gateway adapter.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	guildID string
}

// NewBot wires handler onto session. Commands are registered for guildID,
// or globally when it is empty.
func NewBot(session *discordgo.Session, handler *Handler, guildID string) *Bot {
	return &Bot{session: session, handler: handler, guildID: guildID}
}

// setupHandlers installs the gateway callbacks; each one runs its use case
// under ctx.
func (b *Bot) setupHandlers(ctx context.Context) {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("🤖 connected to Discord")
	})
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionApplicationCommand {
			b.handler.HandleCommand(ctx, s, i)
		}
	})
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		b.handler.HandleReactionAdd(ctx, s, r)
	})
}

// Run opens the gateway, registers the slash commands and blocks until ctx
// is done.
func (b *Bot) Run(ctx context.Context) error {
	b.setupHandlers(ctx)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	cmds, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commandDefinitions())
	if err != nil {
		log.Warn().Err(err).Str("guild_id", b.guildID).Msg("⚠️ registering slash commands failed")
	} else {
		log.Info().Int("commands", len(cmds)).Str("guild_id", b.guildID).Msg("slash commands registered")
	}

	<-ctx.Done()
	log.Info().Msg("closing Discord session")
	return nil
}
