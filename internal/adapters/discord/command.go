package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"hypebot/internal/ports/input"
	pkgdiscord "hypebot/pkg/discord"
)

const (
	commandCreate  = "create"
	commandConfirm = "confirm"
	commandCancel  = "cancel"
)

const (
	optName        = "name"
	optTime        = "time"
	optDescription = "description"
	optLocation    = "location"
	optThumbnail   = "thumbnail"
	optOrganizer   = "organizer"
)

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// commandDefinitions lists the slash commands registered at startup.
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandCreate,
			Description: "Draft a new event for this channel",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optName, "Event name", true),
				stringOption(optTime, "Start time, e.g. 8:30pm 2026-07-04", true),
				stringOption(optDescription, "What is happening", true),
				stringOption(optLocation, "Where it happens", true),
				stringOption(optThumbnail, "Thumbnail image URL", false),
				stringOption(optOrganizer, "Organizer, defaults to you", false),
			},
		},
		{Name: commandConfirm, Description: "Post your drafted event"},
		{
			Name:        commandCancel,
			Description: "Cancel a posted event",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optName, "Event name", true),
			},
		},
	}
}

// HandleCommand routes a slash command after the role check.
func (h *Handler) HandleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil || !h.permitted(i.Member.Roles) {
		respondEphemeral(s, i.Interaction, h.translate("errors.forbidden", nil))
		return
	}
	switch i.ApplicationCommandData().Name {
	case commandCreate:
		h.handleCreate(ctx, s, i)
	case commandConfirm:
		h.handleConfirm(ctx, s, i)
	case commandCancel:
		h.handleCancel(ctx, s, i)
	}
}

func (h *Handler) handleCreate(parent context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionValues(i.ApplicationCommandData().Options)
	clean := func(v string) string { return pkgdiscord.SanitizeMentions(v, roleNamer(s, i.GuildID)) }
	req := draftRequest(opts, scopeOf(i.Interaction), i.Member, clean)

	ctx, cancel := requestContext(parent)
	defer cancel()
	draft, err := h.eventUseCase.CreateDraft(ctx, req)
	if err != nil {
		respondEphemeral(s, i.Interaction, h.errorMessage(err, commandCreate))
		return
	}

	embed := pkgdiscord.BuildEventEmbed(&draft.Event, h.location, pkgdiscord.EmbedLabels{
		Footer:    h.translate("embed.draft_footer", nil),
		Location:  h.translate("embed.location", nil),
		Organizer: h.translate("embed.organizer", nil),
	})
	respondEmbed(s, i.Interaction, h.translate("reply.draft_saved", nil), embed)
}

func (h *Handler) handleConfirm(parent context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferEphemeral(s, i.Interaction) {
		return
	}
	ctx, cancel := requestContext(parent)
	defer cancel()
	event, err := h.eventUseCase.ConfirmDraft(ctx, scopeOf(i.Interaction), i.Member.User.ID)
	if err != nil {
		editResponse(s, i.Interaction, h.errorMessage(err, commandConfirm))
		return
	}
	editResponse(s, i.Interaction, h.translate("reply.posted", map[string]any{"Name": event.Name}))
}

func (h *Handler) handleCancel(parent context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferEphemeral(s, i.Interaction) {
		return
	}
	opts := optionValues(i.ApplicationCommandData().Options)
	ctx, cancel := requestContext(parent)
	defer cancel()
	event, err := h.eventUseCase.CancelEvent(ctx, opts[optName], i.Member.User.ID)
	if err != nil {
		editResponse(s, i.Interaction, h.errorMessage(err, commandCancel))
		return
	}
	editResponse(s, i.Interaction, h.translate("reply.cancelled", map[string]any{"Name": event.Name}))
}

func optionValues(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	out := make(map[string]string, len(options))
	for _, o := range options {
		if o == nil || o.Type != discordgo.ApplicationCommandOptionString {
			continue
		}
		out[o.Name] = o.StringValue()
	}
	return out
}

// scopeOf keys drafts by guild and channel so concurrent drafts in
// different channels never collide.
func scopeOf(i *discordgo.Interaction) string {
	return fmt.Sprintf("%s:%s", i.GuildID, i.ChannelID)
}

func draftRequest(opts map[string]string, scope string, member *discordgo.Member, clean func(string) string) input.DraftRequest {
	req := input.DraftRequest{
		Scope:        scope,
		CreatorName:  resolveDisplayName(member),
		Name:         clean(opts[optName]),
		When:         opts[optTime],
		Description:  clean(opts[optDescription]),
		Location:     clean(opts[optLocation]),
		ThumbnailURL: opts[optThumbnail],
		Organizer:    clean(opts[optOrganizer]),
	}
	if member != nil && member.User != nil {
		req.CreatorID = member.User.ID
	}
	return req
}

func roleNamer(s *discordgo.Session, guildID string) func(string) string {
	return func(id string) string {
		if s == nil || s.State == nil {
			return ""
		}
		role, err := s.State.Role(guildID, id)
		if err != nil || role == nil {
			return ""
		}
		return role.Name
	}
}
