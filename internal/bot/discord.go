// internal/bot/discord.go
package bot

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"go.uber.org/zap"
)

// Лимиты Discord для embed'ов
const (
	maxTitleLen       = 256
	maxDescriptionLen = 4096
	maxFieldNameLen   = 256
	maxFieldValueLen  = 1024
	maxFooterLen      = 2048
	maxFields         = 25
	maxRows           = 5
)

// DiscordConfig holds the gateway settings.
type DiscordConfig struct {
	Token         string
	ApplicationID string
	// GuildID registers commands in one guild; empty registers them globally.
	GuildID        string
	RequestTimeout time.Duration
}

// Discord connects the router to the Discord gateway.
type Discord struct {
	cfg     DiscordConfig
	session *discordgo.Session
	router  *Router
	pool    *WorkerPool
	logger  *zap.Logger

	removeHandler func()
}

// NewDiscord creates the gateway adapter. Interactions run on pool.
func NewDiscord(cfg DiscordConfig, router *Router, pool *WorkerPool, logger *zap.Logger) (*Discord, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Discord{
		cfg:     cfg,
		session: s,
		router:  router,
		pool:    pool,
		logger:  logger.Named("discord"),
	}, nil
}

// Open connects to the gateway and overwrites the slash commands.
func (d *Discord) Open() error {
	d.removeHandler = d.session.AddHandler(d.onInteraction)
	d.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		d.logger.Info("🤖 Connected to Discord",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	registered, err := d.session.ApplicationCommandBulkOverwrite(d.cfg.ApplicationID, d.cfg.GuildID, Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	d.logger.Info("Slash commands registered",
		zap.Int("count", len(registered)),
		zap.String("guild_id", d.cfg.GuildID))
	return nil
}

// Close disconnects from the gateway.
func (d *Discord) Close() error {
	if d.removeHandler != nil {
		d.removeHandler()
	}
	return d.session.Close()
}

// SendScreen posts screen to a channel.
func (d *Discord) SendScreen(ctx context.Context, channelID string, screen ui.Screen) error {
	_, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{toEmbed(screen)},
		Components: toComponents(screen.Rows),
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	in, ok := convertInteraction(i)
	if !ok {
		d.logger.Debug("Ignoring interaction", zap.Int("type", int(i.Type)))
		return
	}
	transport := &discordTransport{session: s, interaction: i.Interaction}
	in.Reply = NewReply(transport, in.Kind == KindComponent || (in.Kind == KindModal && i.Message != nil))

	job := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
		defer cancel()
		transport.ctx = ctx
		d.router.Dispatch(ctx, in)
	}
	if !d.pool.Submit(job) {
		d.logger.Warn("Interaction dropped", zap.String("user_id", in.UserID), zap.String("name", in.Key()))
		_ = in.Reply.Send(ui.Notice("⏳ Busy", "The bot is overloaded. Please try again in a moment.", ui.ColorWarning))
	}
}

// convertInteraction builds the platform-neutral view of i.
func convertInteraction(i *discordgo.InteractionCreate) (*Interaction, bool) {
	in := &Interaction{
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		in.UserID = i.Member.User.ID
	case i.User != nil:
		in.UserID = i.User.ID
	default:
		return nil, false
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		in.Kind = KindCommand
		in.Command = data.Name
		in.Options = map[string]string{}
		flattenOptions(data.Options, in.Options)
	case discordgo.InteractionMessageComponent:
		in.Kind = KindComponent
		in.SetCustomID(i.MessageComponentData().CustomID)
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		in.Kind = KindModal
		in.SetCustomID(data.CustomID)
		in.Values = modalValues(data.Components)
	default:
		return nil, false
	}
	return in, true
}

func flattenOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, out map[string]string) {
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			out[OptionSubcommand] = o.Name
			flattenOptions(o.Options, out)
		default:
			out[o.Name] = fmt.Sprint(o.Value)
		}
	}
}

func modalValues(rows []discordgo.MessageComponent) map[string]string {
	values := map[string]string{}
	for _, c := range rows {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

// discordTransport answers one interaction.
type discordTransport struct {
	ctx         context.Context
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (t *discordTransport) options() []discordgo.RequestOption {
	if t.ctx == nil {
		return nil
	}
	return []discordgo.RequestOption{discordgo.WithContext(t.ctx)}
}

var responseTypes = map[ResponseKind]discordgo.InteractionResponseType{
	ResponseMessage:      discordgo.InteractionResponseChannelMessageWithSource,
	ResponseUpdate:       discordgo.InteractionResponseUpdateMessage,
	ResponseDeferMessage: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	ResponseDeferUpdate:  discordgo.InteractionResponseDeferredMessageUpdate,
	ResponseModal:        discordgo.InteractionResponseModal,
}

func (t *discordTransport) Respond(kind ResponseKind, screen *ui.Screen, modal *ui.Modal) error {
	return t.session.InteractionRespond(t.interaction, buildResponse(kind, screen, modal), t.options()...)
}

func (t *discordTransport) EditOriginal(screen ui.Screen) error {
	embeds := []*discordgo.MessageEmbed{toEmbed(screen)}
	components := toComponents(screen.Rows)
	_, err := t.session.InteractionResponseEdit(t.interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}, t.options()...)
	return err
}

func (t *discordTransport) Followup(screen ui.Screen) error {
	params := &discordgo.WebhookParams{
		Embeds:     []*discordgo.MessageEmbed{toEmbed(screen)},
		Components: toComponents(screen.Rows),
	}
	if screen.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	_, err := t.session.FollowupMessageCreate(t.interaction, true, params, t.options()...)
	return err
}

func buildResponse(kind ResponseKind, screen *ui.Screen, modal *ui.Modal) *discordgo.InteractionResponse {
	resp := &discordgo.InteractionResponse{Type: responseTypes[kind]}
	switch {
	case modal != nil:
		resp.Data = toModalData(*modal)
	case screen != nil:
		resp.Data = &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{toEmbed(*screen)},
			Components: toComponents(screen.Rows),
		}
		if screen.Ephemeral && kind == ResponseMessage {
			resp.Data.Flags = discordgo.MessageFlagsEphemeral
		}
	case kind == ResponseDeferMessage:
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return resp
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func toEmbed(s ui.Screen) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       truncate(s.Title, maxTitleLen),
		Description: truncate(s.Description, maxDescriptionLen),
		Color:       s.Color,
	}
	for i, f := range s.Fields {
		if i == maxFields {
			break
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   truncate(f.Name, maxFieldNameLen),
			Value:  truncate(f.Value, maxFieldValueLen),
			Inline: f.Inline,
		})
	}
	if s.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: truncate(s.Footer, maxFooterLen)}
	}
	return e
}

var buttonStyles = map[ui.ButtonStyle]discordgo.ButtonStyle{
	ui.StylePrimary:   discordgo.PrimaryButton,
	ui.StyleSecondary: discordgo.SecondaryButton,
	ui.StyleSuccess:   discordgo.SuccessButton,
	ui.StyleDanger:    discordgo.DangerButton,
}

func toComponents(rows [][]ui.Button) []discordgo.MessageComponent {
	out := []discordgo.MessageComponent{}
	for i, row := range rows {
		if i == maxRows {
			break
		}
		ar := discordgo.ActionsRow{}
		for _, b := range row {
			style, ok := buttonStyles[b.Style]
			if !ok {
				style = discordgo.SecondaryButton
			}
			ar.Components = append(ar.Components, discordgo.Button{
				Label:    truncate(b.Label, 80),
				Style:    style,
				Disabled: b.Disabled,
				CustomID: b.ID,
			})
		}
		out = append(out, ar)
	}
	return out
}

func toModalData(m ui.Modal) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		CustomID: m.ID,
		Title:    truncate(m.Title, 45),
	}
	for _, in := range m.Inputs {
		style := discordgo.TextInputShort
		if in.Paragraph {
			style = discordgo.TextInputParagraph
		}
		data.Components = append(data.Components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{discordgo.TextInput{
				CustomID:    in.ID,
				Label:       truncate(in.Label, 45),
				Style:       style,
				Placeholder: in.Placeholder,
				Value:       in.Value,
				Required:    in.Required,
				MaxLength:   in.MaxLength,
			}},
		})
	}
	return data
}
