package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/craftbridge/craftbridge/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Forwarder{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Forwarder)(nil)
	_ core.Provisioner  = (*Forwarder)(nil)
	_ core.Starter      = (*Forwarder)(nil)
	_ core.Stopper      = (*Forwarder)(nil)
	_ Renderer          = (*PageDir)(nil)
)

// AdvancementFrame classifies an advancement announcement.
type AdvancementFrame string

// Advancement frame kinds, matching the game's display frames.
const (
	FrameTask      AdvancementFrame = "task"
	FrameGoal      AdvancementFrame = "goal"
	FrameChallenge AdvancementFrame = "challenge"
)

// Advancement describes a completed advancement, optionally with a
// pre-rendered announcement image.
type Advancement struct {
	Player      string
	Title       string
	Description string
	Frame       AdvancementFrame
	Image       []byte
}

// Forwarder mirrors game events into Telegram. The host event adapter calls
// its methods; each one formats the event per configuration and fires the
// corresponding outbound send. Send failures are logged and never propagate
// back into the host.
type Forwarder struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext
	sender Sender
}

// ModuleInfo implements core.Module.
func (f *Forwarder) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "bridge.forwarder",
		New: func() core.Module { return &Forwarder{} },
	}
}

// Configure implements core.Configurable.
func (f *Forwarder) Configure(node *yaml.Node) error {
	if err := node.Decode(&f.config); err != nil {
		return fmt.Errorf("forwarder: decode config: %w", err)
	}
	f.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It publishes the forwarder and,
// when a pages directory is configured, the page renderer.
func (f *Forwarder) Provision(ctx *core.AppContext) error {
	f.appCtx = ctx
	f.logger = ctx.Logger
	f.config.defaults()

	if f.config.PagesDir != "" {
		ctx.RegisterService(RendererService, NewPageDir(f.config.PagesDir))
	}
	ctx.RegisterService(ForwarderService, f)
	return nil
}

// Start implements core.Starter. The Telegram channel registers its sender
// during provisioning, so by the time modules start it must be available.
func (f *Forwarder) Start() error {
	svc, ok := f.appCtx.GetService(SenderService)
	if !ok {
		return errors.New("forwarder: telegram sender not found (is channel.telegram configured?)")
	}
	sender, ok := svc.(Sender)
	if !ok {
		return errors.New("forwarder: telegram.sender service does not implement bridge.Sender")
	}
	f.sender = sender

	if f.config.ServerStartMessage != "" {
		f.send(context.Background(), f.config.ServerStartMessage)
	}
	return nil
}

// Stop implements core.Stopper.
func (f *Forwarder) Stop(ctx context.Context) error {
	if f.config.ServerStopMessage != "" && f.sender != nil {
		if err := f.sender.SendText(ctx, f.config.ServerStopMessage); err != nil {
			f.logger.Warn("failed to send stop message", "error", err)
		}
	}
	return nil
}

// PlayerChat mirrors a game chat line.
func (f *Forwarder) PlayerChat(ctx context.Context, player, message string) {
	if !f.config.logChat() {
		return
	}
	text := expand(f.config.TelegramFormat, EscapeHTML(player), EscapeHTML(message))
	f.send(ctx, text)
}

// PlayerJoined announces a player joining the server.
func (f *Forwarder) PlayerJoined(ctx context.Context, player string) {
	if !f.config.logJoinLeave() {
		return
	}
	f.send(ctx, expand(f.config.Strings.Joined, EscapeHTML(player), ""))
}

// PlayerLeft announces a player leaving the server.
func (f *Forwarder) PlayerLeft(ctx context.Context, player string) {
	if !f.config.logJoinLeave() {
		return
	}
	f.send(ctx, expand(f.config.Strings.Left, EscapeHTML(player), ""))
}

// PlayerDied announces a player death using the game-provided death message.
func (f *Forwarder) PlayerDied(ctx context.Context, player, deathMessage string) {
	if !f.config.logDeath() {
		return
	}
	f.send(ctx, expand(f.config.Strings.Death, EscapeHTML(player), EscapeHTML(deathMessage)))
}

// PlayerAsleep announces a player entering a bed.
func (f *Forwarder) PlayerAsleep(ctx context.Context, player string) {
	if !f.config.logAsleep() {
		return
	}
	f.send(ctx, expand(f.config.Strings.Asleep, EscapeHTML(player), ""))
}

// PlayerKickedByWhitelist announces a failed join due to the whitelist.
func (f *Forwarder) PlayerKickedByWhitelist(ctx context.Context, player, kickMessage string) {
	f.send(ctx, expand(f.config.Strings.KickedByWL, EscapeHTML(player), EscapeHTML(kickMessage)))
}

// PlayerAdvancement announces a completed advancement. When the event
// carries a rendered image it is sent as a photo with the formatted caption;
// otherwise a plain text message is sent.
func (f *Forwarder) PlayerAdvancement(ctx context.Context, adv Advancement) {
	if !f.config.logAdvancement() {
		return
	}
	template := f.config.Strings.Advancement
	switch adv.Frame {
	case FrameGoal:
		template = f.config.Strings.Goal
	case FrameChallenge:
		template = f.config.Strings.Challenge
	}
	caption := expand(template, EscapeHTML(adv.Player), EscapeHTML(adv.Title))
	if adv.Description != "" {
		caption += fmt.Sprintf("\n(<i>%s</i>)", EscapeHTML(adv.Description))
	}

	if len(adv.Image) == 0 || f.sender == nil {
		f.send(ctx, caption)
		return
	}
	if err := f.sender.SendPhoto(ctx, adv.Image, caption); err != nil {
		f.logger.Error("failed to send advancement photo", "player", adv.Player, "error", err)
		f.send(ctx, caption)
	}
}

// BookShared delivers page 1 of a pre-rendered book with navigation buttons.
func (f *Forwarder) BookShared(ctx context.Context, player, contentID, caption string) {
	if !f.config.logBooks() || f.sender == nil {
		return
	}
	if err := f.sender.SendPaged(ctx, contentID, caption); err != nil {
		f.logger.Error("failed to send book pages",
			"player", player,
			"content_id", contentID,
			"error", err,
		)
	}
}

func (f *Forwarder) send(ctx context.Context, text string) {
	// Events can arrive before Start has resolved the sender.
	if f.sender == nil {
		f.logger.Debug("event dropped, sender not ready", "text", text)
		return
	}
	if err := f.sender.SendText(ctx, text); err != nil {
		f.logger.Error("failed to forward event to telegram", "error", err)
	}
}
