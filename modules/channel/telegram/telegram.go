package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/craftbridge/craftbridge/internal/bridge"
	"github.com/craftbridge/craftbridge/internal/core"
	"github.com/craftbridge/craftbridge/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Telegram{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Telegram)(nil)
	_ core.Provisioner  = (*Telegram)(nil)
	_ core.Validator    = (*Telegram)(nil)
	_ core.Starter      = (*Telegram)(nil)
	_ core.Stopper      = (*Telegram)(nil)
	_ bridge.Sender     = (*Telegram)(nil)
)

// Telegram is the Telegram Bot API channel. It pumps updates through a
// long poller into a dispatcher, exposes itself as the bridge's outbound
// sender, and drives paged photo navigation via inline keyboards.
type Telegram struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext

	client     *Client
	allow      *chatAllowList
	queue      *updateQueue
	poller     *Poller
	dispatcher *Dispatcher
	metrics    *metrics.Bot

	host     bridge.Host
	renderer bridge.Renderer
	bindings bridge.NameBindings
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.telegram",
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The channel registers itself as
// the bridge sender here so sibling modules can resolve it at Start.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	t.logger = ctx.Logger
	t.appCtx = ctx
	t.config.defaults()

	t.client = NewClient(t.config.Token, t.config.APIOrigin, t.config.DebugHTTP, t.logger)
	t.allow = newChatAllowList(t.config.Chats)
	t.queue = newUpdateQueue()

	// The sender can be invoked by sibling modules before Start (the metrics
	// module provisions later), so instrumentation starts against a private
	// registry and is rebound in Start when a shared one exists.
	t.metrics = metrics.NewBot(prometheus.NewRegistry())

	ctx.RegisterService(bridge.SenderService, bridge.Sender(t))
	return nil
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	if t.config.Token == "" {
		return errors.New("telegram: token is required")
	}
	if len(t.config.Chats) == 0 {
		return errors.New("telegram: at least one chat must be allowed")
	}
	return t.config.validate()
}

// Start implements core.Starter. It resolves collaborators, identifies the
// bot, clears any stale webhook, registers the command menu, and starts the
// poller and dispatcher.
func (t *Telegram) Start() error {
	host, ok := core.GetServiceAs[bridge.Host](t.appCtx, bridge.HostService)
	if !ok {
		return errors.New("telegram: host service not available")
	}
	t.host = host

	// Optional collaborators: paged rendering and name bindings.
	t.renderer, _ = core.GetServiceAs[bridge.Renderer](t.appCtx, bridge.RendererService)
	t.bindings, _ = core.GetServiceAs[bridge.NameBindings](t.appCtx, bridge.BindingsService)

	if reg, ok := core.GetServiceAs[prometheus.Registerer](t.appCtx, metrics.RegistryService); ok {
		t.metrics = metrics.NewBot(reg)
	}

	ctx := context.Background()

	me, err := t.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: identify bot: %w", err)
	}
	if me.Username == "" {
		return errors.New("telegram: bot has no username")
	}
	t.logger.Info("bot identified", "username", me.Username, "id", me.ID)

	// Long polling and webhooks are mutually exclusive; drop anything that
	// accumulated behind a stale webhook.
	if err := t.client.DeleteWebhook(ctx, true); err != nil {
		t.logger.Warn("webhook cleanup failed", "error", err)
	}
	if err := t.client.SetMyCommands(ctx, t.botCommands()); err != nil {
		t.logger.Warn("command menu registration failed", "error", err)
	}

	t.dispatcher = NewDispatcher(t.client, t.queue, &t.config, t.allow,
		t.host, t.renderer, t.bindings, me.Username, t.metrics, t.logger)
	t.poller = NewPoller(t.client, t.queue, t.config.PollTimeout, t.metrics, t.logger)

	go t.dispatcher.Run()
	t.poller.Start()

	t.logger.Info("telegram channel started", "chats", len(t.config.Chats))
	return nil
}

// Stop implements core.Stopper. Shutdown is two-phase: stop the poller
// (which closes the queue), then wait for the dispatcher to drain the
// remaining updates or for the shutdown deadline.
func (t *Telegram) Stop(ctx context.Context) error {
	if t.poller == nil {
		return nil
	}
	t.poller.Stop()

	select {
	case <-t.dispatcher.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram: dispatcher did not drain: %w", ctx.Err())
	}
}

// botCommands builds the command menu from the configured command names.
func (t *Telegram) botCommands() []BotCommand {
	cmds := []BotCommand{
		{Command: t.config.Commands.Time.Name, Description: t.config.Commands.Time.Description},
		{Command: t.config.Commands.Online.Name, Description: t.config.Commands.Online.Description},
		{Command: t.config.Commands.ChatID.Name, Description: t.config.Commands.ChatID.Description},
	}
	if t.bindings != nil {
		cmds = append(cmds, BotCommand{
			Command:     t.config.Commands.IAmThe.Name,
			Description: t.config.Commands.IAmThe.Description,
		})
	}
	return cmds
}
