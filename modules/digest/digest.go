// Package digest posts a scheduled online-roster summary to Telegram.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/craftbridge/craftbridge/internal/bridge"
	"github.com/craftbridge/craftbridge/internal/core"
	"github.com/craftbridge/craftbridge/internal/cron"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Digest{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Digest)(nil)
	_ core.Provisioner  = (*Digest)(nil)
	_ core.Validator    = (*Digest)(nil)
	_ core.Starter      = (*Digest)(nil)
	_ core.Stopper      = (*Digest)(nil)
)

// Config holds the digest module configuration.
type Config struct {
	// Schedule is a five-field cron expression.
	Schedule string `yaml:"schedule"`

	// Header leads the digest message.
	Header string `yaml:"header"`

	// SkipEmpty suppresses the digest when nobody is online.
	SkipEmpty bool `yaml:"skip_empty"`

	// ExcludePermission filters players out of the roster.
	ExcludePermission string `yaml:"exclude_permission"`
}

func (c *Config) defaults() {
	if c.Schedule == "" {
		c.Schedule = "0 * * * *"
	}
	if c.Header == "" {
		c.Header = "Server status"
	}
	if c.ExcludePermission == "" {
		c.ExcludePermission = bridge.DefaultSilentPermission
	}
}

// Digest periodically posts who is online and the in-game time of day.
type Digest struct {
	config    Config
	logger    *slog.Logger
	appCtx    *core.AppContext
	scheduler *cron.Scheduler

	host   bridge.Host
	sender bridge.Sender
}

// ModuleInfo implements core.Module.
func (d *Digest) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "digest",
		New: func() core.Module { return &Digest{} },
	}
}

// Configure implements core.Configurable.
func (d *Digest) Configure(node *yaml.Node) error {
	if err := node.Decode(&d.config); err != nil {
		return fmt.Errorf("digest: decode config: %w", err)
	}
	d.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (d *Digest) Provision(ctx *core.AppContext) error {
	d.logger = ctx.Logger
	d.appCtx = ctx
	d.config.defaults()
	d.scheduler = cron.NewScheduler(d.logger)
	return nil
}

// Validate implements core.Validator.
func (d *Digest) Validate() error {
	return d.scheduler.Add(cron.Job{
		Name:     "online-digest",
		Schedule: d.config.Schedule,
		Run:      d.post,
	})
}

// Start implements core.Starter.
func (d *Digest) Start() error {
	host, ok := core.GetServiceAs[bridge.Host](d.appCtx, bridge.HostService)
	if !ok {
		return errors.New("digest: host service not available")
	}
	sender, ok := core.GetServiceAs[bridge.Sender](d.appCtx, bridge.SenderService)
	if !ok {
		return errors.New("digest: telegram sender not available (is channel.telegram configured?)")
	}
	d.host = host
	d.sender = sender

	d.scheduler.Start()
	d.logger.Info("digest scheduled", "schedule", d.config.Schedule)
	return nil
}

// Stop implements core.Stopper.
func (d *Digest) Stop(ctx context.Context) error {
	return d.scheduler.Stop(ctx)
}

// post builds and sends one digest message.
func (d *Digest) post(ctx context.Context) error {
	players := d.host.OnlinePlayerNames(d.config.ExcludePermission)
	if len(players) == 0 && d.config.SkipEmpty {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", bridge.EscapeHTML(d.config.Header))

	if tick, ok := d.host.WorldTime(); ok {
		fmt.Fprintf(&b, "World time: %d\n", tick)
	}

	if len(players) == 0 {
		b.WriteString("Nobody online")
	} else {
		fmt.Fprintf(&b, "Online (%d):", len(players))
		for i, name := range players {
			fmt.Fprintf(&b, "\n%d. %s", i+1, bridge.EscapeHTML(name))
		}
	}

	return d.sender.SendText(ctx, b.String())
}
