package telegram

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/craftbridge/craftbridge/internal/bridge"
	"github.com/craftbridge/craftbridge/internal/metrics"
)

// HandlerContext carries everything a command handler needs to produce a
// reply: the triggering message, the parsed arguments, and the channel
// collaborators.
type HandlerContext struct {
	Message *Message
	Args    []string

	client   *Client
	config   *Config
	allow    *chatAllowList
	host     bridge.Host
	bindings bridge.NameBindings
	logger   *slog.Logger
}

// commandFunc handles one bot command.
type commandFunc func(ctx context.Context, hctx *HandlerContext) error

// Dispatcher consumes updates from the queue one at a time and routes them:
// callback queries to the pagination handler, commands to the command table,
// and remaining group text into the game chat.
type Dispatcher struct {
	client   *Client
	queue    *updateQueue
	config   *Config
	allow    *chatAllowList
	host     bridge.Host
	renderer bridge.Renderer
	bindings bridge.NameBindings
	logger   *slog.Logger
	metrics  *metrics.Bot

	commands       map[string]commandFunc
	commandPattern *regexp.Regexp

	done chan struct{}
}

// NewDispatcher wires a dispatcher over the queue. botUsername scopes the
// command grammar: only commands explicitly addressed to this bot match.
// renderer and bindings may be nil; the affected features degrade.
func NewDispatcher(client *Client, queue *updateQueue, cfg *Config, allow *chatAllowList,
	host bridge.Host, renderer bridge.Renderer, bindings bridge.NameBindings,
	botUsername string, m *metrics.Bot, logger *slog.Logger) *Dispatcher {

	d := &Dispatcher{
		client:   client,
		queue:    queue,
		config:   cfg,
		allow:    allow,
		host:     host,
		renderer: renderer,
		bindings: bindings,
		logger:   logger,
		metrics:  m,
		commands: make(map[string]commandFunc),
		done:     make(chan struct{}),
	}

	d.commands[cfg.Commands.Time.Name] = timeCommand
	d.commands[cfg.Commands.Online.Name] = onlineCommand
	d.commands[cfg.Commands.ChatID.Name] = chatIDCommand
	if bindings != nil {
		d.commands[cfg.Commands.IAmThe.Name] = iamtheCommand
	}

	// Commands must carry the bot mention: "/time@mybot [args]". Bare
	// "/time" is ambiguous in group chats with several bots and is treated
	// as plain text.
	d.commandPattern = regexp.MustCompile(`^/(\w+)@` + regexp.QuoteMeta(botUsername) + `(?:\s+(.+))?$`)

	return d
}

// Run consumes the queue until it is closed and drained, then signals Done.
// Intended to run on its own goroutine.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for {
		u, ok := d.queue.Pop()
		if !ok {
			return
		}
		d.metrics.QueueDepth.Set(float64(d.queue.Len()))
		d.dispatch(context.Background(), u)
	}
}

// Done is closed once Run has finished processing all queued updates.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// dispatch routes a single update. Handler errors are logged, never fatal;
// one bad update must not stall the stream.
func (d *Dispatcher) dispatch(ctx context.Context, u Update) {
	switch {
	case u.CallbackQuery != nil:
		d.metrics.UpdatesDispatched.WithLabelValues(metrics.KindCallback).Inc()
		if err := d.handleCallback(ctx, u.CallbackQuery); err != nil {
			d.logger.Error("callback handling failed", "error", err, "data", u.CallbackQuery.Data)
		}
	case u.Message != nil:
		d.dispatchMessage(ctx, u.Message)
	default:
		// Update types the bridge does not subscribe to.
		d.metrics.UpdatesDispatched.WithLabelValues(metrics.KindDiscarded).Inc()
	}
}

func (d *Dispatcher) dispatchMessage(ctx context.Context, msg *Message) {
	// The bridge only operates in group chats.
	if msg.Chat.Type != ChatTypeGroup && msg.Chat.Type != ChatTypeSupergroup {
		d.metrics.UpdatesDispatched.WithLabelValues(metrics.KindDiscarded).Inc()
		return
	}
	if !d.allow.Allowed(msg.Chat.ID) {
		d.metrics.UpdatesDispatched.WithLabelValues(metrics.KindDiscarded).Inc()
		d.logger.Debug("message from disallowed chat discarded", "chat_id", msg.Chat.ID)
		return
	}
	d.metrics.UpdatesDispatched.WithLabelValues(metrics.KindMessage).Inc()

	if m := d.commandPattern.FindStringSubmatch(msg.Text); m != nil {
		name, rest := m[1], m[2]
		handler, ok := d.commands[name]
		if !ok {
			// Addressed to us but unknown: treat as chatter.
			d.onText(msg)
			return
		}
		hctx := &HandlerContext{
			Message:  msg,
			Args:     splitArgs(rest),
			client:   d.client,
			config:   d.config,
			allow:    d.allow,
			host:     d.host,
			bindings: d.bindings,
			logger:   d.logger,
		}
		if err := handler(ctx, hctx); err != nil {
			d.logger.Error("command failed", "command", name, "error", err)
		}
		return
	}

	d.onText(msg)
}

// onText forwards a plain group message into the game chat, attributed to
// the sender's bound player name when one exists.
func (d *Dispatcher) onText(msg *Message) {
	if !d.config.forwardToGame() || msg.Text == "" || msg.From == nil {
		return
	}

	sender := displayName(msg.From)
	if d.bindings != nil && msg.From.Username != "" {
		if name, ok, err := d.bindings.GameName(context.Background(), msg.From.Username); err != nil {
			d.logger.Warn("binding lookup failed", "user", msg.From.Username, "error", err)
		} else if ok {
			sender = name
		}
	}

	d.host.ForwardToGameChat(msg.Text, sender, msg.Chat.Title)
}

// displayName picks the best human-readable name for a user.
func displayName(u *User) string {
	if u.Username != "" {
		return u.Username
	}
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// splitArgs splits the command tail on whitespace. An empty tail yields nil.
func splitArgs(rest string) []string {
	return strings.Fields(rest)
}
