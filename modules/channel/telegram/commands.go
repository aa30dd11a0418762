package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/craftbridge/craftbridge/internal/bridge"
)

// reply sends an HTML-formatted reply to the triggering message.
func (h *HandlerContext) reply(ctx context.Context, text string) error {
	_, err := h.client.SendMessage(ctx, SendMessageRequest{
		ChatID:              h.Message.Chat.ID,
		Text:                text,
		ParseMode:           "HTML",
		DisableNotification: h.config.SilentMessages,
		ReplyToMessageID:    h.Message.MessageID,
	})
	return err
}

// allowed re-checks the chat allow-list. The dispatcher already filtered,
// but handlers are also reachable from tests and future entry points, so
// each one enforces the check itself.
func (h *HandlerContext) allowed() bool {
	return h.allow.Allowed(h.Message.Chat.ID)
}

// timeOfDayLabel maps a world tick to its time-of-day phase.
func timeOfDayLabel(tick int64) string {
	t := tick % 24000
	switch {
	case t <= 12000:
		return "\U0001F3DE Day"
	case t <= 13800:
		return "\U0001F306 Sunset"
	case t <= 22200:
		return "\U0001F303 Night"
	case t <= 24000:
		return "\U0001F305 Sunrise"
	}
	return ""
}

// timeCommand replies with the in-game time of day.
func timeCommand(ctx context.Context, h *HandlerContext) error {
	if !h.allowed() {
		return nil
	}
	tick, ok := h.host.WorldTime()
	if !ok {
		return h.reply(ctx, h.config.Strings.NoWorlds)
	}
	return h.reply(ctx, fmt.Sprintf("%s (%d)", timeOfDayLabel(tick), tick%24000))
}

// onlineCommand replies with the numbered list of online players. Players
// holding the exclude permission are hidden from the roster.
func onlineCommand(ctx context.Context, h *HandlerContext) error {
	if !h.allowed() {
		return nil
	}
	players := h.host.OnlinePlayerNames(h.config.ExcludePermission)
	if len(players) == 0 {
		return h.reply(ctx, h.config.Strings.NobodyOnline)
	}

	var b strings.Builder
	b.WriteString(h.config.Strings.Online)
	b.WriteString(":")
	for i, name := range players {
		fmt.Fprintf(&b, "\n%d. %s", i+1, bridge.EscapeHTML(name))
	}
	return h.reply(ctx, b.String())
}

// chatIDCommand replies with the current chat ID and a ready-to-paste
// config snippet, so operators can fill in the allow-list.
func chatIDCommand(ctx context.Context, h *HandlerContext) error {
	if !h.allowed() {
		return nil
	}
	id := h.Message.Chat.ID
	text := fmt.Sprintf(
		"Chat ID: <code>%d</code>\n\nAdd it to the channel config:\n<pre>chats:\n  - %d</pre>",
		id, id,
	)
	return h.reply(ctx, text)
}

// iamtheCommand binds the sender's Telegram account to a player name, so
// forwarded chat is attributed to that name.
func iamtheCommand(ctx context.Context, h *HandlerContext) error {
	if !h.allowed() {
		return nil
	}
	if h.Message.From == nil || h.Message.From.Username == "" {
		return h.reply(ctx, "Set a Telegram username first, then try again")
	}
	if len(h.Args) != 1 {
		return h.reply(ctx, fmt.Sprintf("Usage: /%s@bot &lt;player name&gt;", h.config.Commands.IAmThe.Name))
	}

	gameName := h.Args[0]
	if err := h.bindings.Bind(ctx, h.Message.From.Username, gameName); err != nil {
		h.logger.Error("binding failed", "user", h.Message.From.Username, "error", err)
		return h.reply(ctx, "Could not save the binding, try again later")
	}
	return h.reply(ctx, fmt.Sprintf("Got it, you are <b>%s</b>", bridge.EscapeHTML(gameName)))
}
