package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/craftbridge/craftbridge/internal/bridge"
	"github.com/craftbridge/craftbridge/internal/core"
)

// tickInterval matches the game's 20 ticks per second.
const tickInterval = 50 * time.Millisecond

// consoleHost is a stand-in bridge.Host for running craftbridge without a
// game server. Lines typed on stdin become game chat ("<name>: <message>",
// or bare text attributed to "console"); forwarded Telegram messages are
// printed to stdout. World time is simulated at game speed.
type consoleHost struct {
	logger *slog.Logger
	appCtx *core.AppContext

	mu      sync.Mutex
	players []string
	tick    int64

	stop chan struct{}
	once sync.Once
}

func newConsoleHost(appCtx *core.AppContext, logger *slog.Logger) *consoleHost {
	return &consoleHost{
		logger: logger,
		appCtx: appCtx,
		stop:   make(chan struct{}),
	}
}

// Start begins the tick loop and the stdin reader.
func (h *consoleHost) Start() {
	go h.tickLoop()
	go h.readLoop()
}

// Stop halts the tick loop. The stdin reader exits with the process.
func (h *consoleHost) Stop() {
	h.once.Do(func() { close(h.stop) })
}

func (h *consoleHost) tickLoop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			h.tick = (h.tick + 1) % 24000
			h.mu.Unlock()
		}
	}
}

func (h *consoleHost) readLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		player, msg, ok := strings.Cut(line, ": ")
		if !ok {
			player, msg = "console", line
		}
		h.join(player)

		if fw, ok := core.GetServiceAs[*bridge.Forwarder](h.appCtx, bridge.ForwarderService); ok {
			fw.PlayerChat(context.Background(), player, msg)
		} else {
			h.logger.Info("game chat (no forwarder configured)", "player", player, "message", msg)
		}
	}
}

// join adds a player to the simulated roster on first sight.
func (h *consoleHost) join(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.players {
		if p == name {
			return
		}
	}
	h.players = append(h.players, name)
}

// OnlinePlayerNames implements bridge.Host. The console roster has no
// permission system, so the exclude filter is a no-op.
func (h *consoleHost) OnlinePlayerNames(excludePermission string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.players))
	copy(out, h.players)
	return out
}

// WorldTime implements bridge.Host.
func (h *consoleHost) WorldTime() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tick, true
}

// ForwardToGameChat implements bridge.Host.
func (h *consoleHost) ForwardToGameChat(text, sender, chatTitle string) {
	if chatTitle != "" {
		fmt.Printf("[%s] %s: %s\n", chatTitle, sender, text)
		return
	}
	fmt.Printf("%s: %s\n", sender, text)
}

var _ bridge.Host = (*consoleHost)(nil)
