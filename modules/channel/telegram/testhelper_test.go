package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/craftbridge/craftbridge/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Bot {
	return metrics.NewBot(prometheus.NewRegistry())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

// fakeHost records forwarded chat and serves canned roster and time data.
type fakeHost struct {
	mu        sync.Mutex
	players   []string
	tick      int64
	noWorld   bool
	forwarded []string
}

func (h *fakeHost) OnlinePlayerNames(string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.players...)
}

func (h *fakeHost) WorldTime() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.noWorld {
		return 0, false
	}
	return h.tick, true
}

func (h *fakeHost) ForwardToGameChat(text, sender, chatTitle string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forwarded = append(h.forwarded, sender+": "+text)
}

func (h *fakeHost) forwardedLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.forwarded...)
}

// fakeRenderer serves a fixed number of one-byte pages.
type fakeRenderer struct {
	pages int
	err   error
}

func (r *fakeRenderer) PageCount(string) (int, error) {
	return r.pages, r.err
}

func (r *fakeRenderer) ResolvePage(contentID string, page int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte{byte(page)}, nil
}

// fakeBindings is an in-memory NameBindings.
type fakeBindings struct {
	mu    sync.Mutex
	names map[string]string
}

func newFakeBindings() *fakeBindings {
	return &fakeBindings{names: make(map[string]string)}
}

func (b *fakeBindings) Bind(_ context.Context, telegramUser, gameName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names[telegramUser] = gameName
	return nil
}

func (b *fakeBindings) GameName(_ context.Context, telegramUser string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.names[telegramUser]
	return name, ok, nil
}
