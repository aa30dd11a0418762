package digest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type fakeHost struct {
	players []string
	tick    int64
	noWorld bool
}

func (h *fakeHost) OnlinePlayerNames(string) []string { return h.players }

func (h *fakeHost) WorldTime() (int64, bool) {
	if h.noWorld {
		return 0, false
	}
	return h.tick, true
}

func (h *fakeHost) ForwardToGameChat(string, string, string) {}

type fakeSender struct {
	texts []string
}

func (s *fakeSender) SendText(_ context.Context, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *fakeSender) SendPhoto(context.Context, []byte, string) error { return nil }
func (s *fakeSender) SendPaged(context.Context, string, string) error { return nil }

func newTestDigest(host *fakeHost, sender *fakeSender) *Digest {
	d := &Digest{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		host:   host,
		sender: sender,
	}
	d.config.defaults()
	return d
}

func TestDigestPost(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDigest(&fakeHost{players: []string{"Steve", "Alex"}, tick: 6000}, sender)

	if err := d.post(context.Background()); err != nil {
		t.Fatalf("post() error: %v", err)
	}

	if len(sender.texts) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.texts))
	}
	text := sender.texts[0]
	if !strings.Contains(text, "<b>Server status</b>") {
		t.Errorf("text = %q, missing header", text)
	}
	if !strings.Contains(text, "World time: 6000") {
		t.Errorf("text = %q, missing world time", text)
	}
	if !strings.Contains(text, "Online (2):") || !strings.Contains(text, "1. Steve") || !strings.Contains(text, "2. Alex") {
		t.Errorf("text = %q, missing roster", text)
	}
}

func TestDigestPostNobodyOnline(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDigest(&fakeHost{noWorld: true}, sender)

	if err := d.post(context.Background()); err != nil {
		t.Fatalf("post() error: %v", err)
	}

	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "Nobody online") {
		t.Errorf("sent = %v, want nobody-online digest", sender.texts)
	}
}

func TestDigestSkipEmpty(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDigest(&fakeHost{}, sender)
	d.config.SkipEmpty = true

	if err := d.post(context.Background()); err != nil {
		t.Fatalf("post() error: %v", err)
	}
	if len(sender.texts) != 0 {
		t.Errorf("sent %d messages with skip_empty, want 0", len(sender.texts))
	}
}

func TestDigestEscapesPlayerNames(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDigest(&fakeHost{players: []string{"<Steve>"}}, sender)

	if err := d.post(context.Background()); err != nil {
		t.Fatalf("post() error: %v", err)
	}
	if !strings.Contains(sender.texts[0], "&lt;Steve&gt;") {
		t.Errorf("text = %q, player name not escaped", sender.texts[0])
	}
}
