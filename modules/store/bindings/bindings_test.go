package bindings

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s := &Store{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		path:   filepath.Join(t.TempDir(), "bindings.db"),
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Stop(context.Background()); err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	})
	return s
}

func TestBindAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Bind(ctx, "alice", "Steve"); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	name, ok, err := s.GameName(ctx, "alice")
	if err != nil {
		t.Fatalf("GameName() error: %v", err)
	}
	if !ok || name != "Steve" {
		t.Errorf("GameName() = (%q, %v), want (Steve, true)", name, ok)
	}
}

func TestBindReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Bind(ctx, "alice", "Steve"); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(ctx, "alice", "Alex"); err != nil {
		t.Fatalf("rebind error: %v", err)
	}

	name, ok, err := s.GameName(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("GameName() = (%q, %v, %v)", name, ok, err)
	}
	if name != "Alex" {
		t.Errorf("GameName() = %q, want Alex (latest binding wins)", name)
	}
}

func TestGameNameMissing(t *testing.T) {
	s := openTestStore(t)

	name, ok, err := s.GameName(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GameName() error: %v", err)
	}
	if ok || name != "" {
		t.Errorf("GameName() = (%q, %v), want empty miss", name, ok)
	}
}

func TestBindRejectsEmptyValues(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Bind(ctx, "", "Steve"); err == nil {
		t.Error("Bind with empty user = nil error, want error")
	}
	if err := s.Bind(ctx, "alice", ""); err == nil {
		t.Error("Bind with empty name = nil error, want error")
	}
}

func TestBindingsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	s := &Store{logger: logger, path: path}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(ctx, "alice", "Steve"); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	s = &Store{logger: logger, path: path}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Stop(ctx)

	name, ok, err := s.GameName(ctx, "alice")
	if err != nil || !ok || name != "Steve" {
		t.Errorf("after reopen GameName() = (%q, %v, %v), want (Steve, true, nil)", name, ok, err)
	}
}
