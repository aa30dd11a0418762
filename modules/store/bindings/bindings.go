// Package bindings persists Telegram-to-player name associations in SQLite.
package bindings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/craftbridge/craftbridge/internal/bridge"
	"github.com/craftbridge/craftbridge/internal/core"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite"
)

func init() {
	core.RegisterModule(&Store{})
}

// Compile-time interface guards.
var (
	_ core.Configurable   = (*Store)(nil)
	_ core.Provisioner    = (*Store)(nil)
	_ core.Starter        = (*Store)(nil)
	_ core.Stopper        = (*Store)(nil)
	_ bridge.NameBindings = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS name_bindings (
	telegram_user TEXT PRIMARY KEY,
	game_name     TEXT NOT NULL,
	updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Config holds the bindings store configuration.
type Config struct {
	// Path is the SQLite database file. Relative paths resolve under the
	// application data directory.
	Path string `yaml:"path"`
}

// Store implements bridge.NameBindings on an embedded SQLite database.
type Store struct {
	config Config
	logger *slog.Logger
	path   string
	db     *sql.DB
}

// ModuleInfo implements core.Module.
func (s *Store) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.bindings",
		New: func() core.Module { return &Store{} },
	}
}

// Configure implements core.Configurable.
func (s *Store) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return fmt.Errorf("bindings: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (s *Store) Provision(ctx *core.AppContext) error {
	s.logger = ctx.Logger

	path := s.config.Path
	if path == "" {
		path = "bindings.db"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(ctx.DataDir, path)
	}
	s.path = path

	ctx.RegisterService(bridge.BindingsService, bridge.NameBindings(s))
	return nil
}

// Start implements core.Starter. It opens the database and applies the
// schema. WAL keeps readers unblocked during writes; a single connection
// sidesteps SQLITE_BUSY under the pure-Go driver.
func (s *Store) Start() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("bindings: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("bindings: apply schema: %w", err)
	}

	s.db = db
	s.logger.Info("bindings store opened", "path", s.path)
	return nil
}

// Stop implements core.Stopper.
func (s *Store) Stop(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Bind implements bridge.NameBindings.
func (s *Store) Bind(ctx context.Context, telegramUser, gameName string) error {
	if telegramUser == "" || gameName == "" {
		return errors.New("bindings: telegram user and game name are required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO name_bindings (telegram_user, game_name, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (telegram_user)
		DO UPDATE SET game_name = excluded.game_name, updated_at = excluded.updated_at`,
		telegramUser, gameName,
	)
	if err != nil {
		return fmt.Errorf("bindings: upsert %s: %w", telegramUser, err)
	}
	return nil
}

// GameName implements bridge.NameBindings.
func (s *Store) GameName(ctx context.Context, telegramUser string) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT game_name FROM name_bindings WHERE telegram_user = ?`,
		telegramUser,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("bindings: lookup %s: %w", telegramUser, err)
	}
	return name, true, nil
}
