package telegram

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/craftbridge/craftbridge/internal/bridge"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Config holds the Telegram channel configuration.
type Config struct {
	Token string `yaml:"token"`

	// Chats is the allow-list of group chat IDs the bridge operates in.
	// Messages from any other chat are silently discarded.
	Chats []int64 `yaml:"chats"`

	PollTimeout    int    `yaml:"poll_timeout"`
	APIOrigin      string `yaml:"api_origin"`
	DebugHTTP      bool   `yaml:"debug_http"`
	SilentMessages bool   `yaml:"silent_messages"`

	// ForwardToGame controls whether plain Telegram messages are forwarded
	// into the game chat. Defaults to true.
	ForwardToGame *bool `yaml:"forward_to_game"`

	// ExcludePermission filters players out of the online roster.
	ExcludePermission string `yaml:"exclude_permission"`

	Commands CommandsConfig `yaml:"commands"`
	Strings  Strings        `yaml:"strings"`
}

// CommandConfig names a single bot command and its menu description.
type CommandConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// CommandsConfig holds the configurable command names. Renaming a command
// changes both the matching grammar and the registered command menu.
type CommandsConfig struct {
	Time   CommandConfig `yaml:"time"`
	Online CommandConfig `yaml:"online"`
	ChatID CommandConfig `yaml:"chat_id"`
	IAmThe CommandConfig `yaml:"iamthe"`
}

// Strings are the user-visible reply templates owned by the channel.
type Strings struct {
	Online       string `yaml:"online"`
	NobodyOnline string `yaml:"nobody_online"`
	NoWorlds     string `yaml:"no_worlds"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.PollTimeout == 0 {
		c.PollTimeout = 30
	}
	if c.APIOrigin == "" {
		c.APIOrigin = "https://api.telegram.org"
	}
	if c.ExcludePermission == "" {
		c.ExcludePermission = bridge.DefaultSilentPermission
	}
	if c.Commands.Time.Name == "" {
		c.Commands.Time = CommandConfig{Name: "time", Description: "Get time on server"}
	}
	if c.Commands.Online.Name == "" {
		c.Commands.Online = CommandConfig{Name: "online", Description: "Get players online"}
	}
	if c.Commands.ChatID.Name == "" {
		c.Commands.ChatID = CommandConfig{Name: "chat_id", Description: "Get current chat id"}
	}
	if c.Commands.IAmThe.Name == "" {
		c.Commands.IAmThe = CommandConfig{Name: "iamthe", Description: "Bind your Telegram account to a player name"}
	}
	if c.Strings.Online == "" {
		c.Strings.Online = "Online"
	}
	if c.Strings.NobodyOnline == "" {
		c.Strings.NobodyOnline = "Nobody online"
	}
	if c.Strings.NoWorlds == "" {
		c.Strings.NoWorlds = "No worlds available"
	}
}

// forwardToGame reports whether plain text forwarding is enabled.
func (c *Config) forwardToGame() bool {
	return c.ForwardToGame == nil || *c.ForwardToGame
}

// validate checks configuration field constraints beyond basic presence
// checks. Called from Telegram.Validate after defaults have been applied.
func (c *Config) validate() error {
	if c.Token != "" && !tokenPattern.MatchString(c.Token) {
		return fmt.Errorf("telegram: token format invalid (expected <bot_id>:<hash>)")
	}

	if c.APIOrigin != "" {
		u, err := url.Parse(c.APIOrigin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("telegram: api_origin must be a valid http/https URL, got %q", c.APIOrigin)
		}
	}

	if c.PollTimeout < 0 || c.PollTimeout > 50 {
		return fmt.Errorf("telegram: poll_timeout must be 0-50, got %d", c.PollTimeout)
	}

	return nil
}
