package bridge

// Config holds the forwarder configuration: which game events are mirrored
// to Telegram and the format strings used to render them.
type Config struct {
	// Event toggles all default to true; pointer fields distinguish an
	// explicit "false" from an unset value.
	LogChat        *bool `yaml:"log_chat"`
	LogJoinLeave   *bool `yaml:"log_join_leave"`
	LogDeath       *bool `yaml:"log_death"`
	LogAsleep      *bool `yaml:"log_asleep"`
	LogAdvancement *bool `yaml:"log_advancement"`
	LogBooks       *bool `yaml:"log_books"`

	// PagesDir is the root directory of pre-rendered page images. When set,
	// the forwarder publishes a PageDir renderer for paged delivery.
	PagesDir string `yaml:"pages_dir"`

	// TelegramFormat renders game chat lines; %username% and %message%
	// placeholders are substituted with HTML-escaped values.
	TelegramFormat string `yaml:"telegram_format"`

	ServerStartMessage string `yaml:"server_start_message"`
	ServerStopMessage  string `yaml:"server_stop_message"`

	Strings Strings `yaml:"strings"`
}

// Strings are the user-visible message templates.
type Strings struct {
	Joined      string `yaml:"joined"`
	Left        string `yaml:"left"`
	Death       string `yaml:"death"`
	Asleep      string `yaml:"asleep"`
	Advancement string `yaml:"advancement"`
	Goal        string `yaml:"goal"`
	Challenge   string `yaml:"challenge"`
	KickedByWL  string `yaml:"whitelist_kick"`
}

// defaults applies default values to unset fields. The templates match the
// upstream bridge plugin so existing translations carry over.
func (c *Config) defaults() {
	if c.TelegramFormat == "" {
		c.TelegramFormat = "<i>%username%</i>: %message%"
	}
	if c.Strings.Joined == "" {
		c.Strings.Joined = "<i>%username%</i> joined."
	}
	if c.Strings.Left == "" {
		c.Strings.Left = "<i>%username%</i> left."
	}
	if c.Strings.Death == "" {
		c.Strings.Death = "%message%"
	}
	if c.Strings.Asleep == "" {
		c.Strings.Asleep = "<i>%username%</i> fell asleep."
	}
	if c.Strings.Advancement == "" {
		c.Strings.Advancement = "<i>%username%</i> has made the advancement <b>%message%</b>."
	}
	if c.Strings.Goal == "" {
		c.Strings.Goal = "<i>%username%</i> has reached the goal <b>%message%</b>."
	}
	if c.Strings.Challenge == "" {
		c.Strings.Challenge = "<i>%username%</i> has completed the challenge <b>%message%</b>."
	}
	if c.Strings.KickedByWL == "" {
		c.Strings.KickedByWL = "⚠️ <i>%username%</i> tried to join but was kicked: %message%"
	}
}

// enabled interprets an event toggle, defaulting to true.
func enabled(b *bool) bool {
	return b == nil || *b
}

func (c *Config) logChat() bool        { return enabled(c.LogChat) }
func (c *Config) logJoinLeave() bool   { return enabled(c.LogJoinLeave) }
func (c *Config) logDeath() bool       { return enabled(c.LogDeath) }
func (c *Config) logAsleep() bool      { return enabled(c.LogAsleep) }
func (c *Config) logAdvancement() bool { return enabled(c.LogAdvancement) }
func (c *Config) logBooks() bool       { return enabled(c.LogBooks) }
