package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	pkgdiscord "hypebot/pkg/discord"
	"hypebot/pkg/tz"
)

// MemoryDatabaseURL selects the in-process store instead of PostgreSQL.
const MemoryDatabaseURL = "memory://"

const defaultDatabaseURL = "postgres://localhost:5432/hypebot?sslmode=disable"

type Config struct {
	Token               string
	EventChannelID      string
	GuildID             string
	DatabaseURL         string
	EventRoles          []string
	EventTimezone       string
	Location            *time.Location
	DefaultThumbnailURL string
	Locale              string
	SweepInterval       time.Duration
	SchedulerWorkers    int
	HTTPAddr            string
	LogLevel            string
	Environment         string
}

// Load reads the configuration from .env, the optional config file at path
// and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads the configuration without validating it. Commands that only
// need part of it (migrate) validate what they use.
func Read(path string) (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI).
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	roles, err := roleList(v.Get("event_roles"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Token:               strings.TrimSpace(v.GetString("token")),
		EventChannelID:      strings.TrimSpace(v.GetString("event_channel_id")),
		GuildID:             strings.TrimSpace(v.GetString("guild_id")),
		DatabaseURL:         strings.TrimSpace(v.GetString("database_url")),
		EventRoles:          roles,
		EventTimezone:       strings.TrimSpace(v.GetString("event_timezone")),
		DefaultThumbnailURL: strings.TrimSpace(v.GetString("default_thumbnail_url")),
		Locale:              strings.TrimSpace(v.GetString("locale")),
		SweepInterval:       v.GetDuration("sweep_interval"),
		SchedulerWorkers:    v.GetInt("scheduler_workers"),
		HTTPAddr:            strings.TrimSpace(v.GetString("http_addr")),
		LogLevel:            strings.TrimSpace(v.GetString("log_level")),
		Environment:         strings.TrimSpace(v.GetString("environment")),
	}, nil
}

var keys = []string{
	"token", "event_channel_id", "guild_id", "database_url", "event_roles", "event_timezone",
	"default_thumbnail_url", "locale", "sweep_interval", "scheduler_workers", "http_addr",
	"log_level", "environment",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", defaultDatabaseURL)
	v.SetDefault("event_timezone", "UTC")
	v.SetDefault("locale", "en")
	v.SetDefault("sweep_interval", "60s")
	v.SetDefault("scheduler_workers", 4)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("environment", "production")
}

// splitList accepts comma and/or whitespace separated values.
func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// roleList reads EVENT_ROLES either as a separated string (environment) or
// as a list from the config file, where TOML and YAML may decode IDs as
// numbers.
func roleList(raw any) ([]string, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return splitList(val), nil
	case []string:
		return splitList(strings.Join(val, ",")), nil
	case []any:
		roles := make([]string, 0, len(val))
		for _, item := range val {
			role, err := cast.ToStringE(item)
			if err != nil {
				return nil, fmt.Errorf("config: EVENT_ROLES entry %v: %w", item, err)
			}
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		return roles, nil
	default:
		return nil, fmt.Errorf("config: EVENT_ROLES must be a list or a comma separated string, got %T", raw)
	}
}

// IsDevelopment reports whether logs should be human-readable.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// UsesMemoryStore reports whether DATABASE_URL selects the in-process store.
func (c *Config) UsesMemoryStore() bool {
	return c.DatabaseURL == MemoryDatabaseURL
}

// validate applies every rule on the loaded configuration.
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: TOKEN is required")
	}
	if err := requireSnowflake("EVENT_CHANNEL_ID", c.EventChannelID); err != nil {
		return err
	}
	if c.GuildID != "" {
		if err := requireSnowflake("GUILD_ID", c.GuildID); err != nil {
			return err
		}
	}
	for _, role := range c.EventRoles {
		if err := requireSnowflake("EVENT_ROLES", role); err != nil {
			return err
		}
	}

	loc, err := tz.Load(c.EventTimezone)
	if err != nil {
		return fmt.Errorf("config: EVENT_TIMEZONE: %w", err)
	}
	c.Location = loc

	if c.DefaultThumbnailURL != "" {
		u, err := url.Parse(c.DefaultThumbnailURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: DEFAULT_THUMBNAIL_URL must be an absolute http(s) URL (%q)", c.DefaultThumbnailURL)
		}
	}

	if c.SweepInterval < time.Second {
		return fmt.Errorf("config: SWEEP_INTERVAL must be at least 1s (got %s)", c.SweepInterval)
	}
	if c.SchedulerWorkers < 1 {
		return fmt.Errorf("config: SCHEDULER_WORKERS must be at least 1 (got %d)", c.SchedulerWorkers)
	}

	return c.ValidateDatabase()
}

// ValidateDatabase checks DATABASE_URL alone, defaulting it when empty.
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		c.DatabaseURL = defaultDatabaseURL
	}
	if c.UsesMemoryStore() {
		return nil
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
	}
	return nil
}

func requireSnowflake(name, value string) error {
	if value == "" {
		return fmt.Errorf("config: %s is required", name)
	}
	if !pkgdiscord.IsSnowflake(value) {
		return fmt.Errorf("config: %s must be a Discord ID (up to 20 digits), got %q", name, value)
	}
	return nil
}
