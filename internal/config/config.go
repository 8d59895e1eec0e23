// Package config loads bot settings from the environment. A .env file in the
// working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/keshon/motortown-bot/internal/identity"
)

var (
	ErrMissingToken   = errors.New("DISCORD_TOKEN is not set")
	ErrMissingAPIHost = errors.New("API_HOST is not set")
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	ClientID     string `env:"CLIENT_ID"`
	BotNickname  string `env:"BOT_NICKNAME"`
	BotActivity  string `env:"BOT_ACTIVITY" envDefault:"Motortown"`
	Prefix       string `env:"COMMAND_PREFIX" envDefault:"!!"`

	APIHost     string        `env:"API_HOST"`
	APIPort     int           `env:"API_PORT" envDefault:"8080"`
	APIPassword string        `env:"API_PASSWORD"`
	APITimeout  time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// AdminIDs seeds the admin set. Blank entries are dropped.
	AdminIDs      []string `env:"ADMIN_USER_IDS" envSeparator:","`
	PlayerMapping string   `env:"PLAYER_MAPPING"`

	JoinServerName     string `env:"JOIN_SERVER_NAME" envDefault:"Bjs Town"`
	JoinServerPassword string `env:"JOIN_SERVER_PASSWORD" envDefault:"jerry"`

	// DirectoryCacheTTL is how long fetched Discord users are reused; zero disables caching.
	DirectoryCacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"5m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// LoadDotEnv reads .env into the process environment. It reports whether a
// file was found; a missing file is not an error.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// New parses the current environment.
func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// FromMap parses settings from an explicit variable set instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.DiscordToken = strings.TrimSpace(c.DiscordToken)
	c.APIHost = strings.TrimRight(strings.TrimSpace(c.APIHost), "/")
	ids := make([]string, 0, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	c.AdminIDs = ids
	if c.Prefix == "" {
		c.Prefix = "!!"
	}
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DiscordToken == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.APIHost == "" {
		errs = append(errs, ErrMissingAPIHost)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("API_PORT %d is out of range", c.APIPort))
	}
	return errors.Join(errs...)
}

// BaseURL is the game API address. API_HOST may carry a scheme; plain http is assumed otherwise.
func (c *Config) BaseURL() string {
	host := c.APIHost
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return fmt.Sprintf("%s:%d", host, c.APIPort)
}

// MappingTable parses PLAYER_MAPPING.
func (c *Config) MappingTable() *identity.Table {
	return identity.ParseTable(c.PlayerMapping)
}
