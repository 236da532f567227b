package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/things/internal/slugs"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// SiteConfig locates the catalog on disk. ContentDir and InboxDir are
// relative to Root unless absolute.
type SiteConfig struct {
	Root       string   `yaml:"root"`
	ContentDir string   `yaml:"content_dir"`
	InboxDir   string   `yaml:"inbox_dir"`
	Extension  string   `yaml:"extension"`
	Types      []string `yaml:"types"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.InboxDir, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Match(extPattern)),
		validation.Field(&c.Types, validation.Required, validation.Each(validation.By(isTypeName))),
	)
}

// ContentPath returns the structured content root.
func (c *SiteConfig) ContentPath() string { return c.join(c.ContentDir) }

// InboxPath returns the inbox root.
func (c *SiteConfig) InboxPath() string { return c.join(c.InboxDir) }

func (c *SiteConfig) join(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Root, dir)
}

func isTypeName(v any) error {
	s, _ := v.(string)
	if s == "" || !slugs.Valid(s) || filepath.Base(s) != s {
		return fmt.Errorf("%q is not a valid content type", s)
	}
	return nil
}

// SQLiteConfig holds the search index database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EventsConfig holds the change stream configuration. Throttle bounds how
// often catalog.updated is sent; KeepAlive is the idle comment interval
// (zero disables it).
type EventsConfig struct {
	Throttle  time.Duration `yaml:"throttle"`
	KeepAlive time.Duration `yaml:"keep_alive"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
		validation.Field(&c.KeepAlive, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 4322,
			},
		},
		Site: SiteConfig{
			Root:       ".",
			ContentDir: "src/content",
			InboxDir:   "src/data/inbox",
			Extension:  ".mdx",
			Types:      []string{"movies", "people", "projects", "shows", "tools"},
		},
		SQLite: SQLiteConfig{
			Path: "./things.db",
		},
		Events: EventsConfig{
			Throttle:  2 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}
}
