package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgconfig "github.com/starford/things/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if got := cfg.Site.ContentPath(); got != filepath.Join("src", "content") {
		t.Errorf("ContentPath = %q", got)
	}
}

func TestSiteConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SiteConfig)
	}{
		{"no types", func(c *SiteConfig) { c.Types = nil }},
		{"nested type", func(c *SiteConfig) { c.Types = []string{"movies/old"} }},
		{"uppercase type", func(c *SiteConfig) { c.Types = []string{"Movies"} }},
		{"extension without dot", func(c *SiteConfig) { c.Extension = "mdx" }},
		{"empty content dir", func(c *SiteConfig) { c.ContentDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg.Site)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSiteConfig_AbsoluteDirs(t *testing.T) {
	abs := t.TempDir()
	c := SiteConfig{Root: "/srv/site", ContentDir: abs, InboxDir: "inbox"}
	if c.ContentPath() != abs {
		t.Errorf("ContentPath = %q, want %q", c.ContentPath(), abs)
	}
	if c.InboxPath() != filepath.Join("/srv/site", "inbox") {
		t.Errorf("InboxPath = %q", c.InboxPath())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("THINGS_TEST_ROOT", "/srv/site")
	data := "app:\n  log_level: debug\n  http:\n    port: 9000\nsite:\n  root: ${THINGS_TEST_ROOT}\n  types: [books]\nevents:\n  throttle: 500ms\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9000 || cfg.Site.Root != "/srv/site" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Site.Types) != 1 || cfg.Site.Types[0] != "books" {
		t.Errorf("types = %v", cfg.Site.Types)
	}
	if cfg.Events.Throttle != 500*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.Throttle)
	}
	if cfg.Site.Extension != ".mdx" {
		t.Errorf("defaults lost: extension = %q", cfg.Site.Extension)
	}
}
