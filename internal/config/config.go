// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"automsr/internal/prizes"
	"automsr/internal/search"
	"automsr/internal/storage"
)

// Skip names a step family that a run leaves out.
type Skip string

const (
	SkipActivities Skip = "activities"
	SkipPunchcards Skip = "punchcards"
	SkipSearches   Skip = "searches"
	SkipAll        Skip = "all"
)

func (s Skip) valid() bool {
	switch s {
	case SkipActivities, SkipPunchcards, SkipSearches, SkipAll:
		return true
	}
	return false
}

// Profile is one account to run: its login email and the Chrome profile
// directory already authenticated for it.
type Profile struct {
	Email      string `yaml:"email"`
	ProfileDir string `yaml:"profile_dir"`
	Skips      []Skip `yaml:"skips"`
}

// Selenium configures the WebDriver session.
type Selenium struct {
	ServerURL    string `yaml:"server_url"`
	ChromeBinary string `yaml:"chrome_binary"`
	Headless     bool   `yaml:"headless"`
}

// Email configures the end-of-run report mail.
type Email struct {
	Enable    bool   `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient"`
}

// Config is the root of the YAML file.
type Config struct {
	Version   string      `yaml:"version"`
	DBPath    string      `yaml:"db_path"`
	LedgerDir string      `yaml:"ledger_dir"`
	Retries   int         `yaml:"retries"`
	Reverse   bool        `yaml:"reverse"`
	Search    search.Kind `yaml:"search"`
	Skips     []Skip      `yaml:"skips"`
	Prizes    []string    `yaml:"prizes"`
	Selenium  Selenium    `yaml:"selenium"`
	Email     Email       `yaml:"email"`
	Profiles  []Profile   `yaml:"profiles"`
}

const (
	defaultVersion = "v1"
	defaultRetries = 3
)

// Load reads, decodes and validates the config at path. Unknown YAML keys
// are rejected, they are almost always typos.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = defaultVersion
	}
	if c.DBPath == "" {
		if path, err := storage.DefaultDBPath(); err == nil {
			c.DBPath = path
		}
	}
	if c.LedgerDir == "" {
		c.LedgerDir = os.TempDir()
	}
	if c.Retries == 0 {
		c.Retries = defaultRetries
	}
}

// Validate checks the decoded config for values no run could work with.
func (c *Config) Validate() error {
	if c.Version != defaultVersion {
		return fmt.Errorf("unsupported config version %q", c.Version)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be positive, got %d", c.Retries)
	}
	if _, err := search.New(c.Search); err != nil {
		return err
	}
	if _, err := prizes.ParseMask(c.Prizes); err != nil {
		return err
	}
	if err := validSkips(c.Skips); err != nil {
		return err
	}

	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles configured")
	}
	for i, p := range c.Profiles {
		if !strings.Contains(p.Email, "@") {
			return fmt.Errorf("profile %d: %q is not an email address", i, p.Email)
		}
		if p.ProfileDir == "" {
			return fmt.Errorf("profile %d (%s): profile_dir is required", i, p.Email)
		}
		if err := validSkips(p.Skips); err != nil {
			return fmt.Errorf("profile %d (%s): %w", i, p.Email, err)
		}
	}

	if c.Email.Enable {
		if c.Email.Host == "" || c.Email.Port == 0 {
			return fmt.Errorf("email enabled without host and port")
		}
		for _, addr := range []string{c.Email.Sender, c.Email.Recipient} {
			if !strings.Contains(addr, "@") {
				return fmt.Errorf("email: %q is not an email address", addr)
			}
		}
	}
	return nil
}

func validSkips(skips []Skip) error {
	for _, s := range skips {
		if !s.valid() {
			return fmt.Errorf("unknown skip %q", s)
		}
	}
	return nil
}

// Skipped reports whether a profile run leaves out a step family, merging
// the global skips with the profile's own.
func (c *Config) Skipped(p Profile, skip Skip) bool {
	for _, s := range append(append([]Skip(nil), c.Skips...), p.Skips...) {
		if s == skip || s == SkipAll {
			return true
		}
	}
	return false
}
