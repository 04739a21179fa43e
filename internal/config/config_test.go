package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automsr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
profiles:
  - email: user@outlook.com
    profile_dir: /home/user/.config/chromium/Profile 1
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, 3, cfg.Retries)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.LedgerDir)
	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, "user@outlook.com", cfg.Profiles[0].Email)
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version: v1
db_path: /tmp/automsr.sqlite
ledger_dir: /tmp/ledgers
retries: 5
reverse: true
search: phrase
skips: [punchcards]
prizes: [donation, gamepass_pc]
selenium:
  server_url: http://localhost:4444/wd/hub
  chrome_binary: /usr/bin/chromium
  headless: true
email:
  enable: true
  host: smtp.example.com
  port: 587
  username: bot
  password: hunter2
  sender: bot@example.com
  recipient: me@example.com
profiles:
  - email: user@outlook.com
    profile_dir: /profiles/one
  - email: other@outlook.com
    profile_dir: /profiles/two
    skips: [searches]
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retries)
	assert.True(t, cfg.Reverse)
	assert.True(t, cfg.Selenium.Headless)
	assert.Equal(t, 587, cfg.Email.Port)
	require.Len(t, cfg.Profiles, 2)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"\ntypo_key: true\n"))
	require.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no profiles", `retries: 3`},
		{"bad email", "profiles:\n  - email: not-an-address\n    profile_dir: /p\n"},
		{"missing profile dir", "profiles:\n  - email: a@b.c\n"},
		{"bad skip", minimalConfig + "skips: [everything]\n"},
		{"bad search kind", minimalConfig + "search: faker\n"},
		{"bad prize kind", minimalConfig + "prizes: [free_money]\n"},
		{"bad version", minimalConfig + "version: v2\n"},
		{"negative retries", minimalConfig + "retries: -1\n"},
		{"email without host", minimalConfig + "email:\n  enable: true\n  sender: a@b.c\n  recipient: a@b.c\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.body))
			assert.Error(t, err)
		})
	}
}

func TestSkipped(t *testing.T) {
	cfg := &Config{
		Skips: []Skip{SkipPunchcards},
		Profiles: []Profile{
			{Email: "a@b.c", ProfileDir: "/p", Skips: []Skip{SkipSearches}},
			{Email: "d@e.f", ProfileDir: "/q"},
		},
	}

	assert.True(t, cfg.Skipped(cfg.Profiles[0], SkipPunchcards))
	assert.True(t, cfg.Skipped(cfg.Profiles[0], SkipSearches))
	assert.False(t, cfg.Skipped(cfg.Profiles[0], SkipActivities))

	assert.True(t, cfg.Skipped(cfg.Profiles[1], SkipPunchcards))
	assert.False(t, cfg.Skipped(cfg.Profiles[1], SkipSearches))

	all := &Config{Skips: []Skip{SkipAll}}
	assert.True(t, all.Skipped(Profile{}, SkipActivities))
	assert.True(t, all.Skipped(Profile{}, SkipSearches))
}
