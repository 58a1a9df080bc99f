// Package config builds the pipeline configuration from the environment.
// The config is constructed once at process start and passed into the
// fetcher and denormalizer explicitly; nothing below main reads the
// environment directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvToken    = "BASEROW_TOKEN"
	EnvBaseURL  = "BASEROW_BASE_URL"
	EnvPageSize = "BASEROW_PAGE_SIZE"
	EnvOutput   = "BASEROW_OUTPUT_DIR"
	EnvWebDir   = "BASEROW_WEB_DIR"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultBaseURL     = "https://api.baserow.io"
	DefaultPageSize    = 100
	DefaultSnapshotDir = "data/snapshots"
	DefaultWebDir      = "data/web"
)

// ErrMissingToken means the API token required by the fetch stage is
// not configured. It is checked before any network call is made; the
// process stage works from files alone and never needs it.
var ErrMissingToken = errors.New("config: " + EnvToken + " is not set")

// Table identifies one remote Baserow table.
type Table struct {
	Name string
	ID   int64
}

// Tables is the fixed set of tables the pipeline operates on, in
// processing order. The name→id mapping is static.
var Tables = []Table{
	{Name: "companies", ID: 813469},
	{Name: "tools", ID: 813470},
	{Name: "libraries", ID: 813471},
}

// Config carries everything the two pipeline stages need.
type Config struct {
	Token       string
	BaseURL     string
	PageSize    int
	SnapshotDir string
	WebDir      string
}

// FromEnv reads the configuration from the environment, applying
// defaults for everything except the token.
func FromEnv() (Config, error) {
	cfg := Config{
		Token:       os.Getenv(EnvToken),
		BaseURL:     envOr(EnvBaseURL, DefaultBaseURL),
		PageSize:    DefaultPageSize,
		SnapshotDir: envOr(EnvOutput, DefaultSnapshotDir),
		WebDir:      envOr(EnvWebDir, DefaultWebDir),
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: invalid %s %q", EnvPageSize, v)
		}
		cfg.PageSize = n
	}

	return cfg, nil
}

// RequireToken is the fetch-stage pre-flight check.
func (c Config) RequireToken() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
