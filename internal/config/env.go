package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables overriding the [server] section.
const (
	EnvHostname = "UNVEIL_HOSTNAME"
	EnvHTTPPort = "UNVEIL_HTTP_PORT"
	EnvWSPort   = "UNVEIL_WS_PORT"
)

// LoadEnv loads dir/.env into the process environment. Variables already
// set are kept. A missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides server settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvHostname); v != "" {
		c.Server.Hostname = v
	}
	for _, o := range []struct {
		name string
		dst  *int
	}{
		{EnvHTTPPort, &c.Server.HTTPPort},
		{EnvWSPort, &c.Server.WSPort},
	} {
		v := os.Getenv(o.name)
		if v == "" {
			continue
		}
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", o.name, v)
		}
		*o.dst = p
	}
	return nil
}
