package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nao1215/tallyfetch/internal/model"
)

// Environment variables overriding the configuration file.
const (
	EnvTimeout     = "TALLYFETCH_TIMEOUT"
	EnvConcurrency = "TALLYFETCH_CONCURRENCY"
	EnvProxy       = "TALLYFETCH_PROXY"
)

// SourceURLEnv returns the environment variable overriding the URL of
// format f, e.g. TALLYFETCH_CSV_URL.
func SourceURLEnv(f model.Format) string {
	return "TALLYFETCH_" + strings.ToUpper(string(f)) + "_URL"
}

// DefaultEnvFile is the dotenv file read from the current directory.
const DefaultEnvFile = ".env"

// LoadEnv loads an optional .env file from the current directory and
// applies the process environment to cfg. Variables already set in the
// environment take precedence over the .env file.
func LoadEnv(cfg *Config) error {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return err
	}
	return ApplyEnv(cfg, os.Getenv)
}

// loadEnvFile loads path into the process environment. A missing file is
// not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return wrapf(ErrInvalidEnv, "%s: %v", path, err)
	}
	return nil
}

// ApplyEnv applies overrides read through getenv to cfg. Unset or empty
// variables are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return wrapf(ErrInvalidEnv, "%s=%q", EnvTimeout, v)
		}
		cfg.Timeout = d
	}

	if v := getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return wrapf(ErrInvalidEnv, "%s=%q", EnvConcurrency, v)
		}
		cfg.Concurrency = n
	}

	if v := getenv(EnvProxy); v != "" {
		cfg.ProxyAddress = v
	}

	for i := range cfg.Sources {
		if v := getenv(SourceURLEnv(cfg.Sources[i].Format)); v != "" {
			cfg.Sources[i].URL = v
		}
	}

	return nil
}

// parseTimeout accepts a Go duration ("90s") or a number of seconds ("90").
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
