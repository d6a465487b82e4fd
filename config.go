package winloop

import (
	"fmt"
	"strings"

	"github.com/joeycumines/logiface"
)

const (
	// EnvBackend names the environment variable that selects a registered
	// backend. An unknown value is fatal.
	EnvBackend = "WINLOOP_BACKEND"

	// EnvLogLevel names the environment variable that, when set to a level
	// keyword (e.g. "debug", "info", "warning", "err"), enables logging to
	// stderr, unless a logger was provided using [WithLogger].
	EnvLogLevel = "WINLOOP_LOG_LEVEL"
)

// envConfig models the environment variables read by Build.
type envConfig struct {
	backend     string
	logLevel    logiface.Level
	logLevelSet bool
}

func loadEnvConfig(getenv func(string) string) (envConfig, error) {
	cfg := envConfig{backend: strings.TrimSpace(getenv(EnvBackend))}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return envConfig{}, fmt.Errorf("winloop: %s: %w", EnvLogLevel, err)
		}
		cfg.logLevel = level
		cfg.logLevelSet = true
	}
	return cfg, nil
}

// ParseLevel parses a logiface level from its keyword, as returned by
// [logiface.Level.String], case insensitively. The deprecated syslog
// keywords "error", "warn" and "panic" are also accepted.
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return logiface.LevelError, nil
	case "warn":
		return logiface.LevelWarning, nil
	case "panic":
		return logiface.LevelEmergency, nil
	}
	for level := logiface.LevelDisabled; level <= logiface.LevelTrace; level++ {
		if strings.EqualFold(level.String(), s) {
			return level, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", s)
}
