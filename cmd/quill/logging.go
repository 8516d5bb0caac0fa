package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"quill/internal/config"
)

const (
	logLevelEnvKey  = "QUILL_LOG_LEVEL"
	logFormatEnvKey = "QUILL_LOG_FORMAT"
)

// configureLoggerForCLI installs the default slog logger. The level comes
// from the flag, then QUILL_LOG_LEVEL, then the config file. An invalid flag
// is an error; an invalid env or config value falls back with a warning.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	envLevel := os.Getenv(logLevelEnvKey)
	rawLevel, source := selectedLogLevel(flagLevel, envLevel, configLevel)

	level, err := parseLogLevel(rawLevel)
	var warning string
	if err != nil {
		switch source {
		case "flag":
			return "", fmt.Errorf("invalid --log-level %q", flagLevel)
		case "env":
			warning = fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", logLevelEnvKey, envLevel, config.DefaultLogLevel)
		case "config":
			warning = fmt.Sprintf("warning: invalid log_level=%q; defaulting to %s", configLevel, config.DefaultLogLevel)
		}
		level, _ = parseLogLevel("")
	}

	slog.SetDefault(newLogger(os.Stderr, level, os.Getenv(logFormatEnvKey)))
	return warning, nil
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, string) {
	for _, candidate := range []struct{ value, source string }{
		{flagLevel, "flag"},
		{envLevel, "env"},
		{configLevel, "config"},
	} {
		if strings.TrimSpace(candidate.value) != "" {
			return candidate.value, candidate.source
		}
	}
	return "", "default"
}

// parseLogLevel accepts slog level names, "warning" and numeric levels.
// An empty value selects config.DefaultLogLevel.
func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = config.DefaultLogLevel
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

// newLogger writes text records, or JSON when format is "json".
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
