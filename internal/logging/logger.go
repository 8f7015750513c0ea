// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package logging builds the zerolog root logger for Reelrank.
//
// The process owns a single root logger created by New at startup.
// Components receive child loggers from it rather than reaching for a
// package-level instance:
//
//	logger := logging.New(cfg)
//	engine := recommend.NewEngine(deps, logger)
//
// and derive their own component field internally:
//
//	logger.With().Str("component", "engine").Logger()
//
// The HTTP layer additionally scopes a logger per request and carries it
// through the request context, see ContextWithLogger and LoggerFromContext.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error,
	// fatal, panic, disabled.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console. Console output is
	// human-readable and intended for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`

	// Output is the writer for log output. Not configurable from files
	// or the environment.
	// Default: os.Stderr
	Output io.Writer `koanf:"-"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Caller: false,
	}
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown format %q (want json or console)", c.Format)
	}
	return nil
}

// fieldNamesOnce guards the package-level zerolog field configuration.
// The values are process-wide in zerolog, so they are set exactly once
// no matter how many loggers New builds.
var fieldNamesOnce sync.Once

func setFieldNames() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.ErrorFieldName = "error"
	zerolog.CallerFieldName = "caller"
}

// New builds a root logger from the configuration. Empty fields fall
// back to defaults, so the zero Config produces a working info-level
// JSON logger on stderr.
//
// The level is set on the returned instance rather than through
// zerolog.SetGlobalLevel, so test loggers and the root logger never
// influence each other.
func New(cfg Config) zerolog.Logger {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	fieldNamesOnce.Do(setFieldNames)

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	logger := zerolog.New(output).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	if cfg.Caller {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
