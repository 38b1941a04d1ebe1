// Package observability provides structured logging, sync metrics, and
// health reporting for calsync.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig configures a logger.
type LogConfig struct {
	Level slog.Level
	// JSON selects the JSON handler. The default is text.
	JSON bool
	// Output defaults to os.Stderr.
	Output    io.Writer
	AddSource bool
	// Service and Version are attached to every record when set.
	Service string
	Version string
}

// CLILogConfig is the interactive default: warnings and up, as text.
func CLILogConfig(version string) LogConfig {
	return LogConfig{
		Level:   slog.LevelWarn,
		Output:  os.Stderr,
		Service: "calsync",
		Version: version,
	}
}

// DaemonLogConfig is the syncd default: info and up, as JSON on stdout.
func DaemonLogConfig(version string) LogConfig {
	return LogConfig{
		Level:     slog.LevelInfo,
		JSON:      true,
		Output:    os.Stdout,
		AddSource: true,
		Service:   "calsync-syncd",
		Version:   version,
	}
}

// Override applies a level and format name on top of c. Empty names keep
// the current value.
func (c LogConfig) Override(level, format string) LogConfig {
	if level != "" {
		c.Level = ParseLevel(level)
	}
	switch strings.ToLower(format) {
	case "json":
		c.JSON = true
	case "text":
		c.JSON = false
	}
	return c
}

// NewLogger builds a logger that also records the correlation id,
// operation and provider carried by the context.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	var attrs []slog.Attr
	if cfg.Service != "" {
		attrs = append(attrs, slog.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}
	return slog.New(scopeHandler{h})
}

// ParseLevel maps a level name onto slog. Unknown names become info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type scopeHandler struct {
	slog.Handler
}

func (h scopeHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := scopeFrom(ctx)
	for _, kv := range [...][2]string{
		{CorrelationIDKey, sc.correlationID},
		{OperationKey, sc.operation},
		{ProviderKey, sc.provider},
	} {
		if kv[1] != "" {
			r.AddAttrs(slog.String(kv[0], kv[1]))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h scopeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return scopeHandler{h.Handler.WithAttrs(attrs)}
}

func (h scopeHandler) WithGroup(name string) slog.Handler {
	return scopeHandler{h.Handler.WithGroup(name)}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
