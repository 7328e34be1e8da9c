// Package logger builds the *slog.Logger values used across neat. Packages
// only ever see *slog.Logger; the handler choice stays here.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// format selects the handler behind a logger.
type format int

const (
	formatText format = iota
	formatPretty
	formatJSON
)

type config struct {
	level  slog.Level
	format format
	source bool
	w      io.Writer
}

// Option configures New.
type Option func(*config)

// WithDebug lowers the level to Debug.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty uses charmbracelet/log for terminal output. It is ignored when
// WithJSON is also set.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		if pretty && c.format != formatJSON {
			c.format = formatPretty
		}
	}
}

// WithJSON writes one JSON object per record.
func WithJSON(json bool) Option {
	return func(c *config) {
		switch {
		case json:
			c.format = formatJSON
		case c.format == formatJSON:
			c.format = formatText
		}
	}
}

// WithWriter sets the destination. The default is os.Stderr, which keeps
// records out of the chat transcript on stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

// WithSource adds the caller's file:line to every record.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}

// New returns a logger for opts. Without options it writes slog text at Info
// to os.Stderr.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, w: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := &slog.HandlerOptions{Level: c.level, AddSource: c.source}

	var h slog.Handler
	switch c.format {
	case formatJSON:
		h = slog.NewJSONHandler(c.w, handlerOpts)
	case formatPretty:
		h = charmlog.NewWithOptions(c.w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})
	default:
		h = slog.NewTextHandler(c.w, handlerOpts)
	}

	return slog.New(h)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
