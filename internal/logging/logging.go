// Package logging configures hakija's charmbracelet/log loggers.
//
// Every logger writes to stderr so that stdout stays free for command
// output such as `hakija draft show --json`. Components take a prefixed
// child of the default logger:
//
//	var logger = logging.New("draft")
//	logger.Info("draft saved", "id", id)
//
// Setup must run before New; children copy the default logger's level and
// formatter when they are created.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// FormatEnv selects the log format when no flag does.
const FormatEnv = "HAKIJA_LOG_FORMAT"

// Format is the log output format.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// ParseFormat parses a format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatLogfmt:
		return f, nil
	default:
		return "", fmt.Errorf("logging: unknown format %q (want text, json or logfmt)", s)
	}
}

// FormatFromEnv reads FormatEnv through lookup, falling back to text for
// unset or unknown values.
func FormatFromEnv(lookup func(string) (string, bool)) Format {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(FormatEnv)
	if !ok {
		return FormatText
	}
	f, err := ParseFormat(v)
	if err != nil {
		return FormatText
	}
	return f
}

// Options configures Setup.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// Quiet raises the level to error and wins over Verbose.
	Quiet bool
	// Format selects the formatter; empty means text.
	Format Format
	// Output overrides stderr.
	Output io.Writer
}

// Setup configures the default logger. Call it once while the CLI starts.
func Setup(opts Options) {
	level := log.InfoLevel
	switch {
	case opts.Quiet:
		level = log.ErrorLevel
	case opts.Verbose:
		level = log.DebugLevel
	}
	log.SetLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	switch opts.Format {
	case FormatJSON:
		log.SetFormatter(log.JSONFormatter)
	case FormatLogfmt:
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.TextFormatter)
	}
	log.SetReportTimestamp(opts.Format == FormatJSON || opts.Format == FormatLogfmt)
}

// New returns a child of the default logger prefixed with component.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// Discard returns a logger that drops everything, for tests and library
// callers that did not ask for logs.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
