// Package logging wraps log/slog with a console handler tuned for a
// one-shot CLI: short timestamps, level tags, and key=value attrs on a
// single line. Helper constructors mirror the slog.Attr API so call
// sites stay terse.
package logging
