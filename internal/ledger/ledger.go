// Package ledger accumulates the source files whose conversion
// succeeded during the current run. It backs the single end-of-run
// offer to delete originals: deletion is batch-wide and interactive,
// never per-file and never mid-pipeline.
package ledger

import (
	"errors"
	"log/slog"
	"os"

	"dovimux/internal/fileutil"
	"dovimux/internal/logging"
)

// Ledger is the ordered list of successfully converted source paths.
type Ledger struct {
	sources []string
}

// Add records a source whose conversion reached a confirmed success.
func (l *Ledger) Add(source string) {
	l.sources = append(l.sources, source)
}

// Sources returns the recorded paths in completion order.
func (l *Ledger) Sources() []string {
	return append([]string(nil), l.sources...)
}

// Empty reports whether any conversion succeeded this run.
func (l *Ledger) Empty() bool {
	return len(l.sources) == 0
}

// DeleteOriginals removes each still-existing recorded source, logging
// every deletion. Files already gone are skipped silently; failures are
// collected so one stubborn file does not stop the rest.
func (l *Ledger) DeleteOriginals(logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	var errs []error
	for _, source := range l.sources {
		if !fileutil.Exists(source) {
			continue
		}
		if err := os.Remove(source); err != nil {
			logger.Error("delete original failed", logging.String("path", source), logging.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Info("deleted original", logging.String("path", source))
	}
	return errors.Join(errs...)
}
