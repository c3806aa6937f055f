package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks a nonzero exit or exec failure from a
	// delegated binary.
	ErrExternalTool = errors.New("external tool error")
	// ErrOutputMissing marks a stage whose tool exited zero but whose
	// declared output file is absent.
	ErrOutputMissing = errors.New("expected output missing")
	// ErrDependency marks a required binary that could not be resolved.
	ErrDependency = errors.New("dependency unavailable")
	// ErrPreflight marks failures detected before any file is touched.
	ErrPreflight = errors.New("preflight failure")
)

// Wrap builds an error message that includes stage context while tagging
// it with the provided marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
