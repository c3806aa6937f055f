// Package scan enumerates container files directly under a target
// directory (no recursion), classifies each one, and partitions them
// into a review listing plus the candidate set the conversion pipeline
// consumes. Output ordering is deterministic so repeated scans of an
// unchanged directory render identically.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dovimux/internal/classify"
	"dovimux/internal/naming"
)

// Status labels for the scan listing.
const (
	StatusCandidate = "not yet converted"
	StatusConverted = "converted"
	StatusOriginal  = "DV8 original"
	StatusOrphaned  = "orphaned conversion"
	StatusNoDV      = "no Dolby Vision"
)

// Entry is one top-level row of the scan listing.
type Entry struct {
	Result   classify.Result
	Status   string
	Children []string // converted siblings rendered as child lines
}

// Report is the full outcome of one directory scan.
type Report struct {
	Dir        string
	Entries    []Entry
	Candidates []string // DV7 sources without a converted sibling
}

// Run scans dir, classifying every .mkv directly inside it. Converted
// outputs whose parent source is still present are folded under the
// parent instead of listed at top level; outputs whose parent is gone
// surface as orphaned.
func Run(ctx context.Context, dir string, inspector classify.Inspector) (Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mkv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}

	report := Report{Dir: dir}
	for _, name := range names {
		path := filepath.Join(dir, name)

		if naming.IsConvertedOutput(name) {
			parent := naming.SourceForOutput(name)
			if _, ok := present[parent]; ok {
				continue // shown as a child line under the parent
			}
			result, err := classify.Classify(ctx, inspector, path)
			if err != nil {
				return Report{}, fmt.Errorf("classify %s: %w", name, err)
			}
			report.Entries = append(report.Entries, Entry{Result: result, Status: StatusOrphaned})
			continue
		}

		result, err := classify.Classify(ctx, inspector, path)
		if err != nil {
			return Report{}, fmt.Errorf("classify %s: %w", name, err)
		}

		entry := Entry{Result: result}
		switch result.Profile {
		case classify.ProfileDV7:
			if result.HasConvertedSibling {
				entry.Status = StatusConverted
				entry.Children = append(entry.Children, filepath.Base(naming.For(name).Output))
			} else {
				entry.Status = StatusCandidate
				report.Candidates = append(report.Candidates, path)
			}
		case classify.ProfileDV8:
			entry.Status = StatusOriginal
		default:
			entry.Status = StatusNoDV
		}
		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}
