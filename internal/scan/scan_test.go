package scan_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dovimux/internal/classify"
	"dovimux/internal/scan"
)

type fakeInspector map[string]string

func (f fakeInspector) VideoHDRProfile(_ context.Context, path string) (string, error) {
	descriptor, ok := f[filepath.Base(path)]
	if !ok {
		return "", nil
	}
	if descriptor == "fail" {
		return "", errors.New("mediainfo unavailable")
	}
	return descriptor, nil
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunPartitionsDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "alpha.mkv")              // DV7 candidate
	touch(t, dir, "beta.mkv")               // DV7 already converted
	touch(t, dir, "beta.DV8.mkv")           // suppressed child
	touch(t, dir, "gamma.mkv")              // DV8 original
	touch(t, dir, "delta.DV8.mkv")          // orphaned output
	touch(t, dir, "plain.mkv")              // no Dolby Vision
	touch(t, dir, "notes.txt")              // ignored
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub"), "nested.mkv") // no recursion

	inspector := fakeInspector{
		"alpha.mkv":     "dvhe.07",
		"beta.mkv":      "dvhe.07",
		"beta.DV8.mkv":  "dvhe.08.06",
		"gamma.mkv":     "dvhe.08.06",
		"delta.DV8.mkv": "dvhe.08.06",
	}

	report, err := scan.Run(context.Background(), dir, inspector)
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Candidates) != 1 || filepath.Base(report.Candidates[0]) != "alpha.mkv" {
		t.Fatalf("candidates: %v", report.Candidates)
	}

	statuses := map[string]string{}
	children := map[string][]string{}
	for _, entry := range report.Entries {
		name := filepath.Base(entry.Result.Path)
		statuses[name] = entry.Status
		children[name] = entry.Children
	}

	if statuses["alpha.mkv"] != scan.StatusCandidate {
		t.Fatalf("alpha status: %q", statuses["alpha.mkv"])
	}
	if statuses["beta.mkv"] != scan.StatusConverted {
		t.Fatalf("beta status: %q", statuses["beta.mkv"])
	}
	if len(children["beta.mkv"]) != 1 || children["beta.mkv"][0] != "beta.DV8.mkv" {
		t.Fatalf("beta children: %v", children["beta.mkv"])
	}
	if _, listed := statuses["beta.DV8.mkv"]; listed {
		t.Fatal("converted sibling must be suppressed from top level")
	}
	if statuses["gamma.mkv"] != scan.StatusOriginal {
		t.Fatalf("gamma status: %q", statuses["gamma.mkv"])
	}
	if statuses["delta.DV8.mkv"] != scan.StatusOrphaned {
		t.Fatalf("delta status: %q", statuses["delta.DV8.mkv"])
	}
	if statuses["plain.mkv"] != scan.StatusNoDV {
		t.Fatalf("plain status: %q", statuses["plain.mkv"])
	}
	if _, listed := statuses["nested.mkv"]; listed {
		t.Fatal("scan must not recurse")
	}
}

func TestRunConvertedOutputsNeverCandidates(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "delta.DV8.mkv")
	inspector := fakeInspector{"delta.DV8.mkv": "dvhe.07"} // even if misclassified as DV7

	report, err := scan.Run(context.Background(), dir, inspector)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Candidates) != 0 {
		t.Fatalf("outputs must never be candidates: %v", report.Candidates)
	}
}

func TestRunPropagatesInspectorFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "alpha.mkv")
	inspector := fakeInspector{"alpha.mkv": "fail"}

	if _, err := scan.Run(context.Background(), dir, inspector); err == nil {
		t.Fatal("expected classification failure to fail the scan")
	}
}

func TestRunSecondScanAfterConversion(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	inspector := fakeInspector{"movie.mkv": "dvhe.07", "movie.DV8.mkv": "dvhe.08.06"}

	report, err := scan.Run(context.Background(), dir, inspector)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("expected one candidate before conversion: %v", report.Candidates)
	}

	touch(t, dir, "movie.DV8.mkv")

	report, err = scan.Run(context.Background(), dir, inspector)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Candidates) != 0 {
		t.Fatalf("expected no candidates after conversion: %v", report.Candidates)
	}
	if report.Entries[0].Status != scan.StatusConverted {
		t.Fatalf("expected converted status, got %q", report.Entries[0].Status)
	}
}

var _ classify.Inspector = fakeInspector{}
