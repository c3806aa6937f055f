package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"dovimux/internal/fileutil"
	"dovimux/internal/pipeline"
	"dovimux/internal/services"
	"dovimux/internal/services/mkvtool"
	"dovimux/internal/settings"
)

// fakeTools implements both tool clients, creating the declared outputs
// on disk the way the real binaries would.
type fakeTools struct {
	t              *testing.T
	calls          []string
	elSize         int64
	failConvert    bool
	failSourceRPU  bool // fail ExtractRPU only for the combined stream
	skipRemuxWrite bool
}

func (f *fakeTools) write(path string, size int64) {
	f.t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fakeTools) ExtractTrack(_ context.Context, container string, track int, out string) error {
	f.calls = append(f.calls, "extract")
	f.write(out, 64)
	return nil
}

func (f *fakeTools) DemuxEL(_ context.Context, combined, archival string) error {
	f.calls = append(f.calls, "demux-el")
	f.write(archival, f.elSize)
	return nil
}

func (f *fakeTools) ExtractRPU(_ context.Context, stream, rpu string) error {
	if strings.HasSuffix(stream, ".BL_EL_RPU.hevc") {
		f.calls = append(f.calls, "extract-source-rpu")
		if f.failSourceRPU {
			return errors.New("exit status 1")
		}
	} else {
		f.calls = append(f.calls, "extract-final-rpu")
	}
	f.write(rpu, 32)
	return nil
}

func (f *fakeTools) Plot(_ context.Context, rpu, title, image string) error {
	f.calls = append(f.calls, "plot")
	f.write(image, 16)
	return nil
}

func (f *fakeTools) Convert(_ context.Context, combined, converted string, dropCMv4 bool) error {
	f.calls = append(f.calls, "convert")
	if f.failConvert {
		return errors.New("exit status 2")
	}
	f.write(converted, 64)
	return nil
}

func (f *fakeTools) Remux(_ context.Context, spec mkvtool.RemuxSpec) error {
	f.calls = append(f.calls, "remux")
	if !f.skipRemuxWrite {
		f.write(spec.Output, 128)
	}
	return nil
}

func newSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("mkv"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRunner(tools *fakeTools, eff settings.Effective) *pipeline.Runner {
	return &pipeline.Runner{Dovi: tools, MKV: tools, Settings: eff}
}

func TestRunSuccessCleansWorkingFiles(t *testing.T) {
	dir := t.TempDir()
	source := newSource(t, dir, "movie.mkv")
	tools := &fakeTools{t: t, elSize: pipeline.SmallELThreshold}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})

	completed, err := runner.Run(context.Background(), dir, []string{source})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := completed.Sources(); len(got) != 1 || got[0] != source {
		t.Fatalf("ledger: %v", got)
	}

	job := pipeline.NewJob(source)
	art := job.Artifacts
	if !fileutil.Exists(art.Output) {
		t.Fatal("output container missing")
	}
	if !fileutil.Exists(source) {
		t.Fatal("original must survive the pipeline")
	}
	if !fileutil.Exists(art.ArchivalEL) || !fileutil.Exists(art.FinalPlot) {
		t.Fatal("archival and plot artifacts must survive cleanup")
	}
	for _, gone := range []string{art.Combined, art.Converted, art.FinalRPU} {
		if fileutil.Exists(gone) {
			t.Fatalf("working file not cleaned: %s", gone)
		}
	}
	// Large enhancement layer: the optional source RPU stage must not run.
	for _, call := range tools.calls {
		if call == "extract-source-rpu" {
			t.Fatal("optional archive stage ran for a large enhancement layer")
		}
	}
}

func TestKeepWorkingFilesRetainsEverything(t *testing.T) {
	dir := t.TempDir()
	source := newSource(t, dir, "movie.mkv")
	tools := &fakeTools{t: t, elSize: 100} // small EL triggers the optional stage
	runner := newRunner(tools, settings.Effective{TargetDir: dir, KeepWorkingFiles: true})

	if _, err := runner.Run(context.Background(), dir, []string{source}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	art := pipeline.NewJob(source).Artifacts
	for _, path := range []string{
		art.Combined, art.ArchivalEL, art.SourceRPU, art.SourcePlot,
		art.Converted, art.FinalRPU, art.FinalPlot, art.Output,
	} {
		if !fileutil.Exists(path) {
			t.Fatalf("artifact missing with keep-working-files: %s", path)
		}
	}
}

func TestConvertFailureStopsBatch(t *testing.T) {
	dir := t.TempDir()
	first := newSource(t, dir, "alpha.mkv")
	second := newSource(t, dir, "beta.mkv")
	tools := &fakeTools{t: t, elSize: pipeline.SmallELThreshold, failConvert: true}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})

	completed, err := runner.Run(context.Background(), dir, []string{first, second})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !completed.Empty() {
		t.Fatalf("nothing should be recorded: %v", completed.Sources())
	}

	firstArt := pipeline.NewJob(first).Artifacts
	if !fileutil.Exists(firstArt.Combined) || !fileutil.Exists(firstArt.ArchivalEL) {
		t.Fatal("stage 1 and 2 artifacts must remain after a convert failure")
	}
	secondArt := pipeline.NewJob(second).Artifacts
	if fileutil.Exists(secondArt.Combined) {
		t.Fatal("failure must stop subsequent files from being processed")
	}
}

func TestOptionalArchiveFailureDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	source := newSource(t, dir, "movie.mkv")
	tools := &fakeTools{t: t, elSize: 100, failSourceRPU: true}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})

	completed, err := runner.Run(context.Background(), dir, []string{source})
	if err != nil {
		t.Fatalf("optional stage failure must not abort: %v", err)
	}
	if completed.Empty() {
		t.Fatal("conversion should have succeeded")
	}
}

func TestMissingRemuxOutputFails(t *testing.T) {
	dir := t.TempDir()
	source := newSource(t, dir, "movie.mkv")
	tools := &fakeTools{t: t, elSize: pipeline.SmallELThreshold, skipRemuxWrite: true}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})

	_, err := runner.Run(context.Background(), dir, []string{source})
	if !errors.Is(err, services.ErrOutputMissing) {
		t.Fatalf("expected output-missing error, got %v", err)
	}
}

func TestStageOrder(t *testing.T) {
	dir := t.TempDir()
	source := newSource(t, dir, "movie.mkv")
	tools := &fakeTools{t: t, elSize: 100}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})

	if _, err := runner.Run(context.Background(), dir, []string{source}); err != nil {
		t.Fatal(err)
	}
	want := []string{"extract", "demux-el", "extract-source-rpu", "plot", "convert", "extract-final-rpu", "plot", "remux"}
	if strings.Join(tools.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("stage order: %v", tools.calls)
	}
}

func TestDirectoryLockRefusesConcurrentRun(t *testing.T) {
	dir := t.TempDir()
	source := newSource(t, dir, "movie.mkv")

	held := flock.New(filepath.Join(dir, ".dovimux.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("prepare lock: %v", err)
	}
	defer held.Unlock()

	tools := &fakeTools{t: t, elSize: pipeline.SmallELThreshold}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})
	_, err = runner.Run(context.Background(), dir, []string{source})
	if !errors.Is(err, services.ErrPreflight) {
		t.Fatalf("expected lock preflight error, got %v", err)
	}
}

func TestNoSourcesIsCleanNoOp(t *testing.T) {
	dir := t.TempDir()
	tools := &fakeTools{t: t}
	runner := newRunner(tools, settings.Effective{TargetDir: dir})
	completed, err := runner.Run(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !completed.Empty() {
		t.Fatal("ledger should be empty")
	}
	if len(tools.calls) != 0 {
		t.Fatalf("no tools should run: %v", tools.calls)
	}
}
