// Package pipeline drives the per-file conversion state machine: a
// fixed sequence of external tool invocations turning a Profile 7
// BL+EL+RPU container into a Profile 8.1 BL+RPU one. Stages run
// strictly in order; any mandatory stage failure aborts the whole batch
// (fail fast across files, not just within one). There are no retries
// and no timeouts: the tools are trusted local binaries.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dovimux/internal/fileutil"
	"dovimux/internal/history"
	"dovimux/internal/ledger"
	"dovimux/internal/logging"
	"dovimux/internal/naming"
	"dovimux/internal/services"
	"dovimux/internal/services/mkvtool"
	"dovimux/internal/settings"
)

// SmallELThreshold separates a genuine Profile 7 enhancement layer from
// a Profile 8-like small one whose RPU may carry newer metadata worth
// archiving. The boundary is a heuristic inherited from field use, not
// a guarantee; treat it as tunable.
const SmallELThreshold int64 = 10_000_000

// lockName is the per-directory lock guarding against two concurrent
// runs interleaving their intermediates.
const lockName = ".dovimux.lock"

// Outcome is the terminal state of one conversion job.
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Job is one pipeline run for one source container.
type Job struct {
	ID         string
	Source     string
	Artifacts  naming.Artifacts
	Outcome    Outcome
	Output     string // final container, set only on success
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewJob prepares a job for a source file.
func NewJob(source string) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Source:    source,
		Artifacts: naming.For(source),
	}
}

// DoviClient is the dovi_tool surface the pipeline needs.
type DoviClient interface {
	DemuxEL(ctx context.Context, combined, archival string) error
	ExtractRPU(ctx context.Context, stream, rpu string) error
	Plot(ctx context.Context, rpu, title, image string) error
	Convert(ctx context.Context, combined, converted string, dropCMv4 bool) error
}

// MKVClient is the MKVToolNix surface the pipeline needs.
type MKVClient interface {
	ExtractTrack(ctx context.Context, container string, track int, out string) error
	Remux(ctx context.Context, spec mkvtool.RemuxSpec) error
}

// Runner executes conversion jobs sequentially.
type Runner struct {
	Dovi     DoviClient
	MKV      MKVClient
	Settings settings.Effective
	Logger   *slog.Logger
	History  *history.Store // optional journal; nil disables it
}

// Run converts every source in order, stopping at the first failure.
// The returned ledger lists the sources that completed before the run
// ended, whether it ended by exhaustion or by failure.
func (r *Runner) Run(ctx context.Context, dir string, sources []string) (*ledger.Ledger, error) {
	logger := r.logger()
	completed := &ledger.Ledger{}
	if len(sources) == 0 {
		return completed, nil
	}

	lock := flock.New(filepath.Join(dir, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return completed, services.Wrap(services.ErrPreflight, "lock", "", "acquire directory lock", err)
	}
	if !locked {
		return completed, services.Wrap(services.ErrPreflight, "lock", "", "another run is active in "+dir, nil)
	}
	defer lock.Unlock()

	for _, source := range sources {
		job := NewJob(source)
		logger.Info("converting",
			logging.String("job", job.ID),
			logging.String("source", source),
		)
		err := r.runJob(ctx, job)
		r.journal(ctx, job)
		if err != nil {
			logger.Error("conversion failed",
				logging.String("job", job.ID),
				logging.String("source", source),
				logging.Error(err),
			)
			return completed, err
		}
		completed.Add(source)
		logger.Info("conversion complete",
			logging.String("job", job.ID),
			logging.String("output", job.Output),
		)
	}
	return completed, nil
}

// runJob walks the ten stages for one file. Stage numbering matches the
// operator-facing documentation.
func (r *Runner) runJob(ctx context.Context, job *Job) error {
	logger := r.logger()
	job.StartedAt = time.Now()
	defer func() { job.FinishedAt = time.Now() }()
	art := job.Artifacts
	keep := r.Settings.KeepWorkingFiles

	fail := func(err error) error {
		job.Outcome = Failed
		return err
	}

	// 1. Extract the combined BL+EL+RPU stream from track 0.
	if err := r.MKV.ExtractTrack(ctx, job.Source, 0, art.Combined); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "extract", "mkvextract", "demux video track", err))
	}
	if !fileutil.Exists(art.Combined) {
		return fail(services.Wrap(services.ErrOutputMissing, "extract", "", art.Combined, nil))
	}

	// 2. Archive the enhancement layer so Profile 7 can be rebuilt later.
	if err := r.Dovi.DemuxEL(ctx, art.Combined, art.ArchivalEL); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "archive-el", "dovi_tool demux", "archive enhancement layer", err))
	}
	if !fileutil.Exists(art.ArchivalEL) {
		return fail(services.Wrap(services.ErrOutputMissing, "archive-el", "", art.ArchivalEL, nil))
	}

	// 3. A small enhancement layer means the source was already
	// Profile 8-like; its RPU may use a newer metadata version, so
	// archive it for review. Best effort only.
	if size, err := fileutil.Size(art.ArchivalEL); err == nil && size < SmallELThreshold {
		r.archiveOriginalRPU(ctx, job)
	}

	// 4. Convert to Profile 8.1, discarding the enhancement layer.
	dropCMv4 := r.Settings.MetadataPolicy == settings.CMv29
	if err := r.Dovi.Convert(ctx, art.Combined, art.Converted, dropCMv4); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "convert", "dovi_tool convert", "profile conversion", err))
	}
	if !fileutil.Exists(art.Converted) {
		return fail(services.Wrap(services.ErrOutputMissing, "convert", "", art.Converted, nil))
	}

	// 5. The combined stream is no longer needed.
	if !keep {
		if err := fileutil.Remove(art.Combined); err != nil {
			logger.Warn("cleanup failed", logging.String("path", art.Combined), logging.Error(err))
		}
	}

	// 6. Extract the converted RPU.
	if err := r.Dovi.ExtractRPU(ctx, art.Converted, art.FinalRPU); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "extract-rpu", "dovi_tool extract-rpu", "extract converted RPU", err))
	}
	if !fileutil.Exists(art.FinalRPU) {
		return fail(services.Wrap(services.ErrOutputMissing, "extract-rpu", "", art.FinalRPU, nil))
	}

	// 7. Plot the converted L1 metadata. This is a review artifact and
	// is produced regardless of the keep-working-files policy.
	if err := r.Dovi.Plot(ctx, art.FinalRPU, plotTitle(job.Source), art.FinalPlot); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "plot", "dovi_tool plot", "plot converted L1 metadata", err))
	}

	// 8. Remux the converted stream with the source's non-video tracks.
	spec := mkvtool.RemuxSpec{
		Output:    art.Output,
		Video:     art.Converted,
		Source:    job.Source,
		Languages: r.Settings.LanguageFilter,
	}
	if err := r.MKV.Remux(ctx, spec); err != nil {
		return fail(services.Wrap(services.ErrExternalTool, "remux", "mkvmerge", "remux output container", err))
	}

	// 9. Drop the remaining working files.
	if !keep {
		if err := fileutil.RemoveAllOf(art.Converted, art.FinalRPU); err != nil {
			logger.Warn("cleanup failed", logging.Error(err))
		}
	}

	// 10. Success is confirmed only by the output existing on disk.
	if !fileutil.Exists(art.Output) {
		return fail(services.Wrap(services.ErrOutputMissing, "finalize", "", art.Output, nil))
	}
	job.Outcome = Succeeded
	job.Output = art.Output
	return nil
}

// archiveOriginalRPU extracts and plots the source RPU. Failures here
// never abort the run; the archive is a nicety, not a contract.
func (r *Runner) archiveOriginalRPU(ctx context.Context, job *Job) {
	logger := r.logger()
	art := job.Artifacts
	if err := r.Dovi.ExtractRPU(ctx, art.Combined, art.SourceRPU); err != nil {
		logger.Warn("archive original RPU failed", logging.String("job", job.ID), logging.Error(err))
		return
	}
	if err := r.Dovi.Plot(ctx, art.SourceRPU, plotTitle(job.Source), art.SourcePlot); err != nil {
		logger.Warn("plot original RPU failed", logging.String("job", job.ID), logging.Error(err))
	}
}

func (r *Runner) journal(ctx context.Context, job *Job) {
	if r.History == nil {
		return
	}
	entry := history.Entry{
		JobID:          job.ID,
		Source:         job.Source,
		Output:         job.Output,
		MetadataPolicy: r.Settings.MetadataPolicy.String(),
		Status:         job.Outcome.String(),
		StartedAt:      job.StartedAt,
		FinishedAt:     job.FinishedAt,
	}
	if err := r.History.Record(ctx, entry); err != nil {
		r.logger().Warn("history journal failed", logging.String("job", job.ID), logging.Error(err))
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.NewNop()
}

func plotTitle(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s L1", base)
}
