package main

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dovimux/internal/classify"
	"dovimux/internal/deps"
	"dovimux/internal/history"
	"dovimux/internal/language"
	"dovimux/internal/logging"
	"dovimux/internal/pipeline"
	"dovimux/internal/prefstore"
	"dovimux/internal/preflight"
	"dovimux/internal/scan"
	"dovimux/internal/services"
	"dovimux/internal/services/dovi"
	"dovimux/internal/services/mkvtool"
	"dovimux/internal/settings"
)

func run(cmd *cobra.Command, flags settings.Flags, verbose bool) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	level := "info"
	if verbose {
		level = "debug"
	}
	logger := logging.New(logging.Options{Level: level, Output: cmd.ErrOrStderr()})

	// Layer 2: the persisted store. Absent or unreadable, the layer is
	// a no-op and defaults stand.
	var stored *settings.Partial
	storePath, pathErr := prefstore.DefaultPath()
	if pathErr == nil {
		loaded, err := prefstore.Load(storePath)
		if err != nil {
			logger.Warn("settings store unreadable, using defaults", logging.Error(err))
		} else {
			stored = loaded
		}
	}
	if stored != nil && stored.LanguageFilter != nil {
		if _, err := language.ParseFilter(*stored.LanguageFilter); err != nil {
			logger.Warn("stored language filter invalid, keeping default", logging.Error(err))
			stored.LanguageFilter = nil
		}
	}

	eff, err := settings.Resolve(stored, flags)
	if err != nil {
		return err
	}

	// Any explicit flag suppresses the interactive settings prompt, as
	// does a persisted dont-ask-again unless --show-settings overrides.
	dontAsk := stored != nil && stored.DontAskAgain != nil && *stored.DontAskAgain
	if interactive() && (eff.ShowSettings || (!eff.Explicit && !dontAsk)) {
		updated, dontAskAgain := promptSettings(in, out, eff)
		eff = updated
		if pathErr == nil {
			if err := prefstore.Save(storePath, eff.AsPartial(dontAskAgain)); err != nil {
				logger.Warn("persist settings failed", logging.Error(err))
			}
		}
	}

	// Fail fast before touching any file.
	if err := preflight.CheckTargetDirectory(eff.TargetDir); err != nil {
		return err
	}
	tools := deps.Resolve(eff.UseSystemTools)
	if err := preflight.VerifyTools(tools); err != nil {
		return err
	}

	ctx := cmd.Context()
	inspector := classify.MediaInfoInspector{Binary: tools.MediaInfo}
	report, err := scan.Run(ctx, eff.TargetDir, inspector)
	if err != nil {
		return err
	}

	if eff.ScanFirst {
		fmt.Fprintln(out, renderTable(scanHeaders, scanRows(report)))
	}
	if len(report.Candidates) == 0 {
		fmt.Fprintln(out, "No profile 7 files need conversion.")
		return nil
	}
	if eff.ScanFirst {
		if !confirmConversion(in, out, len(report.Candidates)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	runner := services.CommandRunner{Logger: logger}
	doviClient, err := dovi.New(tools.DoviTool, dovi.WithRunner(runner))
	if err != nil {
		return err
	}
	mkvClient, err := mkvtool.New(tools.MKVExtract, tools.MKVMerge, mkvtool.WithRunner(runner))
	if err != nil {
		return err
	}

	var journal *history.Store
	if histPath, err := history.DefaultPath(); err == nil {
		store, err := history.Open(histPath)
		if err != nil {
			logger.Warn("history journal unavailable", logging.Error(err))
		} else {
			journal = store
			defer journal.Close()
		}
	}

	pipe := &pipeline.Runner{
		Dovi:     doviClient,
		MKV:      mkvClient,
		Settings: eff,
		Logger:   logger,
		History:  journal,
	}
	completed, err := pipe.Run(ctx, eff.TargetDir, report.Candidates)
	if err != nil {
		return err
	}
	if completed.Empty() {
		return nil
	}

	// One batch-wide offer, after every file settled. Deletion touches
	// originals only; converted outputs are never candidates here.
	fmt.Fprintln(out, "Converted:")
	for _, source := range completed.Sources() {
		fmt.Fprintf(out, "  %s\n", filepath.Base(source))
	}
	if interactive() {
		question := fmt.Sprintf("Delete %d original file(s)?", len(completed.Sources()))
		if confirm(in, out, question, false) {
			if err := completed.DeleteOriginals(logger); err != nil {
				return err
			}
		}
	}
	return nil
}
