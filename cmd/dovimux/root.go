package main

import (
	"github.com/spf13/cobra"

	"dovimux/internal/settings"
)

func newRootCommand() *cobra.Command {
	var (
		keepWorkingFiles bool
		languageFilter   string
		cmv29            bool
		useSystemTools   bool
		scanFirst        bool
		showSettings     bool
		verbose          bool
	)

	rootCmd := &cobra.Command{
		Use:   "dovimux [directory]",
		Short: "Convert Dolby Vision profile 7 MKVs to profile 8.1",
		Long: `dovimux scans a directory for Matroska files carrying Dolby Vision
profile 7 video (BL+EL+RPU), converts each one to profile 8.1 (BL+RPU)
via mkvextract, dovi_tool, and mkvmerge, and remuxes the result next to
the original. The enhancement layer is archived so the profile 7 stream
can be reconstructed later.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := settings.Flags{
				KeepWorkingFiles:    keepWorkingFiles,
				KeepWorkingFilesSet: cmd.Flags().Changed("keep-working-files"),
				Language:            languageFilter,
				LanguageSet:         cmd.Flags().Changed("language-filter"),
				CMv29:               cmv29,
				CMv29Set:            cmd.Flags().Changed("cmv29"),
				UseSystemTools:      useSystemTools,
				UseSystemToolsSet:   cmd.Flags().Changed("use-system-tools"),
				ScanFirst:           scanFirst,
				ScanFirstSet:        cmd.Flags().Changed("scan-first"),
				ShowSettings:        showSettings,
			}
			if len(args) == 1 {
				flags.TargetDir = args[0]
			}
			return run(cmd, flags, verbose)
		},
	}

	rootCmd.Flags().BoolVarP(&keepWorkingFiles, "keep-working-files", "k", false, "Keep intermediate streams and RPU binaries after conversion")
	rootCmd.Flags().StringVarP(&languageFilter, "language-filter", "l", "", "Comma-separated audio/subtitle language codes to keep (empty keeps all)")
	rootCmd.Flags().BoolVar(&cmv29, "cmv29", false, "Strip CM v4.0 metadata so output stays on CM v2.9")
	rootCmd.Flags().BoolVar(&useSystemTools, "use-system-tools", false, "Resolve tool binaries from PATH instead of the bundled tools directory")
	rootCmd.Flags().BoolVarP(&scanFirst, "scan-first", "s", false, "Show a classification table and ask before converting")
	rootCmd.Flags().BoolVar(&showSettings, "show-settings", false, "Run the interactive settings prompt even if previously suppressed")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log external tool invocations")

	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
