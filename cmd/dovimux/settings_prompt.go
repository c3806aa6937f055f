package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"dovimux/internal/language"
	"dovimux/internal/settings"
)

// promptSettings walks the operator through the persisted preferences
// and returns the adjusted settings plus the dont-ask-again choice.
// Invalid language input keeps the current filter rather than failing
// the run.
func promptSettings(in *bufio.Reader, out io.Writer, eff settings.Effective) (settings.Effective, bool) {
	fmt.Fprintln(out, "Settings (saved for future runs):")

	eff.KeepWorkingFiles = confirm(in, out, "  Keep intermediate working files?", eff.KeepWorkingFiles)

	current := "all"
	if len(eff.LanguageFilter) > 0 {
		current = strings.Join(eff.LanguageFilter, ",")
	}
	raw := readLine(in, out, fmt.Sprintf("  Audio/subtitle languages to keep (comma-separated, empty for all) [%s]", current), "")
	if raw != "" {
		if codes, err := language.ParseFilter(raw); err != nil {
			fmt.Fprintf(out, "  ignoring invalid filter: %v\n", err)
		} else {
			eff.LanguageFilter = codes
			if len(codes) > 0 {
				names := make([]string, len(codes))
				for i, code := range codes {
					names[i] = language.Display(code)
				}
				fmt.Fprintf(out, "  keeping: %s\n", strings.Join(names, ", "))
			}
		}
	}

	if confirm(in, out, "  Limit metadata to CM v2.9?", eff.MetadataPolicy == settings.CMv29) {
		eff.MetadataPolicy = settings.CMv29
	} else {
		eff.MetadataPolicy = settings.CMv40
	}

	eff.UseSystemTools = confirm(in, out, "  Use tools from the system PATH?", eff.UseSystemTools)

	dontAskAgain := confirm(in, out, "  Skip this prompt in future runs?", false)
	return eff, dontAskAgain
}
