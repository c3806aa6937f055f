// Package settings resolves the effective per-run configuration from
// three layers: built-in defaults, the persisted preference store, and
// command-line flags. Each layer overrides the previous only for keys it
// explicitly sets; the result is immutable for the rest of the run.
package settings

import (
	"strings"

	"dovimux/internal/language"
)

// MetadataPolicy selects the content-mapping metadata version the
// conversion keeps.
type MetadataPolicy int

const (
	// CMv40 keeps CM v4.0 metadata when the source carries it.
	CMv40 MetadataPolicy = iota
	// CMv29 strips CM v4.0 blocks so the output stays on CM v2.9.
	CMv29
)

func (p MetadataPolicy) String() string {
	if p == CMv29 {
		return "CM v2.9"
	}
	return "CM v4.0"
}

// Effective is the resolved configuration for one run.
type Effective struct {
	KeepWorkingFiles bool
	LanguageFilter   []string // normalized ISO 639-2 codes; nil means all tracks
	MetadataPolicy   MetadataPolicy
	UseSystemTools   bool
	TargetDir        string
	ScanFirst        bool
	ShowSettings     bool
	// Explicit is set when any CLI flag was given; it suppresses the
	// interactive settings prompt regardless of the persisted
	// ask-again preference.
	Explicit bool
}

// Partial holds the subset of settings the preference store persists.
// Nil fields were not present in the store and leave defaults untouched.
type Partial struct {
	KeepWorkingFiles *bool
	LanguageFilter   *string // comma-joined codes, empty means all
	CMv29            *bool
	UseSystemTools   *bool
	DontAskAgain     *bool
}

// Flags carries the CLI layer. The *Set fields record whether the flag
// was present on the command line at all.
type Flags struct {
	KeepWorkingFiles    bool
	KeepWorkingFilesSet bool
	Language            string
	LanguageSet         bool
	CMv29               bool
	CMv29Set            bool
	UseSystemTools      bool
	UseSystemToolsSet   bool
	ScanFirst           bool
	ScanFirstSet        bool
	ShowSettings        bool
	TargetDir           string
}

// Defaults returns the built-in base layer.
func Defaults() Effective {
	return Effective{
		MetadataPolicy: CMv40,
		TargetDir:      ".",
	}
}

// Resolve composes defaults, the persisted layer (nil when the store is
// absent or unreadable), and the CLI flags into one Effective value.
func Resolve(stored *Partial, flags Flags) (Effective, error) {
	eff := Defaults()

	if stored != nil {
		if stored.KeepWorkingFiles != nil {
			eff.KeepWorkingFiles = *stored.KeepWorkingFiles
		}
		if stored.LanguageFilter != nil {
			// The store layer is fallback-tolerant: an unparseable
			// stored filter keeps the default. Only CLI input below
			// is validated strictly.
			if codes, err := language.ParseFilter(*stored.LanguageFilter); err == nil {
				eff.LanguageFilter = codes
			}
		}
		if stored.CMv29 != nil && *stored.CMv29 {
			eff.MetadataPolicy = CMv29
		}
		if stored.UseSystemTools != nil {
			eff.UseSystemTools = *stored.UseSystemTools
		}
	}

	if flags.KeepWorkingFilesSet {
		eff.KeepWorkingFiles = flags.KeepWorkingFiles
	}
	if flags.LanguageSet {
		codes, err := language.ParseFilter(flags.Language)
		if err != nil {
			return Effective{}, err
		}
		eff.LanguageFilter = codes
	}
	if flags.CMv29Set {
		if flags.CMv29 {
			eff.MetadataPolicy = CMv29
		} else {
			eff.MetadataPolicy = CMv40
		}
	}
	if flags.UseSystemToolsSet {
		eff.UseSystemTools = flags.UseSystemTools
	}
	if flags.ScanFirstSet {
		eff.ScanFirst = flags.ScanFirst
	}
	if flags.TargetDir != "" {
		eff.TargetDir = flags.TargetDir
	}
	eff.ShowSettings = flags.ShowSettings
	eff.Explicit = flags.KeepWorkingFilesSet || flags.LanguageSet || flags.CMv29Set ||
		flags.UseSystemToolsSet || flags.ScanFirstSet

	return eff, nil
}

// AsPartial converts the resolved settings back into the persistable
// subset, used after the interactive settings prompt.
func (e Effective) AsPartial(dontAskAgain bool) Partial {
	keep := e.KeepWorkingFiles
	cmv29 := e.MetadataPolicy == CMv29
	system := e.UseSystemTools
	filter := strings.Join(e.LanguageFilter, ",")
	ask := dontAskAgain
	return Partial{
		KeepWorkingFiles: &keep,
		LanguageFilter:   &filter,
		CMv29:            &cmv29,
		UseSystemTools:   &system,
		DontAskAgain:     &ask,
	}
}
