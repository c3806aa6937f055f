// Package prefstore persists operator preferences between runs as a
// small TOML file under the user config directory. Booleans are stored
// as 0/1 integers to stay compatible with the upstream key/value store
// contract. Reads are fallback-tolerant: a missing file, a missing key,
// or an unparseable file leaves the in-memory defaults untouched.
package prefstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"dovimux/internal/settings"
)

type fileSchema struct {
	KeepWorkingFiles *int    `toml:"keep_working_files"`
	LanguageFilter   *string `toml:"language_filter"`
	CMv29            *int    `toml:"cmv29"`
	UseSystemTools   *int    `toml:"use_system_tools"`
	DontAskAgain     *int    `toml:"dont_ask_again"`
}

// DefaultPath returns the settings file location under the user config
// directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "dovimux", "settings.toml"), nil
}

// Load reads the persisted layer. A missing file yields (nil, nil); a
// corrupt file yields (nil, err) so the caller can warn and continue
// with defaults.
func Load(path string) (*settings.Partial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	var schema fileSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	return &settings.Partial{
		KeepWorkingFiles: intToBool(schema.KeepWorkingFiles),
		LanguageFilter:   schema.LanguageFilter,
		CMv29:            intToBool(schema.CMv29),
		UseSystemTools:   intToBool(schema.UseSystemTools),
		DontAskAgain:     intToBool(schema.DontAskAgain),
	}, nil
}

// Save writes the persisted layer atomically (temp file + rename),
// creating the config directory when needed.
func Save(path string, partial settings.Partial) error {
	schema := fileSchema{
		KeepWorkingFiles: boolToInt(partial.KeepWorkingFiles),
		LanguageFilter:   partial.LanguageFilter,
		CMv29:            boolToInt(partial.CMv29),
		UseSystemTools:   boolToInt(partial.UseSystemTools),
		DontAskAgain:     boolToInt(partial.DontAskAgain),
	}
	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

func intToBool(v *int) *bool {
	if v == nil {
		return nil
	}
	b := *v != 0
	return &b
}

func boolToInt(v *bool) *int {
	if v == nil {
		return nil
	}
	i := 0
	if *v {
		i = 1
	}
	return &i
}
