// Package mediainfo provides a typed wrapper around mediainfo JSON
// output. Only the fields the profile classifier needs are decoded; the
// raw payload stays available for debugging.
package mediainfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result represents the parsed output from a mediainfo inspection.
type Result struct {
	Media struct {
		Ref    string  `json:"@ref"`
		Tracks []Track `json:"track"`
	} `json:"media"`
	raw []byte
}

// Track describes a single track in the media container.
type Track struct {
	Type             string `json:"@type"`
	Format           string `json:"Format"`
	HDRFormat        string `json:"HDR_Format"`
	HDRFormatProfile string `json:"HDR_Format_Profile"`
	Language         string `json:"Language"`
}

// Inspect executes mediainfo against the provided path and decodes the
// JSON response.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mediainfo"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("mediainfo inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "--Output=JSON", path)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, fmt.Errorf("mediainfo inspect: %w: %s", err, detail)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("mediainfo parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// VideoHDRProfile returns the HDR format profile of the first video
// track, or the empty string when the file has none.
func (r Result) VideoHDRProfile() string {
	for _, track := range r.Media.Tracks {
		if strings.EqualFold(track.Type, "Video") {
			return track.HDRFormatProfile
		}
	}
	return ""
}

// RawJSON returns the raw mediainfo JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}
