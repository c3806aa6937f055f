// Package classify maps container files to their Dolby Vision profile
// family and derives conversion state from sibling files on disk. It is
// read-only over the filesystem and safe to call repeatedly; callers
// re-derive results instead of caching them across phases, since the
// naming convention is a heuristic over directory contents, not a
// consistent database.
package classify

import (
	"context"
	"strings"

	"dovimux/internal/fileutil"
	"dovimux/internal/media/mediainfo"
	"dovimux/internal/naming"
)

// Profile is the Dolby Vision profile family of a container file.
type Profile int

const (
	ProfileNone Profile = iota
	ProfileDV7
	ProfileDV8
)

func (p Profile) String() string {
	switch p {
	case ProfileDV7:
		return "DV7"
	case ProfileDV8:
		return "DV8"
	default:
		return "none"
	}
}

// Result is the classification of one container file.
type Result struct {
	Path                string
	Profile             Profile
	HasConvertedSibling bool // a .DV8.mkv produced from this file exists
	ArchivalELPresent   bool // the .DV7.EL_RPU.hevc archive exists
}

// Inspector extracts the HDR format profile descriptor of a file's video
// track. Implemented by MediaInfoInspector; tests substitute fakes.
type Inspector interface {
	VideoHDRProfile(ctx context.Context, path string) (string, error)
}

// MediaInfoInspector inspects files by shelling out to mediainfo.
type MediaInfoInspector struct {
	Binary string
}

func (m MediaInfoInspector) VideoHDRProfile(ctx context.Context, path string) (string, error) {
	result, err := mediainfo.Inspect(ctx, m.Binary, path)
	if err != nil {
		return "", err
	}
	return result.VideoHDRProfile(), nil
}

// ProfileFromDescriptor maps a mediainfo HDR_Format_Profile value to a
// profile family by substring match. The dvhe profile field anchors the
// match so a level digit never shadows it (dvhe.08.07 is DV8); bare
// digits remain a fallback for terse descriptors.
func ProfileFromDescriptor(descriptor string) Profile {
	descriptor = strings.ToLower(descriptor)
	switch {
	case strings.Contains(descriptor, "dvhe.07"):
		return ProfileDV7
	case strings.Contains(descriptor, "dvhe.08"):
		return ProfileDV8
	case strings.Contains(descriptor, "07"):
		return ProfileDV7
	case strings.Contains(descriptor, "08"):
		return ProfileDV8
	default:
		return ProfileNone
	}
}

// Classify inspects one container file and derives its conversion state
// from the deterministic naming scheme. For converted outputs the
// archival check runs against the parent source's base name, since that
// is where the enhancement layer was archived.
func Classify(ctx context.Context, inspector Inspector, path string) (Result, error) {
	descriptor, err := inspector.VideoHDRProfile(ctx, path)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Path:    path,
		Profile: ProfileFromDescriptor(descriptor),
	}

	base := path
	if naming.IsConvertedOutput(path) {
		base = naming.SourceForOutput(path)
	}
	artifacts := naming.For(base)
	result.HasConvertedSibling = fileutil.Exists(artifacts.Output)
	result.ArchivalELPresent = fileutil.Exists(artifacts.ArchivalEL)
	return result, nil
}
