// Package mkvtool wraps the MKVToolNix binaries: mkvextract for track
// demuxing and mkvmerge for the final remux.
package mkvtool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dovimux/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(runner services.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// Client wraps mkvextract and mkvmerge invocations.
type Client struct {
	extractBinary string
	mergeBinary   string
	runner        services.Runner
}

// New constructs an MKVToolNix client.
func New(extractBinary, mergeBinary string, opts ...Option) (*Client, error) {
	extractBinary = strings.TrimSpace(extractBinary)
	mergeBinary = strings.TrimSpace(mergeBinary)
	if extractBinary == "" || mergeBinary == "" {
		return nil, errors.New("mkvextract and mkvmerge binaries required")
	}
	client := &Client{
		extractBinary: extractBinary,
		mergeBinary:   mergeBinary,
		runner:        services.CommandRunner{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ExtractTrack demuxes a single track from a container into an
// elementary stream file.
func (c *Client) ExtractTrack(ctx context.Context, container string, track int, out string) error {
	selector := fmt.Sprintf("%d:%s", track, out)
	return c.runner.Run(ctx, c.extractBinary, container, "tracks", selector)
}

// RemuxSpec describes one remux operation: the converted video stream
// first, then every surviving non-video track from the source.
type RemuxSpec struct {
	Output    string
	Video     string   // converted elementary stream, becomes track 0
	Source    string   // original container contributing non-video tracks
	Languages []string // ISO 639-2 codes; nil keeps all audio/subtitle tracks
}

// Remux merges the converted video stream with the source's non-video
// tracks. The source video track is always dropped; with a language
// filter only matching audio and subtitle tracks are carried over.
func (c *Client) Remux(ctx context.Context, spec RemuxSpec) error {
	if spec.Output == "" || spec.Video == "" || spec.Source == "" {
		return errors.New("remux requires output, video, and source paths")
	}
	args := []string{"-o", spec.Output, spec.Video, "-D"}
	if len(spec.Languages) > 0 {
		codes := strings.Join(spec.Languages, ",")
		args = append(args, "-a", codes, "-s", codes)
	}
	args = append(args, spec.Source, "--track-order", "0:0")
	return c.runner.Run(ctx, c.mergeBinary, args...)
}
