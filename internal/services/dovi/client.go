package dovi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"dovimux/internal/services"
)

// cmv29EditConfig strips CM v4.0 blocks during conversion so the output
// RPU carries CM v2.9 metadata only.
//
//go:embed cmv29.json
var cmv29EditConfig []byte

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

// Client wraps dovi_tool CLI interactions.
type Client struct {
	binary string
	runner services.Runner
}

// New constructs a dovi_tool client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("dovi_tool binary required")
	}
	client := &Client{
		binary: binary,
		runner: services.CommandRunner{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// DemuxEL extracts the enhancement layer plus RPU from a combined
// BL+EL+RPU stream into an archival file.
func (c *Client) DemuxEL(ctx context.Context, combined, archival string) error {
	return c.runner.Run(ctx, c.binary, "demux", "--el-only", combined, "-e", archival)
}

// ExtractRPU pulls the raw RPU metadata out of an elementary stream.
func (c *Client) ExtractRPU(ctx context.Context, stream, rpu string) error {
	return c.runner.Run(ctx, c.binary, "extract-rpu", stream, "-o", rpu)
}

// Plot renders the L1 luminance metadata of an RPU binary to an image.
func (c *Client) Plot(ctx context.Context, rpu, title, image string) error {
	return c.runner.Run(ctx, c.binary, "plot", rpu, "-t", title, "-o", image)
}

// Convert rewrites a BL+EL+RPU stream as profile 8.1 BL+RPU, discarding
// the enhancement layer. With dropCMv4 set, an edit config is passed so
// CM v4.0 metadata blocks are removed and the output stays on CM v2.9.
func (c *Client) Convert(ctx context.Context, combined, converted string, dropCMv4 bool) error {
	args := []string{"-m", "2", "convert", "--discard", combined, "-o", converted}
	if dropCMv4 {
		configPath, cleanup, err := writeEditConfig()
		if err != nil {
			return fmt.Errorf("write edit config: %w", err)
		}
		defer cleanup()
		args = append(args, "--edit-config", configPath)
	}
	return c.runner.Run(ctx, c.binary, args...)
}

func writeEditConfig() (string, func(), error) {
	file, err := os.CreateTemp("", "dovimux-cmv29-*.json")
	if err != nil {
		return "", nil, err
	}
	if _, err := file.Write(cmv29EditConfig); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", nil, err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", nil, err
	}
	return file.Name(), func() { os.Remove(file.Name()) }, nil
}
