// Package testsupport provides helpers for tests that shell out to stub
// tool binaries instead of the real MKVToolNix/dovi_tool/mediainfo
// installs.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// StubTool writes an executable shell script named name into a temp
// directory and returns its path.
func StubTool(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write %s stub: %v", name, err)
	}
	return path
}

// StubToolJSON writes a stub that prints the given payload on stdout
// and exits zero, mimicking an inspection tool.
func StubToolJSON(t *testing.T, name, payload string) string {
	t.Helper()
	return StubTool(t, name, "cat <<'PAYLOAD'\n"+payload+"\nPAYLOAD\n")
}
