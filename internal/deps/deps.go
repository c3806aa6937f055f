// Package deps resolves and verifies the external tool binaries the
// converter shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tool names the converter depends on.
const (
	MKVExtract = "mkvextract"
	MKVMerge   = "mkvmerge"
	DoviTool   = "dovi_tool"
	MediaInfo  = "mediainfo"
)

// Requirement defines an external dependency the converter relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Toolset holds the resolved command for each required binary.
type Toolset struct {
	MKVExtract string
	MKVMerge   string
	DoviTool   string
	MediaInfo  string
}

// Resolve builds the toolset. With useSystem set, bare names are used and
// left to PATH lookup. Otherwise a tools directory next to the running
// executable is preferred, falling back to PATH for any binary not
// shipped there.
func Resolve(useSystem bool) Toolset {
	return Toolset{
		MKVExtract: resolveBinary(MKVExtract, useSystem),
		MKVMerge:   resolveBinary(MKVMerge, useSystem),
		DoviTool:   resolveBinary(DoviTool, useSystem),
		MediaInfo:  resolveBinary(MediaInfo, useSystem),
	}
}

// Requirements lists every binary the toolset must provide.
func (t Toolset) Requirements() []Requirement {
	return []Requirement{
		{Name: "mkvextract", Command: t.MKVExtract, Description: "Required for demuxing the video track"},
		{Name: "mkvmerge", Command: t.MKVMerge, Description: "Required for remuxing the converted stream"},
		{Name: "dovi_tool", Command: t.DoviTool, Description: "Required for Dolby Vision layer processing"},
		{Name: "mediainfo", Command: t.MediaInfo, Description: "Required for profile classification"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

func resolveBinary(name string, useSystem bool) string {
	if useSystem {
		return name
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	bundled := filepath.Join(filepath.Dir(exe), "tools", name)
	if info, err := os.Stat(bundled); err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
		return bundled
	}
	return name
}
