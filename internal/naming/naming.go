// Package naming derives every intermediate and output path from a
// source container name. The scheme is deliberately deterministic:
// sibling detection, cleanup after aborted runs, and collision safety
// between files in one directory all hang off these suffixes. It is a
// convention over the filesystem, not a database; callers re-derive
// state from it instead of caching.
package naming

import (
	"path/filepath"
	"strings"
)

// Suffixes appended to the source base name (without .mkv).
const (
	suffixCombined   = ".BL_EL_RPU.hevc"
	suffixArchivalEL = ".DV7.EL_RPU.hevc"
	suffixSourceRPU  = ".RPU.bin"
	suffixSourcePlot = ".L1_plot.png"
	suffixConverted  = ".DV8.BL_RPU.hevc"
	suffixFinalRPU   = ".DV8.RPU.bin"
	suffixFinalPlot  = ".DV8.L1_plot.png"
	suffixOutput     = ".DV8.mkv"
)

// Artifacts collects every derived path for one source file.
type Artifacts struct {
	Combined   string // BL+EL+RPU elementary stream (stage 1)
	ArchivalEL string // EL+RPU archival stream (stage 2)
	SourceRPU  string // original RPU binary (conditional stage 3)
	SourcePlot string // original L1 plot (conditional stage 3)
	Converted  string // DV8 BL+RPU stream (stage 4)
	FinalRPU   string // converted RPU binary (stage 6)
	FinalPlot  string // converted L1 plot (stage 7)
	Output     string // remuxed container (stage 8)
}

// For derives the artifact set for a source container path.
func For(source string) Artifacts {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return Artifacts{
		Combined:   base + suffixCombined,
		ArchivalEL: base + suffixArchivalEL,
		SourceRPU:  base + suffixSourceRPU,
		SourcePlot: base + suffixSourcePlot,
		Converted:  base + suffixConverted,
		FinalRPU:   base + suffixFinalRPU,
		FinalPlot:  base + suffixFinalPlot,
		Output:     base + suffixOutput,
	}
}

// Working lists the artifacts removed by cleanup stages when working
// files are not kept. The two plot images are review artifacts and stay.
func (a Artifacts) Working() []string {
	return []string{a.Combined, a.Converted, a.FinalRPU}
}

// IsConvertedOutput reports whether name carries the converted-output
// marker. Such files are never conversion candidates themselves.
func IsConvertedOutput(name string) bool {
	return strings.HasSuffix(name, suffixOutput)
}

// SourceForOutput maps a converted output name back to the source
// container it was produced from.
func SourceForOutput(output string) string {
	base := strings.TrimSuffix(output, suffixOutput)
	return base + ".mkv"
}
