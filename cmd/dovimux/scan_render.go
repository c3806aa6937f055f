package main

import (
	"path/filepath"

	"dovimux/internal/scan"
)

var scanHeaders = []string{"File", "Profile", "Status"}

// scanRows flattens a scan report into table rows, indenting converted
// siblings as child lines under their source.
func scanRows(report scan.Report) [][]string {
	rows := make([][]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		status := entry.Status
		if entry.Status == scan.StatusOriginal && entry.Result.ArchivalELPresent {
			status += ", EL archived"
		}
		rows = append(rows, []string{
			filepath.Base(entry.Result.Path),
			entry.Result.Profile.String(),
			status,
		})
		for _, child := range entry.Children {
			rows = append(rows, []string{"  └─ " + child, "DV8", "output"})
		}
	}
	return rows
}
