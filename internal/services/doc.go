// Package services holds the shared error taxonomy for the external
// tool clients (dovi_tool, mkvextract/mkvmerge, mediainfo) plus the
// clients themselves in subpackages.
package services
