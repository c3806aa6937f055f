// Package dovi wraps the dovi_tool CLI: enhancement-layer demuxing, RPU
// extraction, L1 plotting, and the profile 7 to 8.1 conversion itself.
package dovi
