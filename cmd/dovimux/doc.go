// Package main hosts the dovimux CLI entrypoint.
//
// The Cobra command translates the flag surface into resolved settings,
// runs the preflight checks, and drives the scan/convert/ledger flow.
// All real behavior lives in the internal packages; this package owns
// terminals only: prompts, the scan table, and exit codes.
package main
