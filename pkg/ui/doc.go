// Package ui holds the operator-facing output of the command line tool:
// ANSI colors, a per-page progress bar that is only drawn on a terminal,
// running totals, and desktop notifications with an optional beep when a
// crawl finishes or fails.
package ui
