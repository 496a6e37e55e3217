package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// StatusTracker keeps running totals for a crawl
type StatusTracker struct {
	Saved     int
	Skipped   int
	Missing   int
	Bytes     int64
	StartTime time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
	}
}

// RecordSaved counts one downloaded image
func (st *StatusTracker) RecordSaved(size int) {
	st.Saved++
	st.Bytes += int64(size)
}

// RecordSkipped counts one image that was already stored
func (st *StatusTracker) RecordSkipped() {
	st.Skipped++
}

// RecordMissing counts one image the host no longer serves
func (st *StatusTracker) RecordMissing() {
	st.Missing++
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetDownloadRate returns the average download rate (images per minute)
func (st *StatusTracker) GetDownloadRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Saved) / elapsed
}

// Summary renders the totals on one line
func (st *StatusTracker) Summary() string {
	return fmt.Sprintf("%d saved (%s), %d skipped, %d missing in %s",
		st.Saved, humanize.Bytes(uint64(st.Bytes)), st.Skipped, st.Missing,
		st.GetElapsedTime().Round(time.Second))
}

// PageProgress draws a per-page progress bar on an interactive terminal.
// On anything else it stays silent.
type PageProgress struct {
	out     io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

// NewPageProgress creates a progress display writing to out. The bar is
// drawn only if enabled is set and out is a terminal.
func NewPageProgress(out io.Writer, enabled bool) *PageProgress {
	return &PageProgress{out: out, enabled: enabled && IsTerminal(out)}
}

// Enabled reports whether anything will be drawn
func (p *PageProgress) Enabled() bool {
	return p.enabled
}

// StartPage begins a bar for a page holding total images
func (p *PageProgress) StartPage(community string, page, total int) {
	if !p.enabled {
		return
	}
	p.finish()
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s page %d[reset]", community, page)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Advance moves the bar by one image
func (p *PageProgress) Advance() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish removes the current bar
func (p *PageProgress) Finish() {
	p.finish()
}

func (p *PageProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
