package logger

import (
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// LogDownload records the outcome of a single image fetch
func LogDownload(l Logger, community, hash string, size int, err error) {
	fields := map[string]interface{}{
		"community": community,
		"hash":      hash,
	}
	if err != nil {
		l.WithError(err).ErrorWithFields("Image download failed", fields)
		return
	}
	fields["size"] = humanize.Bytes(uint64(size))
	l.InfoWithFields("Image saved", fields)
}

// LogPage records one completed page of the feed
func LogPage(l Logger, community string, page, images, saved int) {
	l.InfoWithFields("Page complete", map[string]interface{}{
		"community": community,
		"page":      page,
		"images":    images,
		"saved":     saved,
	})
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &zerologLogger{logger: zerolog.Nop()}
}
