package crawler

import (
	"context"

	"imgurr/internal/downloader"
	"imgurr/pkg/imgur"
	"imgurr/pkg/logger"
)

// PageFetcher fetches gallery pages over one feed connection
type PageFetcher interface {
	FetchPage(ctx context.Context, community string, page int) (*imgur.PageResult, error)
	Close() error
}

// ImageConn is a connection to the image host
type ImageConn interface {
	downloader.Conn
	Close() error
}

// Dialer opens the feed and image connections for a run. Connections are
// reopened through it after a transport failure.
type Dialer interface {
	DialFeed() PageFetcher
	DialImages() ImageConn
}

// CheckpointSaver records the community being crawled
type CheckpointSaver interface {
	Save(community string) error
}

type imgurDialer struct {
	d   *imgur.Dialer
	log logger.Logger
}

// NewDialer adapts an imgur.Dialer for the crawl loop
func NewDialer(d *imgur.Dialer, log logger.Logger) Dialer {
	return &imgurDialer{d: d, log: log}
}

func (i *imgurDialer) DialFeed() PageFetcher {
	return imgur.NewClient(i.d.DialFeed(), i.log)
}

func (i *imgurDialer) DialImages() ImageConn {
	return i.d.DialImages()
}
