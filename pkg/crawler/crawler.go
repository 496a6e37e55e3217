package crawler

import (
	"context"
	"fmt"
	"time"

	"imgurr/internal/downloader"
	"imgurr/pkg/errors"
	"imgurr/pkg/imgur"
	"imgurr/pkg/logger"
	"imgurr/pkg/metrics"
	"imgurr/pkg/retry"
	"imgurr/pkg/store"
	"imgurr/pkg/ui"
	"imgurr/pkg/validate"
)

// Options configures a Crawler
type Options struct {
	Dialer     Dialer
	Files      downloader.FileSaver
	Checkpoint CheckpointSaver
	// StoreDir holds the per-community sqlite files
	StoreDir string

	PageDelay     time.Duration
	ImageDelay    time.Duration
	RetryCooldown time.Duration
	// MaxPageAttempts bounds attempts per page; 0 retries forever
	MaxPageAttempts int

	Metrics  *metrics.Metrics
	Progress *ui.PageProgress
	Tracker  *ui.StatusTracker
	OnState  func(State)
	Logger   logger.Logger
}

// DefaultOptions returns the stock pacing and retry policy
func DefaultOptions() Options {
	return Options{
		StoreDir:        ".",
		PageDelay:       1300 * time.Millisecond,
		ImageDelay:      1300 * time.Millisecond,
		RetryCooldown:   5 * time.Second,
		MaxPageAttempts: 3,
	}
}

// Summary describes a finished run
type Summary struct {
	Pages      int
	Saved      int
	Skipped    int
	Missing    int
	Retries    int
	FinalState State
}

// Crawler walks a community's gallery feed page by page
type Crawler struct {
	opts   Options
	logger logger.Logger
}

// New creates a crawler
func New(opts Options) *Crawler {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Crawler{opts: opts, logger: log}
}

// run holds the per-invocation state of Run
type run struct {
	*Crawler
	community string
	store     *store.Store
	fetcher   *downloader.Downloader
	feed      PageFetcher
	images    ImageConn
	state     State
	summary   *Summary
}

// Run crawls community starting at startPage until the feed ends. It
// returns the summary even when the run fails.
func (c *Crawler) Run(ctx context.Context, community string, startPage int) (*Summary, error) {
	summary := &Summary{FinalState: StateFailed}

	if !validate.IsValidCommunityName(community) {
		return summary, errors.New(errors.ErrorTypeInvalidName, "invalid community name %q", community)
	}
	if startPage < 0 {
		return summary, errors.New(errors.ErrorTypeInvalidName, "invalid start page %d", startPage)
	}

	if c.opts.Checkpoint != nil {
		if err := c.opts.Checkpoint.Save(community); err != nil {
			return summary, fmt.Errorf("failed to save checkpoint: %w", err)
		}
	}

	st, err := store.Open(ctx, c.opts.StoreDir, community)
	if err != nil {
		return summary, err
	}
	defer st.Close()

	r := &run{
		Crawler:   c,
		community: community,
		store:     st,
		fetcher:   downloader.New(st, c.opts.Files, c.logger),
		state:     stateIdle,
		summary:   summary,
	}
	defer r.closeConns()

	c.logger.InfoWithFields("Starting crawl", map[string]interface{}{
		"community":  community,
		"start_page": startPage,
		"store":      st.Path(),
	})

	err = r.loop(ctx, startPage)
	if err != nil {
		r.setState(StateFailed)
		c.logger.WithError(err).ErrorWithFields("Crawl failed", map[string]interface{}{
			"community": community,
			"pages":     summary.Pages,
		})
	} else {
		r.setState(StateDone)
		c.logger.InfoWithFields("All done", map[string]interface{}{
			"community": community,
			"pages":     summary.Pages,
			"saved":     summary.Saved,
			"skipped":   summary.Skipped,
		})
	}
	summary.FinalState = r.state

	if c.opts.Metrics != nil {
		c.opts.Metrics.Finish(err == nil)
	}
	return summary, err
}

func (r *run) loop(ctx context.Context, page int) error {
	for {
		var result *imgur.PageResult
		feedFailed := false

		err := retry.Do(func() error {
			r.dial()

			if result == nil {
				r.setState(StateFetchingPage)
				res, err := r.feed.FetchPage(ctx, r.community, page)
				if err != nil {
					feedFailed = true
					return err
				}
				result = res
			}
			if result.EndOfFeed {
				return nil
			}
			return r.processImages(ctx, result)
		}, &retry.Config{
			MaxAttempts: r.opts.MaxPageAttempts,
			Backoff:     &retry.ConstantBackoff{Delay: r.opts.RetryCooldown},
			RetryIf:     retry.DefaultRetryIf,
			Context:     ctx,
			Logger:      r.logger,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				r.setState(StateRetrying)
				r.summary.Retries++
				if r.opts.Metrics != nil {
					r.opts.Metrics.PageRetriesTotal.Inc()
				}
				r.logger.WarnWithFields("Page attempt failed", map[string]interface{}{
					"community": r.community,
					"page":      page,
					"attempt":   attempt,
					"error":     err.Error(),
				})
				r.closeImages()
				if feedFailed {
					r.closeFeed()
					feedFailed = false
				}
			},
		})
		if err != nil {
			return err
		}

		if result.EndOfFeed {
			return nil
		}

		r.summary.Pages++
		if r.opts.Metrics != nil {
			r.opts.Metrics.PagesTotal.Inc()
		}
		logger.LogPage(r.logger, r.community, page, len(result.Images), r.summary.Saved)

		page++
		r.setState(StatePaced)
		if err := retry.Wait(ctx, r.opts.PageDelay); err != nil {
			return err
		}
	}
}

// processImages handles every image of a page in order. Images already in
// the store are skipped without a request, so a retried page resumes
// where the failed attempt stopped.
func (r *run) processImages(ctx context.Context, page *imgur.PageResult) error {
	r.setState(StateProcessingImages)
	if r.opts.Progress != nil {
		r.opts.Progress.StartPage(r.community, page.Page, len(page.Images))
	}

	for i := range page.Images {
		img := &page.Images[i]
		start := time.Now()

		res, err := r.fetcher.FetchAndSave(ctx, r.images, img)
		switch {
		case err == nil && res.Status == downloader.StatusSkipped:
			r.summary.Skipped++
			r.observe("skipped", 0, 0)
		case err == nil:
			if err := r.store.Append(ctx, newRecord(img, res.Image)); err != nil {
				return err
			}
			r.summary.Saved++
			r.observe("saved", res.Size, time.Since(start))
			logger.LogDownload(r.logger, r.community, img.Hash, res.Size, nil)
		case errors.IsType(err, errors.ErrorTypeNotFound):
			r.summary.Missing++
			r.observe("missing", 0, 0)
			r.logger.WarnWithFields("Image no longer available", map[string]interface{}{
				"community": r.community,
				"hash":      img.Hash,
			})
		default:
			return err
		}

		if r.opts.Progress != nil {
			r.opts.Progress.Advance()
		}

		if res.Status != downloader.StatusSkipped && i < len(page.Images)-1 {
			r.setState(StatePaced)
			if err := retry.Wait(ctx, r.opts.ImageDelay); err != nil {
				return err
			}
			r.setState(StateProcessingImages)
		}
	}
	return nil
}

func (r *run) observe(status string, size int, elapsed time.Duration) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveImage(status, size, elapsed)
	}
	if t := r.opts.Tracker; t != nil {
		switch status {
		case "saved":
			t.RecordSaved(size)
		case "skipped":
			t.RecordSkipped()
		case "missing":
			t.RecordMissing()
		}
	}
}

func (r *run) setState(s State) {
	if r.state == s {
		return
	}
	r.state = s
	r.logger.DebugWithFields("Crawl state", map[string]interface{}{
		"community": r.community,
		"state":     s.String(),
	})
	if s.Terminal() && r.opts.Progress != nil {
		r.opts.Progress.Finish()
	}
	if r.opts.OnState != nil {
		r.opts.OnState(s)
	}
}

func (r *run) dial() {
	if r.feed == nil {
		r.feed = r.opts.Dialer.DialFeed()
	}
	if r.images == nil {
		r.images = r.opts.Dialer.DialImages()
	}
}

func (r *run) closeFeed() {
	if r.feed != nil {
		r.feed.Close()
		r.feed = nil
	}
}

func (r *run) closeImages() {
	if r.images != nil {
		r.images.Close()
		r.images = nil
	}
}

func (r *run) closeConns() {
	r.closeFeed()
	r.closeImages()
}
