package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"imgurr/pkg/checkpoint"
	"imgurr/pkg/config"
	"imgurr/pkg/crawler"
	"imgurr/pkg/errors"
	"imgurr/pkg/imgur"
	"imgurr/pkg/logger"
	"imgurr/pkg/metrics"
	"imgurr/pkg/ratelimit"
	"imgurr/pkg/storage"
	"imgurr/pkg/ui"
	"imgurr/pkg/validate"
)

// crawlTarget resolves the positional arguments into a community and a
// start page. With no arguments the community comes from resume.
func crawlTarget(args []string, resume func() (string, error)) (string, int, error) {
	switch len(args) {
	case 0:
		community, err := resume()
		if stderrors.Is(err, checkpoint.ErrNoCheckpoint) {
			return "", 0, fmt.Errorf("no community given and no checkpoint to resume from")
		}
		if err != nil {
			return "", 0, fmt.Errorf("cannot resume: %w", err)
		}
		return community, 0, nil
	case 1, 2:
		community := args[0]
		if !validate.IsValidCommunityName(community) {
			return "", 0, errors.New(errors.ErrorTypeInvalidName, "%q is not a community name like /r/pics", community)
		}
		if len(args) == 1 {
			return community, 0, nil
		}
		page, err := strconv.Atoi(args[1])
		if err != nil || page < 0 {
			return "", 0, fmt.Errorf("page must be a non-negative integer, got %q", args[1])
		}
		return community, page, nil
	default:
		return "", 0, fmt.Errorf("expected at most 2 arguments, got %d", len(args))
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if len(args) > 2 {
		_, _, err := crawlTarget(args, nil)
		return err
	}

	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	cp, err := checkpoint.NewManager(cfg.Checkpoint.Path)
	if err != nil {
		return err
	}

	community, startPage, err := crawlTarget(args, cp.Load)
	if err != nil {
		return err
	}

	if !quiet {
		ui.PrintLogo()
		ui.PrintInfo("Community", community)
		ui.PrintInfo("Output", cfg.Output.Directory)
	}

	log.InfoWithFields("imgurr starting", map[string]interface{}{
		"version":    version,
		"community":  community,
		"start_page": startPage,
	})

	files, err := storage.NewManager(cfg.Output.Directory, cfg.Crawl.PreserveTimestamps)
	if err != nil {
		return err
	}

	dialer := imgur.NewDialer(imgur.Options{
		FeedURL:   cfg.Feed.BaseURL,
		ImageURL:  cfg.Feed.ImageBaseURL,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   cfg.Feed.RequestTimeout,
		Limiter:   ratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
		Logger:    log,
	})

	m := metrics.New(community)

	// off a terminal the per-page log lines stand in for the bar
	var progress *ui.PageProgress
	if p := ui.NewPageProgress(os.Stderr, !quiet); p.Enabled() {
		progress = p
	}
	tracker := ui.NewStatusTracker()

	c := crawler.New(crawler.Options{
		Dialer:          crawler.NewDialer(dialer, log),
		Files:           files,
		Checkpoint:      cp,
		StoreDir:        cfg.Output.Directory,
		PageDelay:       cfg.Crawl.PageDelay,
		ImageDelay:      cfg.Crawl.ImageDelay,
		RetryCooldown:   cfg.Crawl.RetryCooldown,
		MaxPageAttempts: cfg.Crawl.MaxPageAttempts,
		Metrics:         m,
		Progress:        progress,
		Tracker:         tracker,
		Logger:          log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := c.Run(ctx, community, startPage)

	if cfg.Metrics.TextfilePath != "" {
		if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			log.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	notifier := ui.NewNotifier(cfg.Notifications, log)
	if quiet {
		notifier.WithOutput(io.Discard, os.Stderr)
	}
	if runErr != nil {
		notifier.SendError("Crawl failed", fmt.Sprintf("%s after %d pages: %v", community, summary.Pages, runErr))
		return runErr
	}

	notifier.SendSuccess("Crawl complete", fmt.Sprintf("%s: %d pages, %s", community, summary.Pages, tracker.Summary()))
	return nil
}
