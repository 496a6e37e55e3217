// Package retry re-runs an operation after transient failures.
//
// The crawl loop treats a whole page as the unit of retry: a transport
// failure anywhere in the page drops the connections, waits a fixed
// cooldown and starts the page again. Do implements that policy:
//
//	err := retry.Do(func() error {
//		return crawlPage(ctx, page)
//	}, &retry.Config{
//		MaxAttempts: 3, // 0 retries forever
//		Backoff:     &retry.ConstantBackoff{Delay: 5 * time.Second},
//		RetryIf:     retry.DefaultRetryIf,
//		OnRetry:     func(attempt int, err error, delay time.Duration) { closeConns() },
//		Context:     ctx,
//	})
//
// When the attempts run out the last error is returned wrapped in an
// errors.ErrorTypeRetryExhausted error.
package retry
