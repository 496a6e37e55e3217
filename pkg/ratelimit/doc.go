// Package ratelimit puts a ceiling on outbound requests to the gallery hosts.
//
// The crawl loop already paces itself with fixed delays between images and
// pages; the limiter is a second guard that holds even when those delays are
// configured down to zero. It wraps golang.org/x/time/rate:
//
//	limiter := ratelimit.New(60, 5) // 60 requests per minute, burst of 5
//	if err := limiter.Wait(ctx); err != nil {
//		return err // context cancelled
//	}
package ratelimit
