// Package logger wraps zerolog behind a small structured logging interface.
//
// The crawler logs through the Logger interface so tests can swap in a
// TestLogger and assert on what was reported:
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("community", "/r/pics")
//	log.InfoWithFields("Page fetched", map[string]interface{}{
//	    "page":   3,
//	    "images": 60,
//	})
//
// Console output is colorized and written to stderr. When a log file is
// configured, events are duplicated to it.
package logger
