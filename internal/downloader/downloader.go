package downloader

import (
	"context"
	"database/sql"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"imgurr/pkg/errors"
	"imgurr/pkg/imgur"
	"imgurr/pkg/logger"
)

// Status is the outcome of FetchAndSave
type Status int

const (
	// StatusSaved means the image was downloaded and is on disk
	StatusSaved Status = iota
	// StatusSkipped means the store already knew the hash; nothing was fetched
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SavedImage describes an image that is now on disk
type SavedImage struct {
	DirectURI     string
	LocalFilename string
	ETag          sql.NullString
}

// Result is returned by FetchAndSave
type Result struct {
	Status Status
	Image  SavedImage
	Size   int
}

// RecordChecker answers whether an image hash has already been stored
type RecordChecker interface {
	Exists(ctx context.Context, hash string) (bool, error)
}

// FileSaver writes image bytes to their final location
type FileSaver interface {
	SaveIfAbsent(filename string, data []byte, mtime time.Time) (bool, error)
}

// Conn issues GETs against the image host
type Conn interface {
	Get(ctx context.Context, path string) (*http.Response, error)
	URL(path string) string
}

// Downloader fetches single images and writes them to disk
type Downloader struct {
	records RecordChecker
	files   FileSaver
	logger  logger.Logger
}

// New creates a downloader
func New(records RecordChecker, files FileSaver, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{records: records, files: files, logger: log}
}

// FetchAndSave downloads img over conn unless its hash is already stored.
// Descriptor problems are reported before any request is made.
func (d *Downloader) FetchAndSave(ctx context.Context, conn Conn, img *imgur.Image) (Result, error) {
	path, err := imgur.ImagePath(img)
	if err != nil {
		return Result{}, err
	}

	known, err := d.records.Exists(ctx, img.Hash)
	if err != nil {
		return Result{}, err
	}
	if known {
		d.logger.DebugWithFields("Image already downloaded", map[string]interface{}{
			"hash": img.Hash,
		})
		return Result{Status: StatusSkipped}, nil
	}

	uri := conn.URL(path)
	d.logger.InfoWithFields("Downloading image", map[string]interface{}{
		"url": uri,
	})

	resp, err := conn.Get(ctx, path)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return Result{}, errors.WithCode(errors.ErrorTypeNotFound, resp.StatusCode, "GET %s", path)
	case errors.IsRetryableStatusCode(resp.StatusCode):
		return Result{}, errors.WithCode(errors.ErrorTypeServerError, resp.StatusCode, "GET %s", path)
	default:
		return Result{}, errors.WithCode(errors.ErrorTypeHTTPStatus, resp.StatusCode, "GET %s", path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrorTypeTransport, err, "reading %s", path)
	}

	filename := imgur.FileName(img)
	mtime, _ := ParseCreated(img.Created.String)
	if _, err := d.files.SaveIfAbsent(filename, data, mtime); err != nil {
		return Result{}, err
	}

	// a present but empty ETag is recorded as "", an absent one as NULL
	etags := resp.Header.Values("ETag")
	etag := sql.NullString{Valid: len(etags) > 0}
	if etag.Valid {
		etag.String = etags[0]
	}
	return Result{
		Status: StatusSaved,
		Image: SavedImage{
			DirectURI:     uri,
			LocalFilename: filename,
			ETag:          etag,
		},
		Size: len(data),
	}, nil
}

// ParseCreated interprets the feed's created field as unix seconds,
// fractions allowed
func ParseCreated(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || secs >= math.MaxInt64 || secs < math.MinInt64 {
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), true
}
