package imgur

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"imgurr/pkg/errors"
	"imgurr/pkg/logger"
)

// PageResult is one fetched feed page
type PageResult struct {
	Page      int
	Images    []Image
	EndOfFeed bool
}

// Client fetches gallery pages over a feed connection
type Client struct {
	conn   *Conn
	logger logger.Logger
}

// NewClient creates a page client on conn
func NewClient(conn *Conn, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{conn: conn, logger: log}
}

// FetchPage fetches page n of community. A 404 or an empty gallery ends
// the feed and is reported through EndOfFeed, not as an error.
func (c *Client) FetchPage(ctx context.Context, community string, page int) (*PageResult, error) {
	path, err := PagePath(community, page)
	if err != nil {
		return nil, err
	}

	c.logger.InfoWithFields("fetching page", map[string]interface{}{
		"community": community,
		"page":      page,
		"path":      path,
	})

	resp, err := c.conn.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.InfoWithFields("no more pages", map[string]interface{}{
			"community": community,
			"page":      page,
		})
		return &PageResult{Page: page, EndOfFeed: true}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeTransport, err, "reading %s", path)
	}

	var gp GalleryPage
	decodeErr := json.Unmarshal(body, &gp)
	if decodeErr == nil && gp.Gallery != nil && len(*gp.Gallery) == 0 {
		c.logger.InfoWithFields("found empty gallery page", map[string]interface{}{
			"community": community,
			"page":      page,
			"status":    resp.StatusCode,
		})
		return &PageResult{Page: page, EndOfFeed: true}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, path)
	}

	if decodeErr == nil && gp.Gallery == nil {
		decodeErr = errors.New(errors.ErrorTypeParsing, "no gallery in response")
	}
	if decodeErr != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse page", map[string]interface{}{
			"path":         path,
			"error":        decodeErr.Error(),
			"body_preview": preview,
		})
		return nil, errors.Wrap(errors.ErrorTypeParsing, decodeErr, "decoding %s", path)
	}

	return &PageResult{Page: page, Images: *gp.Gallery}, nil
}

// Close closes the feed connection
func (c *Client) Close() error {
	return c.conn.Close()
}
