package imgur

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgurr/pkg/errors"
	"imgurr/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logger.TestLogger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewTestLogger()
	d := NewDialer(Options{FeedURL: srv.URL, ImageURL: srv.URL, Timeout: 5 * time.Second, Logger: log})
	c := NewClient(d.DialFeed(), log)
	t.Cleanup(func() { c.Close() })
	return c, log
}

func TestFetchPage(t *testing.T) {
	var gotPath, gotAgent string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.UserAgent()
		fmt.Fprint(w, `{"gallery":[{"hash":"abc123","ext":".jpg","nsfw":false},{"hash":"def456","ext":".png","nsfw":true}]}`)
	})

	res, err := c.FetchPage(context.Background(), "/r/test", 3)
	require.NoError(t, err)

	assert.Equal(t, "/r/test/page/3.json", gotPath)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.False(t, res.EndOfFeed)
	assert.Equal(t, 3, res.Page)
	require.Len(t, res.Images, 2)
	assert.Equal(t, "abc123", res.Images[0].Hash)
	assert.Equal(t, "1", res.Images[1].NSFW.String)
}

func TestFetchPageEndOfFeed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, "nope"},
		{"empty gallery", http.StatusOK, `{"gallery":[]}`},
		{"empty gallery on error status", http.StatusServiceUnavailable, `{"gallery":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			res, err := c.FetchPage(context.Background(), "/r/test", 7)
			require.NoError(t, err)
			assert.True(t, res.EndOfFeed)
			assert.Empty(t, res.Images)
			assert.Equal(t, 7, res.Page)
			assert.NotEmpty(t, log.GetMessagesByLevel("INFO"))
		})
	}
}

func TestFetchPageParseError(t *testing.T) {
	c, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance</html>`)
	})

	_, err := c.FetchPage(context.Background(), "/r/test", 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
	assert.True(t, log.HasMessage("failed to parse page"))
}

func TestFetchPageMissingGallery(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.ErrorType
	}{
		{"empty object", http.StatusOK, `{}`, errors.ErrorTypeParsing},
		{"null body", http.StatusOK, `null`, errors.ErrorTypeParsing},
		{"null gallery", http.StatusOK, `{"gallery":null}`, errors.ErrorTypeParsing},
		{"error object", http.StatusOK, `{"data":{"error":"rate limited"},"success":false}`, errors.ErrorTypeParsing},
		{"error object on 503", http.StatusServiceUnavailable, `{"data":{"error":"over capacity"},"success":false}`, errors.ErrorTypeServerError},
		{"error object on 429", http.StatusTooManyRequests, `{"data":{"error":"slow down"},"success":false}`, errors.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			res, err := c.FetchPage(context.Background(), "/r/test", 0)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsType(err, tt.want))
		})
	}
}

func TestFetchPageStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   errors.ErrorType
	}{
		{http.StatusServiceUnavailable, errors.ErrorTypeServerError},
		{http.StatusTooManyRequests, errors.ErrorTypeServerError},
		{http.StatusForbidden, errors.ErrorTypeHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.FetchPage(context.Background(), "/r/test", 0)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.want))
		})
	}
}

func TestFetchPageInvalidNameMakesNoRequest(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := c.FetchPage(context.Background(), "/r/bad name", 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidName))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetchPageTransportError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	})

	_, err := c.FetchPage(context.Background(), "/r/test", 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransport))
}

func TestFetchPageCancelled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"gallery":[]}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPage(ctx, "/r/test", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.IsType(err, errors.ErrorTypeTransport))
}

func TestConnReusesConnection(t *testing.T) {
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"gallery":[]}`)
	}))
	var conns int32
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			atomic.AddInt32(&conns, 1)
		}
	}
	srv.Start()
	defer srv.Close()

	d := NewDialer(Options{FeedURL: srv.URL, Logger: logger.NewNopLogger()})
	c := NewClient(d.DialFeed(), logger.NewNopLogger())
	defer c.Close()

	for i := 0; i < 3; i++ {
		_, err := c.FetchPage(context.Background(), "/r/test", i)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&conns))
}
