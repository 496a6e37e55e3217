package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "imgurr/pkg/errors"
	"imgurr/pkg/logger"
)

func transportErr() error {
	return errs.Wrap(errs.ErrorTypeTransport, io.ErrUnexpectedEOF, "GET /r/test/page/0.json")
}

func TestConstantBackoff(t *testing.T) {
	b := &ConstantBackoff{Delay: 5 * time.Second}
	assert.Equal(t, time.Duration(0), b.NextDelay(0))
	assert.Equal(t, 5*time.Second, b.NextDelay(1))
	assert.Equal(t, 5*time.Second, b.NextDelay(7))
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	var retried []int

	err := Do(func() error {
		attempts++
		if attempts < 3 {
			return transportErr()
		}
		return nil
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		OnRetry:     func(attempt int, err error, delay time.Duration) { retried = append(retried, attempt) },
		Context:     context.Background(),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryExhausted(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		return transportErr()
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Context:     context.Background(),
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, errs.IsType(err, errs.ErrorTypeRetryExhausted))
	assert.True(t, errs.IsType(err, errs.ErrorTypeTransport))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRetryUnbounded(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		if attempts < 10 {
			return transportErr()
		}
		return nil
	}, &Config{
		MaxAttempts: 0,
		Backoff:     &ConstantBackoff{},
		Context:     context.Background(),
	})

	require.NoError(t, err)
	assert.Equal(t, 10, attempts)
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	parseErr := errs.New(errs.ErrorTypeParsing, "unexpected token")

	err := Do(func() error {
		attempts++
		return parseErr
	}, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Context:     context.Background(),
	})

	assert.Same(t, parseErr, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return transportErr()
	}, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		Context:     ctx,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryLogsAttempts(t *testing.T) {
	log := logger.NewTestLogger()
	attempts := 0

	_ = Do(func() error {
		attempts++
		return transportErr()
	}, &Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{},
		Context:     context.Background(),
		Logger:      log,
	})

	assert.True(t, log.HasMessage("retrying operation"))
	assert.True(t, log.HasMessage("max retry attempts exceeded"))
}

func TestDefaultRetryIf(t *testing.T) {
	assert.True(t, DefaultRetryIf(transportErr()))
	assert.True(t, DefaultRetryIf(errs.WithCode(errs.ErrorTypeServerError, 503, "busy")))
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(errors.New("plain")))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeInvalidDescriptor, "bad hash")))
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", transportErr()
		}
		return "ok", nil
	}, &Config{MaxAttempts: 3, Backoff: &ConstantBackoff{}})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
