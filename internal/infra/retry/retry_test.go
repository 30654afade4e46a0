package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"502", &HTTPError{StatusCode: 502}, true},
		{"503", &HTTPError{StatusCode: 503}, true},
		{"504", &HTTPError{StatusCode: 504}, true},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"401", &HTTPError{StatusCode: 401}, false},
		{"wrapped 500", fmt.Errorf("fetch: %w", &HTTPError{StatusCode: 500}), true},
		{"wrapped 404", fmt.Errorf("fetch: %w", &HTTPError{StatusCode: 404}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("junk"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("-3"))

	future := time.Now().Add(10 * time.Second).UTC().Format(time.RFC1123)
	d := ParseRetryAfter(future)
	assert.Greater(t, d, 5*time.Second)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC1123)
	assert.Equal(t, time.Duration(0), ParseRetryAfter(past))
}

func TestDoRetriesTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Options{MaxRetries: 3, BaseDelay: time.Millisecond}, func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 503}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Options{MaxRetries: 5, BaseDelay: time.Millisecond}, func() error {
		attempts++
		return &HTTPError{StatusCode: 404}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoExhaustsRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Options{MaxRetries: 2, BaseDelay: time.Millisecond}, func() error {
		attempts++
		return &HTTPError{StatusCode: 500}
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, 500, he.StatusCode)
}

func TestDoHonoursContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Options{MaxRetries: 1, BaseDelay: time.Millisecond}, func() error {
		t.Fatal("fn must not run with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFullJitterSleepBounds(t *testing.T) {
	for attempt := 0; attempt < 6; attempt++ {
		d := FullJitterSleep(attempt, 100*time.Millisecond, time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
	assert.Equal(t, time.Duration(0), FullJitterSleep(0, 0, time.Second))
}

func TestHTTPErrorMessage(t *testing.T) {
	assert.Equal(t, "API error (503)", (&HTTPError{StatusCode: 503}).Error())
	assert.Equal(t, `API error (400): {"error":"bad"}`,
		(&HTTPError{StatusCode: 400, Body: []byte(`{"error":"bad"}`)}).Error())
}
