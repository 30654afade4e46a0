package jetpump

// Package jetpump contains the client for the JetPump trading backend.
// This file contains the base HTTP client - handles all HTTP requests to the API.
// Acts as transport layer - doesn't know business logic, just sends requests and receives responses.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"jetpump-terminal/internal/infra/log"
	"jetpump-terminal/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the JetPump backend behind the ngrok tunnel.
const DefaultBaseURL = "https://upright-mighty-colt.ngrok-free.app"

func GenerateRequestID() string { return log.GenerateRequestID() }

func LogRequest(requestID, method, endpoint string, fields ...zap.Field) {
	log.LogRequest(requestID, method, endpoint, fields...)
}

func LogResponse(requestID string, statusCode int, durationMs int64, fields ...zap.Field) {
	log.LogResponse(requestID, statusCode, durationMs, fields...)
}

func LogDebug(message string, fields ...zap.Field)   { log.LogDebug(message, fields...) }
func LogError(message string, fields ...zap.Field)   { log.LogError(message, fields...) }
func LogInfo(message string, fields ...zap.Field)    { log.LogInfo(message, fields...) }
func LogWarn(message string, fields ...zap.Field)    { log.LogWarn(message, fields...) }
func LogSuccess(message string, fields ...zap.Field) { log.LogSuccess(message, fields...) }

// Client is the JetPump API client.
// Stores everything needed for API work: base URL, HTTP client and the
// Telegram init-data credential used on every request.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64

	credMu     sync.RWMutex
	credential string // Telegram init data, sent as "Authorization: tma <credential>"
}

// NewClient creates a Client for the given base URL.
// Pass an empty baseURL to use DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	// 10 requests per second, burst up to 20
	rateLimiter := rate.NewLimiter(rate.Limit(10), 20)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "JetPumpAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:         baseURL,
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: 10 * 1024 * 1024, // 10MB
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

// SetCredential stores the Telegram init data used to authorize requests.
// Requests made without a credential go out without the Authorization header
// and the backend answers 401.
func (c *Client) SetCredential(initData string) {
	c.credMu.Lock()
	c.credential = initData
	c.credMu.Unlock()
}

// ClearCredential drops the stored credential.
func (c *Client) ClearCredential() {
	c.SetCredential("")
}

// Credential returns the currently stored credential.
func (c *Client) Credential() string {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.credential
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// MakeRequest performs an HTTP request with rate limiting and circuit breaker.
// Errors are logged and returned to the caller unchanged in meaning; there is
// no status-code branching and no retry here. User-triggered actions must see
// their failure exactly once.
func (c *Client) MakeRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	requestID := GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	var respBody []byte
	var err error

	if c.circuitBreaker != nil {
		_, err = c.circuitBreaker.Execute(func() (interface{}, error) {
			body, err := c.makeRequestWithContext(ctx, requestID, method, endpoint, body, startTime)
			if err != nil {
				return nil, err
			}
			respBody = body
			return body, nil
		})
		if err != nil {
			LogError("Request failed", zap.String("request_id", requestID), zap.String("endpoint", endpoint), zap.Error(err))
			return nil, err
		}
	} else {
		respBody, err = c.makeRequestWithContext(ctx, requestID, method, endpoint, body, startTime)
		if err != nil {
			return nil, err
		}
	}

	return respBody, nil
}

func (c *Client) makeRequestWithContext(ctx context.Context, requestID, method, endpoint string, body interface{}, startTime time.Time) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)

	LogRequest(requestID, method, endpoint, zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		LogResponse(requestID, 0, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	limitedReader := io.LimitReader(resp.Body, c.maxResponseSize)

	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		contentType := resp.Header.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "application/json") {
			// The ngrok tunnel answers HTML interstitials when the skip
			// header is stripped by a proxy.
			LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("error", "non-JSON error response"))
			return nil, fmt.Errorf("API error (%d): non-JSON response from tunnel", resp.StatusCode)
		}
		LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("error", "API error response received"))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.String("status", "success"))

	return respBody, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Skip the ngrok free-tier browser warning page.
	req.Header.Set("ngrok-skip-browser-warning", "true")

	cred := c.Credential()
	if cred != "" {
		req.Header.Set("Authorization", "tma "+cred)
	}
}
