package shared

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// NewPooledHTTPClient creates an HTTP client with connection pooling tuned
// for a small number of repeat requests against a single host.
func NewPooledHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,

			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,

			DisableCompression: false,
		},
	}
}

// SetFeedRequestHeaders configures request headers for the upstream feed.
func SetFeedRequestHeaders(request *http.Request) {
	request.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Language", "en-US,en;q=0.9")
	request.Header.Set("Cache-Control", "no-cache")
}

// ExecuteHTTPRequestWithRetry executes an HTTP request with exponential
// backoff between attempts. A non-200 response counts as a failed attempt.
func ExecuteHTTPRequestWithRetry(client *http.Client, request *http.Request, maxRetryAttempts int) (*http.Response, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "http_client",
		"url":       request.URL.String(),
	})

	var response *http.Response
	var lastErr error

	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			logger.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"backoff": backoff,
			}).Debug("Retrying HTTP request after backoff")
			time.Sleep(backoff)
		}

		response, lastErr = client.Do(request)
		if lastErr == nil && response.StatusCode == http.StatusOK {
			return response, nil
		}

		if lastErr != nil {
			lastErr = fmt.Errorf("attempt %d failed with network error: %w", attempt+1, lastErr)
			logger.WithError(lastErr).Debug("HTTP request failed with network error")
			continue
		}

		lastErr = fmt.Errorf("attempt %d failed with HTTP %d: %s", attempt+1, response.StatusCode, http.StatusText(response.StatusCode))
		logger.WithField("status_code", response.StatusCode).Debug("HTTP request failed with non-200 status")
		response.Body.Close()
	}

	totalAttempts := maxRetryAttempts + 1
	logger.WithField("total_attempts", totalAttempts).Error("HTTP request failed after all retry attempts")
	return nil, fmt.Errorf("HTTP request failed after %d attempts: %w", totalAttempts, lastErr)
}
