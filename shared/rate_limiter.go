package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestRateLimiter enforces a minimum delay between upstream requests.
// One sync pass can hit the feed twice (freshness probe, then full fetch)
// and serve mode repeats on a ticker, so requests are spaced out of
// politeness to the upstream host.
type RequestRateLimiter struct {
	minimumDelay    time.Duration
	lastRequestTime time.Time
	mutex           sync.Mutex
	requestCount    int64
}

// NewRequestRateLimiter creates a rate limiter with the given minimum delay.
func NewRequestRateLimiter(minimumDelay time.Duration) *RequestRateLimiter {
	return &RequestRateLimiter{
		minimumDelay: minimumDelay,
	}
}

// Wait blocks until the minimum delay has elapsed since the last request.
func (limiter *RequestRateLimiter) Wait() {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()

	if !limiter.lastRequestTime.IsZero() {
		elapsed := time.Since(limiter.lastRequestTime)
		if elapsed < limiter.minimumDelay {
			remaining := limiter.minimumDelay - elapsed
			logrus.WithFields(logrus.Fields{
				"component":       "RequestRateLimiter",
				"remaining_delay": remaining,
				"request_count":   limiter.requestCount + 1,
			}).Debug("Enforcing rate limit delay")
			time.Sleep(remaining)
		}
	}

	limiter.lastRequestTime = time.Now()
	limiter.requestCount++
}

// GetRequestCount returns the total number of requests processed.
func (limiter *RequestRateLimiter) GetRequestCount() int64 {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	return limiter.requestCount
}
