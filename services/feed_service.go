package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eedraws/draws-backend/config"
	"github.com/eedraws/draws-backend/shared"
	"github.com/sirupsen/logrus"
)

// FeedService fetches the upstream rounds feed. The feed is a single JSON
// document of the form {"rounds": [...]} where each round is a flat mapping
// with no guaranteed field set beyond the recognized columns.
type FeedService struct {
	feedURL    string
	client     *http.Client
	limiter    *shared.RequestRateLimiter
	maxRetries int
	metrics    *shared.ServiceMetrics
	logger     *logrus.Entry
}

// NewFeedService creates a feed client for the given URL.
func NewFeedService(feedURL string, cfg *config.FeedConfig) *FeedService {
	if cfg == nil {
		cfg = config.DefaultFeedConfig()
	}
	return &FeedService{
		feedURL:    feedURL,
		client:     shared.NewPooledHTTPClient(cfg.RequestTimeout),
		limiter:    shared.NewRequestRateLimiter(cfg.RequestRateLimit),
		maxRetries: cfg.MaxRetryAttempts,
		metrics:    shared.NewServiceMetrics("feed-service"),
		logger:     logrus.WithField("component", "FeedService"),
	}
}

type feedDocument struct {
	Rounds []map[string]any `json:"rounds"`
}

// Fetch retrieves and decodes the full round list. Any failure comes back
// as a transport-category error for the caller to recover as "no fresh
// data available".
func (s *FeedService) Fetch(ctx context.Context) ([]map[string]any, error) {
	s.limiter.Wait()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		s.metrics.RecordRequest(false)
		return nil, shared.WrapError(err, shared.ErrorCategoryTransport, "FEED_REQUEST_BUILD", "feed-service", "Fetch", false)
	}
	shared.SetFeedRequestHeaders(request)

	response, err := shared.ExecuteHTTPRequestWithRetry(s.client, request, s.maxRetries)
	if err != nil {
		s.metrics.RecordRequest(false)
		return nil, shared.WrapError(err, shared.ErrorCategoryTransport, "FEED_FETCH", "feed-service", "Fetch", true)
	}
	defer response.Body.Close()

	var document feedDocument
	if err := json.NewDecoder(response.Body).Decode(&document); err != nil {
		s.metrics.RecordRequest(false)
		return nil, shared.WrapError(err, shared.ErrorCategoryTransport, "FEED_DECODE", "feed-service", "Fetch", false)
	}

	s.metrics.RecordRequest(true)
	s.logger.WithField("round_count", len(document.Rounds)).Debug("Fetched upstream rounds feed")
	return document.Rounds, nil
}

// Metrics exposes fetch counters.
func (s *FeedService) Metrics() *shared.ServiceMetrics {
	return s.metrics
}
