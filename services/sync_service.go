package services

import (
	"context"
	"time"

	"github.com/eedraws/draws-backend/models"
	"github.com/eedraws/draws-backend/shared"
	"github.com/eedraws/draws-backend/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// metadataTimeFormat matches the persisted updated_at layout: local time,
// seconds precision, with zone abbreviation.
const metadataTimeFormat = "2006-01-02 15:04:05 MST"

// DrawSyncService decides whether freshly fetched data changes local state
// and performs the merge-and-persist. The persisted collection is only ever
// replaced wholesale; no record is patched in place.
type DrawSyncService struct {
	store   *storage.DrawStore
	feed    *FeedService
	logger  *logrus.Entry
	metrics *shared.ServiceMetrics
}

// NewDrawSyncService creates a synchronizer over the given store and feed.
func NewDrawSyncService(store *storage.DrawStore, feed *FeedService) *DrawSyncService {
	return &DrawSyncService{
		store:   store,
		feed:    feed,
		logger:  logrus.WithField("component", "DrawSyncService"),
		metrics: shared.NewServiceMetrics("draw-sync-service"),
	}
}

// SyncAndPersist compares the fetched record set against the persisted one
// and overwrites the whole collection when the counts differ. An equal
// count with an existing collection is treated as unchanged and nothing is
// written, keeping the operation idempotent byte-for-byte; callers that
// want a fresh updated_at use RefreshMetadata. A shrinking feed is an
// anomaly: it is logged loudly but the feed stays authoritative.
func (s *DrawSyncService) SyncAndPersist(fetched []models.DrawRecord) (models.SyncResult, error) {
	result := models.SyncResult{RunID: uuid.New()}
	logger := s.logger.WithField("run_id", result.RunID)

	records := dedupeByNumber(fetched)
	models.SortDraws(records)

	existing, err := s.store.LoadCollection()
	if err != nil {
		s.metrics.RecordRequest(false)
		return result, err
	}

	result.PriorCount = 0
	if existing != nil {
		result.PriorCount = len(existing.Rounds)
	}
	result.NewCount = len(records)

	if existing != nil && result.PriorCount == result.NewCount {
		logger.WithField("draw_count", result.NewCount).Info("Number of draws unchanged")
		s.metrics.RecordRequest(true)
		s.metrics.IncrementCounter("sync_unchanged")
		return result, nil
	}

	if result.NewCount < result.PriorCount {
		logger.WithFields(logrus.Fields{
			"prior_count": result.PriorCount,
			"new_count":   result.NewCount,
		}).Warn("Upstream feed shrank; overwriting with the smaller authoritative set")
		s.metrics.IncrementCounter("feed_shrink_anomaly")
	}

	collection := models.DrawCollection{
		Rounds:   records,
		Metadata: models.Metadata{UpdatedAt: time.Now().Format(metadataTimeFormat)},
	}
	if err := s.store.ReplaceCollection(collection); err != nil {
		s.metrics.RecordRequest(false)
		return result, err
	}

	result.Changed = true
	s.metrics.RecordRequest(true)
	s.metrics.IncrementCounter("sync_changed")
	logger.WithFields(logrus.Fields{
		"prior_count": result.PriorCount,
		"new_count":   result.NewCount,
	}).Info("Updated draw collection")
	return result, nil
}

// RefreshMetadata rewrites the collection with a current updated_at while
// leaving the records untouched. Separate from SyncAndPersist because the
// metadata refresh is independent of the changed signal.
func (s *DrawSyncService) RefreshMetadata() error {
	existing, err := s.store.LoadCollection()
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	existing.Metadata.UpdatedAt = time.Now().Format(metadataTimeFormat)
	return s.store.ReplaceCollection(*existing)
}

// CheckFreshness compares the local record count against the live upstream
// count without persisting anything. An upstream fetch failure is reported
// as "no update needed" rather than propagated; a full sync against a dead
// feed would fail anyway.
func (s *DrawSyncService) CheckFreshness(ctx context.Context) (bool, int, int) {
	existingCount := 0
	if existing, err := s.store.LoadCollection(); err != nil {
		s.logger.WithError(err).Error("Failed to read existing collection during freshness check")
	} else if existing != nil {
		existingCount = len(existing.Rounds)
	}

	rounds, err := s.feed.Fetch(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Freshness check could not reach upstream feed; treating as no update needed")
		return false, existingCount, 0
	}

	return existingCount < len(rounds), existingCount, len(rounds)
}

// LatestDraws returns the most recent and previous persisted draws, either
// of which may be nil.
func (s *DrawSyncService) LatestDraws() (*models.DrawRecord, *models.DrawRecord, error) {
	collection, err := s.store.LoadCollection()
	if err != nil {
		return nil, nil, err
	}
	if collection == nil || len(collection.Rounds) == 0 {
		return nil, nil, nil
	}

	latest := collection.Rounds[0]
	if len(collection.Rounds) < 2 {
		return &latest, nil, nil
	}
	previous := collection.Rounds[1]
	return &latest, &previous, nil
}

// Metrics exposes sync counters.
func (s *DrawSyncService) Metrics() *shared.ServiceMetrics {
	return s.metrics
}

// dedupeByNumber drops repeated draw numbers, keeping the first occurrence.
// The feed has never shipped duplicates, but the uniqueness invariant of
// the persisted collection should not depend on that.
func dedupeByNumber(records []models.DrawRecord) []models.DrawRecord {
	seen := make(map[int]bool, len(records))
	deduped := make([]models.DrawRecord, 0, len(records))
	for _, record := range records {
		if seen[record.Number] {
			continue
		}
		seen[record.Number] = true
		deduped = append(deduped, record)
	}
	return deduped
}
