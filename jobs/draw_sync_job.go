package jobs

import (
	"context"
	"time"

	"github.com/eedraws/draws-backend/models"
	"github.com/eedraws/draws-backend/services"
	"github.com/eedraws/draws-backend/shared"
	"github.com/eedraws/draws-backend/storage"
	"github.com/sirupsen/logrus"
)

// DrawSyncJob runs the full pipeline to completion: freshness check, fetch,
// sync-and-persist, statistics regeneration, notification. Each stage
// degrades on its own terms; only persistence failures abort the run.
type DrawSyncJob struct {
	FeedService *services.FeedService
	SyncService *services.DrawSyncService
	Stats       *services.StatsService
	Report      *services.ReportService
	Notifier    *services.NotifierService
	Store       *storage.DrawStore
	Recipient   string
}

func NewDrawSyncJob(
	feedService *services.FeedService,
	syncService *services.DrawSyncService,
	stats *services.StatsService,
	report *services.ReportService,
	notifier *services.NotifierService,
	store *storage.DrawStore,
	recipient string,
) *DrawSyncJob {
	return &DrawSyncJob{
		FeedService: feedService,
		SyncService: syncService,
		Stats:       stats,
		Report:      report,
		Notifier:    notifier,
		Store:       store,
		Recipient:   recipient,
	}
}

// Run executes one pipeline pass for the serve-mode scheduler, logging
// instead of returning unrecoverable failures.
func (j *DrawSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	if err := j.RunOnce(ctx); err != nil {
		logrus.Errorf("Draw sync job failed: %v", err)
	}
}

// RunOnce executes one pipeline pass. The returned error is non-nil only
// for unrecoverable failures (persistence); transport failures are
// recovered locally as "no fresh data available".
func (j *DrawSyncJob) RunOnce(ctx context.Context) error {
	logrus.Info("Starting draw sync job")

	needsUpdate, existingCount, upstreamCount := j.SyncService.CheckFreshness(ctx)
	if !needsUpdate {
		logrus.WithFields(logrus.Fields{
			"existing_count": existingCount,
			"upstream_count": upstreamCount,
		}).Info("No new draws found, skipping full sync")
		if err := j.SyncService.RefreshMetadata(); err != nil {
			return err
		}
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"existing_count": existingCount,
		"upstream_count": upstreamCount,
	}).Info("New draws available upstream")

	rounds, err := j.FeedService.Fetch(ctx)
	if err != nil {
		// The feed answered the freshness probe moments ago, but transport
		// failure is still recovered as "no fresh data available".
		if serviceErr := shared.WrapError(err, shared.ErrorCategoryTransport, "FEED_FETCH", "draw-sync-job", "RunOnce", true); serviceErr != nil {
			serviceErr.LogError()
		}
		return nil
	}

	result, err := j.SyncService.SyncAndPersist(models.ProjectRounds(rounds))
	if err != nil {
		return err
	}

	logger := logrus.WithFields(logrus.Fields{
		"run_id":      result.RunID,
		"changed":     result.Changed,
		"prior_count": result.PriorCount,
		"new_count":   result.NewCount,
	})

	if !result.Changed {
		logger.Info("Collection unchanged after fetch, refreshing metadata only")
		if err := j.SyncService.RefreshMetadata(); err != nil {
			return err
		}
		return nil
	}

	if err := j.regenerateAnalysis(); err != nil {
		return err
	}

	j.notify(logger)

	logger.Info("Draw sync job completed")
	return nil
}

// regenerateAnalysis rewrites both derived documents in full from the
// freshly persisted collection.
func (j *DrawSyncJob) regenerateAnalysis() error {
	collection, err := j.Store.LoadCollection()
	if err != nil {
		return err
	}
	if collection == nil {
		return nil
	}

	summary := j.Stats.Summarize(collection.Rounds, collection.Metadata.UpdatedAt)
	if err := j.Store.WriteAnalysis(summary); err != nil {
		return err
	}

	timeStats := j.Stats.TimeOfDayHistogram(collection.Rounds)
	if err := j.Store.WriteTimeAnalysis(timeStats); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"total_draws":      summary.Draws.Total,
		"draws_with_times": timeStats.TotalDrawsWithTimes,
		"unparsed_count":   timeStats.UnparsedCount,
	}).Info("Regenerated analysis documents")
	return nil
}

// notify emails the latest draw summary. Delivery failure is logged and
// never rolls back the completed synchronization.
func (j *DrawSyncJob) notify(logger *logrus.Entry) {
	if j.Notifier == nil || j.Recipient == "" {
		return
	}

	latest, previous, err := j.SyncService.LatestDraws()
	if err != nil || latest == nil {
		logger.WithError(err).Warn("Could not load latest draw for notification")
		return
	}

	subject, body := j.Report.BuildDrawNotification(*latest, previous)
	if err := j.Notifier.Send(subject, body, j.Recipient); err != nil {
		logger.WithError(err).Error("Failed to send draw notification")
	}
}
