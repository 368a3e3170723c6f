package services

import (
	"os"
	"strings"
	"testing"

	"github.com/eedraws/draws-backend/models"
	"github.com/eedraws/draws-backend/storage"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncService(t *testing.T) (*DrawSyncService, *storage.DrawStore) {
	t.Helper()
	store, err := storage.NewDrawStore(t.TempDir())
	require.NoError(t, err)
	return NewDrawSyncService(store, nil), store
}

func intPtr(v int) *int {
	return &v
}

func testDraw(number int, date string) models.DrawRecord {
	return models.DrawRecord{
		Number:      number,
		Date:        date,
		DateTimeRaw: date + " 13:30:00 UTC",
		Name:        "General",
		Size:        intPtr(1000 + number),
		MinScore:    intPtr(480),
	}
}

func TestSyncAndPersistFirstRun(t *testing.T) {
	syncService, store := newTestSyncService(t)

	fetched := []models.DrawRecord{
		testDraw(1, "2023-01-10"),
		testDraw(2, "2023-02-15"),
		testDraw(3, "2023-03-20"),
	}

	result, err := syncService.SyncAndPersist(fetched)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 0, result.PriorCount)
	assert.Equal(t, 3, result.NewCount)

	collection, err := store.LoadCollection()
	require.NoError(t, err)
	require.NotNil(t, collection)
	assert.Len(t, collection.Rounds, 3)
	assert.NotEmpty(t, collection.Metadata.UpdatedAt)
	// Most recent first.
	assert.Equal(t, 3, collection.Rounds[0].Number)
	assert.Equal(t, 1, collection.Rounds[2].Number)
}

func TestSyncAndPersistIsIdempotent(t *testing.T) {
	syncService, store := newTestSyncService(t)

	fetched := []models.DrawRecord{
		testDraw(1, "2023-01-10"),
		testDraw(2, "2023-02-15"),
	}

	first, err := syncService.SyncAndPersist(fetched)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	before, err := os.ReadFile(store.CollectionPath())
	require.NoError(t, err)

	second, err := syncService.SyncAndPersist(fetched)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, 2, second.PriorCount)
	assert.Equal(t, 2, second.NewCount)

	after, err := os.ReadFile(store.CollectionPath())
	require.NoError(t, err)
	assert.Equal(t, before, after, "unchanged sync must leave the collection byte-identical")
}

func TestSyncAndPersistSortInvariant(t *testing.T) {
	syncService, store := newTestSyncService(t)

	// Shuffled input including a date tie broken by draw number.
	fetched := []models.DrawRecord{
		testDraw(5, "2023-02-15"),
		testDraw(9, "2023-06-01"),
		testDraw(6, "2023-02-15"),
		testDraw(2, "2023-01-10"),
	}

	_, err := syncService.SyncAndPersist(fetched)
	require.NoError(t, err)

	collection, err := store.LoadCollection()
	require.NoError(t, err)
	rounds := collection.Rounds
	for i := 1; i < len(rounds); i++ {
		previous, current := rounds[i-1], rounds[i]
		assert.GreaterOrEqual(t, previous.Date, current.Date)
		if previous.Date == current.Date {
			assert.GreaterOrEqual(t, previous.Number, current.Number)
		}
	}
}

func TestSyncAndPersistShrinkAnomaly(t *testing.T) {
	syncService, store := newTestSyncService(t)
	hook := logrustest.NewGlobal()
	defer hook.Reset()

	larger := make([]models.DrawRecord, 0, 60)
	for i := 1; i <= 60; i++ {
		larger = append(larger, testDraw(i, "2023-01-10"))
	}
	_, err := syncService.SyncAndPersist(larger)
	require.NoError(t, err)

	smaller := larger[:50]
	result, err := syncService.SyncAndPersist(smaller)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 60, result.PriorCount)
	assert.Equal(t, 50, result.NewCount)

	// The smaller upstream-authoritative set wins...
	collection, err := store.LoadCollection()
	require.NoError(t, err)
	assert.Len(t, collection.Rounds, 50)

	// ...but never silently.
	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.Contains(entry.Message, "shrank") {
			warned = true
		}
	}
	assert.True(t, warned, "feed shrink must emit a warning")
}

func TestSyncAndPersistDeduplicatesByNumber(t *testing.T) {
	syncService, store := newTestSyncService(t)

	fetched := []models.DrawRecord{
		testDraw(1, "2023-01-10"),
		testDraw(1, "2023-01-10"),
		testDraw(2, "2023-02-15"),
	}

	result, err := syncService.SyncAndPersist(fetched)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewCount)

	collection, err := store.LoadCollection()
	require.NoError(t, err)
	assert.Len(t, collection.Rounds, 2)
}

func TestRefreshMetadataLeavesRecordsUntouched(t *testing.T) {
	syncService, store := newTestSyncService(t)

	_, err := syncService.SyncAndPersist([]models.DrawRecord{testDraw(1, "2023-01-10")})
	require.NoError(t, err)

	before, err := store.LoadCollection()
	require.NoError(t, err)

	require.NoError(t, syncService.RefreshMetadata())

	after, err := store.LoadCollection()
	require.NoError(t, err)
	assert.Equal(t, before.Rounds, after.Rounds)
	assert.NotEmpty(t, after.Metadata.UpdatedAt)
}

func TestRefreshMetadataWithoutCollection(t *testing.T) {
	syncService, _ := newTestSyncService(t)
	assert.NoError(t, syncService.RefreshMetadata())
}

func TestLatestDraws(t *testing.T) {
	syncService, _ := newTestSyncService(t)

	latest, previous, err := syncService.LatestDraws()
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Nil(t, previous)

	_, err = syncService.SyncAndPersist([]models.DrawRecord{
		testDraw(1, "2023-01-10"),
		testDraw(2, "2023-02-15"),
	})
	require.NoError(t, err)

	latest, previous, err = syncService.LatestDraws()
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.NotNil(t, previous)
	assert.Equal(t, 2, latest.Number)
	assert.Equal(t, 1, previous.Number)
}
