package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eedraws/draws-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*DrawStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDrawStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestLoadCollectionMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	collection, err := store.LoadCollection()
	assert.NoError(t, err)
	assert.Nil(t, collection)
}

func TestReplaceAndLoadCollection(t *testing.T) {
	store, _ := newTestStore(t)

	size := 1500
	written := models.DrawCollection{
		Rounds: []models.DrawRecord{
			{Number: 2, Date: "2023-02-15", Name: "General", Size: &size},
			{Number: 1, Date: "2023-01-10"},
		},
		Metadata: models.Metadata{UpdatedAt: "2023-02-15 13:30:00 UTC"},
	}
	require.NoError(t, store.ReplaceCollection(written))

	loaded, err := store.LoadCollection()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, written, *loaded)

	// Absent optional fields must stay absent through a round trip.
	assert.Nil(t, loaded.Rounds[1].Size)
	assert.Nil(t, loaded.Rounds[1].MinScore)
}

func TestLoadCollectionCorruptFile(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EE.json"), []byte("{not json"), 0o644))

	collection, err := store.LoadCollection()
	assert.Error(t, err)
	assert.Nil(t, collection)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.ReplaceCollection(models.DrawCollection{
		Rounds: []models.DrawRecord{{Number: 1, Date: "2023-01-10"}},
	}))
	require.NoError(t, store.WriteAnalysis(models.SummaryStats{}))
	require.NoError(t, store.WriteTimeAnalysis(models.TimeStats{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-")
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{"EE.json", "analysis.json", "time_analysis.json"}, names)
}

func TestWrittenFileIsIndentedWithTrailingNewline(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.ReplaceCollection(models.DrawCollection{
		Rounds: []models.DrawRecord{{Number: 1, Date: "2023-01-10"}},
	}))

	data, err := os.ReadFile(store.CollectionPath())
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasSuffix(text, "\n"), "file should end with a newline")
	assert.Contains(t, text, "\n  \"rounds\"", "file should be two-space indented")
}

func TestAnalysisRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	missing, err := store.LoadAnalysis()
	require.NoError(t, err)
	assert.Nil(t, missing)

	mean := 512.5
	stats := models.SummaryStats{
		Updated: models.UpdatedInfo{Last: "2023-02-15 13:30:00 UTC"},
		Draws:   models.DrawTotals{Total: 2},
		Score:   models.FieldSummary{Count: 2, Average: &mean},
	}
	require.NoError(t, store.WriteAnalysis(stats))

	loaded, err := store.LoadAnalysis()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, stats, *loaded)
}

func TestTimeAnalysisRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	missing, err := store.LoadTimeAnalysis()
	require.NoError(t, err)
	assert.Nil(t, missing)

	mode := "1 PM - 2 PM"
	stats := models.TimeStats{
		TotalDrawsWithTimes: 1,
		MostCommonHour:      &mode,
		AnalysisDate:        "2023-02-15 13:30:00",
	}
	stats.HourDistribution[13] = 1
	require.NoError(t, store.WriteTimeAnalysis(stats))

	loaded, err := store.LoadTimeAnalysis()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, stats, *loaded)
}
