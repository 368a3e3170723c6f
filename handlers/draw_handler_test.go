package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eedraws/draws-backend/models"
	"github.com/eedraws/draws-backend/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.DrawStore) {
	t.Helper()
	store, err := storage.NewDrawStore(t.TempDir())
	require.NoError(t, err)

	drawHandler := NewDrawHandler(store)
	analysisHandler := NewAnalysisHandler(store)

	app := fiber.New()
	app.Get("/draws", drawHandler.GetDraws)
	app.Get("/draws/latest", drawHandler.GetLatestDraw)
	app.Get("/analysis", analysisHandler.GetAnalysis)
	app.Get("/analysis/time", analysisHandler.GetTimeAnalysis)
	return app, store
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestGetDrawsEmptyStore(t *testing.T) {
	app, _ := newTestApp(t)

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/draws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, false, body["success"])
}

func TestGetDraws(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.ReplaceCollection(models.DrawCollection{
		Rounds: []models.DrawRecord{
			{Number: 2, Date: "2023-02-15"},
			{Number: 1, Date: "2023-01-10"},
		},
		Metadata: models.Metadata{UpdatedAt: "2023-02-15 13:30:00 UTC"},
	}))

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/draws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)
	metadata := body["metadata"].(map[string]any)
	assert.Equal(t, "2023-02-15 13:30:00 UTC", metadata["updated_at"])
}

func TestGetLatestDraw(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.ReplaceCollection(models.DrawCollection{
		Rounds: []models.DrawRecord{
			{Number: 2, Date: "2023-02-15"},
			{Number: 1, Date: "2023-01-10"},
		},
	}))

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/draws/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	latest := body["data"].(map[string]any)
	assert.Equal(t, float64(2), latest["drawNumber"])
}

func TestGetAnalysisBeforeGeneration(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/analysis", "/analysis/time"} {
		response, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, response.StatusCode, path)
	}
}

func TestGetAnalysis(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.WriteAnalysis(models.SummaryStats{
		Draws: models.DrawTotals{Total: 5},
	}))

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/analysis", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	data := body["data"].(map[string]any)
	draws := data["draws"].(map[string]any)
	assert.Equal(t, float64(5), draws["total"])
}
