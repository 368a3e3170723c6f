package handlers

import (
	"github.com/eedraws/draws-backend/shared"
	"github.com/eedraws/draws-backend/storage"
	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	Store *storage.DrawStore
}

func NewAnalysisHandler(store *storage.DrawStore) *AnalysisHandler {
	return &AnalysisHandler{Store: store}
}

func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	stats, err := h.Store.LoadAnalysis()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if stats == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "summary analysis not generated yet",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

func (h *AnalysisHandler) GetTimeAnalysis(c *fiber.Ctx) error {
	stats, err := h.Store.LoadTimeAnalysis()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if stats == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "time analysis not generated yet",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// MetricsHandler exposes per-service counters for operational visibility.
type MetricsHandler struct {
	Sources map[string]*shared.ServiceMetrics
}

func NewMetricsHandler(sources map[string]*shared.ServiceMetrics) *MetricsHandler {
	return &MetricsHandler{Sources: sources}
}

func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	snapshots := make(map[string]interface{}, len(h.Sources))
	for name, metrics := range h.Sources {
		snapshots[name] = metrics.GetSnapshot()
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshots,
	})
}
