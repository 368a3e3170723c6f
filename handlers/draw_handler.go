package handlers

import (
	"github.com/eedraws/draws-backend/storage"
	"github.com/gofiber/fiber/v2"
)

type DrawHandler struct {
	Store *storage.DrawStore
}

func NewDrawHandler(store *storage.DrawStore) *DrawHandler {
	return &DrawHandler{Store: store}
}

func (h *DrawHandler) GetDraws(c *fiber.Ctx) error {
	collection, err := h.Store.LoadCollection()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if collection == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "no draw collection available yet",
		})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"data":     collection.Rounds,
		"metadata": collection.Metadata,
	})
}

func (h *DrawHandler) GetLatestDraw(c *fiber.Ctx) error {
	collection, err := h.Store.LoadCollection()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if collection == nil || len(collection.Rounds) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "no draws available yet",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    collection.Rounds[0],
	})
}
