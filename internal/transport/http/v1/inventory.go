package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mediguard/internal/domain"
)

// AddInventoryItem records a medication in the user's stock.
// POST /v1/inventory
func (h *Handler) AddInventoryItem(c echo.Context) error {
	var item domain.InventoryItem
	if err := c.Bind(&item); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidSubmission})
	}

	ctx := c.Request().Context()

	created, err := h.service.AddInventoryItem(ctx, item, userID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// ListInventory retrieves the user's inventory, ordered by name.
// GET /v1/inventory
func (h *Handler) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.service.ListInventory(ctx, userID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// InventoryAlerts evaluates the alert policy over the user's inventory.
// GET /v1/inventory/alerts
func (h *Handler) InventoryAlerts(c echo.Context) error {
	ctx := c.Request().Context()

	alerts, err := h.service.InventoryAlerts(ctx, userID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": alerts,
	})
}
