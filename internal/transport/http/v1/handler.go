// Package v1 provides the HTTP handlers for the medication service.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mediguard/internal/service"
)

// defaultUserID stands in when a request carries no X-User-ID header. The
// service has no authentication layer; callers are trusted to identify
// themselves.
const defaultUserID = "demo-user"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Prescription verification
	e.POST("/v1/prescriptions/verify", h.VerifyPrescription)
	e.POST("/v1/prescriptions/score", h.ScorePrescription)
	e.GET("/v1/prescriptions", h.ListPrescriptions)

	// Inventory
	e.POST("/v1/inventory", h.AddInventoryItem)
	e.GET("/v1/inventory", h.ListInventory)
	e.GET("/v1/inventory/alerts", h.InventoryAlerts)

	// Guidance chat
	e.POST("/v1/chat", h.Chat)
	e.GET("/v1/chat/messages", h.ListChatMessages)

	// Async failure reports
	e.GET("/v1/notifications", h.Notifications)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// userID resolves the acting user from the request.
func userID(c echo.Context) string {
	if id := c.Request().Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}
