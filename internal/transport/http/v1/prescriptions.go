package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mediguard/internal/domain"
)

// VerifyPrescription runs a full verification attempt and persists the result.
// POST /v1/prescriptions/verify
func (h *Handler) VerifyPrescription(c echo.Context) error {
	var sub domain.PrescriptionSubmission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidSubmission})
	}

	ctx := c.Request().Context()

	result, err := h.service.VerifyPrescription(ctx, sub, userID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ScorePrescription runs the score-only check without persisting anything.
// POST /v1/prescriptions/score
func (h *Handler) ScorePrescription(c echo.Context) error {
	var sub domain.PrescriptionSubmission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidSubmission})
	}

	ctx := c.Request().Context()

	assessment, err := h.service.ScorePrescription(ctx, sub)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, assessment)
}

// ListPrescriptions retrieves the user's verified prescriptions, newest first.
// GET /v1/prescriptions
func (h *Handler) ListPrescriptions(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	ctx := c.Request().Context()

	prescriptions, err := h.service.ListPrescriptions(ctx, userID(c), limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"prescriptions": prescriptions,
	})
}

// Notifications drains the user's pending asynchronous failure reports.
// GET /v1/notifications
func (h *Handler) Notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": h.service.Notifications(userID(c)),
	})
}
