package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type chatRequest struct {
	Query string `json:"query"`
}

// Chat answers a medication question and appends the exchange to the log.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msgInvalidSubmission})
	}

	ctx := c.Request().Context()

	reply, err := h.service.Chat(ctx, userID(c), req.Query)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, reply)
}

// ListChatMessages retrieves the conversation log in order.
// GET /v1/chat/messages
func (h *Handler) ListChatMessages(c echo.Context) error {
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	ctx := c.Request().Context()

	messages, err := h.service.ListChatMessages(ctx, userID(c), limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}
