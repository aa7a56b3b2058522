package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mediguard/internal/domain"
)

// User-facing messages. Internal detail stays in the logs; clients get one of
// three stable phrasings keyed by what they can do about it.
const (
	msgInvalidSubmission = "Please provide prescription text or an image."
	msgAssistantDown     = "We couldn't reach the assistant. Please try again."
	msgInternal          = "Something went wrong. Please try again."
)

// writeError maps a service error onto an HTTP status and a user-facing
// message.
func writeError(c echo.Context, err error) error {
	var invalid *domain.InvalidSubmissionError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":  msgInvalidSubmission,
			"detail": invalid.Reason,
		})
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) && validation.Stage == domain.StageInput {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": msgInvalidSubmission,
		})
	}

	var unavailable *domain.CapabilityUnavailableError
	if errors.As(err, &unavailable) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": msgAssistantDown,
		})
	}

	var failed *domain.VerificationFailedError
	if errors.As(err, &failed) {
		var inner *domain.CapabilityUnavailableError
		if errors.As(failed.Err, &inner) {
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error": msgAssistantDown,
			})
		}
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": msgInternal,
	})
}
