package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GenerateRequest is the wire request to the generative capability endpoint.
// Media entries are inline data:<mime>;base64,<data> payloads.
type GenerateRequest struct {
	Capability  string   `json:"capability"`
	Instruction string   `json:"instruction"`
	Media       []string `json:"media,omitempty"`
}

type generateResponse struct {
	Output json.RawMessage `json:"output"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client sends a rendered instruction to the model and returns its raw
// structured response. Implementations must be safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (json.RawMessage, error)
}

// HTTPClient calls the capability endpoint over HTTP.
type HTTPClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a capability client for the given endpoint.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPClient{http: client, logger: logger}
}

// Generate posts the request and returns the model's raw output object.
// Transport failures and non-200 responses are returned as plain errors; the
// invoker classifies them as capability unavailability.
func (c *HTTPClient) Generate(ctx context.Context, req *GenerateRequest) (json.RawMessage, error) {
	start := time.Now()

	var result generateResponse
	var errBody apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&errBody).
		Post("/v1/generate")
	if err != nil {
		return nil, fmt.Errorf("failed to reach capability endpoint: %w", err)
	}

	c.logger.Debug("capability call finished",
		zap.String("capability", req.Capability),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.IsError() {
		if errBody.Error != "" {
			return nil, fmt.Errorf("capability endpoint returned %d: %s", resp.StatusCode(), errBody.Error)
		}
		return nil, fmt.Errorf("capability endpoint returned %d", resp.StatusCode())
	}
	if len(result.Output) == 0 {
		return nil, fmt.Errorf("capability endpoint returned an empty output")
	}
	return result.Output, nil
}
