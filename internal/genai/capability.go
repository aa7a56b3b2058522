package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mediguard/internal/domain"
	"mediguard/internal/metrics"
)

// Capability declares one generative task: its name, the schemas enforced at
// the boundary, and the instruction template rendered from the input.
type Capability struct {
	Name     string
	Input    Schema
	Output   Schema
	Template string
}

// Invoker runs capabilities against a Client. It holds no per-request state
// and is safe to share across goroutines.
type Invoker struct {
	client  Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewInvoker creates an invoker. metrics may be nil.
func NewInvoker(client Client, logger *zap.Logger, m *metrics.Metrics) *Invoker {
	return &Invoker{client: client, logger: logger, metrics: m}
}

// Invoke validates input, renders the instruction, calls the model, and
// validates its response. Input violations fail before any external call.
// Output violations are never retried here: the model's response is
// best-effort, and retry is a caller policy decision.
func (iv *Invoker) Invoke(ctx context.Context, c Capability, input map[string]any) (map[string]any, error) {
	if errs := c.Input.Validate(input); len(errs) > 0 {
		return nil, &domain.ValidationError{Capability: c.Name, Stage: domain.StageInput, Fields: errs}
	}

	prompt, err := Render(c.Template, input)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", c.Name, err)
	}

	start := time.Now()
	raw, err := iv.client.Generate(ctx, &GenerateRequest{
		Capability:  c.Name,
		Instruction: prompt.Text,
		Media:       prompt.Media,
	})
	if err != nil {
		iv.metrics.ObserveCapability(c.Name, "unavailable", time.Since(start).Seconds())
		return nil, &domain.CapabilityUnavailableError{Capability: c.Name, Err: err}
	}

	var output map[string]any
	if err := json.Unmarshal(raw, &output); err != nil {
		iv.metrics.ObserveCapability(c.Name, "invalid_output", time.Since(start).Seconds())
		return nil, &domain.ValidationError{
			Capability: c.Name,
			Stage:      domain.StageOutput,
			Fields:     []domain.FieldError{{Field: "$", Message: "response is not a JSON object"}},
		}
	}
	if errs := c.Output.Validate(output); len(errs) > 0 {
		iv.metrics.ObserveCapability(c.Name, "invalid_output", time.Since(start).Seconds())
		iv.logger.Warn("capability returned a non-conforming response",
			zap.String("capability", c.Name),
			zap.Int("violations", len(errs)),
		)
		return nil, &domain.ValidationError{Capability: c.Name, Stage: domain.StageOutput, Fields: errs}
	}

	iv.metrics.ObserveCapability(c.Name, "ok", time.Since(start).Seconds())
	return output, nil
}
