// Package flows defines the generative capabilities of the medication
// service: safety scoring, image detail extraction, and guidance chat. Each
// flow binds a prompt template to declared input/output schemas and exposes a
// typed wrapper over the capability invoker.
package flows

import (
	"context"

	"mediguard/internal/domain"
	"mediguard/internal/genai"
)

const safetyScoreTemplate = `You are a pharmacist AI assistant that evaluates the safety of prescriptions.

Analyze the prescription information provided and generate a safety score between 0 and 100.
Also, identify any potential issues or concerns related to the prescription, such as dosage problems, drug interactions, or other relevant safety considerations.

Return the safety score and a list of any identified issues.

Consider the following prescription information:
{{#if prescriptionText}}
Prescription Text: {{{prescriptionText}}}
{{/if}}
{{#if prescriptionImage}}
Prescription Image: {{media url=prescriptionImage}}
{{/if}}
`

// SafetyScoreCapability produces a 0-100 safety score and issue list from
// prescription text and/or image. Scores outside the range are rejected at
// the output boundary, never clamped.
var SafetyScoreCapability = genai.Capability{
	Name: "prescription_safety_score",
	Input: genai.Schema{Fields: []genai.Field{
		{Name: "prescriptionText", Type: genai.TypeString},
		{Name: "prescriptionImage", Type: genai.TypeImage},
	}},
	Output: genai.Schema{Fields: []genai.Field{
		{Name: "safetyScore", Type: genai.TypeNumber, Required: true, Min: genai.Num(0), Max: genai.Num(100)},
		{Name: "issues", Type: genai.TypeArray, Required: true, Elem: &genai.Field{Type: genai.TypeString}},
	}},
	Template: safetyScoreTemplate,
}

// SafetyInput is the submission handed to the scorer. At least one of
// Text/Image must be present.
type SafetyInput struct {
	Text  string
	Image string
}

// SafetyScorer invokes the safety scoring capability.
type SafetyScorer struct {
	invoker *genai.Invoker
}

// NewSafetyScorer creates a scorer on the given invoker.
func NewSafetyScorer(invoker *genai.Invoker) *SafetyScorer {
	return &SafetyScorer{invoker: invoker}
}

// Score runs the capability and returns the assessment. Invoker failures
// propagate unchanged.
func (s *SafetyScorer) Score(ctx context.Context, in SafetyInput) (*domain.SafetyAssessment, error) {
	if in.Text == "" && in.Image == "" {
		return nil, &domain.ValidationError{
			Capability: SafetyScoreCapability.Name,
			Stage:      domain.StageInput,
			Fields: []domain.FieldError{
				{Field: "prescriptionText", Message: "either prescriptionText or prescriptionImage is required"},
			},
		}
	}

	input := map[string]any{}
	if in.Text != "" {
		input["prescriptionText"] = in.Text
	}
	if in.Image != "" {
		input["prescriptionImage"] = in.Image
	}

	out, err := s.invoker.Invoke(ctx, SafetyScoreCapability, input)
	if err != nil {
		return nil, err
	}
	return &domain.SafetyAssessment{
		SafetyScore: asInt(out["safetyScore"]),
		Issues:      asStrings(out["issues"]),
	}, nil
}
