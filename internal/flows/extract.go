package flows

import (
	"context"

	"mediguard/internal/domain"
	"mediguard/internal/genai"
)

const extractDetailsTemplate = `You are a pharmacist AI assistant that extracts key information from prescription images and assesses their authenticity.

Analyze the prescription image provided and extract the following details:
1. The name of the medication, including its strength (e.g., "Lisinopril 10mg").
2. The name of the prescribing doctor or clinic.
3. Determine if the prescription is likely to be fake. Look for inconsistencies, missing information, or unusual formatting.
4. Provide a brief reasoning for your assessment of authenticity.

Return the extracted information in the specified format.

Consider the following prescription image:
{{media url=prescriptionImage}}
`

// ExtractDetailsCapability reads medication name, provider, and an
// authenticity verdict from a prescription image. There is no text-only mode.
var ExtractDetailsCapability = genai.Capability{
	Name: "extract_prescription_details",
	Input: genai.Schema{Fields: []genai.Field{
		{Name: "prescriptionImage", Type: genai.TypeImage, Required: true},
	}},
	Output: genai.Schema{Fields: []genai.Field{
		{Name: "name", Type: genai.TypeString, Required: true},
		{Name: "provider", Type: genai.TypeString, Required: true},
		{Name: "isFake", Type: genai.TypeBoolean, Required: true},
		{Name: "reasoning", Type: genai.TypeString},
	}},
	Template: extractDetailsTemplate,
}

// DetailExtractor invokes the detail extraction capability.
type DetailExtractor struct {
	invoker *genai.Invoker
}

// NewDetailExtractor creates an extractor on the given invoker.
func NewDetailExtractor(invoker *genai.Invoker) *DetailExtractor {
	return &DetailExtractor{invoker: invoker}
}

// Extract runs the capability against a prescription image.
func (e *DetailExtractor) Extract(ctx context.Context, image string) (*domain.ExtractionResult, error) {
	out, err := e.invoker.Invoke(ctx, ExtractDetailsCapability, map[string]any{
		"prescriptionImage": image,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ExtractionResult{
		MedicationName: asString(out["name"]),
		Provider:       asString(out["provider"]),
		IsFake:         asBool(out["isFake"]),
		Reasoning:      asString(out["reasoning"]),
	}, nil
}
