package flows

import (
	"context"

	"mediguard/internal/genai"
)

const guidanceTemplate = `You are a helpful AI assistant providing guidance on medications.

Respond to the following user query regarding their medications, providing information about potential side effects or interactions. Be conversational and helpful.
{{#if prescriptions}}

The user's verified prescriptions:
{{#each prescriptions}}
- {{this.name}} (verified {{this.date}}, safety score {{this.safetyScore}}{{#if this.issues}}, known issues: {{#each this.issues}}{{this}}; {{/each}}{{/if}})
{{/each}}
{{/if}}
{{#if medications}}

The user's medication inventory:
{{#each medications}}
- {{this.name}}: {{this.stockQuantity}} in stock, expires {{this.expiryDate}}
{{/each}}
{{/if}}

Query: {{{query}}}
`

// GuidanceCapability answers a free-text medication query. Context sections
// render only when the corresponding list is non-empty.
var GuidanceCapability = genai.Capability{
	Name: "medication_guidance",
	Input: genai.Schema{Fields: []genai.Field{
		{Name: "query", Type: genai.TypeString, Required: true},
		{Name: "prescriptions", Type: genai.TypeArray},
		{Name: "medications", Type: genai.TypeArray},
	}},
	Output: genai.Schema{Fields: []genai.Field{
		{Name: "response", Type: genai.TypeString, Required: true},
	}},
	Template: guidanceTemplate,
}

// PrescriptionContext is one verified prescription summarised for the
// assistant prompt.
type PrescriptionContext struct {
	Name        string
	Date        string
	SafetyScore int
	Issues      []string
}

// MedicationContext is one inventory item summarised for the prompt.
type MedicationContext struct {
	Name          string
	StockQuantity int
	ExpiryDate    string
}

// GuidanceInput is a query plus the user's current regimen context.
type GuidanceInput struct {
	Query         string
	Prescriptions []PrescriptionContext
	Medications   []MedicationContext
}

// GuidanceAssistant invokes the conversational guidance capability.
type GuidanceAssistant struct {
	invoker *genai.Invoker
}

// NewGuidanceAssistant creates an assistant on the given invoker.
func NewGuidanceAssistant(invoker *genai.Invoker) *GuidanceAssistant {
	return &GuidanceAssistant{invoker: invoker}
}

// Respond renders the query with any regimen context and returns the
// assistant's reply. Persisting the exchange is the caller's responsibility.
func (g *GuidanceAssistant) Respond(ctx context.Context, in GuidanceInput) (string, error) {
	input := map[string]any{"query": in.Query}
	if len(in.Prescriptions) > 0 {
		items := make([]any, 0, len(in.Prescriptions))
		for _, p := range in.Prescriptions {
			issues := make([]any, 0, len(p.Issues))
			for _, issue := range p.Issues {
				issues = append(issues, issue)
			}
			items = append(items, map[string]any{
				"name":        p.Name,
				"date":        p.Date,
				"safetyScore": p.SafetyScore,
				"issues":      issues,
			})
		}
		input["prescriptions"] = items
	}
	if len(in.Medications) > 0 {
		items := make([]any, 0, len(in.Medications))
		for _, m := range in.Medications {
			items = append(items, map[string]any{
				"name":          m.Name,
				"stockQuantity": m.StockQuantity,
				"expiryDate":    m.ExpiryDate,
			})
		}
		input["medications"] = items
	}

	out, err := g.invoker.Invoke(ctx, GuidanceCapability, input)
	if err != nil {
		return "", err
	}
	return asString(out["response"]), nil
}
