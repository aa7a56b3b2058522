// Package policy evaluates the medication safety rules as an OPA policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine with the given rego module.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.mediguard"),
		rego.Module("mediguard.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// evaluate runs the policy and returns the named boolean rule result.
func (e *Engine) evaluate(ctx context.Context, rule string, input map[string]interface{}) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	doc, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return false, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}
	verdict, _ := doc[rule].(bool)
	return verdict, nil
}

// ReviewRequired reports whether a verification result should be flagged for
// pharmacist review.
func (e *Engine) ReviewRequired(ctx context.Context, safetyScore int, isFake bool, threshold int) (bool, error) {
	return e.evaluate(ctx, "review_required", map[string]interface{}{
		"safety_score":     safetyScore,
		"is_fake":          isFake,
		"review_threshold": threshold,
	})
}

// AlertWorthy reports whether an inventory item should raise an alert:
// declared low stock, or expiring within 30 days while not already expired.
func (e *Engine) AlertWorthy(ctx context.Context, status string, daysUntilExpiry int) (bool, error) {
	return e.evaluate(ctx, "alert_worthy", map[string]interface{}{
		"status":            status,
		"days_until_expiry": daysUntilExpiry,
	})
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package mediguard

import rego.v1

default review_required := false

review_required if {
	input.safety_score < input.review_threshold
}

review_required if {
	input.is_fake
}

default alert_worthy := false

alert_worthy if {
	input.days_until_expiry <= 30
	input.status != "Expired"
}

alert_worthy if {
	input.status == "Low Stock"
}
`
