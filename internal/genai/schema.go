// Package genai wraps calls to the external generative capability behind
// declared input/output schemas and templated instructions.
package genai

import (
	"fmt"

	"mediguard/internal/domain"
)

// FieldType enumerates the value types a schema field may declare.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	// TypeImage is a string constrained to the data:<mime>;base64,<data> form.
	TypeImage FieldType = "image"
)

// Field declares one schema field.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Min/Max bound numeric fields inclusively when non-nil.
	Min, Max *float64
	// Elem describes array elements.
	Elem *Field
}

// Schema is the declared shape of a capability's input or output. Model
// responses are untrusted external data, so the output schema is enforced at
// the boundary rather than assumed.
type Schema struct {
	Fields []Field
}

// Num is a convenience for numeric bounds in schema literals.
func Num(v float64) *float64 { return &v }

// Validate checks v against the schema and returns one error per violated
// field. Fields not declared in the schema are ignored.
func (s Schema) Validate(v map[string]any) []domain.FieldError {
	var errs []domain.FieldError
	for _, f := range s.Fields {
		val, ok := v[f.Name]
		if !ok || val == nil {
			if f.Required {
				errs = append(errs, domain.FieldError{Field: f.Name, Message: "required field is missing"})
			}
			continue
		}
		errs = append(errs, checkValue(f.Name, f, val)...)
	}
	return errs
}

func checkValue(name string, f Field, val any) []domain.FieldError {
	switch f.Type {
	case TypeString:
		if _, ok := val.(string); !ok {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("expected string, got %T", val)}}
		}
	case TypeImage:
		s, ok := val.(string)
		if !ok {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("expected data URI string, got %T", val)}}
		}
		if !domain.IsDataURI(s) {
			return []domain.FieldError{{Field: name, Message: "must be a data:<mimetype>;base64,<data> URI"}}
		}
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("expected boolean, got %T", val)}}
		}
	case TypeNumber:
		n, ok := toFloat(val)
		if !ok {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("expected number, got %T", val)}}
		}
		if f.Min != nil && n < *f.Min {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("%v is below minimum %v", n, *f.Min)}}
		}
		if f.Max != nil && n > *f.Max {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("%v is above maximum %v", n, *f.Max)}}
		}
	case TypeArray:
		items, ok := val.([]any)
		if !ok {
			return []domain.FieldError{{Field: name, Message: fmt.Sprintf("expected array, got %T", val)}}
		}
		if f.Elem == nil {
			return nil
		}
		var errs []domain.FieldError
		for i, item := range items {
			errs = append(errs, checkValue(fmt.Sprintf("%s[%d]", name, i), *f.Elem, item)...)
		}
		return errs
	default:
		return []domain.FieldError{{Field: name, Message: fmt.Sprintf("unknown field type %q", f.Type)}}
	}
	return nil
}

func toFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
