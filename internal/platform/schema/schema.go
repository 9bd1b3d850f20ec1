package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

// FieldType enumerates the value types a declared field can take.
type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Bool
	Date     // "2006-01-02"
	DateTime // RFC 3339
	Object
)

// Field declares one field of a shape.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Enum restricts a String field to a canonical value set. Input is
	// case-folded before comparison, so "female" and "Follow-Up" normalize
	// to "FEMALE" and "FOLLOW_UP".
	Enum   []string
	Shape  *Shape // nested shape for Object fields
	MaxLen int    // 0 means unbounded
}

// Shape is a declared request shape. Validation is total: every violation is
// reported, not just the first. Fields not declared in the shape are silently
// dropped from the result, never echoed back, so a shape doubles as an
// allow-list for partial updates.
type Shape struct {
	Fields []Field
}

// Canonical folds an enum value to its canonical form: upper-cased, with
// spaces and hyphens collapsed to underscores.
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "-", "_")
	v = strings.ReplaceAll(v, " ", "_")
	return strings.ToUpper(v)
}

// Validate checks raw against the shape and returns the normalized value map.
// On failure the violation list contains one entry per offending field.
func (s *Shape) Validate(raw map[string]interface{}) (map[string]interface{}, []apperrors.Violation) {
	out := make(map[string]interface{}, len(s.Fields))
	var violations []apperrors.Violation

	for _, f := range s.Fields {
		val, present := raw[f.Name]
		if !present || val == nil {
			if f.Required {
				violations = append(violations, apperrors.Violation{
					Field:   f.Name,
					Message: "is required",
				})
			}
			continue
		}

		normalized, err := f.normalize(val)
		if err != nil {
			violations = append(violations, apperrors.Violation{
				Field:   f.Name,
				Message: err.Error(),
			})
			continue
		}
		if vs := f.nestedViolations(normalized); len(vs) > 0 {
			violations = append(violations, vs...)
			continue
		}
		out[f.Name] = normalized
	}

	return out, violations
}

// ValidateStrings validates a map of string values (query parameters),
// coercing each value per the declared field type.
func (s *Shape) ValidateStrings(raw map[string]string) (map[string]interface{}, []apperrors.Violation) {
	converted := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if v != "" {
			converted[k] = v
		}
	}
	return s.Validate(converted)
}

func (f Field) normalize(val interface{}) (interface{}, error) {
	switch f.Type {
	case String:
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		if f.MaxLen > 0 && len(str) > f.MaxLen {
			return nil, fmt.Errorf("must be at most %d characters", f.MaxLen)
		}
		if len(f.Enum) > 0 {
			folded := Canonical(str)
			for _, allowed := range f.Enum {
				if folded == allowed {
					return folded, nil
				}
			}
			return nil, fmt.Errorf("must be one of %s", strings.Join(f.Enum, ", "))
		}
		return str, nil

	case Int:
		switch n := val.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("must be an integer")
			}
			return int(n), nil
		case string:
			parsed, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("must be an integer")
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("must be an integer")
		}

	case Float:
		switch n := val.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case string:
			parsed, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("must be a number")
		}

	case Bool:
		switch b := val.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("must be a boolean")
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("must be a boolean")
		}

	case Date:
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("must be a date in YYYY-MM-DD format")
		}
		t, err := time.Parse("2006-01-02", str)
		if err != nil {
			return nil, fmt.Errorf("must be a date in YYYY-MM-DD format")
		}
		return t, nil

	case DateTime:
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("must be an RFC 3339 timestamp")
		}
		t, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil, fmt.Errorf("must be an RFC 3339 timestamp")
		}
		return t, nil

	case Object:
		obj, ok := val.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("must be an object")
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("unsupported field type")
	}
}

// nestedViolations validates an Object field's value against its nested
// shape and prefixes violations with the parent field name.
func (f Field) nestedViolations(normalized interface{}) []apperrors.Violation {
	if f.Type != Object || f.Shape == nil {
		return nil
	}
	obj := normalized.(map[string]interface{})
	nested, vs := f.Shape.Validate(obj)
	if len(vs) > 0 {
		prefixed := make([]apperrors.Violation, len(vs))
		for i, v := range vs {
			prefixed[i] = apperrors.Violation{
				Field:   f.Name + "." + v.Field,
				Message: v.Message,
			}
		}
		return prefixed
	}
	// Replace the raw object with its filtered, normalized form.
	for k := range obj {
		delete(obj, k)
	}
	for k, v := range nested {
		obj[k] = v
	}
	return nil
}
