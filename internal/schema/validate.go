package schema

import (
	"time"
	"unicode/utf8"
)

// Validate checks an untyped object against a contract.
//
// On success it returns a normalized copy of the value containing exactly
// the declared fields: numbers are converted to float64, string lists to
// []string. Undeclared keys are dropped from the copy (the reasoner is free
// to emit extras; they never reach workflow state). On failure it returns a
// *ValidationError listing every issue found.
//
// Validate has no side effects and never mutates the input map.
func Validate(value map[string]any, c Contract) (map[string]any, error) {
	verr := &ValidationError{Contract: c.Name}

	if value == nil {
		verr.add("", "value is not an object")
		return nil, verr
	}

	out := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		raw, ok := value[f.Name]
		if !ok || raw == nil {
			if !f.Optional {
				verr.add(f.Name, "required field is missing")
			}
			continue
		}

		v, ok := checkField(f, raw, verr)
		if ok {
			out[f.Name] = v
		}
	}

	if len(verr.Issues) > 0 {
		return nil, verr
	}
	return out, nil
}

// checkField validates one field value and returns its normalized form.
// Issues are appended to verr; ok reports whether the value was accepted.
func checkField(f Field, raw any, verr *ValidationError) (any, bool) {
	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			verr.add(f.Name, "expected string, got %T", raw)
			return nil, false
		}
		if n := utf8.RuneCountInString(s); n < f.MinLen {
			verr.add(f.Name, "must be at least %d characters, got %d", f.MinLen, n)
			return nil, false
		}
		return s, true

	case KindDate:
		s, ok := raw.(string)
		if !ok {
			verr.add(f.Name, "expected ISO-8601 date string, got %T", raw)
			return nil, false
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			verr.add(f.Name, "invalid ISO-8601 date %q", s)
			return nil, false
		}
		return s, true

	case KindNumber:
		n, ok := asFloat(raw)
		if !ok {
			verr.add(f.Name, "expected number, got %T", raw)
			return nil, false
		}
		if f.NonNegative && n < 0 {
			verr.add(f.Name, "must be non-negative, got %v", n)
			return nil, false
		}
		return n, true

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			verr.add(f.Name, "expected string, got %T", raw)
			return nil, false
		}
		for _, allowed := range f.Enum {
			if s == allowed {
				return s, true
			}
		}
		verr.add(f.Name, "value %q is not one of %v", s, f.Enum)
		return nil, false

	case KindStringList:
		items, ok := asStringList(raw)
		if !ok {
			verr.add(f.Name, "expected list of strings")
			return nil, false
		}
		return items, true

	default:
		verr.add(f.Name, "contract declares unknown kind %q", f.Kind)
		return nil, false
	}
}

// asFloat accepts the numeric representations JSON decoding and Go callers
// produce.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
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

// asStringList accepts []string directly or []any holding only strings
// (the shape produced by encoding/json).
func asStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
