package ingest

import (
	"strconv"
	"strings"
)

// The CRM does not send a uniform payload shape: depending on the event type
// a value lives on a direct field or inside a custom-field array addressed by
// field id or field code. Extraction is therefore a small ordered rule list
// evaluated against the loosely typed document; new layouts are added as
// rules, not branches.

// Rule yields a value from a decoded JSON document, or reports absence.
type Rule interface {
	Extract(doc map[string]any) (string, bool)
}

// DirectField walks a nested key path and stringifies the value found there.
type DirectField struct {
	Path []string
}

func (r DirectField) Extract(doc map[string]any) (string, bool) {
	var current any = doc
	for _, key := range r.Path {
		node, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = node[key]
		if !ok {
			return "", false
		}
	}
	return stringify(current)
}

// CustomField scans an array of field objects for an element whose id or code
// matches, returning that element's value.
type CustomField struct {
	ArrayPath []string
	IDKey     string
	CodeKey   string
	ValueKey  string
	FieldID   string
	FieldCode string
}

func (r CustomField) Extract(doc map[string]any) (string, bool) {
	raw, ok := DirectFieldValue(doc, r.ArrayPath)
	if !ok {
		return "", false
	}
	items, ok := raw.([]any)
	if !ok {
		return "", false
	}
	for _, item := range items {
		field, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if !r.matches(field) {
			continue
		}
		if value, ok := stringify(field[r.ValueKey]); ok {
			return value, true
		}
	}
	return "", false
}

func (r CustomField) matches(field map[string]any) bool {
	if r.FieldID != "" {
		if id, ok := stringify(field[r.IDKey]); ok && id == r.FieldID {
			return true
		}
	}
	if r.FieldCode != "" {
		if code, ok := stringify(field[r.CodeKey]); ok && strings.EqualFold(code, r.FieldCode) {
			return true
		}
	}
	return false
}

// Extractor evaluates rules in order and returns the first hit.
type Extractor struct {
	rules []Rule
}

func NewExtractor(rules ...Rule) *Extractor {
	return &Extractor{rules: rules}
}

func (e *Extractor) Extract(doc map[string]any) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, rule := range e.rules {
		if value, ok := rule.Extract(doc); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

// DirectFieldValue walks the path and returns the raw node.
func DirectFieldValue(doc map[string]any, path []string) (any, bool) {
	var current any = doc
	for _, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// stringify normalizes JSON scalar values. Numbers arrive as float64 from
// encoding/json; integral values must not grow a ".000000" suffix because
// they are compared against stage ids.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", false
	default:
		return "", false
	}
}
