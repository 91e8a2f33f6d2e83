package ingest

import (
	"encoding/json"
	"testing"
)

func decodeDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	return doc
}

func TestDirectFieldExtractsNestedValues(t *testing.T) {
	doc := decodeDoc(t, `{"deal":{"status_id":147}}`)

	value, ok := DirectField{Path: []string{"deal", "status_id"}}.Extract(doc)
	if !ok {
		t.Fatal("expected a value")
	}
	if value != "147" {
		t.Fatalf("numeric ids must not carry a fraction, got %q", value)
	}
}

func TestDirectFieldMissingPath(t *testing.T) {
	doc := decodeDoc(t, `{"deal":{}}`)
	if _, ok := (DirectField{Path: []string{"deal", "status_id"}}).Extract(doc); ok {
		t.Fatal("expected absence")
	}
	if _, ok := (DirectField{Path: []string{"deal", "status_id", "deeper"}}).Extract(doc); ok {
		t.Fatal("expected absence when the path dead-ends")
	}
}

func TestCustomFieldMatchesByIDOrCode(t *testing.T) {
	doc := decodeDoc(t, `{"fields":[
		{"field_id":881,"field_code":"BOOKING_STATUS","value":147},
		{"field_id":882,"field_code":"VEHICLE_REF","value":"SLX-GT63"}
	]}`)

	rule := CustomField{
		ArrayPath: []string{"fields"},
		IDKey:     "field_id",
		CodeKey:   "field_code",
		ValueKey:  "value",
		FieldID:   "881",
	}
	if value, ok := rule.Extract(doc); !ok || value != "147" {
		t.Fatalf("expected 147 via field id, got %q (%v)", value, ok)
	}

	rule = CustomField{
		ArrayPath: []string{"fields"},
		IDKey:     "field_id",
		CodeKey:   "field_code",
		ValueKey:  "value",
		FieldCode: "vehicle_ref",
	}
	if value, ok := rule.Extract(doc); !ok || value != "SLX-GT63" {
		t.Fatalf("expected vehicle ref via case-insensitive code, got %q (%v)", value, ok)
	}
}

func TestCustomFieldSkipsMalformedElements(t *testing.T) {
	doc := decodeDoc(t, `{"fields":["noise",{"field_code":"BOOKING_STATUS","value":null},{"field_code":"BOOKING_STATUS","value":"148"}]}`)

	rule := CustomField{
		ArrayPath: []string{"fields"},
		IDKey:     "field_id",
		CodeKey:   "field_code",
		ValueKey:  "value",
		FieldCode: "booking_status",
	}
	value, ok := rule.Extract(doc)
	if !ok || value != "148" {
		t.Fatalf("expected the first element with a usable value, got %q (%v)", value, ok)
	}
}

func TestExtractorFirstRuleWins(t *testing.T) {
	doc := decodeDoc(t, `{"status_id":"146","fields":[{"field_code":"BOOKING_STATUS","value":"147"}]}`)

	extractor := NewExtractor(
		DirectField{Path: []string{"status_id"}},
		CustomField{ArrayPath: []string{"fields"}, IDKey: "field_id", CodeKey: "field_code", ValueKey: "value", FieldCode: "booking_status"},
	)
	value, ok := extractor.Extract(doc)
	if !ok || value != "146" {
		t.Fatalf("direct field should win, got %q (%v)", value, ok)
	}
}

func TestExtractorFallsThroughToCustomFields(t *testing.T) {
	doc := decodeDoc(t, `{"fields":[{"field_code":"BOOKING_STATUS","value":"147"}]}`)

	extractor := NewExtractor(
		DirectField{Path: []string{"status_id"}},
		CustomField{ArrayPath: []string{"fields"}, IDKey: "field_id", CodeKey: "field_code", ValueKey: "value", FieldCode: "booking_status"},
	)
	value, ok := extractor.Extract(doc)
	if !ok || value != "147" {
		t.Fatalf("expected custom-field fallback, got %q (%v)", value, ok)
	}

	if _, ok := extractor.Extract(nil); ok {
		t.Fatal("nil documents yield nothing")
	}
}
