package report

import (
	"encoding/json"
	"testing"
)

func TestTestRefUnmarshalScalar(t *testing.T) {
	var ref TestRef
	if err := json.Unmarshal([]byte(`"abc123"`), &ref); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ref.ID.String() != "abc123" || ref.Embedded != nil {
		t.Errorf("unexpected ref: %+v", ref)
	}
}

func TestTestRefUnmarshalOID(t *testing.T) {
	var ref TestRef
	if err := json.Unmarshal([]byte(`{"$oid":"64ab12cd"}`), &ref); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ref.ID.String() != "64ab12cd" || ref.Embedded != nil {
		t.Errorf("unexpected ref: %+v", ref)
	}
}

func TestTestRefUnmarshalEmbedded(t *testing.T) {
	payload := `{
		"id": "test-1",
		"name": "Perfil Toxicológico",
		"code": "TOX-PERF001",
		"sub_tests": [
			{"id": "st-1", "key": "COCAINA", "name": "Cocaína", "kind": "binary",
			 "reference_range": {"text": "NEG: ≤300 ng/ml\nPOS: >300 ng/ml", "options": []}}
		]
	}`
	var ref TestRef
	if err := json.Unmarshal([]byte(payload), &ref); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ref.Embedded == nil {
		t.Fatal("expected embedded definition")
	}
	if ref.ID.String() != "test-1" {
		t.Errorf("id not lifted from embedded doc: %s", ref.ID.String())
	}
	if len(ref.Embedded.SubTests) != 1 || ref.Embedded.SubTests[0].Key != "COCAINA" {
		t.Errorf("embedded sub-tests lost: %+v", ref.Embedded.SubTests)
	}
}

func TestTestRefMarshalPrefersEmbedded(t *testing.T) {
	var ref TestRef
	payload := `{"id": "test-1", "name": "Panel", "sub_tests": [], "extra_fields": []}`
	if err := json.Unmarshal([]byte(payload), &ref); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(ref)
	if err != nil {
		t.Fatal(err)
	}
	var round map[string]interface{}
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("embedded ref must marshal back to an object: %v", err)
	}
	if round["name"] != "Panel" {
		t.Errorf("embedded document lost on marshal: %s", out)
	}
}

func TestTestRefMarshalScalarForm(t *testing.T) {
	var ref TestRef
	if err := json.Unmarshal([]byte(`{"$oid":"xyz"}`), &ref); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(ref)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"xyz"` {
		t.Errorf("bare id must marshal as plain scalar, got %s", out)
	}
}
