package flexid

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalScalar(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`"abc123"`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "abc123" {
		t.Errorf("expected abc123, got %s", id.String())
	}
}

func TestUnmarshalOIDWrapper(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"$oid":"64fa0c"}`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "64fa0c" {
		t.Errorf("expected 64fa0c, got %s", id.String())
	}
}

func TestUnmarshalNumber(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`42`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "42" {
		t.Errorf("expected 42, got %s", id.String())
	}
}

func TestUnmarshalNull(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`null`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.IsZero() {
		t.Error("expected zero id for null")
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`["nope"]`), &id); err == nil {
		t.Error("expected error for array input")
	}
}

func TestMarshalEmitsScalar(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"$oid":"xyz"}`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `"xyz"` {
		t.Errorf("expected %q, got %s", `"xyz"`, out)
	}
}
