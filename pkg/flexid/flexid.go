// Package flexid models identifiers that arrive from the wire either as a
// plain JSON scalar ("abc123") or wrapped in MongoDB extended-JSON form
// ({"$oid": "abc123"}). Legacy report payloads exhibit both shapes for the
// same field, sometimes within one document, so every boundary unwraps
// through this single type instead of duck-typing per call site.
package flexid

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a tagged union of a scalar id and an {$oid}-wrapped id.
type ID struct {
	value string
}

// New returns an ID holding the given scalar value.
func New(value string) ID {
	return ID{value: value}
}

// String returns the unwrapped scalar id. The zero ID yields "".
func (id ID) String() string { return id.value }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id.value == "" }

type oidWrapper struct {
	OID string `json:"$oid"`
}

// UnmarshalJSON accepts a JSON string, a JSON number, an {"$oid": "..."}
// object, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id.value = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		id.value = n.String()
		return nil
	}

	var w oidWrapper
	if err := json.Unmarshal(data, &w); err == nil && w.OID != "" {
		id.value = w.OID
		return nil
	}

	return fmt.Errorf("flexid: cannot parse %s as an identifier", strconv.Quote(string(data)))
}

// MarshalJSON always emits the plain scalar form.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}
