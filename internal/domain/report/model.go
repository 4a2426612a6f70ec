package report

import (
	"encoding/json"
	"time"

	"github.com/clinilab/clinilab/internal/domain/catalog"
	"github.com/clinilab/clinilab/pkg/flexid"
)

// Status of a report through its lifecycle.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusInProcess Status = "in_process"
	StatusCancelled Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusPending:   true,
	StatusInProcess: true,
	StatusCancelled: true,
}

// PatientSnapshot is the patient identity frozen into the report at
// creation time. Later edits to the patient record do not rewrite
// issued reports.
type PatientSnapshot struct {
	PatientID    string `json:"patient_id,omitempty"`
	Name         string `json:"name"`
	Age          int    `json:"age,omitempty"`
	Sex          string `json:"sex,omitempty"`
	RecordNumber string `json:"record_number,omitempty"`
}

// TestSnapshot freezes the headline test identity into the report.
type TestSnapshot struct {
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	Method    string `json:"method,omitempty"`
	Technique string `json:"technique,omitempty"`
}

// TestRef links a report to its test definition. Historical data stores
// it two ways: a bare id, or the whole definition embedded at capture
// time. Both shapes decode; the embedded form wins when present.
type TestRef struct {
	ID       flexid.ID
	Embedded *catalog.TestDefinition
}

func (r *TestRef) UnmarshalJSON(data []byte) error {
	var id flexid.ID
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Embedded = nil
		return nil
	}
	var def catalog.TestDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	r.Embedded = &def
	r.ID = flexid.New(def.ID)
	return nil
}

func (r TestRef) MarshalJSON() ([]byte, error) {
	if r.Embedded != nil {
		return json.Marshal(r.Embedded)
	}
	return json.Marshal(r.ID)
}

// IsZero reports whether the ref carries neither an id nor a document.
func (r TestRef) IsZero() bool {
	return r.Embedded == nil && r.ID.IsZero()
}

// ResultRecord is one captured sub-test result. Key, name, unit and
// reference text are denormalized from the definition at capture time so
// the record stays readable on its own.
type ResultRecord struct {
	SubTestID flexid.ID `json:"subTestId"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Reference string    `json:"reference,omitempty"`
}

// ExtraFieldValue is one captured extra form field.
type ExtraFieldValue struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Report is one issued laboratory report.
type Report struct {
	ID           string            `json:"id"`
	Folio        int64             `json:"folio"`
	Patient      PatientSnapshot   `json:"patient"`
	Test         TestSnapshot      `json:"test"`
	TestRef      TestRef           `json:"test_ref"`
	Results      []ResultRecord    `json:"results"`
	ExtraFields  []ExtraFieldValue `json:"extra_fields"`
	Observations string            `json:"observations,omitempty"`
	Status       Status            `json:"status"`
	PerformedAt  time.Time         `json:"performed_at"`
	CreatedBy    string            `json:"created_by,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
