package catalog

import "time"

// Category groups test definitions by laboratory area.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryToxicologia   Category = "toxicologia"
	CategoryHematologia   Category = "hematologia"
	CategoryMicrobiologia Category = "microbiologia"
	CategoryInmunologia   Category = "inmunologia"
)

var validCategories = map[Category]bool{
	CategoryGeneral:       true,
	CategoryToxicologia:   true,
	CategoryHematologia:   true,
	CategoryMicrobiologia: true,
	CategoryInmunologia:   true,
}

// ParseCategory returns the category for s, defaulting to general for
// unknown or empty input.
func ParseCategory(s string) Category {
	c := Category(s)
	if validCategories[c] {
		return c
	}
	return CategoryGeneral
}

// ResultKind describes how a sub-test's result is captured and judged.
type ResultKind string

const (
	KindBinary  ResultKind = "binary"
	KindNumeric ResultKind = "numeric"
	KindText    ResultKind = "text"
)

var validKinds = map[ResultKind]bool{
	KindBinary:  true,
	KindNumeric: true,
	KindText:    true,
}

// FieldType enumerates the input widgets an extra field can render as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
)

var validFieldTypes = map[FieldType]bool{
	FieldText: true, FieldNumber: true, FieldDate: true,
	FieldSelect: true, FieldTextarea: true, FieldCheckbox: true,
}

// Units is the curated unit-of-measure list offered by the capture UI.
// The unit field itself stays free-form.
var Units = []string{
	"ng/ml", "mg/dl", "g/dL", "%", "μg/ml", "mmol/L", "UI/L", "mUI/L",
	"mEq/L", "x10^3/μL", "x10^6/μL", "fL", "pg", "mg/L",
}

// RangeOption is one enumerated outcome of a binary sub-test.
type RangeOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	IsNormal bool   `json:"is_normal"`
}

// ReferenceRange is the derived expected-value description of a sub-test.
// It is always the output of Synthesize, never edited free-hand.
type ReferenceRange struct {
	Text    string        `json:"text"`
	Min     *float64      `json:"min,omitempty"`
	Max     *float64      `json:"max,omitempty"`
	Options []RangeOption `json:"options"`
}

// SubTestDefinition is one analyte within a composite test.
type SubTestDefinition struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Kind           ResultKind     `json:"kind"`
	Unit           string         `json:"unit"`
	Cutoff         string         `json:"cutoff,omitempty"`
	ReferenceRange ReferenceRange `json:"reference_range"`
	Order          int            `json:"order"`
}

// ExtraFieldDefinition describes an additional form field captured with a
// report (lot number, chain-of-custody id, and the like).
type ExtraFieldDefinition struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// TestDefinition maps to the test_definition table. Sub-tests and extra
// fields are persisted with the definition as one document.
type TestDefinition struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Code        string                 `json:"code"`
	Category    Category               `json:"category"`
	Method      string                 `json:"method,omitempty"`
	Technique   string                 `json:"technique,omitempty"`
	SubTests    []SubTestDefinition    `json:"sub_tests"`
	ExtraFields []ExtraFieldDefinition `json:"extra_fields"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	DeletedAt   *time.Time             `json:"deleted_at,omitempty"`
}

// SubTestByID returns the sub-test with the given id, or nil.
func (d *TestDefinition) SubTestByID(id string) *SubTestDefinition {
	for i := range d.SubTests {
		if d.SubTests[i].ID == id {
			return &d.SubTests[i]
		}
	}
	return nil
}
