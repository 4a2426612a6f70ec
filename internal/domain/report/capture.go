package report

import (
	"fmt"
	"strings"

	"github.com/clinilab/clinilab/internal/domain/catalog"
	"github.com/clinilab/clinilab/pkg/flexid"
)

// Form field keys used by the capture UI. Sub-test results are keyed by
// sub-test id and extra fields by "campo_" plus the field key.
const (
	FieldDate         = "fecha"
	FieldTime         = "hora"
	FieldObservations = "observaciones"
	extraFieldPrefix  = "campo_"
)

// ExtraFieldKey returns the form key for an extra field definition.
func ExtraFieldKey(key string) string { return extraFieldPrefix + key }

// FormValues is the flat key/value state of a capture form.
type FormValues map[string]string

// InitializeDefaults pre-fills the form for a test definition: every
// sub-test with an option set starts on its first option, everything
// else starts blank. The first option of a synthesized binary range is
// the normal negative outcome, so untouched binary rows read NEGATIVA.
func InitializeDefaults(def *catalog.TestDefinition) FormValues {
	fv := FormValues{}
	for _, st := range def.SubTests {
		if len(st.ReferenceRange.Options) > 0 {
			fv[st.ID] = st.ReferenceRange.Options[0].Value
		}
	}
	return fv
}

// Set records one form value, trimming surrounding whitespace.
func (fv FormValues) Set(key, value string) {
	fv[key] = strings.TrimSpace(value)
}

// ValidateRequired returns the form keys that must be filled before the
// report can be saved. Date and time are always required; sub-test
// values are not, a report with no results is a valid (if empty) report.
func (fv FormValues) ValidateRequired(def *catalog.TestDefinition) []string {
	var missing []string
	if fv[FieldDate] == "" {
		missing = append(missing, FieldDate)
	}
	if fv[FieldTime] == "" {
		missing = append(missing, FieldTime)
	}
	for _, ef := range def.ExtraFields {
		if ef.Required && fv[ExtraFieldKey(ef.Key)] == "" {
			missing = append(missing, ExtraFieldKey(ef.Key))
		}
	}
	return missing
}

// ToResultRecords converts form state into denormalized result records,
// in the definition's display order. Sub-tests the operator left blank
// are skipped entirely, except option-bearing sub-tests which fall back
// to their default outcome so a saved binary row is never valueless.
func (fv FormValues) ToResultRecords(def *catalog.TestDefinition) []ResultRecord {
	records := make([]ResultRecord, 0, len(def.SubTests))
	for _, st := range def.SubTests {
		value := fv[st.ID]
		if value == "" && len(st.ReferenceRange.Options) > 0 {
			value = st.ReferenceRange.Options[0].Value
		}
		if value == "" {
			continue
		}
		records = append(records, ResultRecord{
			SubTestID: flexid.New(st.ID),
			Key:       st.Key,
			Name:      st.Name,
			Value:     value,
			Unit:      st.Unit,
			Reference: st.ReferenceRange.Text,
		})
	}
	return records
}

// ToExtraFieldValues converts the campo_* entries of the form into
// captured extra field values, skipping blanks.
func (fv FormValues) ToExtraFieldValues(def *catalog.TestDefinition) []ExtraFieldValue {
	values := make([]ExtraFieldValue, 0, len(def.ExtraFields))
	for _, ef := range def.ExtraFields {
		v := fv[ExtraFieldKey(ef.Key)]
		if v == "" {
			continue
		}
		values = append(values, ExtraFieldValue{
			Key:   ef.Key,
			Name:  ef.Name,
			Value: v,
		})
	}
	return values
}

// ValidationError lists the form keys missing from a capture submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
