package report

import (
	"testing"

	"github.com/clinilab/clinilab/internal/domain/catalog"
)

func toxPanel() *catalog.TestDefinition {
	return &catalog.TestDefinition{
		ID:   "test-1",
		Name: "Perfil Toxicológico",
		Code: "TOX-PERF001",
		SubTests: []catalog.SubTestDefinition{
			{
				ID: "st-coc", Key: "COCAINA", Name: "Cocaína", Kind: catalog.KindBinary,
				Unit: "ng/ml", Cutoff: "300",
				ReferenceRange: catalog.Synthesize("300", "ng/ml", catalog.KindBinary),
				Order:          0,
			},
			{
				ID: "st-glu", Key: "GLUCOSA", Name: "Glucosa", Kind: catalog.KindNumeric,
				Unit: "mg/dl", Cutoff: "100",
				ReferenceRange: catalog.Synthesize("100", "mg/dl", catalog.KindNumeric),
				Order:          1,
			},
			{
				ID: "st-obs", Key: "ASPECTO", Name: "Aspecto", Kind: catalog.KindText,
				ReferenceRange: catalog.ReferenceRange{Options: []catalog.RangeOption{}},
				Order:          2,
			},
		},
		ExtraFields: []catalog.ExtraFieldDefinition{
			{Key: "cadena_de_custodia", Name: "Cadena de Custodia", Label: "Folio de custodia", Type: catalog.FieldText, Required: true},
		},
	}
}

func TestInitializeDefaults(t *testing.T) {
	fv := InitializeDefaults(toxPanel())

	if fv["st-coc"] != catalog.OutcomeNegative {
		t.Errorf("binary sub-test must default to the normal outcome, got %q", fv["st-coc"])
	}
	if _, ok := fv["st-glu"]; ok {
		t.Error("numeric sub-test must start blank")
	}
	if _, ok := fv["st-obs"]; ok {
		t.Error("text sub-test must start blank")
	}
}

func TestToResultRecordsOrderAndDefaults(t *testing.T) {
	def := toxPanel()
	fv := FormValues{}
	fv.Set("st-glu", " 95 ")

	records := fv.ToResultRecords(def)

	// Binary falls back to its default outcome, numeric keeps the typed
	// value, blank text is skipped.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Key != "COCAINA" || records[0].Value != catalog.OutcomeNegative {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Key != "GLUCOSA" || records[1].Value != "95" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
	if records[1].Unit != "mg/dl" || records[1].Reference == "" {
		t.Error("unit and reference must be denormalized into the record")
	}
	if records[0].SubTestID.String() != "st-coc" {
		t.Errorf("sub-test id lost: %s", records[0].SubTestID.String())
	}
}

func TestToResultRecordsEmptyForm(t *testing.T) {
	def := &catalog.TestDefinition{
		SubTests: []catalog.SubTestDefinition{
			{ID: "a", Key: "A", Name: "A", Kind: catalog.KindText},
		},
	}
	records := FormValues{}.ToResultRecords(def)
	if len(records) != 0 {
		t.Errorf("all-blank form must yield no records, got %d", len(records))
	}
}

func TestValidateRequired(t *testing.T) {
	def := toxPanel()
	fv := FormValues{}

	missing := fv.ValidateRequired(def)
	want := map[string]bool{FieldDate: true, FieldTime: true, ExtraFieldKey("cadena_de_custodia"): true}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %v", len(want), missing)
	}
	for _, m := range missing {
		if !want[m] {
			t.Errorf("unexpected missing field %s", m)
		}
	}

	fv.Set(FieldDate, "2024-03-15")
	fv.Set(FieldTime, "09:30")
	fv.Set(ExtraFieldKey("cadena_de_custodia"), "CC-042")
	if missing := fv.ValidateRequired(def); len(missing) != 0 {
		t.Errorf("expected no missing fields, got %v", missing)
	}
}

func TestToExtraFieldValues(t *testing.T) {
	def := toxPanel()
	fv := FormValues{}
	fv.Set(ExtraFieldKey("cadena_de_custodia"), "CC-042")

	values := fv.ToExtraFieldValues(def)
	if len(values) != 1 {
		t.Fatalf("expected 1 value, got %d", len(values))
	}
	if values[0].Key != "cadena_de_custodia" || values[0].Value != "CC-042" {
		t.Errorf("unexpected value: %+v", values[0])
	}
	if values[0].Name != "Cadena de Custodia" {
		t.Error("name must be denormalized from the definition")
	}
}
