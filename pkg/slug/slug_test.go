package slug

import "testing"

func TestMakeUpper(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Anticuerpos VIH 1", "ANTICUERPOS_VIH_1"},
		{"Hemoglobina", "HEMOGLOBINA"},
		{"Ácido Úrico", "ACIDO_URICO"},
		{"Cañabinoides (THC)", "CANABINOIDES_THC"},
		{"  espacios   múltiples  ", "ESPACIOS_MULTIPLES"},
		{"___", ""},
		{"", ""},
		{"123-abc", "123_ABC"},
	}
	for _, tc := range cases {
		if got := Make(tc.label, Upper); got != tc.want {
			t.Errorf("Make(%q, Upper) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestMakeLower(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Número de Lote", "numero_de_lote"},
		{"firmaMedico", "firmamedico"},
		{"Fecha/Hora", "fecha_hora"},
	}
	for _, tc := range cases {
		if got := Make(tc.label, Lower); got != tc.want {
			t.Errorf("Make(%q, Lower) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestMakeDeterministic(t *testing.T) {
	label := "Benzodiacepinas Séricas"
	first := Make(label, Upper)
	for i := 0; i < 10; i++ {
		if got := Make(label, Upper); got != first {
			t.Fatalf("Make is not deterministic: %q vs %q", got, first)
		}
	}
}

func TestMakeCharset(t *testing.T) {
	labels := []string{"Aβ-42 péptido", "α-fetoproteína", "T4 libre (tiroxina)", "5%-ésimo"}
	for _, label := range labels {
		got := Make(label, Upper)
		for i, r := range got {
			valid := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
			if !valid {
				t.Errorf("Make(%q): invalid rune %q at %d in %q", label, r, i, got)
			}
		}
		if len(got) > 0 {
			if got[0] == '_' || got[len(got)-1] == '_' {
				t.Errorf("Make(%q) = %q has leading/trailing underscore", label, got)
			}
		}
		for i := 1; i < len(got); i++ {
			if got[i] == '_' && got[i-1] == '_' {
				t.Errorf("Make(%q) = %q has consecutive underscores", label, got)
			}
		}
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"GLUCOSA": true, "GLUCOSA_2": true}
	if got := Unique("GLUCOSA", taken); got != "GLUCOSA_3" {
		t.Errorf("Unique = %q, want GLUCOSA_3", got)
	}
	if got := Unique("UREA", taken); got != "UREA" {
		t.Errorf("Unique = %q, want UREA", got)
	}
}
