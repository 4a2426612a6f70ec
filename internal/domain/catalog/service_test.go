package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockTestRepo struct {
	byID   map[string]*TestDefinition
	byCode map[string]*TestDefinition
	// number of upcoming creates to reject as code conflicts
	failCreates int
}

func newMockTestRepo() *mockTestRepo {
	return &mockTestRepo{
		byID:   map[string]*TestDefinition{},
		byCode: map[string]*TestDefinition{},
	}
}

func (m *mockTestRepo) Create(_ context.Context, td *TestDefinition) error {
	if m.failCreates > 0 {
		m.failCreates--
		return ErrDuplicateCode
	}
	if m.byCode[td.Code] != nil {
		return ErrDuplicateCode
	}
	if td.ID == "" {
		td.ID = uuid.NewString()
	}
	cp := *td
	m.byID[td.ID] = &cp
	m.byCode[td.Code] = &cp
	return nil
}

func (m *mockTestRepo) GetByID(_ context.Context, id string) (*TestDefinition, error) {
	td, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return td, nil
}

func (m *mockTestRepo) GetByCode(_ context.Context, code string) (*TestDefinition, error) {
	td, ok := m.byCode[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return td, nil
}

func (m *mockTestRepo) Update(_ context.Context, td *TestDefinition) error {
	if _, ok := m.byID[td.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *td
	m.byID[td.ID] = &cp
	return nil
}

func (m *mockTestRepo) SoftDelete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *mockTestRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*TestDefinition, int, error) {
	var items []*TestDefinition
	for _, td := range m.byID {
		if cat, ok := params["category"]; ok && string(td.Category) != cat {
			continue
		}
		items = append(items, td)
	}
	return items, len(items), nil
}

func TestCreateTestFull(t *testing.T) {
	svc := NewService(newMockTestRepo())

	def, err := svc.CreateTest(context.Background(), TestDraft{
		Name:        "Perfil Toxicológico",
		Description: "Panel de drogas en orina",
		Category:    "toxicologia",
		Method:      "Inmunocromatografía",
		SubTests: []SubTestDraft{
			{Name: "Cocaína", Cutoff: "300", Unit: "ng/ml", Kind: KindBinary},
			{Name: "Marihuana", Cutoff: "50", Unit: "ng/ml", Kind: KindBinary},
		},
		ExtraFields: []ExtraFieldDraft{
			{Name: "Cadena de Custodia", Label: "Folio de custodia", Type: FieldText, Required: true},
		},
	})
	if err != nil {
		t.Fatalf("create test: %v", err)
	}

	if def.ID == "" || def.Code == "" {
		t.Error("id and code must be assigned")
	}
	if len(def.SubTests) != 2 {
		t.Fatalf("expected 2 sub-tests, got %d", len(def.SubTests))
	}
	if def.SubTests[0].Key != "COCAINA" || def.SubTests[1].Key != "MARIHUANA" {
		t.Errorf("unexpected keys: %s, %s", def.SubTests[0].Key, def.SubTests[1].Key)
	}
	if def.ExtraFields[0].Key != "cadena_de_custodia" {
		t.Errorf("unexpected extra field key: %s", def.ExtraFields[0].Key)
	}

	got, err := svc.GetTest(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	if got.Name != def.Name {
		t.Errorf("round trip lost name: %s", got.Name)
	}
}

func TestCreateTestRetriesGeneratedCode(t *testing.T) {
	repo := newMockTestRepo()
	svc := NewService(repo)

	// The first attempt collides; the re-rolled code goes through.
	repo.failCreates = 1
	def, err := svc.CreateTest(context.Background(), TestDraft{Name: "Glucosa", Description: "d"})
	if err != nil {
		t.Fatalf("create should retry past one collision: %v", err)
	}
	if def.Code == "" {
		t.Error("retried create must still carry a code")
	}

	// Two collisions in a row exhaust the single retry.
	repo.failCreates = 2
	if _, err := svc.CreateTest(context.Background(), TestDraft{Name: "Urea", Description: "d"}); err != ErrDuplicateCode {
		t.Errorf("expected conflict after exhausted retry, got %v", err)
	}
}

func TestCreateTestExplicitCodeConflictNotRetried(t *testing.T) {
	repo := newMockTestRepo()
	svc := NewService(repo)

	if _, err := svc.CreateTest(context.Background(), TestDraft{Name: "A", Description: "d", Code: "TOX-A001"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateTest(context.Background(), TestDraft{Name: "B", Description: "d", Code: "TOX-A001"})
	if err != ErrDuplicateCode {
		t.Errorf("explicit duplicate code must surface as conflict, got %v", err)
	}
}

func TestUpdateTestPreservesKeysAndResynthesizes(t *testing.T) {
	repo := newMockTestRepo()
	svc := NewService(repo)

	def, err := svc.CreateTest(context.Background(), TestDraft{
		Name: "Panel", Description: "d",
		SubTests: []SubTestDraft{{Name: "Cocaína", Cutoff: "300", Unit: "ng/ml", Kind: KindBinary}},
	})
	if err != nil {
		t.Fatal(err)
	}

	oldKey := def.SubTests[0].Key
	def.SubTests[0].Cutoff = "150"
	def.SubTests = append(def.SubTests, SubTestDefinition{
		Name: "Marihuana", Kind: KindBinary, Cutoff: "50", Unit: "ng/ml",
	})

	if err := svc.UpdateTest(context.Background(), def); err != nil {
		t.Fatalf("update: %v", err)
	}

	if def.SubTests[0].Key != oldKey {
		t.Errorf("existing sub-test key changed: %s -> %s", oldKey, def.SubTests[0].Key)
	}
	if def.SubTests[0].ReferenceRange.Text == "" || def.SubTests[0].Cutoff != "150" {
		t.Error("range not re-synthesized from new cutoff")
	}
	if def.SubTests[1].ID == "" || def.SubTests[1].Key != "MARIHUANA" {
		t.Errorf("new sub-test not normalized: %+v", def.SubTests[1])
	}
	if def.SubTests[1].Order != 1 {
		t.Errorf("orders not reindexed: %d", def.SubTests[1].Order)
	}
}

func TestDeleteTest(t *testing.T) {
	repo := newMockTestRepo()
	svc := NewService(repo)

	def, err := svc.CreateTest(context.Background(), TestDraft{Name: "A", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTest(context.Background(), def.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetTest(context.Background(), def.ID); err == nil {
		t.Error("deleted test should not be retrievable")
	}
	if err := svc.DeleteTest(context.Background(), "missing"); err == nil {
		t.Error("expected error deleting unknown id")
	}
}
