package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinilab/clinilab/pkg/slug"
)

// TestDraft is the full operator input for creating a test definition.
type TestDraft struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Code        string            `json:"code"`
	Category    string            `json:"category"`
	Method      string            `json:"method"`
	Technique   string            `json:"technique"`
	SubTests    []SubTestDraft    `json:"sub_tests"`
	ExtraFields []ExtraFieldDraft `json:"extra_fields"`
}

type Service struct {
	tests TestDefinitionRepository
}

func NewService(tests TestDefinitionRepository) *Service {
	return &Service{tests: tests}
}

// CreateTest builds a definition from the draft and persists it. When the
// code was auto-generated and collides with an existing one, the random
// suffix is re-rolled once before giving up.
func (s *Service) CreateTest(ctx context.Context, draft TestDraft) (*TestDefinition, error) {
	b := NewBuilder(draft.Name, draft.Description, ParseCategory(draft.Category))
	for _, st := range draft.SubTests {
		if err := b.AddSubTest(st); err != nil {
			return nil, err
		}
	}
	for _, ef := range draft.ExtraFields {
		if err := b.AddExtraField(ef); err != nil {
			return nil, err
		}
	}

	generated := draft.Code == ""
	b.def.Code = draft.Code
	b.def.Method = draft.Method
	b.def.Technique = draft.Technique

	def, err := b.Finalize()
	if err != nil {
		return nil, err
	}

	err = s.tests.Create(ctx, &def)
	if err == ErrDuplicateCode && generated {
		def.Code = GenerateCode(def.Category, def.Name)
		err = s.tests.Create(ctx, &def)
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *Service) GetTest(ctx context.Context, id string) (*TestDefinition, error) {
	return s.tests.GetByID(ctx, id)
}

// GetTestDefinition satisfies the lookup interface used by report
// reconstruction.
func (s *Service) GetTestDefinition(ctx context.Context, id string) (*TestDefinition, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) GetTestByCode(ctx context.Context, code string) (*TestDefinition, error) {
	return s.tests.GetByCode(ctx, code)
}

// UpdateTest replaces the stored definition with def after normalizing
// it. Existing sub-tests keep their id and key so historical result
// records stay addressable; sub-tests without an id are treated as new
// and get a derived key. Reference ranges are always re-synthesized so
// they never drift from the cutoff that produced them.
func (s *Service) UpdateTest(ctx context.Context, def *TestDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("id is required")
	}
	if def.Name == "" {
		return &ValidationError{Fields: []string{"name"}}
	}
	if !validCategories[def.Category] {
		def.Category = CategoryGeneral
	}

	taken := make(map[string]bool, len(def.SubTests))
	for _, st := range def.SubTests {
		if st.Key != "" {
			taken[st.Key] = true
		}
	}
	for i := range def.SubTests {
		st := &def.SubTests[i]
		if st.Name == "" {
			return &ValidationError{Fields: []string{fmt.Sprintf("sub_tests[%d].name", i)}}
		}
		if !validKinds[st.Kind] {
			st.Kind = KindText
		}
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		if st.Key == "" {
			st.Key = slug.Unique(slug.Make(st.Name, slug.Upper), taken)
			taken[st.Key] = true
		}
		st.ReferenceRange = Synthesize(st.Cutoff, st.Unit, st.Kind)
		st.Order = i
	}
	for i := range def.ExtraFields {
		ef := &def.ExtraFields[i]
		if ef.Name == "" || ef.Label == "" {
			return &ValidationError{Fields: []string{fmt.Sprintf("extra_fields[%d]", i)}}
		}
		if !validFieldTypes[ef.Type] {
			ef.Type = FieldText
		}
		if ef.Key == "" {
			ef.Key = slug.Make(ef.Name, slug.Lower)
		}
	}

	return s.tests.Update(ctx, def)
}

func (s *Service) DeleteTest(ctx context.Context, id string) error {
	return s.tests.SoftDelete(ctx, id)
}

func (s *Service) ListTests(ctx context.Context, params map[string]string, limit, offset int) ([]*TestDefinition, int, error) {
	return s.tests.Search(ctx, params, limit, offset)
}

// PreviewRange synthesizes a reference range without persisting anything,
// for live preview while an operator types a cutoff.
func (s *Service) PreviewRange(cutoff, unit string, kind ResultKind) ReferenceRange {
	if !validKinds[kind] {
		kind = KindText
	}
	return Synthesize(cutoff, unit, kind)
}
