package catalog

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/clinilab/clinilab/pkg/slug"
)

// SubTestDraft is the operator input for one sub-test.
type SubTestDraft struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cutoff      string     `json:"cutoff"`
	Unit        string     `json:"unit"`
	Kind        ResultKind `json:"kind"`
}

// ExtraFieldDraft is the operator input for one extra form field.
type ExtraFieldDraft struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// Builder assembles a TestDefinition from operator input. Sub-test keys
// are derived once here and stay fixed for the life of the definition;
// display order follows append order.
type Builder struct {
	def TestDefinition
}

// NewBuilder starts a builder for a fresh definition.
func NewBuilder(name, description string, category Category) *Builder {
	return &Builder{def: TestDefinition{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Category:    category,
		SubTests:    []SubTestDefinition{},
		ExtraFields: []ExtraFieldDefinition{},
	}}
}

// EditBuilder wraps an existing definition for structural edits. The
// definition is copied; Finalize returns the edited copy.
func EditBuilder(def TestDefinition) *Builder {
	return &Builder{def: def}
}

// Definition returns the current working copy.
func (b *Builder) Definition() TestDefinition { return b.def }

// AddSubTest validates the draft, derives an immutable key and reference
// range, and appends the sub-test at the end of the display order.
func (b *Builder) AddSubTest(draft SubTestDraft) error {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return &ValidationError{Fields: []string{"name"}}
	}

	kind := draft.Kind
	if !validKinds[kind] {
		kind = KindText
	}

	taken := make(map[string]bool, len(b.def.SubTests))
	for _, st := range b.def.SubTests {
		taken[st.Key] = true
	}

	b.def.SubTests = append(b.def.SubTests, SubTestDefinition{
		ID:             uuid.NewString(),
		Key:            slug.Unique(slug.Make(name, slug.Upper), taken),
		Name:           name,
		Description:    strings.TrimSpace(draft.Description),
		Kind:           kind,
		Unit:           draft.Unit,
		Cutoff:         strings.TrimSpace(draft.Cutoff),
		ReferenceRange: Synthesize(draft.Cutoff, draft.Unit, kind),
		Order:          len(b.def.SubTests),
	})
	return nil
}

// RemoveSubTest deletes the sub-test at index and renumbers the rest.
func (b *Builder) RemoveSubTest(index int) error {
	if index < 0 || index >= len(b.def.SubTests) {
		return fmt.Errorf("sub-test index %d out of range", index)
	}
	b.def.SubTests = append(b.def.SubTests[:index], b.def.SubTests[index+1:]...)
	for i := range b.def.SubTests {
		b.def.SubTests[i].Order = i
	}
	return nil
}

// ConfigureSubTest re-synthesizes the reference range of an existing
// sub-test from new cutoff/unit/kind input. Key, name and order are
// preserved; only the derived fields change.
func (b *Builder) ConfigureSubTest(index int, cutoff, unit string, kind ResultKind) error {
	if index < 0 || index >= len(b.def.SubTests) {
		return fmt.Errorf("sub-test index %d out of range", index)
	}
	if !validKinds[kind] {
		kind = KindText
	}
	st := &b.def.SubTests[index]
	st.Kind = kind
	st.Unit = unit
	st.Cutoff = strings.TrimSpace(cutoff)
	st.ReferenceRange = Synthesize(cutoff, unit, kind)
	return nil
}

// AddExtraField validates the draft and appends an extra field with a
// lower-cased derived key.
func (b *Builder) AddExtraField(draft ExtraFieldDraft) error {
	var missing []string
	name := strings.TrimSpace(draft.Name)
	label := strings.TrimSpace(draft.Label)
	if name == "" {
		missing = append(missing, "name")
	}
	if label == "" {
		missing = append(missing, "label")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	ft := draft.Type
	if !validFieldTypes[ft] {
		ft = FieldText
	}

	b.def.ExtraFields = append(b.def.ExtraFields, ExtraFieldDefinition{
		Key:      slug.Make(name, slug.Lower),
		Name:     name,
		Label:    label,
		Type:     ft,
		Required: draft.Required,
	})
	return nil
}

// RemoveExtraField deletes the extra field at index.
func (b *Builder) RemoveExtraField(index int) error {
	if index < 0 || index >= len(b.def.ExtraFields) {
		return fmt.Errorf("extra field index %d out of range", index)
	}
	b.def.ExtraFields = append(b.def.ExtraFields[:index], b.def.ExtraFields[index+1:]...)
	return nil
}

// Finalize validates the definition and derives its code when one was
// not supplied. A definition that already carries a code keeps it; the
// random suffix is never re-rolled on re-save.
func (b *Builder) Finalize() (TestDefinition, error) {
	var missing []string
	if b.def.Name == "" {
		missing = append(missing, "name")
	}
	if b.def.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return TestDefinition{}, &ValidationError{Fields: missing}
	}

	if b.def.Category == "" {
		b.def.Category = CategoryGeneral
	}
	if strings.TrimSpace(b.def.Code) == "" {
		b.def.Code = GenerateCode(b.def.Category, b.def.Name)
	}
	return b.def, nil
}

// GenerateCode derives a short test code: the category's first three
// letters uppercased, the first four characters of the slugged name, and
// a zero-padded random three-digit suffix. Collisions are possible; the
// database enforces uniqueness and the service retries on conflict.
func GenerateCode(category Category, name string) string {
	cat := strings.ToUpper(string(category))
	if len(cat) > 3 {
		cat = cat[:3]
	}
	key := strings.ReplaceAll(slug.Make(name, slug.Upper), "_", "")
	if len(key) > 4 {
		key = key[:4]
	}
	return fmt.Sprintf("%s-%s%03d", cat, key, rand.Intn(1000))
}
