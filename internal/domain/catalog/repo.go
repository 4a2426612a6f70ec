package catalog

import "context"

// TestDefinitionRepository persists test definitions. Sub-tests and
// extra fields travel with the definition as one document.
type TestDefinitionRepository interface {
	Create(ctx context.Context, def *TestDefinition) error
	GetByID(ctx context.Context, id string) (*TestDefinition, error)
	GetByCode(ctx context.Context, code string) (*TestDefinition, error)
	Update(ctx context.Context, def *TestDefinition) error
	SoftDelete(ctx context.Context, id string) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TestDefinition, int, error)
}
