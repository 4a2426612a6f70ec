package patient

import "context"

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SoftDelete(ctx context.Context, id string) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
}
