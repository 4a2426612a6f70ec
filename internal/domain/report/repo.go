package report

import "context"

// ReportRepository persists reports. Result records live in their own
// table and are written together with the report row; callers wrap
// multi-row writes in a transaction.
type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	GetByFolio(ctx context.Context, folio int64) (*Report, error)
	Update(ctx context.Context, r *Report) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Report, int, error)
}
