package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinilab/clinilab/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type testDefinitionRepoPG struct{ pool *pgxpool.Pool }

func NewTestDefinitionRepoPG(pool *pgxpool.Pool) TestDefinitionRepository {
	return &testDefinitionRepoPG{pool: pool}
}

func (r *testDefinitionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const tdCols = `id, name, description, code, category, method, technique,
	sub_tests, extra_fields, created_at, updated_at, deleted_at`

func (r *testDefinitionRepoPG) scanTD(row pgx.Row) (*TestDefinition, error) {
	var (
		td          TestDefinition
		subTests    []byte
		extraFields []byte
	)
	err := row.Scan(&td.ID, &td.Name, &td.Description, &td.Code, &td.Category, &td.Method, &td.Technique,
		&subTests, &extraFields, &td.CreatedAt, &td.UpdatedAt, &td.DeletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subTests, &td.SubTests); err != nil {
		return nil, fmt.Errorf("decode sub_tests for %s: %w", td.ID, err)
	}
	if err := json.Unmarshal(extraFields, &td.ExtraFields); err != nil {
		return nil, fmt.Errorf("decode extra_fields for %s: %w", td.ID, err)
	}
	return &td, nil
}

func encodeDoc(td *TestDefinition) (subTests, extraFields []byte, err error) {
	if td.SubTests == nil {
		td.SubTests = []SubTestDefinition{}
	}
	if td.ExtraFields == nil {
		td.ExtraFields = []ExtraFieldDefinition{}
	}
	if subTests, err = json.Marshal(td.SubTests); err != nil {
		return nil, nil, err
	}
	if extraFields, err = json.Marshal(td.ExtraFields); err != nil {
		return nil, nil, err
	}
	return subTests, extraFields, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *testDefinitionRepoPG) Create(ctx context.Context, td *TestDefinition) error {
	if td.ID == "" {
		td.ID = uuid.NewString()
	}
	subTests, extraFields, err := encodeDoc(td)
	if err != nil {
		return err
	}
	now := time.Now()
	td.CreatedAt = now
	td.UpdatedAt = now
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO test_definition (id, name, description, code, category, method, technique,
			sub_tests, extra_fields, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		td.ID, td.Name, td.Description, td.Code, td.Category, td.Method, td.Technique,
		subTests, extraFields, td.CreatedAt, td.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *testDefinitionRepoPG) GetByID(ctx context.Context, id string) (*TestDefinition, error) {
	return r.scanTD(r.conn(ctx).QueryRow(ctx,
		`SELECT `+tdCols+` FROM test_definition WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *testDefinitionRepoPG) GetByCode(ctx context.Context, code string) (*TestDefinition, error) {
	return r.scanTD(r.conn(ctx).QueryRow(ctx,
		`SELECT `+tdCols+` FROM test_definition WHERE code = $1 AND deleted_at IS NULL`, code))
}

func (r *testDefinitionRepoPG) Update(ctx context.Context, td *TestDefinition) error {
	subTests, extraFields, err := encodeDoc(td)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_definition SET name=$2, description=$3, code=$4, category=$5,
			method=$6, technique=$7, sub_tests=$8, extra_fields=$9, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		td.ID, td.Name, td.Description, td.Code, td.Category,
		td.Method, td.Technique, subTests, extraFields)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *testDefinitionRepoPG) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_definition SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *testDefinitionRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TestDefinition, int, error) {
	query := `SELECT ` + tdCols + ` FROM test_definition WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM test_definition WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	if p, ok := params["category"]; ok {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		countQuery += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["q"]; ok {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d)`, idx, idx)
		countQuery += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d)`, idx, idx)
		args = append(args, "%"+p+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TestDefinition
	for rows.Next() {
		td, err := r.scanTD(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, td)
	}
	return items, total, nil
}
