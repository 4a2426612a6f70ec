package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinilab/clinilab/internal/platform/db"
	"github.com/clinilab/clinilab/pkg/flexid"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const repCols = `id, folio, patient, test, test_ref, extra_fields,
	observations, status, performed_at, created_by, created_at, updated_at`

func (r *reportRepoPG) scanReport(row pgx.Row) (*Report, error) {
	var (
		rep         Report
		patient     []byte
		test        []byte
		testRef     []byte
		extraFields []byte
	)
	err := row.Scan(&rep.ID, &rep.Folio, &patient, &test, &testRef, &extraFields,
		&rep.Observations, &rep.Status, &rep.PerformedAt, &rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patient, &rep.Patient); err != nil {
		return nil, fmt.Errorf("decode patient for %s: %w", rep.ID, err)
	}
	if err := json.Unmarshal(test, &rep.Test); err != nil {
		return nil, fmt.Errorf("decode test for %s: %w", rep.ID, err)
	}
	if err := json.Unmarshal(testRef, &rep.TestRef); err != nil {
		return nil, fmt.Errorf("decode test_ref for %s: %w", rep.ID, err)
	}
	if err := json.Unmarshal(extraFields, &rep.ExtraFields); err != nil {
		return nil, fmt.Errorf("decode extra_fields for %s: %w", rep.ID, err)
	}
	return &rep, nil
}

func encodeReport(rep *Report) (patient, test, testRef, extraFields []byte, err error) {
	if rep.ExtraFields == nil {
		rep.ExtraFields = []ExtraFieldValue{}
	}
	if patient, err = json.Marshal(rep.Patient); err != nil {
		return
	}
	if test, err = json.Marshal(rep.Test); err != nil {
		return
	}
	if testRef, err = json.Marshal(rep.TestRef); err != nil {
		return
	}
	extraFields, err = json.Marshal(rep.ExtraFields)
	return
}

func (r *reportRepoPG) Create(ctx context.Context, rep *Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	patient, test, testRef, extraFields, err := encodeReport(rep)
	if err != nil {
		return err
	}
	now := time.Now()
	rep.CreatedAt = now
	rep.UpdatedAt = now
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO report (id, folio, patient, test, test_ref, extra_fields,
			observations, status, performed_at, created_by, created_at, updated_at)
		VALUES ($1, nextval('report_folio_seq'), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING folio`,
		rep.ID, patient, test, testRef, extraFields,
		rep.Observations, rep.Status, rep.PerformedAt, rep.CreatedBy, rep.CreatedAt, rep.UpdatedAt).
		Scan(&rep.Folio)
	if err != nil {
		return err
	}
	return r.insertResults(ctx, rep)
}

func (r *reportRepoPG) insertResults(ctx context.Context, rep *Report) error {
	for i, res := range rep.Results {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO report_result (report_id, position, sub_test_id, key, name, value, unit, reference)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			rep.ID, i, res.SubTestID.String(), res.Key, res.Name, res.Value, res.Unit, res.Reference)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reportRepoPG) loadResults(ctx context.Context, rep *Report) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT sub_test_id, key, name, value, unit, reference
		FROM report_result WHERE report_id = $1 ORDER BY position ASC`, rep.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	rep.Results = []ResultRecord{}
	for rows.Next() {
		var (
			res       ResultRecord
			subTestID string
		)
		if err := rows.Scan(&subTestID, &res.Key, &res.Name, &res.Value, &res.Unit, &res.Reference); err != nil {
			return err
		}
		res.SubTestID = flexid.New(subTestID)
		rep.Results = append(rep.Results, res)
	}
	return rows.Err()
}

func (r *reportRepoPG) GetByID(ctx context.Context, id string) (*Report, error) {
	rep, err := r.scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+repCols+` FROM report WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadResults(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *reportRepoPG) GetByFolio(ctx context.Context, folio int64) (*Report, error) {
	rep, err := r.scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+repCols+` FROM report WHERE folio = $1`, folio))
	if err != nil {
		return nil, err
	}
	if err := r.loadResults(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// Update rewrites the report row and replaces its result records.
func (r *reportRepoPG) Update(ctx context.Context, rep *Report) error {
	patient, test, testRef, extraFields, err := encodeReport(rep)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE report SET patient=$2, test=$3, test_ref=$4, extra_fields=$5,
			observations=$6, status=$7, performed_at=$8, updated_at=NOW()
		WHERE id = $1`,
		rep.ID, patient, test, testRef, extraFields,
		rep.Observations, rep.Status, rep.PerformedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM report_result WHERE report_id = $1`, rep.ID); err != nil {
		return err
	}
	return r.insertResults(ctx, rep)
}

func (r *reportRepoPG) Delete(ctx context.Context, id string) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM report_result WHERE report_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM report WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Report, int, error) {
	query := `SELECT ` + repCols + ` FROM report WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM report WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["patient"]; ok {
		query += fmt.Sprintf(` AND patient->>'name' ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient->>'name' ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["from"]; ok {
		query += fmt.Sprintf(` AND performed_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND performed_at >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["to"]; ok {
		query += fmt.Sprintf(` AND performed_at <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND performed_at <= $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY folio DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Report
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, rep := range items {
		if err := r.loadResults(ctx, rep); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}
