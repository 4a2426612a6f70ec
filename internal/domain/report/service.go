package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinilab/clinilab/internal/domain/catalog"
	"github.com/clinilab/clinilab/internal/platform/db"
	"github.com/clinilab/clinilab/pkg/flexid"
)

type Service struct {
	reports       ReportRepository
	lookup        TestLookup
	reconstructor *Reconstructor
	pool          *pgxpool.Pool
}

// NewService wires the report service. pool may be nil in tests; writes
// then run without a surrounding transaction.
func NewService(reports ReportRepository, lookup TestLookup, rc *Reconstructor, pool *pgxpool.Pool) *Service {
	return &Service{reports: reports, lookup: lookup, reconstructor: rc, pool: pool}
}

func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// CaptureInput is a capture form submission for a given test.
type CaptureInput struct {
	TestID       string          `json:"test_id"`
	Patient      PatientSnapshot `json:"patient"`
	Form         FormValues      `json:"form"`
	Status       Status          `json:"status"`
	Observations string          `json:"observations"`
}

func parsePerformedAt(fv FormValues) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", fv[FieldDate]+" "+fv[FieldTime], time.Local)
}

// CreateReport turns a capture submission into a stored report. The test
// definition is embedded into the report so it stays reconstructable
// even if the definition is later edited or deleted. The report row and
// its result records commit as a unit.
func (s *Service) CreateReport(ctx context.Context, in CaptureInput, createdBy string) (*Report, error) {
	if in.TestID == "" {
		return nil, fmt.Errorf("test_id is required")
	}
	if in.Patient.Name == "" {
		return nil, fmt.Errorf("patient name is required")
	}
	def, err := s.lookup.GetTestDefinition(ctx, in.TestID)
	if err != nil {
		return nil, fmt.Errorf("resolve test %s: %w", in.TestID, err)
	}

	if in.Form == nil {
		in.Form = FormValues{}
	}
	if in.Observations != "" {
		in.Form.Set(FieldObservations, in.Observations)
	}
	if missing := in.Form.ValidateRequired(def); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	performedAt, err := parsePerformedAt(in.Form)
	if err != nil {
		return nil, fmt.Errorf("invalid fecha/hora: %w", err)
	}

	status := in.Status
	if status == "" {
		status = StatusCompleted
	}
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	rep := &Report{
		Patient: in.Patient,
		Test: TestSnapshot{
			Name:      def.Name,
			Code:      def.Code,
			Method:    def.Method,
			Technique: def.Technique,
		},
		TestRef:      TestRef{ID: flexid.New(def.ID), Embedded: def},
		Results:      in.Form.ToResultRecords(def),
		ExtraFields:  in.Form.ToExtraFieldValues(def),
		Observations: in.Form[FieldObservations],
		Status:       status,
		PerformedAt:  performedAt,
		CreatedBy:    createdBy,
	}

	err = s.withTx(ctx, func(ctx context.Context) error {
		return s.reports.Create(ctx, rep)
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *Service) GetReportByFolio(ctx context.Context, folio int64) (*Report, error) {
	return s.reports.GetByFolio(ctx, folio)
}

// UpdateReport re-applies a capture form to an existing report. The test
// definition is resolved the same way reconstruction resolves it, so
// reports whose definition has since vanished remain editable.
func (s *Service) UpdateReport(ctx context.Context, id string, in CaptureInput) (*Report, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	def, _ := s.reconstructor.resolveDefinition(ctx, rep)

	if in.Form == nil {
		in.Form = FormValues{}
	}
	if in.Observations != "" {
		in.Form.Set(FieldObservations, in.Observations)
	}
	if missing := in.Form.ValidateRequired(def); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	performedAt, err := parsePerformedAt(in.Form)
	if err != nil {
		return nil, fmt.Errorf("invalid fecha/hora: %w", err)
	}

	if in.Patient.Name != "" {
		rep.Patient = in.Patient
	}
	if in.Status != "" {
		if !validStatuses[in.Status] {
			return nil, fmt.Errorf("invalid status: %s", in.Status)
		}
		rep.Status = in.Status
	}
	rep.Results = in.Form.ToResultRecords(def)
	rep.ExtraFields = in.Form.ToExtraFieldValues(def)
	rep.Observations = in.Form[FieldObservations]
	rep.PerformedAt = performedAt

	err = s.withTx(ctx, func(ctx context.Context) error {
		return s.reports.Update(ctx, rep)
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// UpdateStatus moves a report to a new lifecycle status without touching
// its captured values.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Report, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rep.Status = status
	err = s.withTx(ctx, func(ctx context.Context) error {
		return s.reports.Update(ctx, rep)
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) DeleteReport(ctx context.Context, id string) error {
	return s.withTx(ctx, func(ctx context.Context) error {
		return s.reports.Delete(ctx, id)
	})
}

func (s *Service) ListReports(ctx context.Context, params map[string]string, limit, offset int) ([]*Report, int, error) {
	return s.reports.Search(ctx, params, limit, offset)
}

// Reconstruct rebuilds the capture form of a stored report.
func (s *Service) Reconstruct(ctx context.Context, id string) (*Report, Reconstruction, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, Reconstruction{}, err
	}
	return rep, s.reconstructor.Reconstruct(ctx, rep), nil
}

// NewCaptureForm resolves a test definition and returns the pre-filled
// form an operator starts from.
func (s *Service) NewCaptureForm(ctx context.Context, testID string) (*catalog.TestDefinition, FormValues, error) {
	def, err := s.lookup.GetTestDefinition(ctx, testID)
	if err != nil {
		return nil, nil, err
	}
	return def, InitializeDefaults(def), nil
}
