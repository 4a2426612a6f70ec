package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinilab/clinilab/internal/domain/catalog"
)

// Strategy names which source the reconstructed form came from.
type Strategy string

const (
	StrategyEmbedded Strategy = "embedded"
	StrategyLookup   Strategy = "lookup"
	StrategySnapshot Strategy = "snapshot"
)

// FallbackReference is shown when a snapshot-only result carries no
// reference text of its own.
const FallbackReference = "Sin referencia disponible"

// TestLookup resolves a test definition by id. The catalog service
// satisfies it.
type TestLookup interface {
	GetTestDefinition(ctx context.Context, id string) (*catalog.TestDefinition, error)
}

// Reconstructor rebuilds the capture form state of a stored report so it
// can be re-opened for viewing or editing. It degrades through three
// sources and never fails: an embedded definition is used verbatim, a
// bare id goes through a bounded live lookup, and when both are
// unavailable the form is rebuilt from the denormalized result records
// alone.
type Reconstructor struct {
	lookup  TestLookup
	timeout time.Duration
	logger  zerolog.Logger
}

func NewReconstructor(lookup TestLookup, timeout time.Duration, logger zerolog.Logger) *Reconstructor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reconstructor{lookup: lookup, timeout: timeout, logger: logger}
}

// Reconstruction is a report re-expressed as the form that captured it.
type Reconstruction struct {
	Test     *catalog.TestDefinition `json:"test"`
	Form     FormValues              `json:"form"`
	Strategy Strategy                `json:"strategy"`
}

// Reconstruct rebuilds the form for r. The returned strategy reports
// which source produced the test definition.
func (rc *Reconstructor) Reconstruct(ctx context.Context, r *Report) Reconstruction {
	def, strategy := rc.resolveDefinition(ctx, r)
	return Reconstruction{
		Test:     def,
		Form:     rc.formValues(r, def),
		Strategy: strategy,
	}
}

func (rc *Reconstructor) resolveDefinition(ctx context.Context, r *Report) (*catalog.TestDefinition, Strategy) {
	if emb := r.TestRef.Embedded; emb != nil && len(emb.SubTests) > 0 {
		return emb, StrategyEmbedded
	}

	if id := r.TestRef.ID.String(); id != "" && rc.lookup != nil {
		lctx, cancel := context.WithTimeout(ctx, rc.timeout)
		defer cancel()
		// A fetched definition only wins when it still has sub-tests;
		// one that lost them since capture cannot explain the stored
		// results and the snapshot path must take over.
		def, err := rc.lookup.GetTestDefinition(lctx, id)
		if err == nil && def != nil && len(def.SubTests) > 0 {
			return def, StrategyLookup
		}
		rc.logger.Warn().
			Err(err).
			Str("report_id", r.ID).
			Str("test_id", id).
			Msg("no usable test definition from lookup, reconstructing from result snapshot")
	}

	return rc.fromSnapshot(r), StrategySnapshot
}

// fromSnapshot derives a minimal definition from the report's own result
// records. Every sub-test comes back as free text since the original
// kind is unknown, and reference text falls back to a fixed notice.
func (rc *Reconstructor) fromSnapshot(r *Report) *catalog.TestDefinition {
	def := &catalog.TestDefinition{
		ID:          r.TestRef.ID.String(),
		Name:        r.Test.Name,
		Code:        r.Test.Code,
		Method:      r.Test.Method,
		Technique:   r.Test.Technique,
		Category:    catalog.CategoryGeneral,
		SubTests:    make([]catalog.SubTestDefinition, 0, len(r.Results)),
		ExtraFields: []catalog.ExtraFieldDefinition{},
	}
	for i, res := range r.Results {
		name := res.Name
		if name == "" {
			name = res.Key
		}
		reference := res.Reference
		if reference == "" {
			reference = FallbackReference
		}
		def.SubTests = append(def.SubTests, catalog.SubTestDefinition{
			ID:   res.SubTestID.String(),
			Key:  res.Key,
			Name: name,
			Kind: catalog.KindText,
			Unit: res.Unit,
			ReferenceRange: catalog.ReferenceRange{
				Text:    reference,
				Options: []catalog.RangeOption{},
			},
			Order: i,
		})
	}
	for _, ef := range r.ExtraFields {
		def.ExtraFields = append(def.ExtraFields, catalog.ExtraFieldDefinition{
			Key:   ef.Key,
			Name:  ef.Name,
			Label: ef.Name,
			Type:  catalog.FieldText,
		})
	}
	return def
}

// formValues flattens the report back into capture form state.
func (rc *Reconstructor) formValues(r *Report, def *catalog.TestDefinition) FormValues {
	fv := FormValues{}
	if !r.PerformedAt.IsZero() {
		fv[FieldDate] = r.PerformedAt.Format("2006-01-02")
		fv[FieldTime] = r.PerformedAt.Format("15:04")
	}
	if r.Observations != "" {
		fv[FieldObservations] = r.Observations
	}
	for _, res := range r.Results {
		id := res.SubTestID.String()
		if id == "" {
			// Old records sometimes lack the sub-test id; fall back to
			// matching the definition by key.
			for _, st := range def.SubTests {
				if st.Key == res.Key {
					id = st.ID
					break
				}
			}
		}
		if id != "" {
			fv[id] = res.Value
		}
	}
	for _, ef := range r.ExtraFields {
		fv[ExtraFieldKey(ef.Key)] = ef.Value
	}
	return fv
}
