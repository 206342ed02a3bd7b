package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/store"
)

// Ingestor fetches one attribute kind for a batch of entities and writes the
// qualifying rows. Each entity is independent: a failed lookup or write is
// recorded on its outcome and the batch continues.
type Ingestor[C, W any] struct {
	kind        AttributeKind[C, W]
	catalogs    Catalogs
	store       store.Store
	concurrency int
	log         *zap.Logger
}

// NewIngestor creates an Ingestor for kind running on concurrency workers.
func NewIngestor[C, W any](kind AttributeKind[C, W], cat Catalogs, st store.Store, concurrency int) *Ingestor[C, W] {
	return &Ingestor[C, W]{
		kind:        kind,
		catalogs:    cat,
		store:       st,
		concurrency: concurrency,
		log:         zap.L().With(zap.String("component", "pipeline.ingest"), zap.String("kind", kind.Name)),
	}
}

func (in *Ingestor[C, W]) Name() string { return "ingest:" + in.kind.Name }

// Run loads the entity refs the kind is addressed by and ingests them.
func (in *Ingestor[C, W]) Run(ctx context.Context) (*Report, error) {
	refs, err := in.refs(ctx)
	if err != nil {
		return nil, err
	}
	return in.Ingest(ctx, refs)
}

func (in *Ingestor[C, W]) refs(ctx context.Context) ([]EntityRef, error) {
	if in.kind.ByForeignID {
		xrefs, err := in.store.ListCrossRefs(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest %s: load cross-references", in.kind.Name)
		}
		return RefsFromCrossRefs(xrefs), nil
	}
	ids, err := in.store.ListMovieIDs(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest %s: load movie ids", in.kind.Name)
	}
	return RefsFromMovieIDs(ids), nil
}

// Ingest processes refs and returns one outcome per entity, in input order.
func (in *Ingestor[C, W]) Ingest(ctx context.Context, refs []EntityRef) (*Report, error) {
	started := time.Now().UTC()

	outcomes, err := forEach(ctx, in.concurrency, refs, in.one)
	if err != nil {
		return nil, err
	}

	r := newReport(in.Name(), started, outcomes)
	r.Log(in.log)
	return r, nil
}

func (in *Ingestor[C, W]) one(ctx context.Context, ref EntityRef) Outcome {
	key := in.kind.Key(ref)
	if in.kind.ByForeignID && ref.ForeignID == "" {
		return skipped(ref.MovieID, key, ReasonNoForeignID)
	}

	record, ok := in.kind.Fetch(ctx, in.catalogs, ref)
	if !ok {
		return skipped(ref.MovieID, key, ReasonRecordUnavailable)
	}

	rows := in.kind.Extract(ref, record)
	if len(rows) == 0 {
		return skipped(ref.MovieID, key, in.kind.NoMatch)
	}

	written := 0
	for _, row := range rows {
		changed, err := in.kind.Write(ctx, in.store, row)
		if err != nil {
			return failed(ref.MovieID, key, err)
		}
		if changed {
			written++
		}
	}
	if written == 0 {
		return skipped(ref.MovieID, key, in.kind.Conflict)
	}
	return succeeded(ref.MovieID, key, written)
}

// Ingestors returns the rating, director and composer stages in that order.
// jobs overrides the default job set per role.
func Ingestors(cat Catalogs, st store.Store, jobs map[model.RoleKind][]string, concurrency int) []Stage {
	return []Stage{
		NewIngestor(RatingKind(), cat, st, concurrency),
		NewIngestor(CrewKind(model.RoleDirector, jobs[model.RoleDirector]), cat, st, concurrency),
		NewIngestor(CrewKind(model.RoleComposer, jobs[model.RoleComposer]), cat, st, concurrency),
	}
}
