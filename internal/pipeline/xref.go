package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/resolve"
	"github.com/cohortlab/cohort-cli/internal/store"
)

// StageXref is the run-log name of the cross-reference stage.
const StageXref = "xref"

// XrefBuilder links each seeded movie to its rating-catalog id.
type XrefBuilder struct {
	catalogs    Catalogs
	store       store.Store
	concurrency int
	log         *zap.Logger
}

// NewXrefBuilder creates an XrefBuilder running on concurrency workers.
func NewXrefBuilder(cat Catalogs, st store.Store, concurrency int) *XrefBuilder {
	return &XrefBuilder{
		catalogs:    cat,
		store:       st,
		concurrency: concurrency,
		log:         zap.L().With(zap.String("component", "pipeline.xref")),
	}
}

func (b *XrefBuilder) Name() string { return StageXref }

// Run builds the cross-reference for every seeded movie.
func (b *XrefBuilder) Run(ctx context.Context) (*Report, error) {
	ids, err := b.store.ListMovieIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "xref: load seed ids")
	}
	return b.Build(ctx, ids)
}

// Build resolves and stores the foreign id for each movie independently.
// Movies that already have a cross-reference are skipped without a lookup,
// so a second run over the same ids writes nothing.
func (b *XrefBuilder) Build(ctx context.Context, seedIDs []int64) (*Report, error) {
	started := time.Now().UTC()

	existing, err := b.store.ListCrossRefs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "xref: load existing cross-references")
	}
	resolved := make(map[int64]string, len(existing))
	for _, ref := range existing {
		resolved[ref.MovieID] = ref.ForeignID
	}

	outcomes, err := forEach(ctx, b.concurrency, seedIDs, func(ctx context.Context, id int64) Outcome {
		if fid, ok := resolved[id]; ok {
			return skipped(id, fid, ReasonAlreadyResolved)
		}
		return b.resolveOne(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	r := newReport(StageXref, started, outcomes)
	r.Log(b.log)
	return r, nil
}

func (b *XrefBuilder) resolveOne(ctx context.Context, id int64) Outcome {
	raw, ok := b.catalogs.ForeignID(ctx, id)
	if !ok {
		return skipped(id, "", ReasonForeignIDUnavailable)
	}
	fid := resolve.NormalizeForeignID(raw)
	if fid == "" {
		return skipped(id, raw, ReasonForeignIDUnavailable)
	}

	written, err := b.store.InsertCrossRef(ctx, model.CrossReference{MovieID: id, ForeignID: fid})
	if err != nil {
		return failed(id, fid, err)
	}
	if !written {
		return skipped(id, fid, ReasonAlreadyResolved)
	}
	b.log.Debug("xref: resolved", zap.Int64("movie_id", id), zap.String("foreign_id", fid))
	return succeeded(id, fid, 1)
}

func movieRef(id int64) string {
	return strconv.FormatInt(id, 10)
}
