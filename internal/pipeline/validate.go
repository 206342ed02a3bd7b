package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/resolve"
)

// StageValidate is the run-log name of the validation stage.
const StageValidate = "validate"

// ValidationResult lists the cross-references whose titles disagree.
type ValidationResult struct {
	Checked    int              `json:"checked"`
	Matched    int              `json:"matched"`
	Skipped    int              `json:"skipped"`
	Mismatches []model.Mismatch `json:"mismatches"`
	Report     *Report          `json:"report"`
}

// Validator compares primary and secondary titles for each cross-reference.
// It never writes to the store.
type Validator struct {
	catalogs    Catalogs
	concurrency int
	log         *zap.Logger
}

// NewValidator creates a Validator running on concurrency workers.
func NewValidator(cat Catalogs, concurrency int) *Validator {
	return &Validator{
		catalogs:    cat,
		concurrency: concurrency,
		log:         zap.L().With(zap.String("component", "pipeline.validate")),
	}
}

type titlePair struct {
	outcome  Outcome
	mismatch *model.Mismatch
}

// Validate fetches both titles for every pair. A pair with either title
// unavailable is skipped; mismatches carry the normalized secondary title.
func (v *Validator) Validate(ctx context.Context, pairs []model.CrossReference) (*ValidationResult, error) {
	started := time.Now().UTC()

	checked := make([]*model.Mismatch, len(pairs))
	outcomes, err := forEach(ctx, v.concurrency, indexed(pairs), func(ctx context.Context, p indexedRef) Outcome {
		res := v.compare(ctx, p.ref)
		checked[p.i] = res.mismatch
		return res.outcome
	})
	if err != nil {
		return nil, err
	}

	report := newReport(StageValidate, started, outcomes)
	res := &ValidationResult{
		Matched: report.Succeeded,
		Skipped: report.Skipped,
		Report:  report,
	}
	res.Checked = report.Succeeded + report.Mismatched
	for _, m := range checked {
		if m != nil {
			res.Mismatches = append(res.Mismatches, *m)
		}
	}
	report.Log(v.log)
	return res, nil
}

func (v *Validator) compare(ctx context.Context, ref model.CrossReference) titlePair {
	primary, ok := v.catalogs.PrimaryTitle(ctx, ref.MovieID)
	if !ok {
		return titlePair{outcome: skipped(ref.MovieID, ref.ForeignID, ReasonPrimaryTitle)}
	}
	secondary, ok := v.catalogs.SecondaryTitle(ctx, ref.ForeignID)
	if !ok {
		return titlePair{outcome: skipped(ref.MovieID, ref.ForeignID, ReasonSecondaryTitle)}
	}

	if resolve.TitlesMatch(primary, secondary) {
		return titlePair{outcome: succeeded(ref.MovieID, ref.ForeignID, 0)}
	}

	m := &model.Mismatch{
		MovieID:        ref.MovieID,
		ForeignID:      ref.ForeignID,
		PrimaryTitle:   primary,
		SecondaryTitle: resolve.NormalizeTitle(secondary),
	}
	v.log.Info("validate: title mismatch",
		zap.Int64("movie_id", m.MovieID),
		zap.String("foreign_id", m.ForeignID),
		zap.String("primary_title", m.PrimaryTitle),
		zap.String("secondary_title", m.SecondaryTitle),
	)
	return titlePair{
		outcome:  Outcome{MovieID: ref.MovieID, Ref: ref.ForeignID, Status: StatusMismatch, Reason: m.PrimaryTitle + " != " + m.SecondaryTitle},
		mismatch: m,
	}
}

type indexedRef struct {
	i   int
	ref model.CrossReference
}

func indexed(pairs []model.CrossReference) []indexedRef {
	out := make([]indexedRef, len(pairs))
	for i, p := range pairs {
		out[i] = indexedRef{i: i, ref: p}
	}
	return out
}
