package pipeline

import (
	"context"
	"strings"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/store"
)

// EntityRef addresses one movie in both catalogs. ForeignID is empty for
// kinds addressed by movie id.
type EntityRef struct {
	MovieID   int64
	ForeignID string
}

// RefsFromCrossRefs addresses entities by their cross-referenced ids.
func RefsFromCrossRefs(refs []model.CrossReference) []EntityRef {
	out := make([]EntityRef, len(refs))
	for i, r := range refs {
		out[i] = EntityRef{MovieID: r.MovieID, ForeignID: r.ForeignID}
	}
	return out
}

// RefsFromMovieIDs addresses entities by movie id only.
func RefsFromMovieIDs(ids []int64) []EntityRef {
	out := make([]EntityRef, len(ids))
	for i, id := range ids {
		out[i] = EntityRef{MovieID: id}
	}
	return out
}

// AttributeKind describes one attribute source. C is the catalog record
// fetched per entity and W is the row written for each qualifying value.
type AttributeKind[C, W any] struct {
	Name string

	// ByForeignID addresses the catalog with the cross-referenced id.
	// Entities without one are skipped.
	ByForeignID bool

	Fetch func(ctx context.Context, cat Catalogs, ref EntityRef) (C, bool)

	// Extract returns the qualifying rows in write order.
	Extract func(ref EntityRef, record C) []W

	// Write persists one row and reports whether it changed stored state.
	Write func(ctx context.Context, st store.Store, row W) (bool, error)

	// NoMatch is the skip reason when Extract yields nothing.
	NoMatch string
	// Conflict is the skip reason when every write kept an existing row.
	Conflict string
}

// Key is the catalog key the kind uses for ref.
func (k AttributeKind[C, W]) Key(ref EntityRef) string {
	if k.ByForeignID {
		return ref.ForeignID
	}
	return movieRef(ref.MovieID)
}

// KindRating is the run-log name of the rating kind.
const KindRating = "rating"

// RatingKind ingests the three-point rating, keyed by foreign id. Unrated
// movies and out-of-range scores yield no row. Writes keep the first
// stored rating.
func RatingKind() AttributeKind[*model.ExternalRating, model.Rating] {
	return AttributeKind[*model.ExternalRating, model.Rating]{
		Name:        KindRating,
		ByForeignID: true,
		Fetch: func(ctx context.Context, cat Catalogs, ref EntityRef) (*model.ExternalRating, bool) {
			return cat.Rating(ctx, ref.ForeignID)
		},
		Extract: func(ref EntityRef, ext *model.ExternalRating) []model.Rating {
			if ext == nil || ext.Score == nil {
				return nil
			}
			score := *ext.Score
			if score < 0 || score > model.MaxRatingScore {
				return nil
			}
			return []model.Rating{{MovieID: ref.MovieID, Score: score, Dubious: ext.Dubious}}
		},
		Write: func(ctx context.Context, st store.Store, r model.Rating) (bool, error) {
			return st.InsertRating(ctx, r)
		},
		NoMatch:  ReasonNoRating,
		Conflict: ReasonAlreadyRated,
	}
}

// Default crew job sets per role.
var (
	DefaultDirectorJobs = []string{"Director"}
	DefaultComposerJobs = []string{"Composer", "Original Music Composer", "Music"}
)

// DefaultJobs returns the built-in job set for a role.
func DefaultJobs(role model.RoleKind) []string {
	switch role {
	case model.RoleDirector:
		return DefaultDirectorJobs
	case model.RoleComposer:
		return DefaultComposerJobs
	}
	return nil
}

// CrewKind ingests credits for role whose job is in jobs, keyed by movie id.
// Job matching is exact. Every match is upserted in response order, so the
// last qualifying credit is the one that remains.
func CrewKind(role model.RoleKind, jobs []string) AttributeKind[[]model.CrewCredit, model.CrewRecord] {
	if len(jobs) == 0 {
		jobs = DefaultJobs(role)
	}
	allowed := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		allowed[strings.TrimSpace(j)] = struct{}{}
	}

	return AttributeKind[[]model.CrewCredit, model.CrewRecord]{
		Name: role.Table(),
		Fetch: func(ctx context.Context, cat Catalogs, ref EntityRef) ([]model.CrewCredit, bool) {
			return cat.Credits(ctx, ref.MovieID)
		},
		Extract: func(ref EntityRef, credits []model.CrewCredit) []model.CrewRecord {
			var out []model.CrewRecord
			for _, c := range credits {
				if _, ok := allowed[c.Job]; !ok {
					continue
				}
				out = append(out, model.CrewRecord{
					MovieID:    ref.MovieID,
					Role:       role,
					PersonName: c.Name,
					Job:        c.Job,
					Gender:     c.Gender,
				})
			}
			return out
		},
		Write: func(ctx context.Context, st store.Store, rec model.CrewRecord) (bool, error) {
			return true, st.UpsertCrew(ctx, rec)
		},
		NoMatch: ReasonNoMatchingCrew,
	}
}
