// Package summary computes descriptive statistics over the joined dataset.
// Only rated movies are counted.
package summary

import (
	"sort"

	"github.com/cohortlab/cohort-cli/internal/model"
)

// Average is a mean over Count values. Mean is 0 when Count is 0.
type Average struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GenderAverage is an Average for one director gender.
type GenderAverage struct {
	Gender string `json:"gender"`
	Average
}

// GenderShare is one gender's portion of a distribution.
type GenderShare struct {
	Gender  string  `json:"gender"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Breakdown is the composer gender distribution for one director gender.
type Breakdown struct {
	DirectorGender string        `json:"director_gender"`
	Composers      []GenderShare `json:"composers"`
}

// Summary is the cohort report.
type Summary struct {
	RatedMovies              int             `json:"rated_movies"`
	AverageRating            Average         `json:"average_rating"`
	RatingByDirectorGender   []GenderAverage `json:"rating_by_director_gender"`
	VoteByDirectorGender     []GenderAverage `json:"vote_by_director_gender"`
	DirectorGenders          []GenderShare   `json:"director_genders"`
	ComposerGenders          []GenderShare   `json:"composer_genders"`
	ComposerByDirectorGender []Breakdown     `json:"composer_by_director_gender"`
}

type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.count++
}

func (a accumulator) average() Average {
	if a.count == 0 {
		return Average{}
	}
	return Average{Mean: a.sum / float64(a.count), Count: a.count}
}

// Summarize computes the report. Rows without a rating are ignored; rows
// without a director or composer are left out of that role's figures.
func Summarize(rows []model.DatasetRow) *Summary {
	var (
		overall         accumulator
		ratingByDir     = map[model.Gender]*accumulator{}
		voteByDir       = map[model.Gender]*accumulator{}
		dirCounts       = map[model.Gender]int{}
		compCounts      = map[model.Gender]int{}
		compByDirCounts = map[model.Gender]map[model.Gender]int{}
	)

	s := &Summary{}
	for _, r := range rows {
		if r.Rating == nil {
			continue
		}
		s.RatedMovies++
		overall.add(float64(*r.Rating))

		if r.ComposerGender != nil {
			compCounts[*r.ComposerGender]++
		}
		if r.DirectorGender == nil {
			continue
		}
		dg := *r.DirectorGender
		dirCounts[dg]++
		accFor(ratingByDir, dg).add(float64(*r.Rating))
		accFor(voteByDir, dg).add(r.VoteAverage)
		if r.ComposerGender != nil {
			if compByDirCounts[dg] == nil {
				compByDirCounts[dg] = map[model.Gender]int{}
			}
			compByDirCounts[dg][*r.ComposerGender]++
		}
	}

	s.AverageRating = overall.average()
	s.RatingByDirectorGender = averages(ratingByDir)
	s.VoteByDirectorGender = averages(voteByDir)
	s.DirectorGenders = shares(dirCounts)
	s.ComposerGenders = shares(compCounts)
	for _, g := range sortedGenders(compByDirCounts) {
		s.ComposerByDirectorGender = append(s.ComposerByDirectorGender, Breakdown{
			DirectorGender: g.String(),
			Composers:      shares(compByDirCounts[g]),
		})
	}
	return s
}

func accFor(m map[model.Gender]*accumulator, g model.Gender) *accumulator {
	a, ok := m[g]
	if !ok {
		a = &accumulator{}
		m[g] = a
	}
	return a
}

func averages(m map[model.Gender]*accumulator) []GenderAverage {
	out := make([]GenderAverage, 0, len(m))
	for _, g := range sortedGenders(m) {
		out = append(out, GenderAverage{Gender: g.String(), Average: m[g].average()})
	}
	return out
}

// shares converts counts to percentages of their total, largest first.
func shares(counts map[model.Gender]int) []GenderShare {
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make([]GenderShare, 0, len(counts))
	for _, g := range sortedGenders(counts) {
		out = append(out, GenderShare{
			Gender:  g.String(),
			Count:   counts[g],
			Percent: Percent(counts[g], total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Percent returns part as a percentage of total, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

func sortedGenders[V any](m map[model.Gender]V) []model.Gender {
	out := make([]model.Gender, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
