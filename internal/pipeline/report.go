// Package pipeline runs the cohort stages: seed discovery, cross-reference
// construction, attribute ingestion and reconciliation validation.
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Status is the per-entity result of a stage.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusMismatch  Status = "mismatch"
)

// Skip and failure reasons recorded on outcomes.
const (
	ReasonForeignIDUnavailable = "foreign id unavailable"
	ReasonAlreadyResolved      = "already resolved"
	ReasonRecordUnavailable    = "catalog record unavailable"
	ReasonNoRating             = "no rating"
	ReasonAlreadyRated         = "already rated"
	ReasonNoMatchingCrew       = "no matching crew"
	ReasonNoForeignID          = "no cross-reference"
	ReasonPrimaryTitle         = "primary title unavailable"
	ReasonSecondaryTitle       = "secondary title unavailable"
)

// Outcome records what happened to one entity.
type Outcome struct {
	MovieID int64  `json:"movie_id"`
	Ref     string `json:"ref,omitempty"`
	Status  Status `json:"status"`
	Rows    int    `json:"rows"`
	Reason  string `json:"reason,omitempty"`
}

// Report summarizes one stage run. Outcomes are in input order.
type Report struct {
	Stage       string    `json:"stage"`
	Succeeded   int       `json:"succeeded"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	Mismatched  int       `json:"mismatched,omitempty"`
	Rows        int       `json:"rows"`
	Outcomes    []Outcome `json:"outcomes"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

func newReport(stage string, started time.Time, outcomes []Outcome) *Report {
	r := &Report{
		Stage:       stage,
		Outcomes:    outcomes,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	}
	for _, o := range outcomes {
		r.add(o)
	}
	return r
}

func (r *Report) add(o Outcome) {
	switch o.Status {
	case StatusSucceeded:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	case StatusMismatch:
		r.Mismatched++
	}
	r.Rows += o.Rows
}

// Total is the number of entities the stage processed.
func (r *Report) Total() int {
	return r.Succeeded + r.Skipped + r.Failed + r.Mismatched
}

// JSON encodes the report for the run log.
func (r *Report) JSON() ([]byte, error) {
	b, err := json.Marshal(r)
	return b, eris.Wrapf(err, "pipeline: encode %s report", r.Stage)
}

// Log writes a summary line plus one line per failed entity.
func (r *Report) Log(log *zap.Logger) {
	for _, o := range r.Outcomes {
		if o.Status != StatusFailed {
			continue
		}
		log.Warn("pipeline: entity failed",
			zap.String("stage", r.Stage),
			zap.Int64("movie_id", o.MovieID),
			zap.String("ref", o.Ref),
			zap.String("reason", o.Reason),
		)
	}
	log.Info("pipeline: stage complete",
		zap.String("stage", r.Stage),
		zap.Int("total", r.Total()),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
		zap.Int("mismatched", r.Mismatched),
		zap.Int("rows", r.Rows),
		zap.Duration("elapsed", r.CompletedAt.Sub(r.StartedAt)),
	)
}

func succeeded(movieID int64, ref string, rows int) Outcome {
	return Outcome{MovieID: movieID, Ref: ref, Status: StatusSucceeded, Rows: rows}
}

func skipped(movieID int64, ref, reason string) Outcome {
	return Outcome{MovieID: movieID, Ref: ref, Status: StatusSkipped, Reason: reason}
}

func failed(movieID int64, ref string, err error) Outcome {
	return Outcome{MovieID: movieID, Ref: ref, Status: StatusFailed, Reason: err.Error()}
}
