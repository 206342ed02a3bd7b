//go:build !integration

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/pipeline"
)

func TestWriteValidation(t *testing.T) {
	mismatches := []model.Mismatch{
		{MovieID: 42, ForeignID: "0000042", PrimaryTitle: "The Thing", SecondaryTitle: "Thing, The (1982)"},
	}

	var buf bytes.Buffer
	writeValidation(&buf, &pipeline.ValidationResult{Checked: 3, Matched: 2, Skipped: 1, Mismatches: mismatches})

	out := buf.String()
	assert.Contains(t, out, "Checked 3, matched 2, mismatched 1, skipped 1.")
	assert.Contains(t, out, "0000042")
	assert.Contains(t, out, "Thing, The (1982)")
}

func TestWriteValidation_NoMismatches(t *testing.T) {
	var buf bytes.Buffer
	writeValidation(&buf, &pipeline.ValidationResult{Checked: 2, Matched: 2})
	assert.Equal(t, "Checked 2, matched 2, mismatched 0, skipped 0.\n", buf.String())
}

func TestSelectIngestors(t *testing.T) {
	stages := pipeline.Ingestors(nil, nil, nil, 1)

	all, err := selectIngestors(stages, "all")
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := selectIngestors(stages, "composers")
	assert.NoError(t, err)
	if assert.Len(t, one, 1) {
		assert.Equal(t, "ingest:composers", one[0].Name())
	}

	_, err = selectIngestors(stages, "writers")
	assert.Error(t, err)
}
