//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cohortlab/cohort-cli/internal/model"
)

func TestWriteRuns(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	done := started.Add(2 * time.Second)

	var buf bytes.Buffer
	writeRuns(&buf, []model.Run{
		{ID: "3f2a9c1e-aaaa-bbbb-cccc-000000000000", Stage: "xref", Status: model.RunStatusComplete, StartedAt: started, CompletedAt: &done},
		{ID: "77777777-aaaa-bbbb-cccc-000000000000", Stage: "ingest:rating", Status: model.RunStatusRunning, StartedAt: started},
	})

	out := buf.String()
	assert.Contains(t, out, "3f2a9c1e")
	assert.NotContains(t, out, "3f2a9c1e-aaaa")
	assert.Contains(t, out, "2s")
	assert.Contains(t, out, "running")
}

func TestWriteRuns_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeRuns(&buf, nil)
	assert.Equal(t, "No runs recorded.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 8))
	assert.Equal(t, "abcdefgh", truncateID("abcdefghijk"))
	assert.Equal(t, "Amé", truncate("Amélie", 3))
}
