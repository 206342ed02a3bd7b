package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohortlab/cohort-cli/internal/model"
)

func TestValidator_Validate(t *testing.T) {
	cat := newFakeCatalogs()
	cat.titles[603] = "The Matrix"
	cat.secondary["0133093"] = "Matrix, The"

	cat.titles[1] = "Bill & Ted's Excellent Adventure"
	cat.secondary["0096928"] = "Bill &amp; Ted&#39;s Excellent Adventure"

	cat.titles[2] = "Amélie"
	cat.secondary["0211915"] = "Le Fabuleux Destin d'Amélie Poulain"

	cat.titles[3] = "Barbie"
	// no secondary title for 0000003

	cat.titles[4] = "the MATRIX reloaded"
	cat.secondary["0234215"] = "Matrix Reloaded, The"

	pairs := []model.CrossReference{
		{MovieID: 603, ForeignID: "0133093"},
		{MovieID: 1, ForeignID: "0096928"},
		{MovieID: 2, ForeignID: "0211915"},
		{MovieID: 3, ForeignID: "0000003"},
		{MovieID: 4, ForeignID: "0234215"},
		{MovieID: 5, ForeignID: "0000005"},
	}

	res, err := NewValidator(cat, 3).Validate(context.Background(), pairs)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Checked)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, model.Mismatch{
		MovieID:        2,
		ForeignID:      "0211915",
		PrimaryTitle:   "Amélie",
		SecondaryTitle: "Le Fabuleux Destin d'Amélie Poulain",
	}, res.Mismatches[0])

	assert.Equal(t, []Status{
		StatusSucceeded, StatusSucceeded, StatusMismatch, StatusSkipped, StatusSucceeded, StatusSkipped,
	}, statuses(res.Report))
	assert.Equal(t, ReasonSecondaryTitle, res.Report.Outcomes[3].Reason)
	assert.Equal(t, ReasonPrimaryTitle, res.Report.Outcomes[5].Reason)
	assert.Equal(t, 1, res.Report.Mismatched)
}

func TestValidator_MismatchCarriesNormalizedTitle(t *testing.T) {
	cat := newFakeCatalogs()
	cat.titles[1] = "Rocky II"
	cat.secondary["1"] = "Rocky, Part II"
	cat.titles[2] = "A Quiet Place"
	cat.secondary["2"] = "Quiet Place Part II, A"

	res, err := NewValidator(cat, 1).Validate(context.Background(), []model.CrossReference{
		{MovieID: 1, ForeignID: "1"},
		{MovieID: 2, ForeignID: "2"},
	})
	require.NoError(t, err)
	require.Len(t, res.Mismatches, 2)
	assert.Equal(t, "Rocky, Part II", res.Mismatches[0].SecondaryTitle)
	assert.Equal(t, "A Quiet Place Part II", res.Mismatches[1].SecondaryTitle)
}

func TestValidator_Empty(t *testing.T) {
	res, err := NewValidator(newFakeCatalogs(), 2).Validate(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Checked)
	assert.Empty(t, res.Mismatches)
}
