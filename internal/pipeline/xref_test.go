package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cohortlab/cohort-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestXrefBuilder_NormalizesAndStores(t *testing.T) {
	st := newTestStore(t)
	seedStore(t, st, 10, 11)

	cat := newFakeCatalogs()
	cat.foreignIDs[10] = "tt0000010"
	cat.foreignIDs[11] = "1234567"

	r, err := NewXrefBuilder(cat, st, 2).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 2, r.Rows)

	refs, err := st.ListCrossRefs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.CrossReference{
		{MovieID: 10, ForeignID: "0000010"},
		{MovieID: 11, ForeignID: "1234567"},
	}, refs)
}

func TestXrefBuilder_Idempotent(t *testing.T) {
	st := newTestStore(t)
	seedStore(t, st, 10, 11, 12)

	cat := newFakeCatalogs()
	cat.foreignIDs[10] = "tt0000010"
	cat.foreignIDs[11] = "tt0000011"
	cat.foreignIDs[12] = "tt0000012"

	b := NewXrefBuilder(cat, st, 3)
	first, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Succeeded)

	// A changed upstream id must not overwrite the stored reference.
	cat.foreignIDs[10] = "tt9999999"

	second, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 0, second.Rows)
	for _, o := range second.Outcomes {
		assert.Equal(t, ReasonAlreadyResolved, o.Reason)
	}
	assert.Equal(t, 3, cat.callCount("foreign_id"), "second run performs no lookups")

	refs, err := st.ListCrossRefs(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "0000010", refs[0].ForeignID)
}

func TestXrefBuilder_PartialFailureIsolation(t *testing.T) {
	st := newTestStore(t)
	seedStore(t, st, 1, 2, 3)

	cat := newFakeCatalogs()
	cat.foreignIDs[1] = "tt0000001"
	// 2 is absent: its lookup fails.
	cat.foreignIDs[3] = "tt0000003"

	r, err := NewXrefBuilder(cat, st, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusSucceeded, StatusSkipped, StatusSucceeded}, statuses(r))
	assert.Equal(t, ReasonForeignIDUnavailable, r.Outcomes[1].Reason)

	refs, err := st.ListCrossRefs(context.Background())
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestXrefBuilder_EmptyForeignIDSkipped(t *testing.T) {
	st := newTestStore(t)
	seedStore(t, st, 1)

	cat := newFakeCatalogs()
	cat.foreignIDs[1] = "tt"

	r, err := NewXrefBuilder(cat, st, 1).Build(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, ReasonForeignIDUnavailable, r.Outcomes[0].Reason)
}

func TestXrefBuilder_ConflictReportedAsSkipped(t *testing.T) {
	st := &mockStore{}
	st.On("ListCrossRefs", mock.Anything).Return([]model.CrossReference{}, nil)
	st.On("InsertCrossRef", mock.Anything, model.CrossReference{MovieID: 5, ForeignID: "0000005"}).Return(false, nil)

	cat := newFakeCatalogs()
	cat.foreignIDs[5] = "tt0000005"

	r, err := NewXrefBuilder(cat, st, 1).Build(context.Background(), []int64{5})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, ReasonAlreadyResolved, r.Outcomes[0].Reason)
	st.AssertExpectations(t)
}

func TestXrefBuilder_StorageErrorFailsOnlyThatEntity(t *testing.T) {
	st := &mockStore{}
	st.On("ListCrossRefs", mock.Anything).Return([]model.CrossReference{}, nil)
	st.On("InsertCrossRef", mock.Anything, model.CrossReference{MovieID: 1, ForeignID: "1"}).Return(true, nil)
	st.On("InsertCrossRef", mock.Anything, model.CrossReference{MovieID: 2, ForeignID: "2"}).Return(false, errors.New("disk full"))
	st.On("InsertCrossRef", mock.Anything, model.CrossReference{MovieID: 3, ForeignID: "3"}).Return(true, nil)

	cat := newFakeCatalogs()
	cat.foreignIDs[1] = "tt1"
	cat.foreignIDs[2] = "tt2"
	cat.foreignIDs[3] = "tt3"

	r, err := NewXrefBuilder(cat, st, 2).Build(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusSucceeded, StatusFailed, StatusSucceeded}, statuses(r))
	assert.Equal(t, "disk full", r.Outcomes[1].Reason)
	assert.Equal(t, 1, r.Failed)
}

func TestXrefBuilder_LoadError(t *testing.T) {
	st := &mockStore{}
	st.On("ListMovieIDs", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := NewXrefBuilder(newFakeCatalogs(), st, 1).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xref: load seed ids")
}

func TestXrefBuilder_Cancelled(t *testing.T) {
	st := &mockStore{}
	st.On("ListCrossRefs", mock.Anything).Return([]model.CrossReference{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewXrefBuilder(newFakeCatalogs(), st, 1).Build(ctx, []int64{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
