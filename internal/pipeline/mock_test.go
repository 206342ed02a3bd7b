package pipeline

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/cohortlab/cohort-cli/internal/model"
)

// --- Catalogs fake ---

// fakeCatalogs answers lookups from maps; a missing key is an absent result.
type fakeCatalogs struct {
	mu         sync.Mutex
	foreignIDs map[int64]string
	titles     map[int64]string
	secondary  map[string]string
	ratings    map[string]*model.ExternalRating
	credits    map[int64][]model.CrewCredit
	pages      map[int]*model.MoviePage
	calls      map[string]int
}

func newFakeCatalogs() *fakeCatalogs {
	return &fakeCatalogs{
		foreignIDs: map[int64]string{},
		titles:     map[int64]string{},
		secondary:  map[string]string{},
		ratings:    map[string]*model.ExternalRating{},
		credits:    map[int64][]model.CrewCredit{},
		pages:      map[int]*model.MoviePage{},
		calls:      map[string]int{},
	}
}

func (f *fakeCatalogs) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeCatalogs) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCatalogs) ForeignID(_ context.Context, movieID int64) (string, bool) {
	f.count("foreign_id")
	v, ok := f.foreignIDs[movieID]
	return v, ok
}

func (f *fakeCatalogs) PrimaryTitle(_ context.Context, movieID int64) (string, bool) {
	f.count("primary_title")
	v, ok := f.titles[movieID]
	return v, ok
}

func (f *fakeCatalogs) SecondaryTitle(_ context.Context, foreignID string) (string, bool) {
	f.count("secondary_title")
	v, ok := f.secondary[foreignID]
	return v, ok
}

func (f *fakeCatalogs) Rating(_ context.Context, foreignID string) (*model.ExternalRating, bool) {
	f.count("rating")
	v, ok := f.ratings[foreignID]
	return v, ok
}

func (f *fakeCatalogs) Credits(_ context.Context, movieID int64) ([]model.CrewCredit, bool) {
	f.count("credits")
	v, ok := f.credits[movieID]
	return v, ok
}

func (f *fakeCatalogs) Discover(_ context.Context, _ int, _ string, page int) (*model.MoviePage, bool) {
	f.count("discover")
	v, ok := f.pages[page]
	return v, ok
}

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) UpsertMovies(ctx context.Context, movies []model.Movie) (int64, error) {
	args := m.Called(ctx, movies)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListMovieIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockStore) InsertCrossRef(ctx context.Context, ref model.CrossReference) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ListCrossRefs(ctx context.Context) ([]model.CrossReference, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CrossReference), args.Error(1)
}

func (m *mockStore) InsertRating(ctx context.Context, r model.Rating) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) GetRating(ctx context.Context, movieID int64) (*model.Rating, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Rating), args.Error(1)
}

func (m *mockStore) UpsertCrew(ctx context.Context, rec model.CrewRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockStore) GetCrew(ctx context.Context, role model.RoleKind, movieID int64) (*model.CrewRecord, error) {
	args := m.Called(ctx, role, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrewRecord), args.Error(1)
}

func (m *mockStore) Dataset(ctx context.Context) ([]model.DatasetRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DatasetRow), args.Error(1)
}

func (m *mockStore) CreateRun(ctx context.Context, stage string) (*model.Run, error) {
	args := m.Called(ctx, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID string, report []byte) error {
	args := m.Called(ctx, runID, report)
	return args.Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	args := m.Called(ctx, runID, errMsg)
	return args.Error(0)
}

func (m *mockStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
