package catalogservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/notify"
	"catalogadmin/internal/pkg/logger"
	"catalogadmin/internal/service/catalogservice"
)

// --- Mock do repositório ---

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]domain.ProductRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ProductRecord), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, categoryID string, payload domain.ProductPayload) (domain.ProductRecord, error) {
	args := m.Called(ctx, categoryID, payload)
	return args.Get(0).(domain.ProductRecord), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, payload domain.ProductPayload) (domain.ProductRecord, error) {
	args := m.Called(ctx, id, payload)
	return args.Get(0).(domain.ProductRecord), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func twoRecords() []domain.ProductRecord {
	return []domain.ProductRecord{
		{ID: "p1", Name: "Chair", Description: "Oak chair", Price: decimal.NewFromInt(100), Category: domain.CategoryRef{ID: "cat1"}, Image: "ref1"},
		{ID: "p2", Name: "Table", Description: "Pine table", Price: decimal.NewFromInt(300), Category: domain.CategoryRef{ID: "cat2"}, Image: "ref2"},
	}
}

func TestController_StartsEmpty(t *testing.T) {
	c := catalogservice.NewController(new(MockProductRepository), notify.NewFeed(5), logger.NewNop())

	view := c.View()
	assert.NotNil(t, view.Products)
	assert.Empty(t, view.Products)
	assert.Equal(t, 0, view.Count)
	assert.False(t, view.Loading)
}

func TestRefresh_ScenarioD_ReplacesListAndClearsLoading(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("FindAll", mock.Anything).Return(twoRecords(), nil).Once()
	c := catalogservice.NewController(repo, notify.NewFeed(5), logger.NewNop())

	require.NoError(t, c.Refresh(context.Background()))

	view := c.View()
	assert.Len(t, view.Products, 2)
	assert.Equal(t, 2, view.Count)
	assert.False(t, view.Loading)
	assert.Empty(t, view.Error)
	repo.AssertExpectations(t)
}

func TestRefresh_LoadingIsTrueWhileFetching(t *testing.T) {
	repo := new(MockProductRepository)
	fetching := make(chan struct{})
	release := make(chan struct{})
	repo.On("FindAll", mock.Anything).Run(func(mock.Arguments) {
		close(fetching)
		<-release
	}).Return(twoRecords(), nil).Once()
	c := catalogservice.NewController(repo, notify.NewFeed(5), logger.NewNop())

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()

	<-fetching
	assert.True(t, c.Loading())
	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
}

func TestRefresh_FailureKeepsListAndClearsLoading(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("FindAll", mock.Anything).Return(twoRecords(), nil).Once()
	repo.On("FindAll", mock.Anything).Return([]domain.ProductRecord(nil), errors.New("connection reset")).Once()
	feed := notify.NewFeed(5)
	c := catalogservice.NewController(repo, feed, logger.NewNop())

	require.NoError(t, c.Refresh(context.Background()))
	err := c.Refresh(context.Background())

	require.Error(t, err)
	assert.True(t, apperror.IsRemote(err))
	view := c.View()
	assert.Len(t, view.Products, 2)
	assert.False(t, view.Loading)
	assert.Equal(t, catalogservice.MsgRefreshFailed, view.Error)

	notes := feed.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.OpRefresh, notes[0].Op)
}

func TestRefresh_OlderResultDoesNotOverwriteNewer(t *testing.T) {
	repo := new(MockProductRepository)
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	stale := twoRecords()[:1]

	repo.On("FindAll", mock.Anything).Run(func(mock.Arguments) {
		close(slowStarted)
		<-releaseSlow
	}).Return(stale, nil).Once()
	repo.On("FindAll", mock.Anything).Return(twoRecords(), nil).Once()
	c := catalogservice.NewController(repo, notify.NewFeed(5), logger.NewNop())

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-slowStarted

	require.NoError(t, c.Refresh(context.Background()))
	close(releaseSlow)
	require.NoError(t, <-done)

	assert.Len(t, c.View().Products, 2)
}

func TestRefresh_OlderFailureAfterNewerSuccessIsIgnored(t *testing.T) {
	repo := new(MockProductRepository)
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	repo.On("FindAll", mock.Anything).Run(func(mock.Arguments) {
		close(slowStarted)
		<-releaseSlow
	}).Return([]domain.ProductRecord(nil), errors.New("connection reset")).Once()
	repo.On("FindAll", mock.Anything).Return(twoRecords(), nil).Once()
	feed := notify.NewFeed(5)
	c := catalogservice.NewController(repo, feed, logger.NewNop())

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-slowStarted

	require.NoError(t, c.Refresh(context.Background()))
	close(releaseSlow)
	assert.Error(t, <-done)

	view := c.View()
	assert.Len(t, view.Products, 2)
	assert.Empty(t, view.Error)
	assert.False(t, view.Loading)
	assert.Empty(t, feed.Drain())
}

func TestDeleteRecord_RefreshesAndNotifies(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("Delete", mock.Anything, "p1").Return(nil).Once()
	repo.On("FindAll", mock.Anything).Return(twoRecords()[1:], nil).Once()
	feed := notify.NewFeed(5)
	c := catalogservice.NewController(repo, feed, logger.NewNop())

	require.NoError(t, c.DeleteRecord(context.Background(), "p1"))

	_, found := c.Find("p1")
	assert.False(t, found)
	p2, found := c.Find("p2")
	assert.True(t, found)
	assert.Equal(t, "Table", p2.Name)

	notes := feed.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.LevelSuccess, notes[0].Level)
	assert.Equal(t, catalogservice.MsgDeleted, notes[0].Message)
	repo.AssertExpectations(t)
}

func TestDeleteRecord_ScenarioD_ListComesFromServer(t *testing.T) {
	three := append(twoRecords(), domain.ProductRecord{ID: "p3", Name: "Lamp", Image: "ref3"})
	repo := new(MockProductRepository)
	repo.On("FindAll", mock.Anything).Return(three, nil).Once()
	repo.On("Delete", mock.Anything, "p1").Return(nil).Once()
	// O servidor devolve 2 registros quaisquer: a lista não é corrigida localmente.
	repo.On("FindAll", mock.Anything).Return(twoRecords(), nil).Once()
	c := catalogservice.NewController(repo, notify.NewFeed(5), logger.NewNop())

	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, 3, c.View().Count)

	require.NoError(t, c.DeleteRecord(context.Background(), "p1"))

	view := c.View()
	assert.Equal(t, 2, view.Count)
	assert.Equal(t, "p1", view.Products[0].ID)
	repo.AssertNumberOfCalls(t, "FindAll", 2)
	repo.AssertCalled(t, "Delete", mock.Anything, "p1")
}

func TestDeleteRecord_BackendFailureSkipsRefresh(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("Delete", mock.Anything, "p1").Return(errors.New("500")).Once()
	feed := notify.NewFeed(5)
	c := catalogservice.NewController(repo, feed, logger.NewNop())

	err := c.DeleteRecord(context.Background(), "p1")

	require.Error(t, err)
	assert.True(t, apperror.IsRemote(err))
	repo.AssertNotCalled(t, "FindAll", mock.Anything)
	notes := feed.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.LevelError, notes[0].Level)
	assert.Equal(t, catalogservice.MsgDeleteFailed, notes[0].Message)
}

func TestDeleteRecord_EmptyID(t *testing.T) {
	repo := new(MockProductRepository)
	c := catalogservice.NewController(repo, notify.NewFeed(5), logger.NewNop())

	err := c.DeleteRecord(context.Background(), "  ")

	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
