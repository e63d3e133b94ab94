package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/journal"
	"github.com/fastygo/daybook/usecase/task"
)

type taskServiceMock struct {
	mock.Mock
}

func (m *taskServiceMock) List(ctx context.Context, session *domain.Session, filterName string, page usecase.Page) ([]domain.Task, error) {
	args := m.Called(ctx, session, filterName, page)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *taskServiceMock) Create(ctx context.Context, session *domain.Session, in task.Input) (*domain.Task, error) {
	args := m.Called(ctx, session, in)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *taskServiceMock) Update(ctx context.Context, session *domain.Session, id string, in task.Input) (*domain.Task, error) {
	args := m.Called(ctx, session, id, in)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *taskServiceMock) Delete(ctx context.Context, session *domain.Session, id string) error {
	return m.Called(ctx, session, id).Error(0)
}

func (m *taskServiceMock) ToggleStatus(ctx context.Context, session *domain.Session, id string) (*domain.Task, error) {
	args := m.Called(ctx, session, id)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *taskServiceMock) ToggleSubTask(ctx context.Context, session *domain.Session, taskID, subTaskID string) (*domain.Task, error) {
	args := m.Called(ctx, session, taskID, subTaskID)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

type journalServiceMock struct {
	mock.Mock
}

func (m *journalServiceMock) List(ctx context.Context, session *domain.Session, filterName string, page usecase.Page) ([]domain.Journal, error) {
	args := m.Called(ctx, session, filterName, page)
	journals, _ := args.Get(0).([]domain.Journal)
	return journals, args.Error(1)
}

func (m *journalServiceMock) Create(ctx context.Context, session *domain.Session, in journal.Input) (*domain.Journal, error) {
	args := m.Called(ctx, session, in)
	j, _ := args.Get(0).(*domain.Journal)
	return j, args.Error(1)
}

func (m *journalServiceMock) Update(ctx context.Context, session *domain.Session, id string, in journal.Input) (*domain.Journal, error) {
	args := m.Called(ctx, session, id, in)
	j, _ := args.Get(0).(*domain.Journal)
	return j, args.Error(1)
}

func (m *journalServiceMock) Delete(ctx context.Context, session *domain.Session, id string) error {
	return m.Called(ctx, session, id).Error(0)
}

var (
	jakarta = localtime.Default()
	now     = time.Date(2026, 10, 15, 10, 0, 0, 0, jakarta)
	session = &domain.Session{ID: "s1", UserID: "u1"}
	opts    = Options{Loc: jakarta, Clock: func() time.Time { return now }}
)

func seededTaskStore(t *testing.T, svc *taskServiceMock, filterName string, tasks ...domain.Task) *TaskStore {
	t.Helper()
	s := NewTaskStore(session, svc, opts)
	s.SetFilter(filterName)
	svc.On("List", mock.Anything, session, filterName, usecase.Page{}).Return(tasks, nil).Once()
	require.NoError(t, s.FetchFiltered(context.Background()))
	return s
}

func TestFetchFilteredRendersCards(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "active",
		domain.Task{ID: "t1", Title: "One", Priority: domain.PriorityHigh},
		domain.Task{ID: "t2", Title: "Two", Priority: "bogus"},
	)

	state := s.Snapshot()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, "active", state.Filter)
	require.Len(t, state.Items, 2)
	assert.Equal(t, "High", state.Items[0].PriorityLabel)
	assert.Equal(t, "Medium", state.Items[1].PriorityLabel)
}

func TestFailureKeepsPreviousItems(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "all", domain.Task{ID: "t1", Title: "One"})
	svc.On("List", mock.Anything, session, "all", usecase.Page{}).Return(nil, errors.New("network down")).Once()

	err := s.FetchFiltered(context.Background())

	require.Error(t, err)
	state := s.Snapshot()
	assert.Equal(t, "network down", state.Error)
	assert.Len(t, state.Items, 1)

	s.ClearError()
	assert.Empty(t, s.Snapshot().Error)
}

func TestToggleDropsTaskLeavingActiveFilter(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "active",
		domain.Task{ID: "t1", Title: "One"},
		domain.Task{ID: "t2", Title: "Two"},
	)
	svc.On("ToggleStatus", mock.Anything, session, "t1").
		Return(&domain.Task{ID: "t1", Title: "One", Completed: true, CompletedAt: &now}, nil).Once()

	require.NoError(t, s.ToggleStatus(context.Background(), "t1"))

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "t2", state.Items[0].ID)
}

func TestToggleSubTaskReplacesCard(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "all", domain.Task{ID: "t1", SubTasks: []domain.SubTask{{ID: "a"}}})
	svc.On("ToggleSubTask", mock.Anything, session, "t1", "a").
		Return(&domain.Task{ID: "t1", SubTasks: []domain.SubTask{{ID: "a", Completed: true}}}, nil).Once()

	require.NoError(t, s.ToggleSubTask(context.Background(), "t1", "a"))

	item := s.Snapshot().Items[0]
	require.NotNil(t, item.CompletedCount)
	assert.Equal(t, 1, *item.CompletedCount)
	assert.Equal(t, 1, *item.TotalCount)
}

func TestCreatePrependsMatchingTask(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "all", domain.Task{ID: "t1"})
	in := task.Input{Title: "New"}
	svc.On("Create", mock.Anything, session, in).Return(&domain.Task{ID: "t9", Title: "New"}, nil).Once()

	require.NoError(t, s.Create(context.Background(), in))

	items := s.Snapshot().Items
	require.Len(t, items, 2)
	assert.Equal(t, "t9", items[0].ID)
}

func TestPartialCreateKeepsRecordAndReportsError(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "all")
	partial := &domain.PartialError{Subject: "task saved"}
	partial.Add("sub-tasks", errors.New("timeout"))
	svc.On("Create", mock.Anything, session, mock.Anything).Return(&domain.Task{ID: "t1"}, partial).Once()

	err := s.Create(context.Background(), task.Input{Title: "x"})

	require.Error(t, err)
	state := s.Snapshot()
	assert.Len(t, state.Items, 1)
	assert.Equal(t, "task saved, but sub-tasks: timeout", state.Error)
}

func TestUpdatePassesCardVersion(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "all", domain.Task{ID: "t1", Title: "Old", Version: 7})
	svc.On("Update", mock.Anything, session, "t1", task.Input{Title: "New", Version: 7}).
		Return(nil, domain.ErrVersionConflict).Once()

	err := s.Update(context.Background(), "t1", task.Input{Title: "New"})

	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	state := s.Snapshot()
	assert.Equal(t, "Old", state.Items[0].Title)
	assert.NotEmpty(t, state.Error)
	svc.AssertExpectations(t)
}

func TestCancelledActionIsDiscarded(t *testing.T) {
	svc := new(taskServiceMock)
	s := seededTaskStore(t, svc, "all", domain.Task{ID: "t1"})
	ctx, cancel := context.WithCancel(context.Background())
	svc.On("Delete", mock.Anything, session, "t1").Run(func(mock.Arguments) { cancel() }).Return(nil).Once()

	err := s.Delete(ctx, "t1")

	assert.ErrorIs(t, err, context.Canceled)
	state := s.Snapshot()
	assert.Len(t, state.Items, 1)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestStaleFetchDoesNotOverwriteNewer(t *testing.T) {
	svc := new(taskServiceMock)
	s := NewTaskStore(session, svc, opts)
	release := make(chan struct{})
	slowStarted := make(chan struct{})

	svc.On("List", mock.Anything, session, "all", usecase.Page{}).Run(func(mock.Arguments) {
		close(slowStarted)
		<-release
	}).Return([]domain.Task{{ID: "stale"}}, nil).Once()
	svc.On("List", mock.Anything, session, "done", usecase.Page{}).
		Return([]domain.Task{{ID: "fresh", Completed: true}}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.FetchFiltered(context.Background())
	}()
	<-slowStarted
	s.SetFilter("done")
	require.NoError(t, s.FetchFiltered(context.Background()))
	close(release)
	wg.Wait()

	items := s.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
}

func TestJournalDeleteRemovesCardOnPartialFailure(t *testing.T) {
	svc := new(journalServiceMock)
	s := NewJournalStore(session, svc, opts)
	svc.On("List", mock.Anything, session, "all", usecase.Page{}).Return([]domain.Journal{
		{ID: "j1", Mood: domain.MoodHappy, CreatedAt: now},
		{ID: "j2", Mood: "weird", CreatedAt: now},
	}, nil).Once()
	require.NoError(t, s.FetchFiltered(context.Background()))
	assert.Equal(t, domain.DefaultMoodGlyph, s.Snapshot().Items[1].MoodGlyph)

	partial := &domain.PartialError{Subject: "journal deleted"}
	partial.Add("tags", errors.New("network"))
	svc.On("Delete", mock.Anything, session, "j1").Return(partial).Once()

	err := s.Delete(context.Background(), "j1")

	require.Error(t, err)
	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "j2", state.Items[0].ID)
	assert.Contains(t, state.Error, "tags: network")
}

func TestJournalCreateOutsideFilterIsNotShown(t *testing.T) {
	svc := new(journalServiceMock)
	s := NewJournalStore(session, svc, opts)
	s.SetFilter("today")
	svc.On("Create", mock.Anything, session, mock.Anything).
		Return(&domain.Journal{ID: "j1", CreatedAt: now.AddDate(0, 0, -2)}, nil).Once()

	require.NoError(t, s.Create(context.Background(), journal.Input{Content: "backdated"}))
	assert.Empty(t, s.Snapshot().Items)
}
