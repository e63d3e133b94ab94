package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/card"
	"github.com/fastygo/daybook/usecase/filter"
	"github.com/fastygo/daybook/usecase/task"
)

// TaskService is the task use case as seen by the store.
type TaskService interface {
	List(ctx context.Context, session *domain.Session, filterName string, page usecase.Page) ([]domain.Task, error)
	Create(ctx context.Context, session *domain.Session, in task.Input) (*domain.Task, error)
	Update(ctx context.Context, session *domain.Session, id string, in task.Input) (*domain.Task, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
	ToggleStatus(ctx context.Context, session *domain.Session, id string) (*domain.Task, error)
	ToggleSubTask(ctx context.Context, session *domain.Session, taskID, subTaskID string) (*domain.Task, error)
}

// Options tune rendering and filter matching. Zero values select the defaults.
type Options struct {
	Cards  *card.Transformer
	Loc    *time.Location
	Clock  usecase.Clock
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Cards == nil {
		o.Cards = &card.Default
	}
	if o.Loc == nil {
		o.Loc = localtime.Default()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type TaskStore struct {
	*core[card.TaskCardView]
	session *domain.Session
	svc     TaskService
	opts    Options
}

// NewTaskStore binds a store to one session for its whole life.
func NewTaskStore(session *domain.Session, svc TaskService, opts Options) *TaskStore {
	return &TaskStore{
		core:    newCore(filter.TaskAll, func(v card.TaskCardView) string { return v.ID }),
		session: session,
		svc:     svc,
		opts:    opts.withDefaults(),
	}
}

func (s *TaskStore) Snapshot() State[card.TaskCardView] { return s.snapshot() }

// SetFilter changes the active filter; call FetchFiltered to reload.
func (s *TaskStore) SetFilter(name string) { s.setFilter(name) }

func (s *TaskStore) ClearError() { s.clearError() }

// FetchFiltered replaces the items with the server's view of the active filter.
func (s *TaskStore) FetchFiltered(ctx context.Context) error {
	seq := s.begin(true)
	tasks, err := s.svc.List(ctx, s.session, s.filter(), usecase.Page{})
	return s.settle(ctx, seq, true, err, func(st *State[card.TaskCardView]) {
		st.Items = s.opts.Cards.Tasks(tasks)
		st.Error = ""
	})
}

func (s *TaskStore) Create(ctx context.Context, in task.Input) error {
	seq := s.begin(false)
	created, err := s.svc.Create(ctx, s.session, in)
	return s.settle(ctx, seq, false, err, s.splice(created))
}

// Update saves the task. A zero in.Version is filled from the current card so stale writes conflict.
func (s *TaskStore) Update(ctx context.Context, id string, in task.Input) error {
	if in.Version == 0 {
		if current, ok := s.find(id); ok {
			in.Version = current.Version
		}
	}
	seq := s.begin(false)
	updated, err := s.svc.Update(ctx, s.session, id, in)
	return s.settle(ctx, seq, false, err, s.splice(updated))
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	seq := s.begin(false)
	err := s.svc.Delete(ctx, s.session, id)
	return s.settle(ctx, seq, false, err, func(st *State[card.TaskCardView]) {
		s.remove(st, id)
	})
}

func (s *TaskStore) ToggleStatus(ctx context.Context, id string) error {
	seq := s.begin(false)
	updated, err := s.svc.ToggleStatus(ctx, s.session, id)
	return s.settle(ctx, seq, false, err, s.splice(updated))
}

func (s *TaskStore) ToggleSubTask(ctx context.Context, taskID, subTaskID string) error {
	seq := s.begin(false)
	updated, err := s.svc.ToggleSubTask(ctx, s.session, taskID, subTaskID)
	return s.settle(ctx, seq, false, err, s.splice(updated))
}

// splice returns an apply step that writes t into the list, dropping it when
// it no longer matches the active filter.
func (s *TaskStore) splice(t *domain.Task) func(*State[card.TaskCardView]) {
	if t == nil {
		return nil
	}
	return func(st *State[card.TaskCardView]) {
		keep := filter.ResolveTaskFilter(st.Filter, s.opts.Clock(), s.opts.Loc).MatchTask(*t)
		s.upsert(st, s.opts.Cards.Task(*t), keep)
	}
}
