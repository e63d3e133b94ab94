package store

import (
	"context"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/card"
	"github.com/fastygo/daybook/usecase/filter"
	"github.com/fastygo/daybook/usecase/journal"
)

// JournalService is the journal use case as seen by the store.
type JournalService interface {
	List(ctx context.Context, session *domain.Session, filterName string, page usecase.Page) ([]domain.Journal, error)
	Create(ctx context.Context, session *domain.Session, in journal.Input) (*domain.Journal, error)
	Update(ctx context.Context, session *domain.Session, id string, in journal.Input) (*domain.Journal, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
}

type JournalStore struct {
	*core[card.JournalCardView]
	session *domain.Session
	svc     JournalService
	opts    Options
}

func NewJournalStore(session *domain.Session, svc JournalService, opts Options) *JournalStore {
	return &JournalStore{
		core:    newCore(filter.JournalAll, func(v card.JournalCardView) string { return v.ID }),
		session: session,
		svc:     svc,
		opts:    opts.withDefaults(),
	}
}

func (s *JournalStore) Snapshot() State[card.JournalCardView] { return s.snapshot() }

func (s *JournalStore) SetFilter(name string) { s.setFilter(name) }

func (s *JournalStore) ClearError() { s.clearError() }

func (s *JournalStore) FetchFiltered(ctx context.Context) error {
	seq := s.begin(true)
	journals, err := s.svc.List(ctx, s.session, s.filter(), usecase.Page{})
	return s.settle(ctx, seq, true, err, func(st *State[card.JournalCardView]) {
		st.Items = s.opts.Cards.Journals(journals)
		st.Error = ""
	})
}

func (s *JournalStore) Create(ctx context.Context, in journal.Input) error {
	seq := s.begin(false)
	created, err := s.svc.Create(ctx, s.session, in)
	return s.settle(ctx, seq, false, err, s.splice(created))
}

func (s *JournalStore) Update(ctx context.Context, id string, in journal.Input) error {
	if in.Version == 0 {
		if current, ok := s.find(id); ok {
			in.Version = current.Version
		}
	}
	seq := s.begin(false)
	updated, err := s.svc.Update(ctx, s.session, id, in)
	return s.settle(ctx, seq, false, err, s.splice(updated))
}

// Delete drops the card once the journal row is gone, even when cleanup steps failed.
func (s *JournalStore) Delete(ctx context.Context, id string) error {
	seq := s.begin(false)
	err := s.svc.Delete(ctx, s.session, id)
	return s.settle(ctx, seq, false, err, func(st *State[card.JournalCardView]) {
		s.remove(st, id)
	})
}

func (s *JournalStore) splice(j *domain.Journal) func(*State[card.JournalCardView]) {
	if j == nil {
		return nil
	}
	return func(st *State[card.JournalCardView]) {
		keep := filter.ResolveJournalFilter(st.Filter, s.opts.Clock(), s.opts.Loc).MatchJournal(*j)
		s.upsert(st, s.opts.Cards.Journal(*j), keep)
	}
}
