package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/repository"
)

const (
	DefaultTrendDays  = 7
	DefaultWindowDays = 30
	MaxWindowDays     = 366
	summaryDays       = 7
)

// Labeler resolves mood display labels for distribution entries.
type Labeler interface {
	MoodLabel(domain.Mood) string
}

// UseCase fetches the rows a chart needs and aggregates them. Nothing is cached.
type UseCase struct {
	tasks    repository.TaskRepository
	journals repository.JournalRepository
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, journals repository.JournalRepository, loc *time.Location, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = localtime.Default()
	}
	return &UseCase{
		tasks:    tasks,
		journals: journals,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source; used by tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

func (uc *UseCase) DailyTaskCompletion(ctx context.Context, session *domain.Session, days int) ([]DailyCompletion, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	days, err = windowDays(days, DefaultTrendDays)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	since := localtime.Day(now, -(days - 1), uc.loc).From
	tasks, err := uc.fetchTasks(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return DailyTaskCompletion(tasks, days, now, uc.loc), nil
}

func (uc *UseCase) DailyMoodTrend(ctx context.Context, session *domain.Session, days int) ([]DailyMood, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	days, err = windowDays(days, DefaultTrendDays)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	since := localtime.Day(now, -(days - 1), uc.loc).From
	journals, err := uc.fetchJournals(ctx, userID, since, now)
	if err != nil {
		return nil, err
	}
	return DailyMoodTrend(journals, days, now, uc.loc), nil
}

func (uc *UseCase) MoodDistribution(ctx context.Context, session *domain.Session, days int, labels Labeler) ([]MoodShare, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	days, err = windowDays(days, DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	journals, err := uc.fetchJournals(ctx, userID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}
	var labelFn func(domain.Mood) string
	if labels != nil {
		labelFn = labels.MoodLabel
	}
	return MoodDistribution(journals, days, now, labelFn), nil
}

func (uc *UseCase) HourlyProductivity(ctx context.Context, session *domain.Session, days int) ([]HourlyActivity, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	days, err = windowDays(days, DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	since := now.AddDate(0, 0, -days)

	var (
		tasks    []domain.Task
		journals []domain.Journal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tasks, err = uc.fetchTasks(gctx, userID, since)
		return err
	})
	g.Go(func() (err error) {
		journals, err = uc.fetchJournals(gctx, userID, since, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return HourlyProductivity(tasks, journals, days, now, uc.loc), nil
}

// WeeklySummary compares the trailing 7 days with the 7 days before. Both
// windows are fetched concurrently; any failure aborts the whole summary.
func (uc *UseCase) WeeklySummary(ctx context.Context, session *domain.Session) (*WeeklySummary, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	now := uc.now()
	current := Window{Range: localtime.Trailing(now, summaryDays)}
	previous := Window{Range: localtime.Range{
		From: now.AddDate(0, 0, -2*summaryDays),
		To:   current.Range.From.Add(-time.Nanosecond),
	}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current.Tasks, err = uc.fetchTasks(gctx, userID, current.Range.From)
		return err
	})
	g.Go(func() (err error) {
		current.Journals, err = uc.fetchJournals(gctx, userID, current.Range.From, current.Range.To)
		return err
	})
	g.Go(func() (err error) {
		previous.Tasks, err = uc.fetchTasks(gctx, userID, previous.Range.From)
		return err
	})
	g.Go(func() (err error) {
		previous.Journals, err = uc.fetchJournals(gctx, userID, previous.Range.From, previous.Range.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summarize(current, previous, uc.loc)
	return &summary, nil
}

func (uc *UseCase) fetchTasks(ctx context.Context, userID string, since time.Time) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{
		UserID:      userID,
		ActiveSince: &since,
		Limit:       repository.NoLimit,
	})
	if err != nil {
		uc.logger.Error("analytics task fetch failed", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load tasks for analytics", err)
	}
	return tasks, nil
}

func (uc *UseCase) fetchJournals(ctx context.Context, userID string, from, to time.Time) ([]domain.Journal, error) {
	journals, err := uc.journals.List(ctx, repository.JournalFilter{
		UserID:      userID,
		CreatedFrom: &from,
		CreatedTo:   &to,
		Limit:       repository.NoLimit,
	})
	if err != nil {
		uc.logger.Error("analytics journal fetch failed", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load journals for analytics", err)
	}
	return journals, nil
}

func windowDays(days, fallback int) (int, error) {
	if days == 0 {
		return fallback, nil
	}
	if days < 0 || days > MaxWindowDays {
		return 0, domain.NewError(domain.ErrCodeInvalid, "days must be between 1 and 366")
	}
	return days, nil
}
