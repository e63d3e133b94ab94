package journal

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	appLogger "github.com/fastygo/daybook/pkg/logger"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/filter"
)

// Step names reported in partial failures.
const (
	StepObjects = "stored images"
	StepImages  = "images"
	StepTags    = "tags"
)

const MaxContentLength = 10000

// ObjectRemover deletes an uploaded object by its public URL on behalf of a user.
type ObjectRemover interface {
	Remove(ctx context.Context, userID, publicURL string) error
}

// Input is the editable part of a journal. Version is only read by Update.
type Input struct {
	Mood      string
	Content   string
	ImageURLs []string
	Tags      []string
	Version   int
}

type UseCase struct {
	journals repository.JournalRepository
	objects  ObjectRemover
	loc      *time.Location
	now      usecase.Clock
	logger   *zap.Logger
}

func New(journals repository.JournalRepository, objects ObjectRemover, loc *time.Location, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = localtime.Default()
	}
	return &UseCase{
		journals: journals,
		objects:  objects,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source; used by tests.
func (uc *UseCase) WithClock(now usecase.Clock) *UseCase {
	uc.now = now
	return uc
}

func (uc *UseCase) List(ctx context.Context, session *domain.Session, filterName string, page usecase.Page) ([]domain.Journal, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	query := repository.JournalFilter{UserID: userID, Limit: page.Limit, Offset: page.Offset}
	filter.ResolveJournalFilter(filterName, uc.now(), uc.loc).ApplyJournal(&query)

	journals, err := uc.journals.List(ctx, query)
	if err != nil {
		return nil, usecase.Internal("failed to load journals", err)
	}
	return journals, nil
}

func (uc *UseCase) Get(ctx context.Context, session *domain.Session, id string) (*domain.Journal, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	journal, err := uc.journals.GetByID(ctx, userID, id)
	if err != nil {
		return nil, usecase.Internal("failed to load journal", err)
	}
	return journal, nil
}

// Create writes the journal row, then its images, then its tags. Child failures
// return the saved journal together with a PartialError naming each failed step.
func (uc *UseCase) Create(ctx context.Context, session *domain.Session, in Input) (*domain.Journal, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	mood, content, images, tags, err := validate(in)
	if err != nil {
		return nil, err
	}

	created, err := uc.journals.Create(ctx, &domain.Journal{UserID: userID, Mood: mood, Content: content})
	if err != nil {
		return nil, usecase.Internal("failed to create journal", err)
	}

	partial := &domain.PartialError{Subject: "journal saved"}
	if len(images) > 0 {
		created.Images, err = uc.journals.InsertImages(ctx, created.ID, images)
		partial.Add(StepImages, err)
	}
	if len(tags) > 0 {
		created.Tags, err = uc.journals.InsertTags(ctx, created.ID, tags)
		partial.Add(StepTags, err)
	}
	if err := partial.OrNil(); err != nil {
		appLogger.FromContext(ctx, uc.logger).Warn("journal created with failed steps", zap.String("journal_id", created.ID), zap.Error(err))
		return created, err
	}
	return created, nil
}

// Update rewrites the journal row and replaces images and tags wholesale.
// Images dropped by the edit are removed from storage best effort; a failed
// removal is reported as a partial step.
func (uc *UseCase) Update(ctx context.Context, session *domain.Session, id string, in Input) (*domain.Journal, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	mood, content, images, tags, err := validate(in)
	if err != nil {
		return nil, err
	}

	journal, err := uc.journals.GetByID(ctx, userID, id)
	if err != nil {
		return nil, usecase.Internal("failed to load journal", err)
	}
	previous := journal.Images
	journal.Mood = mood
	journal.Content = content
	journal.Version = in.Version

	if err := uc.journals.Update(ctx, journal); err != nil {
		return nil, usecase.Internal("failed to update journal", err)
	}

	partial := &domain.PartialError{Subject: "journal saved"}
	if err := uc.journals.DeleteImages(ctx, journal.ID); err != nil {
		partial.Add(StepImages, err)
	} else {
		journal.Images = nil
		if len(images) > 0 {
			journal.Images, err = uc.journals.InsertImages(ctx, journal.ID, images)
			partial.Add(StepImages, err)
		}
		partial.Add(StepObjects, uc.removeObjects(ctx, userID, dropped(previous, images)))
	}
	if err := uc.journals.DeleteTags(ctx, journal.ID); err != nil {
		partial.Add(StepTags, err)
	} else {
		journal.Tags = nil
		if len(tags) > 0 {
			journal.Tags, err = uc.journals.InsertTags(ctx, journal.ID, tags)
			partial.Add(StepTags, err)
		}
	}
	if err := partial.OrNil(); err != nil {
		appLogger.FromContext(ctx, uc.logger).Warn("journal updated with failed steps", zap.String("journal_id", journal.ID), zap.Error(err))
		return journal, err
	}
	return journal, nil
}

// Delete removes stored image objects, image rows and tag rows, each best
// effort, and then always attempts the journal row. When only child steps
// fail the result is a PartialError.
func (uc *UseCase) Delete(ctx context.Context, session *domain.Session, id string) error {
	userID, err := session.RequireUser()
	if err != nil {
		return err
	}
	journal, err := uc.journals.GetByID(ctx, userID, id)
	if err != nil {
		return usecase.Internal("failed to load journal", err)
	}

	partial := &domain.PartialError{Subject: "journal deleted"}
	urls := make([]string, 0, len(journal.Images))
	for _, img := range journal.Images {
		urls = append(urls, img.URL)
	}
	partial.Add(StepObjects, uc.removeObjects(ctx, userID, urls))
	partial.Add(StepImages, uc.journals.DeleteImages(ctx, id))
	partial.Add(StepTags, uc.journals.DeleteTags(ctx, id))

	if err := uc.journals.Delete(ctx, userID, id); err != nil {
		appLogger.FromContext(ctx, uc.logger).Error("journal delete failed", zap.String("journal_id", id), zap.NamedError("cleanup", partial.OrNil()), zap.Error(err))
		return usecase.Internal("failed to delete journal", err)
	}
	if err := partial.OrNil(); err != nil {
		appLogger.FromContext(ctx, uc.logger).Warn("journal deleted with failed steps", zap.String("journal_id", id), zap.Error(err))
		return err
	}
	return nil
}

// removeObjects deletes every URL and returns the first failure. URLs that
// do not address the user's own stored objects are left alone.
func (uc *UseCase) removeObjects(ctx context.Context, userID string, urls []string) error {
	if uc.objects == nil {
		return nil
	}
	var first error
	for _, u := range urls {
		err := uc.objects.Remove(ctx, userID, u)
		if err == nil {
			continue
		}
		if notStored(err) {
			appLogger.FromContext(ctx, uc.logger).Debug("skipping image outside user storage", zap.String("url", u), zap.Error(err))
			continue
		}
		appLogger.FromContext(ctx, uc.logger).Warn("failed to remove journal image", zap.String("url", u), zap.Error(err))
		if first == nil {
			first = err
		}
	}
	return first
}

func notStored(err error) bool {
	return domain.IsDomainError(err, domain.ErrCodeInvalid) || domain.IsDomainError(err, domain.ErrCodeForbidden)
}

func dropped(previous []domain.JournalImage, keep []string) []string {
	kept := make(map[string]struct{}, len(keep))
	for _, u := range keep {
		kept[u] = struct{}{}
	}
	var out []string
	for _, img := range previous {
		if _, ok := kept[img.URL]; !ok {
			out = append(out, img.URL)
		}
	}
	return out
}

func validate(in Input) (domain.Mood, string, []string, []string, error) {
	mood := domain.MoodNeutral
	if strings.TrimSpace(in.Mood) != "" {
		m, err := domain.ParseMood(in.Mood)
		if err != nil {
			return "", "", nil, nil, err
		}
		mood = m
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return "", "", nil, nil, domain.NewError(domain.ErrCodeInvalid, "content is required")
	}
	if len([]rune(content)) > MaxContentLength {
		return "", "", nil, nil, domain.NewError(domain.ErrCodeInvalid, "content is too long")
	}

	images := make([]string, 0, len(in.ImageURLs))
	for _, u := range in.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, u)
		}
	}
	return mood, content, images, domain.NormalizeTags(in.Tags), nil
}
