package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/internal/infrastructure/blobstore"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/repository/blob"
	"github.com/fastygo/daybook/repository/mocks"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/card"
	"github.com/fastygo/daybook/usecase/media"
)

type removerMock struct {
	mock.Mock
}

func (r *removerMock) Remove(ctx context.Context, userID, publicURL string) error {
	return r.Called(ctx, userID, publicURL).Error(0)
}

var (
	jakarta = localtime.Default()
	now     = time.Date(2026, 10, 15, 21, 0, 0, 0, jakarta)
	session = &domain.Session{ID: "s1", UserID: "u1"}
)

func newUseCase() (*UseCase, *mocks.JournalRepository, *removerMock) {
	repo := new(mocks.JournalRepository)
	objects := new(removerMock)
	uc := New(repo, objects, jakarta, nil).WithClock(func() time.Time { return now })
	return uc, repo, objects
}

func TestListThisWeekIsRolling(t *testing.T) {
	uc, repo, _ := newUseCase()
	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.JournalFilter) bool {
		return f.UserID == "u1" &&
			f.CreatedFrom.Equal(now.AddDate(0, 0, -7)) &&
			f.CreatedTo.Equal(now)
	})).Return([]domain.Journal{}, nil).Once()

	_, err := uc.List(context.Background(), session, "this-week", usecase.Page{})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListRequiresSession(t *testing.T) {
	uc, repo, _ := newUseCase()

	_, err := uc.List(context.Background(), nil, "all", usecase.Page{})

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreateWritesRowThenImagesThenTags(t *testing.T) {
	uc, repo, _ := newUseCase()
	var order []string
	saved := &domain.Journal{ID: "j1", UserID: "u1", Mood: domain.MoodHappy, Content: "Good day", CreatedAt: now, Version: 1}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.Journal) bool {
		return j.UserID == "u1" && j.Mood == domain.MoodHappy && j.Content == "Good day"
	})).Run(func(mock.Arguments) { order = append(order, "journal") }).Return(saved, nil).Once()
	repo.On("InsertImages", mock.Anything, "j1", []string{"http://cdn/u1/1.jpg"}).
		Run(func(mock.Arguments) { order = append(order, "images") }).
		Return([]domain.JournalImage{{ID: "i1", JournalID: "j1", URL: "http://cdn/u1/1.jpg"}}, nil).Once()
	repo.On("InsertTags", mock.Anything, "j1", []string{"work", "gym"}).
		Run(func(mock.Arguments) { order = append(order, "tags") }).
		Return([]domain.JournalTag{{ID: "t1", Label: "work"}, {ID: "t2", Label: "gym"}}, nil).Once()

	created, err := uc.Create(context.Background(), session, Input{
		Mood:      "Happy",
		Content:   " Good day ",
		ImageURLs: []string{"http://cdn/u1/1.jpg", " "},
		Tags:      []string{"#Work", "gym", "work"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"journal", "images", "tags"}, order)

	view := card.ToJournalCard(*created)
	assert.Equal(t, "Happy", view.MoodLabel)
	assert.Equal(t, "15 October 2026", view.Date)
	assert.Equal(t, []string{"http://cdn/u1/1.jpg"}, view.Images)
	assert.Equal(t, []string{"#work", "#gym"}, view.Tags)
}

func TestCreateReportsEveryFailedStep(t *testing.T) {
	uc, repo, _ := newUseCase()
	repo.On("Create", mock.Anything, mock.Anything).Return(&domain.Journal{ID: "j1"}, nil).Once()
	repo.On("InsertImages", mock.Anything, "j1", mock.Anything).Return(nil, errors.New("fk violation")).Once()
	repo.On("InsertTags", mock.Anything, "j1", mock.Anything).Return(nil, errors.New("timeout")).Once()

	created, err := uc.Create(context.Background(), session, Input{
		Content: "x", ImageURLs: []string{"u"}, Tags: []string{"a"},
	})

	require.NotNil(t, created)
	assert.Equal(t, domain.MoodNeutral, created.Mood)
	assert.EqualError(t, err, "journal saved, but images: fk violation; tags: timeout")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodePartial))
}

func TestCreateValidation(t *testing.T) {
	uc, repo, _ := newUseCase()

	_, err := uc.Create(context.Background(), session, Input{Content: "  "})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Create(context.Background(), session, Input{Content: "x", Mood: "ecstatic"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateReplacesChildrenAndRemovesDroppedImages(t *testing.T) {
	uc, repo, objects := newUseCase()
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{
		ID: "j1", UserID: "u1", Mood: domain.MoodSad, Content: "old", Version: 2,
		Images: []domain.JournalImage{{URL: "keep.jpg"}, {URL: "gone.jpg"}},
	}, nil).Once()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(j *domain.Journal) bool {
		return j.Content == "new" && j.Mood == domain.MoodCalm && j.Version == 2
	})).Return(nil).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Return(nil).Once()
	repo.On("InsertImages", mock.Anything, "j1", []string{"keep.jpg"}).
		Return([]domain.JournalImage{{URL: "keep.jpg"}}, nil).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Return(nil).Once()
	objects.On("Remove", mock.Anything, "u1", "gone.jpg").Return(errors.New("storage down")).Once()

	updated, err := uc.Update(context.Background(), session, "j1", Input{
		Mood: "calm", Content: "new", ImageURLs: []string{"keep.jpg"}, Version: 2,
	})

	var partial *domain.PartialError
	require.ErrorAs(t, err, &partial)
	assert.True(t, partial.Failed(StepObjects))
	assert.False(t, partial.Failed(StepImages))
	assert.EqualError(t, err, "journal saved, but stored images: storage down")
	require.NotNil(t, updated)
	assert.Len(t, updated.Images, 1)
	assert.Empty(t, updated.Tags)
	repo.AssertExpectations(t)
	objects.AssertExpectations(t)
}

func TestUpdateSkipsImagesOutsideUserStorage(t *testing.T) {
	uc, repo, objects := newUseCase()
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{
		ID: "j1", UserID: "u1", Version: 1,
		Images: []domain.JournalImage{{URL: "https://cdn.example.com/a.jpg"}},
	}, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Return(nil).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Return(nil).Once()
	objects.On("Remove", mock.Anything, "u1", "https://cdn.example.com/a.jpg").
		Return(domain.NewError(domain.ErrCodeInvalid, "url does not point to object storage")).Once()

	_, err := uc.Update(context.Background(), session, "j1", Input{Content: "edited", Version: 1})

	require.NoError(t, err)
	objects.AssertExpectations(t)
}

func TestUpdateStaleVersion(t *testing.T) {
	uc, repo, _ := newUseCase()
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{ID: "j1", UserID: "u1"}, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrVersionConflict).Once()

	_, err := uc.Update(context.Background(), session, "j1", Input{Content: "x", Version: 1})

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
	repo.AssertNotCalled(t, "DeleteImages", mock.Anything, mock.Anything)
}

func TestDeleteOrdersCleanupBeforeJournal(t *testing.T) {
	uc, repo, objects := newUseCase()
	var order []string
	record := func(step string) func(mock.Arguments) {
		return func(mock.Arguments) { order = append(order, step) }
	}
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{
		ID: "j1", Images: []domain.JournalImage{{URL: "a.jpg"}, {URL: "b.jpg"}},
	}, nil).Once()
	objects.On("Remove", mock.Anything, "u1", "a.jpg").Run(record("object a")).Return(nil).Once()
	objects.On("Remove", mock.Anything, "u1", "b.jpg").Run(record("object b")).Return(nil).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Run(record("images")).Return(nil).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Run(record("tags")).Return(nil).Once()
	repo.On("Delete", mock.Anything, "u1", "j1").Run(record("journal")).Return(nil).Once()

	require.NoError(t, uc.Delete(context.Background(), session, "j1"))
	assert.Equal(t, []string{"object a", "object b", "images", "tags", "journal"}, order)
}

func TestDeleteChildFailuresDoNotBlockJournal(t *testing.T) {
	uc, repo, objects := newUseCase()
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{
		ID: "j1", Images: []domain.JournalImage{{URL: "a.jpg"}},
	}, nil).Once()
	objects.On("Remove", mock.Anything, "u1", "a.jpg").Return(errors.New("storage down")).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Return(errors.New("network")).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Return(nil).Once()
	repo.On("Delete", mock.Anything, "u1", "j1").Return(nil).Once()

	err := uc.Delete(context.Background(), session, "j1")

	var partial *domain.PartialError
	require.ErrorAs(t, err, &partial)
	assert.True(t, partial.Failed(StepObjects))
	assert.True(t, partial.Failed(StepImages))
	assert.False(t, partial.Failed(StepTags))
	repo.AssertCalled(t, "Delete", mock.Anything, "u1", "j1")
}

func TestDeleteJournalFailureWins(t *testing.T) {
	uc, repo, _ := newUseCase()
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{ID: "j1"}, nil).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Return(nil).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Return(errors.New("network")).Once()
	repo.On("Delete", mock.Anything, "u1", "j1").Return(errors.New("violates foreign key")).Once()

	err := uc.Delete(context.Background(), session, "j1")

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}

func TestDeleteIgnoresImagesOutsideUserStorage(t *testing.T) {
	uc, repo, objects := newUseCase()
	repo.On("GetByID", mock.Anything, "u1", "j1").Return(&domain.Journal{
		ID: "j1", Images: []domain.JournalImage{
			{URL: "https://cdn.example.com/a.jpg"},
			{URL: "http://localhost/storage/u2/1.jpg"},
		},
	}, nil).Once()
	objects.On("Remove", mock.Anything, "u1", "https://cdn.example.com/a.jpg").
		Return(domain.NewError(domain.ErrCodeInvalid, "url does not point to object storage")).Once()
	objects.On("Remove", mock.Anything, "u1", "http://localhost/storage/u2/1.jpg").
		Return(domain.NewError(domain.ErrCodeForbidden, "object belongs to another user")).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Return(nil).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Return(nil).Once()
	repo.On("Delete", mock.Anything, "u1", "j1").Return(nil).Once()

	assert.NoError(t, uc.Delete(context.Background(), session, "j1"))
	objects.AssertExpectations(t)
}

func TestDeleteWithExternalImageOverBlobStorage(t *testing.T) {
	store, err := blobstore.Open(filepath.Join(t.TempDir(), "objects.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	storage := blob.NewObjectStorage(store, "http://localhost/storage")
	ctx := context.Background()

	owned, err := storage.Put(ctx, "u1/1760500000000.jpg", "image/jpeg", []byte("img"))
	require.NoError(t, err)

	repo := new(mocks.JournalRepository)
	uc := New(repo, media.New(storage, nil, 0, nil), jakarta, nil).WithClock(func() time.Time { return now })

	images := []string{"https://cdn.example.com/a.jpg", owned}
	repo.On("Create", mock.Anything, mock.Anything).Return(&domain.Journal{ID: "j1", UserID: "u1"}, nil).Once()
	repo.On("InsertImages", mock.Anything, "j1", images).
		Return([]domain.JournalImage{{URL: images[0]}, {URL: images[1]}}, nil).Once()

	created, err := uc.Create(ctx, session, Input{Content: "day out", ImageURLs: images})
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, "u1", "j1").Return(created, nil).Once()
	repo.On("DeleteImages", mock.Anything, "j1").Return(nil).Once()
	repo.On("DeleteTags", mock.Anything, "j1").Return(nil).Once()
	repo.On("Delete", mock.Anything, "u1", "j1").Return(nil).Once()

	require.NoError(t, uc.Delete(ctx, session, "j1"))

	_, _, err = storage.Get(ctx, "u1/1760500000000.jpg")
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
}
