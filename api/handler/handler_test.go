package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/internal/infrastructure/monitor"
	"github.com/fastygo/daybook/pkg/httpcontext"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/pkg/translator"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/repository/mocks"
	analyticsUC "github.com/fastygo/daybook/usecase/analytics"
	journalUC "github.com/fastygo/daybook/usecase/journal"
	mediaUC "github.com/fastygo/daybook/usecase/media"
	taskUC "github.com/fastygo/daybook/usecase/task"
)

var (
	jakarta = localtime.Default()
	now     = time.Date(2026, 10, 15, 9, 0, 0, 0, jakarta)
	session = &domain.Session{ID: "s1", UserID: "u1"}
)

func testDeps() Deps {
	return Deps{
		Adapter:    httpcontext.NewAdapter(time.Second),
		Translator: translator.New(translator.Config{TranslationFolder: "../../assets/translations"}, nil),
		Location:   jakarta,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Meta   json.RawMessage `json:"meta"`
}

func newRequest(method, uri string, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
		ctx.Request.Header.SetContentType("application/json")
	}
	return ctx
}

func authed(ctx *fasthttp.RequestCtx) *fasthttp.RequestCtx {
	httpcontext.SetSession(ctx, session)
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func newTaskHandler() (*TaskHandler, *mocks.TaskRepository) {
	repo := new(mocks.TaskRepository)
	uc := taskUC.New(repo, jakarta, nil).WithClock(func() time.Time { return now })
	return NewTaskHandler(uc, testDeps()), repo
}

func TestGetTasksRequiresSession(t *testing.T) {
	h, repo := newTaskHandler()
	ctx := newRequest(http.MethodGet, "/api/v1/tasks", "")

	h.GetTasks(ctx)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "user not authenticated", env.Error)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetTasksLocalizesCards(t *testing.T) {
	h, repo := newTaskHandler()
	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.TaskFilter) bool {
		return f.UserID == "u1" && f.Completed != nil && !*f.Completed && f.Limit == 10
	})).Return([]domain.Task{
		{ID: "t1", Title: "Report", Priority: domain.PriorityHigh, CreatedAt: now,
			SubTasks: []domain.SubTask{{ID: "a", Completed: true}, {ID: "b"}}},
	}, nil).Once()

	ctx := authed(newRequest(http.MethodGet, "/api/v1/tasks?filter=active&limit=10", ""))
	ctx.Request.Header.Set(fasthttp.HeaderAcceptLanguage, "id")
	h.GetTasks(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	var cards []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Tinggi", cards[0]["priority_label"])
	assert.EqualValues(t, 1, cards[0]["completed_count"])
	assert.EqualValues(t, 2, cards[0]["total_count"])
	assert.JSONEq(t, `{"filter":"active","limit":10,"offset":0,"count":1}`, string(env.Meta))
}

func TestCreateTaskValidation(t *testing.T) {
	h, _ := newTaskHandler()

	ctx := authed(newRequest(http.MethodPost, "/api/v1/tasks", `{"title":""}`))
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = authed(newRequest(http.MethodPost, "/api/v1/tasks", `{"title":"x","deadline":"tomorrow"}`))
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = authed(newRequest(http.MethodPost, "/api/v1/tasks", `not json`))
	h.CreateTask(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestCreateTaskParsesDateOnlyDeadline(t *testing.T) {
	h, repo := newTaskHandler()
	want := time.Date(2026, 10, 20, 0, 0, 0, 0, jakarta)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
		return task.Deadline != nil && task.Deadline.Equal(want)
	})).Return(&domain.Task{ID: "t1", Title: "x", Deadline: &want, CreatedAt: now}, nil).Once()

	ctx := authed(newRequest(http.MethodPost, "/api/v1/tasks", `{"title":"x","deadline":"2026-10-20"}`))
	h.CreateTask(ctx)

	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Contains(t, string(env.Data), `"deadline":"20 October 2026"`)
}

func TestUpdateTaskConflict(t *testing.T) {
	h, repo := newTaskHandler()
	repo.On("GetByID", mock.Anything, "u1", "t1").Return(&domain.Task{ID: "t1", UserID: "u1"}, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrVersionConflict).Once()

	ctx := authed(newRequest(http.MethodPut, "/api/v1/tasks/t1", `{"title":"x","version":2}`))
	ctx.SetUserValue("id", "t1")
	h.UpdateTask(ctx)

	assert.Equal(t, http.StatusConflict, ctx.Response.StatusCode())
	assert.Equal(t, "CONFLICT", decodeEnvelope(t, ctx).Code)
}

func TestDeleteTaskPartialFailure(t *testing.T) {
	h, repo := newTaskHandler()
	repo.On("GetByID", mock.Anything, "u1", "t1").Return(&domain.Task{ID: "t1"}, nil).Once()
	repo.On("DeleteSubTasks", mock.Anything, "t1").Return(errors.New("timeout")).Once()
	repo.On("Delete", mock.Anything, "u1", "t1").Return(nil).Once()

	ctx := authed(newRequest(http.MethodDelete, "/api/v1/tasks/t1", ""))
	ctx.SetUserValue("id", "t1")
	h.DeleteTask(ctx)

	assert.Equal(t, http.StatusMultiStatus, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "partial", env.Status)
	assert.Equal(t, "task deleted, but sub-tasks: timeout", env.Error)
}

func TestInternalErrorsHideDetails(t *testing.T) {
	h, repo := newTaskHandler()
	repo.On("GetByID", mock.Anything, "u1", "t1").Return(nil, errors.New("pq: password authentication failed")).Once()

	ctx := authed(newRequest(http.MethodGet, "/api/v1/tasks/t1", ""))
	ctx.SetUserValue("id", "t1")
	h.GetTask(ctx)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "failed to load task", env.Error)
}

func TestCreateJournalPartialKeepsCard(t *testing.T) {
	repo := new(mocks.JournalRepository)
	uc := journalUC.New(repo, nil, jakarta, nil)
	h := NewJournalHandler(uc, testDeps())
	repo.On("Create", mock.Anything, mock.Anything).
		Return(&domain.Journal{ID: "j1", Mood: domain.MoodCalm, Content: "hi", CreatedAt: now}, nil).Once()
	repo.On("InsertTags", mock.Anything, "j1", []string{"rest"}).Return(nil, errors.New("timeout")).Once()

	ctx := authed(newRequest(http.MethodPost, "/api/v1/journals", `{"mood":"calm","content":"hi","tags":["#Rest"]}`))
	h.CreateJournal(ctx)

	assert.Equal(t, http.StatusMultiStatus, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "journal saved, but tags: timeout", env.Error)
	assert.Contains(t, string(env.Data), `"id":"j1"`)
	assert.Contains(t, string(env.Data), `"mood_label":"Calm"`)
}

func TestMediaUploadAndServe(t *testing.T) {
	storage := new(mocks.ObjectStorage)
	uc := mediaUC.New(storage, nil, 0, nil).WithClock(func() time.Time { return time.UnixMilli(1000) })
	h := NewMediaHandler(uc, testDeps())
	storage.On("Put", mock.Anything, "u1/1000.jpg", "image/jpeg", []byte("jpeg-bytes")).
		Return("http://localhost/storage/u1/1000.jpg", nil).Once()
	storage.On("Get", mock.Anything, "u1/1000.jpg").Return("image/jpeg", []byte("jpeg-bytes"), nil).Once()

	ctx := authed(newRequest(http.MethodPost, "/api/v1/media", ""))
	ctx.Request.Header.SetContentType("image/jpeg")
	ctx.Request.SetBodyString("jpeg-bytes")
	h.Upload(ctx)

	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"url":"http://localhost/storage/u1/1000.jpg"}`, string(decodeEnvelope(t, ctx).Data))

	ctx = newRequest(http.MethodGet, "/storage/u1/1000.jpg", "")
	ctx.SetUserValue("path", "u1/1000.jpg")
	h.Serve(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "image/jpeg", string(ctx.Response.Header.ContentType()))
	assert.Equal(t, "jpeg-bytes", string(ctx.Response.Body()))
}

func TestMediaDeleteRequiresURL(t *testing.T) {
	h := NewMediaHandler(mediaUC.New(new(mocks.ObjectStorage), nil, 0, nil), testDeps())

	ctx := authed(newRequest(http.MethodDelete, "/api/v1/media", ""))
	h.Delete(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestAnalyticsRejectsBadWindow(t *testing.T) {
	uc := analyticsUC.New(new(mocks.TaskRepository), new(mocks.JournalRepository), jakarta, nil)
	h := NewAnalyticsHandler(uc, testDeps())

	ctx := authed(newRequest(http.MethodGet, "/api/v1/analytics/daily-completion?days=900", ""))
	h.DailyCompletion(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestWeeklySummaryFailureIsSingleError(t *testing.T) {
	tasks := new(mocks.TaskRepository)
	journals := new(mocks.JournalRepository)
	tasks.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("conn reset"))
	journals.On("List", mock.Anything, mock.Anything).Return([]domain.Journal{}, nil).Maybe()
	h := NewAnalyticsHandler(analyticsUC.New(tasks, journals, jakarta, nil), testDeps())

	ctx := authed(newRequest(http.MethodGet, "/api/v1/analytics/weekly-summary", ""))
	h.WeeklySummary(ctx)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, "failed to load tasks for analytics", env.Error)
	assert.Empty(t, env.Data)
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealth(t *testing.T) {
	healthy := NewHealthHandler(staticStatus{PostgreSQL: true, Redis: true, Storage: true}, testDeps())
	ctx := newRequest(http.MethodGet, "/health", "")
	healthy.Check(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	degraded := NewHealthHandler(staticStatus{PostgreSQL: true}, testDeps())
	ctx = newRequest(http.MethodGet, "/health", "")
	degraded.Check(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, "DEGRADED", decodeEnvelope(t, ctx).Code)
}
