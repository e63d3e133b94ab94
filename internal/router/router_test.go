package router

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/daybook/api/handler"
	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/internal/infrastructure/monitor"
	"github.com/fastygo/daybook/internal/middleware"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/repository/mocks"
	taskUC "github.com/fastygo/daybook/usecase/task"
)

type fixedStatus struct{}

func (fixedStatus) GetStatus() monitor.Status {
	return monitor.Status{PostgreSQL: true, Redis: true, Storage: true, Buffer: true}
}

type tokenAuth map[string]*domain.Session

func (a tokenAuth) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	if s, ok := a[token]; ok {
		return s, nil
	}
	return nil, domain.ErrUnauthorized
}

func newTestRouter(tasks *mocks.TaskRepository) fasthttp.RequestHandler {
	deps := apiHandler.Deps{}
	handlers := Handlers{
		Task:   apiHandler.NewTaskHandler(taskUC.New(tasks, nil, nil), deps),
		Health: apiHandler.NewHealthHandler(fixedStatus{}, deps),
	}
	auth := middleware.JWTAuth(tokenAuth{"good": {ID: "s1", UserID: "u1"}}, time.Second, nil)
	return New(handlers, auth).Handler
}

func serve(h fasthttp.RequestHandler, method, uri, token string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	h(ctx)
	return ctx
}

func TestHealthIsPublic(t *testing.T) {
	ctx := serve(newTestRouter(new(mocks.TaskRepository)), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	tasks := new(mocks.TaskRepository)
	h := newTestRouter(tasks)

	ctx := serve(h, http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())

	ctx = serve(h, http.MethodGet, "/api/v1/tasks", "forged")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())

	tasks.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProtectedRouteReachesHandler(t *testing.T) {
	tasks := new(mocks.TaskRepository)
	tasks.On("List", mock.Anything, mock.MatchedBy(func(f repository.TaskFilter) bool {
		return f.UserID == "u1"
	})).Return([]domain.Task{}, nil).Once()

	ctx := serve(newTestRouter(tasks), http.MethodGet, "/api/v1/tasks", "good")

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "u1", string(ctx.Request.Header.Peek("X-User-ID")))
	tasks.AssertExpectations(t)
}
