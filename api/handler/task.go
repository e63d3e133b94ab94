package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/daybook/api/transport"
	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	taskUC "github.com/fastygo/daybook/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, deps Deps) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(deps),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Param filter query string false "all|active|done|today"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	filterName := string(ctx.QueryArgs().Peek("filter"))
	page := h.page(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, session, filterName, page)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, h.cards(ctx).Tasks(tasks), transport.ListMeta{
		Filter: filterName, Limit: page.Limit, Offset: page.Offset, Count: len(tasks),
	})
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, session, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.cards(ctx).Task(*task))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	in, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, session, in)
	h.respondTask(ctx, http.StatusCreated, created, err)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	in, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, session, pathParam(ctx, "id"), in)
	h.respondTask(ctx, http.StatusOK, updated, err)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, session, pathParam(ctx, "id")); err != nil {
		h.respondWrite(ctx, http.StatusNoContent, nil, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.ToggleStatus(stdCtx, session, pathParam(ctx, "id"))
	h.respondTask(ctx, http.StatusOK, task, err)
}

// @Summary Toggle sub-task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/subtasks/{subId}/toggle [post]
func (h *TaskHandler) ToggleSubTask(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.ToggleSubTask(stdCtx, session, pathParam(ctx, "id"), pathParam(ctx, "subId"))
	h.respondTask(ctx, http.StatusOK, task, err)
}

func (h *TaskHandler) respondTask(ctx *fasthttp.RequestCtx, status int, task *domain.Task, err error) {
	var data interface{}
	if task != nil {
		data = h.cards(ctx).Task(*task)
	}
	h.respondWrite(ctx, status, data, err)
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx) (taskUC.Input, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return taskUC.Input{}, false
	}
	deadline, err := parseDeadline(req.Deadline, h.loc)
	if err != nil {
		h.respondError(ctx, err)
		return taskUC.Input{}, false
	}

	subTasks := make([]taskUC.SubTaskInput, 0, len(req.SubTasks))
	for _, st := range req.SubTasks {
		subTasks = append(subTasks, taskUC.SubTaskInput{Title: st.Title, Completed: st.Completed})
	}
	return taskUC.Input{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    deadline,
		SubTasks:    subTasks,
		Version:     req.Version,
	}, true
}

// parseDeadline accepts RFC3339 or a YYYY-MM-DD date, read as the start of that local day.
func parseDeadline(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if loc == nil {
		loc = localtime.Default()
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "deadline must be RFC3339 or YYYY-MM-DD")
	}
	return &t, nil
}
