package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/daybook/api/transport"
	"github.com/fastygo/daybook/domain"
	journalUC "github.com/fastygo/daybook/usecase/journal"
)

type JournalHandler struct {
	baseHandler
	uc *journalUC.UseCase
}

func NewJournalHandler(uc *journalUC.UseCase, deps Deps) *JournalHandler {
	return &JournalHandler{
		baseHandler: newBaseHandler(deps),
		uc:          uc,
	}
}

// @Summary List journals
// @Tags journals
// @Param filter query string false "all|today|this-week|this-month"
// @Router /api/v1/journals [get]
func (h *JournalHandler) GetJournals(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	filterName := string(ctx.QueryArgs().Peek("filter"))
	page := h.page(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	journals, err := h.uc.List(stdCtx, session, filterName, page)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, h.cards(ctx).Journals(journals), transport.ListMeta{
		Filter: filterName, Limit: page.Limit, Offset: page.Offset, Count: len(journals),
	})
}

// @Summary Get journal
// @Tags journals
// @Router /api/v1/journals/{id} [get]
func (h *JournalHandler) GetJournal(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	journal, err := h.uc.Get(stdCtx, session, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.cards(ctx).Journal(*journal))
}

// @Summary Create journal
// @Tags journals
// @Router /api/v1/journals [post]
func (h *JournalHandler) CreateJournal(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	in, ok := h.parseJournal(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, session, in)
	h.respondJournal(ctx, http.StatusCreated, created, err)
}

// @Summary Update journal
// @Tags journals
// @Router /api/v1/journals/{id} [put]
func (h *JournalHandler) UpdateJournal(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	in, ok := h.parseJournal(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, session, pathParam(ctx, "id"), in)
	h.respondJournal(ctx, http.StatusOK, updated, err)
}

// @Summary Delete journal with its images and tags
// @Tags journals
// @Router /api/v1/journals/{id} [delete]
func (h *JournalHandler) DeleteJournal(ctx *fasthttp.RequestCtx) {
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

func (h *JournalHandler) respondJournal(ctx *fasthttp.RequestCtx, status int, journal *domain.Journal, err error) {
	var data interface{}
	if journal != nil {
		data = h.cards(ctx).Journal(*journal)
	}
	h.respondWrite(ctx, status, data, err)
}

func (h *JournalHandler) parseJournal(ctx *fasthttp.RequestCtx) (journalUC.Input, bool) {
	var req transport.JournalRequest
	if !h.decode(ctx, &req) {
		return journalUC.Input{}, false
	}
	return journalUC.Input{
		Mood:      req.Mood,
		Content:   req.Content,
		ImageURLs: req.Images,
		Tags:      req.Tags,
		Version:   req.Version,
	}, true
}
