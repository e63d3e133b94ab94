package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/daybook/api/transport"
	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/httpcontext"
	"github.com/fastygo/daybook/pkg/translator"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/card"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type baseHandler struct {
	adapter    *httpcontext.Adapter
	translator *translator.Translator
	loc        *time.Location
	logger     *zap.Logger
}

// Deps are shared by every handler.
type Deps struct {
	Adapter    *httpcontext.Adapter
	Translator *translator.Translator
	Location   *time.Location
	Logger     *zap.Logger
}

func newBaseHandler(deps Deps) baseHandler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return baseHandler{
		adapter:    deps.Adapter,
		translator: deps.Translator,
		loc:        deps.Location,
		logger:     deps.Logger,
	}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// labels resolves display labels from the Accept-Language header.
func (h baseHandler) labels(ctx *fasthttp.RequestCtx) translator.Labels {
	if h.translator == nil {
		return translator.English
	}
	return h.translator.For(string(ctx.Request.Header.Peek(fasthttp.HeaderAcceptLanguage)))
}

func (h baseHandler) cards(ctx *fasthttp.RequestCtx) card.Transformer {
	return card.New(h.labels(ctx), h.loc)
}

// session returns the authenticated session or writes a 401.
func (h baseHandler) session(ctx *fasthttp.RequestCtx) (*domain.Session, bool) {
	session := httpcontext.Session(ctx)
	if _, err := session.RequireUser(); err != nil {
		h.respondError(ctx, err)
		return nil, false
	}
	return session, true
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return false
	}
	return true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, data interface{}, meta transport.ListMeta) {
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, meta))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", append(httpcontext.LogFields(ctx), zap.Error(err))...)
	}
	h.respondJSON(ctx, status, transport.NewError(code, errorMessage(err, status), nil))
}

// respondWrite answers a create/update style call. A partial failure still
// carries the saved record.
func (h baseHandler) respondWrite(ctx *fasthttp.RequestCtx, status int, data interface{}, err error) {
	var partial *domain.PartialError
	switch {
	case err == nil:
		h.respondSuccess(ctx, status, data)
	case errors.As(err, &partial):
		h.respondJSON(ctx, http.StatusMultiStatus, transport.NewPartial(data, partial.Error()))
	default:
		h.respondError(ctx, err)
	}
}

func (h baseHandler) page(ctx *fasthttp.RequestCtx) usecase.Page {
	args := ctx.QueryArgs()
	limit := parseInt(string(args.Peek("limit")), defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := parseInt(string(args.Peek("offset")), 0)
	if offset < 0 {
		offset = 0
	}
	return usecase.Page{Limit: limit, Offset: offset}
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, string(domain.ErrCodeInternal)
	case domain.IsDomainError(err, domain.ErrCodePartial):
		return http.StatusMultiStatus, string(domain.ErrCodePartial)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// errorMessage keeps driver details out of 5xx responses.
func errorMessage(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return "internal server error"
}
