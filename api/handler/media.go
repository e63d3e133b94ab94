package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/daybook/api/transport"
	"github.com/fastygo/daybook/domain"
	mediaUC "github.com/fastygo/daybook/usecase/media"
)

type MediaHandler struct {
	baseHandler
	uc *mediaUC.UseCase
}

func NewMediaHandler(uc *mediaUC.UseCase, deps Deps) *MediaHandler {
	return &MediaHandler{
		baseHandler: newBaseHandler(deps),
		uc:          uc,
	}
}

// @Summary Upload an image (raw body or multipart field "file")
// @Tags media
// @Router /api/v1/media [post]
func (h *MediaHandler) Upload(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	contentType, data, err := readUpload(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	url, err := h.uc.Upload(stdCtx, session, contentType, data)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.MediaResponse{URL: url})
}

// @Summary Delete an uploaded image by its public URL
// @Tags media
// @Param url query string true "public url"
// @Router /api/v1/media [delete]
func (h *MediaHandler) Delete(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	publicURL := string(ctx.QueryArgs().Peek("url"))
	if strings.TrimSpace(publicURL) == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "url is required", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, session, publicURL); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Serve a stored object
// @Tags media
// @Router /storage/{path} [get]
func (h *MediaHandler) Serve(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	contentType, data, err := h.uc.Open(stdCtx, pathParam(ctx, "path"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.Response.Header.SetContentType(contentType)
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, "public, max-age=86400, immutable")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(data)
}

func readUpload(ctx *fasthttp.RequestCtx) (string, []byte, error) {
	contentType := string(ctx.Request.Header.ContentType())
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return contentType, ctx.PostBody(), nil
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return "", nil, domain.WrapError(domain.ErrCodeInvalid, "multipart field \"file\" is required", err)
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, domain.WrapError(domain.ErrCodeInvalid, "unreadable upload", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", nil, domain.WrapError(domain.ErrCodeInvalid, "unreadable upload", err)
	}
	return header.Header.Get("Content-Type"), buf.Bytes(), nil
}
