package httpcontext

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/daybook/domain"
)

const (
	sessionKey   = "daybook.session"
	HeaderUserID = "X-User-ID"
)

// SetSession stores the authenticated session on the request and mirrors the
// user id into the X-User-ID header.
func SetSession(ctx *fasthttp.RequestCtx, session *domain.Session) {
	if ctx == nil || session == nil {
		return
	}
	ctx.SetUserValue(sessionKey, session)
	ctx.Request.Header.Set(HeaderUserID, session.UserID)
}

// Session returns the session placed by the auth middleware, or nil.
func Session(ctx *fasthttp.RequestCtx) *domain.Session {
	if ctx == nil {
		return nil
	}
	session, _ := ctx.UserValue(sessionKey).(*domain.Session)
	return session
}
