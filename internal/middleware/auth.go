package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/daybook/api/transport"
	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/httpcontext"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Authenticator resolves an access token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// JWTAuth verifies the bearer token, checks the session is still open and
// places it on the request.
func JWTAuth(auth Authenticator, timeout time.Duration, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			session, err := auth.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("session lookup failed", zap.Error(err))
					writeError(ctx, http.StatusServiceUnavailable, string(domain.ErrCodeInternal), "session store unavailable")
					return
				}
				logger.Debug("rejected access token", zap.Error(err))
				unauthorized(ctx, "invalid or expired token")
				return
			}

			httpcontext.SetSession(ctx, session)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	writeError(ctx, http.StatusUnauthorized, string(domain.ErrCodeUnauthorized), msg)
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, msg string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.NewError(code, msg, nil))
	ctx.SetBody(body)
}
