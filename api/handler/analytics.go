package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"

	analyticsUC "github.com/fastygo/daybook/usecase/analytics"
)

type AnalyticsHandler struct {
	baseHandler
	uc *analyticsUC.UseCase
}

func NewAnalyticsHandler(uc *analyticsUC.UseCase, deps Deps) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(deps),
		uc:          uc,
	}
}

// days reads the optional window size; 0 selects the chart's default.
func days(ctx *fasthttp.RequestCtx) int {
	return parseInt(string(ctx.QueryArgs().Peek("days")), 0)
}

// @Summary Daily task completion
// @Tags analytics
// @Router /api/v1/analytics/daily-completion [get]
func (h *AnalyticsHandler) DailyCompletion(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.DailyTaskCompletion(stdCtx, session, days(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

// @Summary Daily mood trend
// @Tags analytics
// @Router /api/v1/analytics/mood-trend [get]
func (h *AnalyticsHandler) MoodTrend(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.DailyMoodTrend(stdCtx, session, days(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

// @Summary Mood distribution
// @Tags analytics
// @Router /api/v1/analytics/mood-distribution [get]
func (h *AnalyticsHandler) MoodDistribution(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.MoodDistribution(stdCtx, session, days(ctx), h.labels(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

// @Summary Hourly productivity
// @Tags analytics
// @Router /api/v1/analytics/hourly-productivity [get]
func (h *AnalyticsHandler) HourlyProductivity(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.HourlyProductivity(stdCtx, session, days(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

// @Summary Weekly summary
// @Tags analytics
// @Router /api/v1/analytics/weekly-summary [get]
func (h *AnalyticsHandler) WeeklySummary(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.WeeklySummary(stdCtx, session)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}
