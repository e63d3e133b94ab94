package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/daybook/api/handler"
	"github.com/fastygo/daybook/internal/middleware"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Profile   *apiHandler.ProfileHandler
	Task      *apiHandler.TaskHandler
	Journal   *apiHandler.JournalHandler
	Media     *apiHandler.MediaHandler
	Analytics *apiHandler.AnalyticsHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware middleware.Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	r.GET("/storage/{path:*}", handlers.Media.Serve)

	// Auth routes
	auth := r.Group("/api/v1/auth")
	auth.POST("/signup", handlers.Auth.SignUp)
	auth.POST("/login", handlers.Auth.Login)
	auth.POST("/refresh", handlers.Auth.Refresh)
	auth.POST("/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	api := r.Group("/api/v1")

	api.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	api.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	api.POST("/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))
	api.POST("/tasks/{id}/subtasks/{subId}/toggle", authMiddleware(handlers.Task.ToggleSubTask))

	api.GET("/journals", authMiddleware(handlers.Journal.GetJournals))
	api.POST("/journals", authMiddleware(handlers.Journal.CreateJournal))
	api.GET("/journals/{id}", authMiddleware(handlers.Journal.GetJournal))
	api.PUT("/journals/{id}", authMiddleware(handlers.Journal.UpdateJournal))
	api.DELETE("/journals/{id}", authMiddleware(handlers.Journal.DeleteJournal))

	api.POST("/media", authMiddleware(handlers.Media.Upload))
	api.DELETE("/media", authMiddleware(handlers.Media.Delete))

	api.GET("/analytics/daily-completion", authMiddleware(handlers.Analytics.DailyCompletion))
	api.GET("/analytics/mood-trend", authMiddleware(handlers.Analytics.MoodTrend))
	api.GET("/analytics/mood-distribution", authMiddleware(handlers.Analytics.MoodDistribution))
	api.GET("/analytics/hourly-productivity", authMiddleware(handlers.Analytics.HourlyProductivity))
	api.GET("/analytics/weekly-summary", authMiddleware(handlers.Analytics.WeeklySummary))

	return r
}
