package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/metrics"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

// RouterDependencies are the non-service collaborators of the HTTP layer.
type RouterDependencies struct {
	Subscriber    events.Subscriber
	Cache         *cache.CacheManager
	Metrics       *metrics.HTTPMetrics
	EventsBackend string
	Heartbeat     time.Duration
}

type HandlerManager struct {
	authHandler       *AuthHandler
	userHandler       *UserHandler
	movieHandler      *MovieHandler
	scheduleHandler   *ScheduleHandler
	classHandler      *ClassHandler
	suggestionHandler *SuggestionHandler
	attendanceHandler *AttendanceHandler
	gradeHandler      *GradeHandler
	statsHandler      *StatsHandler
	tmdbHandler       *TMDBHandler
	migrationHandler  *MigrationHandler
	streamHandler     *StreamHandler
	healthHandler     *HealthHandler
	authMiddleware    *AuthMiddleware
	metrics           *metrics.HTTPMetrics
}

func NewHandlerManager(serviceManager services.ServiceManager, deps RouterDependencies, logger utils.Logger) *HandlerManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		movieHandler:      NewMovieHandler(serviceManager.Movie(), logger),
		scheduleHandler:   NewScheduleHandler(serviceManager.Schedule(), logger),
		classHandler:      NewClassHandler(serviceManager.Class(), logger),
		suggestionHandler: NewSuggestionHandler(serviceManager.Suggestion(), logger),
		attendanceHandler: NewAttendanceHandler(serviceManager.Attendance(), logger),
		gradeHandler:      NewGradeHandler(serviceManager.Grade(), logger),
		statsHandler:      NewStatsHandler(serviceManager.Stats(), logger),
		tmdbHandler:       NewTMDBHandler(serviceManager.Metadata(), logger),
		migrationHandler:  NewMigrationHandler(serviceManager.Migration(), logger),
		streamHandler:     NewStreamHandler(serviceManager.Snapshot(), deps.Subscriber, deps.Metrics, deps.Heartbeat, logger),
		healthHandler:     NewHealthHandler(serviceManager, deps.Cache, deps.EventsBackend),
		authMiddleware:    NewAuthMiddleware(serviceManager.Auth(), logger),
		metrics:           deps.Metrics,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthHandler.Health)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	staff := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher)
	admin := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	v1 := router.Group("/api/v1")

	// Public identity endpoints
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", hm.authHandler.Register)
		authGroup.POST("/login", hm.authHandler.Login)
		authGroup.POST("/google", hm.authHandler.LoginWithGoogle)
		authGroup.GET("/casdoor/url", hm.authHandler.CasdoorSigninURL)
		authGroup.POST("/casdoor/callback", hm.authHandler.LoginWithCasdoor)
		authGroup.POST("/sign-in-link", hm.authHandler.SendSignInLink)
		authGroup.POST("/sign-in-link/complete", hm.authHandler.CompleteSignInLink)
		authGroup.POST("/refresh", hm.authHandler.Refresh)
	}

	// Authenticated, any status: a pending user can still see who they are.
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.GET("/me", hm.authHandler.Me)
		authed.GET("/me/preferences", hm.userHandler.GetPreferences)
		authed.PUT("/me/preferences", hm.userHandler.UpdatePreferences)
	}

	approved := v1.Group("")
	approved.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireApproved())
	{
		approved.POST("/me/legacy-import", hm.migrationHandler.ImportLegacy)
		approved.GET("/stream/:collection", hm.streamHandler.Stream)

		movies := approved.Group("/movies")
		{
			movies.GET("", hm.movieHandler.ListMovies)
			movies.GET("/:id", hm.movieHandler.GetMovie)
			movies.POST("", staff, hm.movieHandler.CreateMovie)
			movies.PUT("/:id", staff, hm.movieHandler.UpdateMovie)
			movies.DELETE("/:id", staff, hm.movieHandler.DeleteMovie)
		}

		schedule := approved.Group("/schedule")
		{
			schedule.GET("", hm.scheduleHandler.GetWeek)
			schedule.POST("", staff, hm.scheduleHandler.CreateEntry)
			schedule.PUT("/:id", staff, hm.scheduleHandler.UpdateEntry)
			schedule.DELETE("/:id", staff, hm.scheduleHandler.DeleteEntry)
			schedule.DELETE("", staff, hm.scheduleHandler.ClearDay)
		}

		classes := approved.Group("/classes")
		{
			classes.GET("", hm.classHandler.ListClasses)
			classes.POST("", staff, hm.classHandler.CreateClass)
			classes.PUT("/:id", staff, hm.classHandler.RenameClass)
			classes.DELETE("/:id", staff, hm.classHandler.DeleteClass)
			classes.GET("/:id/students", staff, hm.classHandler.ListStudents)
		}

		suggestions := approved.Group("/suggestions")
		{
			suggestions.GET("", hm.suggestionHandler.ListSuggestions)
			suggestions.POST("", hm.suggestionHandler.CreateSuggestion)
			suggestions.PUT("/:id/status", staff, hm.suggestionHandler.UpdateStatus)
			suggestions.DELETE("/:id", hm.suggestionHandler.DeleteSuggestion)
		}

		// Student self-service views
		me := approved.Group("/me")
		me.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			me.GET("/attendance", hm.attendanceHandler.MyHistory)
			me.GET("/grades", hm.gradeHandler.MyScores)
		}

		attendance := approved.Group("/attendance")
		attendance.Use(staff)
		{
			attendance.PUT("", hm.attendanceHandler.SaveAttendance)
			attendance.GET("", hm.attendanceHandler.ListAttendance)
			attendance.GET("/date/:date", hm.attendanceHandler.GetByDate)
			attendance.GET("/summary", hm.attendanceHandler.Summary)
			attendance.GET("/export", hm.attendanceHandler.Export)
			attendance.GET("/students/:id", hm.attendanceHandler.StudentHistory)
			attendance.DELETE("/:id", hm.attendanceHandler.DeleteAttendance)
		}

		grades := approved.Group("/grades")
		grades.Use(staff)
		{
			grades.POST("", hm.gradeHandler.CreateReport)
			grades.GET("", hm.gradeHandler.ListReports)
			grades.PUT("/:id", hm.gradeHandler.UpdateReport)
			grades.DELETE("/:id", hm.gradeHandler.DeleteReport)
			grades.GET("/averages", hm.gradeHandler.Averages)
			grades.GET("/export", hm.gradeHandler.Export)
			grades.GET("/students/:id", hm.gradeHandler.StudentScores)
		}

		stats := approved.Group("/stats")
		{
			stats.GET("/movies", hm.statsHandler.GetMovieStats)
			stats.GET("/school", staff, hm.statsHandler.GetSchoolStats)
		}

		tmdb := approved.Group("/tmdb")
		{
			tmdb.GET("/search", hm.tmdbHandler.Search)
			tmdb.GET("/movies/:tmdb_id", hm.tmdbHandler.Details)
			tmdb.GET("/movies/:tmdb_id/videos", hm.tmdbHandler.Videos)
		}

		adminGroup := approved.Group("/admin")
		adminGroup.Use(admin)
		{
			adminGroup.GET("/users", hm.userHandler.ListUsers)
			adminGroup.GET("/users/:id", hm.userHandler.GetUser)
			adminGroup.PUT("/users/:id/status", hm.userHandler.UpdateStatus)
			adminGroup.PUT("/users/:id/role", hm.userHandler.UpdateRole)
			adminGroup.PUT("/users/:id/class", hm.userHandler.AssignClass)
			adminGroup.DELETE("/users/:id", hm.userHandler.DeleteUser)
			adminGroup.POST("/students", hm.userHandler.CreateStudent)

			adminGroup.GET("/pre-registered", hm.userHandler.ListPreRegistered)
			adminGroup.POST("/pre-registered", hm.userHandler.AddPreRegistered)
			adminGroup.POST("/pre-registered/import", hm.userHandler.ImportPreRegistered)
			adminGroup.DELETE("/pre-registered/:id", hm.userHandler.DeletePreRegistered)

			adminGroup.POST("/tmdb/refresh", hm.tmdbHandler.Refresh)
		}
	}
}
