package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/qubitgyan-student/internal/http/handlers"
	httpMW "github.com/yungbote/qubitgyan-student/internal/http/middleware"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler     *httpH.AuthHandler
	TreeHandler     *httpH.TreeHandler
	SearchHandler   *httpH.SearchHandler
	ProgressHandler *httpH.ProgressHandler
	CourseHandler   *httpH.CourseHandler
	StudentHandler  *httpH.StudentHandler
	ResumeHandler   *httpH.ResumeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/admissions", cfg.AuthHandler.SubmitAdmission)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Account
		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.Me)
			protected.PUT("/password", cfg.AuthHandler.ChangePassword)
		}

		// Knowledge tree
		if cfg.TreeHandler != nil {
			protected.GET("/tree", cfg.TreeHandler.GetTree)
			protected.POST("/tree/invalidate", cfg.TreeHandler.Invalidate)
			protected.GET("/nodes/:id/ancestors", cfg.TreeHandler.Ancestors)
			protected.GET("/nodes/:id/children", cfg.TreeHandler.Children)
			protected.GET("/nodes/:id/descendants", cfg.TreeHandler.Descendants)
			protected.GET("/nodes/:id/resources", cfg.TreeHandler.Resources)
			protected.POST("/nodes/:id/select", cfg.TreeHandler.Select)
			protected.GET("/workspace", cfg.TreeHandler.Workspace)
		}

		// Search
		if cfg.SearchHandler != nil {
			protected.GET("/search", cfg.SearchHandler.Search)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/progress/summary", cfg.ProgressHandler.Summary)
			protected.GET("/progress/courses/:rootId", cfg.ProgressHandler.CourseProgress)
			protected.POST("/progress", cfg.ProgressHandler.MarkCompleted)
		}

		// Resume markers
		if cfg.ResumeHandler != nil {
			protected.GET("/resume/:resourceId", cfg.ResumeHandler.Get)
			protected.PUT("/resume/:resourceId", cfg.ResumeHandler.Put)
		}

		// Courses
		if cfg.CourseHandler != nil {
			protected.GET("/courses", cfg.CourseHandler.ListCourses)
			protected.GET("/courses/mine", cfg.CourseHandler.ListMyCourses)
			protected.POST("/courses/:id/enroll", cfg.CourseHandler.Enroll)
			protected.GET("/courses/:id/progress", cfg.CourseHandler.CourseProgress)
			protected.GET("/dashboard", cfg.CourseHandler.Dashboard)
		}

		// Student
		if cfg.StudentHandler != nil {
			protected.GET("/profile", cfg.StudentHandler.Profile)
			protected.GET("/gamification", cfg.StudentHandler.Gamification)
			protected.POST("/gamification/ping", cfg.StudentHandler.Ping)
			protected.GET("/notifications", cfg.StudentHandler.Notifications)
			protected.POST("/notifications/read-all", cfg.StudentHandler.MarkAllNotificationsRead)
			protected.POST("/notifications/:id/read", cfg.StudentHandler.MarkNotificationRead)
			protected.GET("/bookmarks", cfg.StudentHandler.Bookmarks)
			protected.POST("/bookmarks", cfg.StudentHandler.AddBookmark)
			protected.DELETE("/bookmarks/:id", cfg.StudentHandler.RemoveBookmark)
			protected.GET("/quizzes/:id", cfg.StudentHandler.Quiz)
			protected.POST("/quizzes/:id/attempts", cfg.StudentHandler.SubmitQuiz)
			protected.GET("/quiz-attempts", cfg.StudentHandler.QuizAttempts)
		}
	}

	return r
}
