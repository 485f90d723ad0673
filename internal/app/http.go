package app

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/qubitgyan-student/internal/http"
	httpH "github.com/yungbote/qubitgyan-student/internal/http/handlers"
	httpMW "github.com/yungbote/qubitgyan-student/internal/http/middleware"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Tree     *httpH.TreeHandler
	Search   *httpH.SearchHandler
	Progress *httpH.ProgressHandler
	Course   *httpH.CourseHandler
	Student  *httpH.StudentHandler
	Resume   *httpH.ResumeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Check{
		"local_state": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(checks),
		Auth:     httpH.NewAuthHandler(log, services.Student),
		Tree:     httpH.NewTreeHandler(log, services.Progress, clients.TreeCache),
		Search:   httpH.NewSearchHandler(log, services.Search),
		Progress: httpH.NewProgressHandler(log, services.Progress),
		Course:   httpH.NewCourseHandler(log, services.Courses),
		Student:  httpH.NewStudentHandler(log, services.Student),
		Resume:   httpH.NewResumeHandler(log, services.Student),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	var signingKey []byte
	if key := strings.TrimSpace(cfg.LMS.SigningKey); key != "" {
		signingKey = []byte(key)
	} else {
		log.Warn("LMS_JWT_SIGNING_KEY not set; learner state is keyed per access token")
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Sessions, signingKey),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         metrics,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		TreeHandler:     handlers.Tree,
		SearchHandler:   handlers.Search,
		ProgressHandler: handlers.Progress,
		CourseHandler:   handlers.Course,
		StudentHandler:  handlers.Student,
		ResumeHandler:   handlers.Resume,
	})
}
