package app

import (
	"fmt"

	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type Services struct {
	Sessions  *services.Sessions
	Resources services.ResourceService
	Progress  services.ProgressService
	Search    services.SearchService
	Courses   services.CourseService
	Student   services.StudentService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	loc, err := cfg.Location()
	if err != nil {
		return Services{}, fmt.Errorf("streak timezone: %w", err)
	}

	api := clients.LMS
	sessions := services.NewSessions(log, api, func() services.TreeService {
		return services.NewTreeService(log, api, clients.TreeCache, metrics)
	}, cfg.SessionIdle.Std(), metrics)

	resources := services.NewResourceService(log, api)
	progress := services.NewProgressService(log, api, resources, loc)

	return Services{
		Sessions:  sessions,
		Resources: resources,
		Progress:  progress,
		Search:    services.NewSearchService(log),
		Courses:   services.NewCourseService(log, api, progress),
		Student:   services.NewStudentService(log, api, api, repos.ReadMarks, repos.Resume),
	}, nil
}
