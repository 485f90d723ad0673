package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/qubitgyan-student/internal/data/localstate"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type Repos struct {
	Tokens    localstate.TokenRepo
	Resume    localstate.ResumeRepo
	ReadMarks localstate.ReadMarkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tokens:    localstate.NewTokenRepo(db, log),
		Resume:    localstate.NewResumeRepo(db, log),
		ReadMarks: localstate.NewReadMarkRepo(db, log),
	}
}
