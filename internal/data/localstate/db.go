// Package localstate persists the small amount of state the LMS API does not
// keep for students: saved CLI logins, resume positions and per-learner
// notification read marks.
package localstate

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

const DefaultDSN = "file:qubitgyan-student.db?cache=shared&_busy_timeout=5000"

// Open connects to postgres when dsn is a postgres url and to sqlite otherwise,
// then migrates the local tables.
func Open(logg *logger.Logger, dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = DefaultDSN
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	dialector, driver := dialectorFor(dsn)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local state (%s): %w", driver, err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate local state: %w", err)
	}
	if logg != nil {
		logg.With("service", "LocalState").Info("local state ready", "driver", driver)
	}
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.Contains(lower, "host=") {
		return postgres.Open(dsn), "postgres"
	}
	return sqlite.Open(dsn), "sqlite"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&StoredToken{},
		&ResumeMarker{},
		&NotificationRead{},
	)
}
