package localstate

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

// ReadMarkRepo records notifications a learner has dismissed in this client.
type ReadMarkRepo interface {
	MarkRead(ctx context.Context, learnerID string, notificationIDs ...int64) error
	ReadSet(ctx context.Context, learnerID string) (map[int64]struct{}, error)
}

type readMarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadMarkRepo(db *gorm.DB, baseLog *logger.Logger) ReadMarkRepo {
	return &readMarkRepo{db: db, log: baseLog.With("repo", "ReadMarkRepo")}
}

func (r *readMarkRepo) MarkRead(ctx context.Context, learnerID string, notificationIDs ...int64) error {
	if learnerID == "" || len(notificationIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]NotificationRead, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		rows = append(rows, NotificationRead{LearnerID: learnerID, NotificationID: id, ReadAt: now})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *readMarkRepo) ReadSet(ctx context.Context, learnerID string) (map[int64]struct{}, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&NotificationRead{}).
		Where("learner_id = ?", learnerID).
		Pluck("notification_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
