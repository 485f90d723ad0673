package localstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type ResumeRepo interface {
	Upsert(ctx context.Context, learnerID string, resourceID int64, nodeID *int64, position json.RawMessage) (*ResumeMarker, error)
	Get(ctx context.Context, learnerID string, resourceID int64) (*ResumeMarker, error)
	ListRecent(ctx context.Context, learnerID string, limit int) ([]ResumeMarker, error)
}

type resumeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResumeRepo(db *gorm.DB, baseLog *logger.Logger) ResumeRepo {
	return &resumeRepo{db: db, log: baseLog.With("repo", "ResumeRepo")}
}

func (r *resumeRepo) Upsert(ctx context.Context, learnerID string, resourceID int64, nodeID *int64, position json.RawMessage) (*ResumeMarker, error) {
	if learnerID == "" || resourceID <= 0 {
		return nil, fmt.Errorf("learner and resource required")
	}
	if len(position) == 0 {
		position = json.RawMessage(`{}`)
	}
	if !json.Valid(position) {
		return nil, fmt.Errorf("position is not valid json")
	}
	row := &ResumeMarker{
		LearnerID:  learnerID,
		ResourceID: resourceID,
		NodeID:     nodeID,
		Position:   datatypes.JSON(position),
		UpdatedAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "resource_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"node_id", "position", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *resumeRepo) Get(ctx context.Context, learnerID string, resourceID int64) (*ResumeMarker, error) {
	var row ResumeMarker
	err := r.db.WithContext(ctx).
		Where("learner_id = ? AND resource_id = ?", learnerID, resourceID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *resumeRepo) ListRecent(ctx context.Context, learnerID string, limit int) ([]ResumeMarker, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ResumeMarker
	err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
