package localstate

import (
	"time"

	"gorm.io/datatypes"
)

// StoredToken is a saved login for the CLI, keyed by username.
type StoredToken struct {
	Username  string    `gorm:"column:username;primaryKey" json:"username"`
	Access    string    `gorm:"column:access;not null" json:"-"`
	Refresh   string    `gorm:"column:refresh" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at" json:"expires_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (StoredToken) TableName() string { return "stored_token" }

// ResumeMarker is the last viewer position of a learner inside one resource.
// Position is opaque to the gateway (page, seconds, scroll offset...).
type ResumeMarker struct {
	LearnerID  string         `gorm:"column:learner_id;primaryKey" json:"-"`
	ResourceID int64          `gorm:"column:resource_id;primaryKey;autoIncrement:false" json:"resource_id"`
	NodeID     *int64         `gorm:"column:node_id" json:"node_id,omitempty"`
	Position   datatypes.JSON `gorm:"column:position;type:json" json:"position"`
	UpdatedAt  time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (ResumeMarker) TableName() string { return "resume_marker" }

type NotificationRead struct {
	LearnerID      string    `gorm:"column:learner_id;primaryKey"`
	NotificationID int64     `gorm:"column:notification_id;primaryKey;autoIncrement:false"`
	ReadAt         time.Time `gorm:"column:read_at"`
}

func (NotificationRead) TableName() string { return "notification_read" }
