package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review event types emitted by the workflow. Delivery (email, push) is a
// downstream consumer's concern; the workflow only records and enqueues.
const (
	EventReviewPublished      = "review_published"
	EventMarketplacePublished = "marketplace_published"
	EventSubtaskAssigned      = "subtask_assigned"
)

// ReviewEvent is a fire-and-forget workflow event record.
type ReviewEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	LandID    uuid.UUID      `gorm:"column:land_id;type:uuid;not null;index" json:"land_id"`
	Role      string         `gorm:"column:role;type:varchar(20)" json:"role"`
	EventType string         `gorm:"column:event_type;type:varchar(40);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (ReviewEvent) TableName() string {
	return "ReviewEvents"
}

// BeforeCreate ensures event_id is set for DBs without default uuid.
func (e *ReviewEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
