package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewStatus is the per (land, role) aggregate of checklist progress,
// document approvals, the explicit approval decision and the publish flag.
// The published flag is monotonic: false to true only, never reset by the
// workflow.
type ReviewStatus struct {
	ReviewID           uuid.UUID  `gorm:"column:review_id;type:uuid;primaryKey" json:"review_id"`
	LandID             uuid.UUID  `gorm:"column:land_id;type:uuid;not null;uniqueIndex:idx_reviews_land_role" json:"land_id"`
	Role               string     `gorm:"column:role;type:varchar(20);not null;uniqueIndex:idx_reviews_land_role" json:"role"`
	Status             string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	Rating             *int       `gorm:"column:rating" json:"rating"`
	Comments           *string    `gorm:"column:comments" json:"comments"`
	SubtasksCompleted  int        `gorm:"column:subtasks_completed;not null;default:0" json:"subtasks_completed"`
	TotalSubtasks      int        `gorm:"column:total_subtasks;not null;default:0" json:"total_subtasks"`
	DocumentsApproved  int        `gorm:"column:documents_approved;not null;default:0" json:"documents_approved"`
	TotalDocuments     int        `gorm:"column:total_documents;not null;default:0" json:"total_documents"`
	Published          bool       `gorm:"column:published;not null;default:false" json:"published"`
	ApprovedAt         *time.Time `gorm:"column:approved_at" json:"approved_at"`
	PublishedAt        *time.Time `gorm:"column:published_at" json:"published_at"`
	CreatedAt          time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ReviewStatus) TableName() string {
	return "ReviewStatuses"
}

// BeforeCreate ensures review_id is set for DBs without default uuid.
func (r *ReviewStatus) BeforeCreate(tx *gorm.DB) error {
	if r.ReviewID == uuid.Nil {
		r.ReviewID = uuid.New()
	}
	return nil
}

// CompletionPct returns the checklist completion percentage rounded to the
// nearest integer, recomputed from the stored counts.
func (r *ReviewStatus) CompletionPct() int {
	if r.TotalSubtasks == 0 {
		return 0
	}
	return int(float64(r.SubtasksCompleted)/float64(r.TotalSubtasks)*100 + 0.5)
}
