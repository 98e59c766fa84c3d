package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is one uploaded version of a file attached to a land project.
// Within a (land, document_type[, subtask]) slot exactly one row has
// is_latest_version = true. A review lock implies version_status "locked" and
// blocks new uploads to the slot until released.
type Document struct {
	DocumentID      uuid.UUID  `gorm:"column:document_id;type:uuid;primaryKey" json:"document_id"`
	LandID          uuid.UUID  `gorm:"column:land_id;type:uuid;not null;index" json:"land_id"`
	SubtaskID       *uuid.UUID `gorm:"column:subtask_id;type:uuid;index" json:"subtask_id"`
	UploaderID      uuid.UUID  `gorm:"column:uploader_id;type:uuid;not null" json:"uploader_id"`
	DocumentType    string     `gorm:"column:document_type;type:varchar(60);not null;index" json:"document_type"`
	FileName        string     `gorm:"column:file_name;not null" json:"file_name"`
	FileSize        int64      `gorm:"column:file_size;not null;default:0" json:"file_size"`
	MimeType        string     `gorm:"column:mime_type;type:varchar(100)" json:"mime_type"`
	Content         []byte     `gorm:"column:content;type:bytea" json:"-"`
	VersionNumber   int        `gorm:"column:version_number;not null;default:1" json:"version_number"`
	IsLatestVersion bool       `gorm:"column:is_latest_version;not null;default:true" json:"is_latest_version"`
	VersionStatus   string     `gorm:"column:version_status;type:varchar(20);not null;default:'under_review'" json:"version_status"`
	ReviewLockedBy  *uuid.UUID `gorm:"column:review_locked_by;type:uuid" json:"review_locked_by"`
	ReviewLockedAt  *time.Time `gorm:"column:review_locked_at" json:"review_locked_at"`
	CreatedAt       time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Document) TableName() string {
	return "Documents"
}

// BeforeCreate ensures document_id is set for DBs without default uuid.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == uuid.Nil {
		d.DocumentID = uuid.New()
	}
	return nil
}

// DocumentAudit is one append-only trail row for a document action. It holds
// the document id as a plain column plus a JSON snapshot instead of a foreign
// key, so trail rows written before a delete survive the parent row.
type DocumentAudit struct {
	AuditID    uuid.UUID      `gorm:"column:audit_id;type:uuid;primaryKey" json:"audit_id"`
	DocumentID uuid.UUID      `gorm:"column:document_id;type:uuid;not null;index" json:"document_id"`
	ActionType string         `gorm:"column:action_type;type:varchar(30);not null" json:"action_type"`
	OldStatus  *string        `gorm:"column:old_status;type:varchar(20)" json:"old_status"`
	NewStatus  *string        `gorm:"column:new_status;type:varchar(20)" json:"new_status"`
	OldVersion *int           `gorm:"column:old_version" json:"old_version"`
	NewVersion *int           `gorm:"column:new_version" json:"new_version"`
	ActorID    uuid.UUID      `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	Reason     string         `gorm:"column:reason" json:"reason"`
	Snapshot   datatypes.JSON `gorm:"column:snapshot;type:json" json:"snapshot,omitempty"`
	CreatedAt  time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (DocumentAudit) TableName() string {
	return "DocumentAudits"
}

// BeforeCreate ensures audit_id is set for DBs without default uuid.
func (a *DocumentAudit) BeforeCreate(tx *gorm.DB) error {
	if a.AuditID == uuid.Nil {
		a.AuditID = uuid.New()
	}
	return nil
}
