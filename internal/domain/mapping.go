package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoleDocumentMapping is a per-land override of the system default
// role-to-document-type table. The row's presence is meaningful on its own:
// absent means "use the defaults", present with empty content means "this
// land deliberately exposes no document types". Content is a JSON object of
// document_type -> list of allowed role keys.
type RoleDocumentMapping struct {
	MappingID uuid.UUID      `gorm:"column:mapping_id;type:uuid;primaryKey" json:"mapping_id"`
	LandID    uuid.UUID      `gorm:"column:land_id;type:uuid;not null;uniqueIndex" json:"land_id"`
	Types     datatypes.JSON `gorm:"column:types;type:json" json:"types"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (RoleDocumentMapping) TableName() string {
	return "RoleDocumentMappings"
}

// BeforeCreate ensures mapping_id is set for DBs without default uuid.
func (m *RoleDocumentMapping) BeforeCreate(tx *gorm.DB) error {
	if m.MappingID == uuid.Nil {
		m.MappingID = uuid.New()
	}
	return nil
}
