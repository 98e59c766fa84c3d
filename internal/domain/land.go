package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Land is a landowner's submitted renewable-energy site under review.
// Status follows the lifecycle in constants (draft ... complete). Never
// hard-deleted once published; soft delete only.
type Land struct {
	LandID        uuid.UUID      `gorm:"column:land_id;type:uuid;primaryKey" json:"land_id"`
	OwnerID       uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	LocationText  string         `gorm:"column:location_text" json:"location_text"`
	EnergyType    string         `gorm:"column:energy_type;type:varchar(30)" json:"energy_type"`
	CapacityMW    *float64       `gorm:"column:capacity_mw;type:decimal(12,2)" json:"capacity_mw"`
	AskingPrice   *float64       `gorm:"column:asking_price;type:decimal(18,2)" json:"asking_price"`
	Timeline      *string        `gorm:"column:timeline" json:"timeline"`
	ContractTerm  *string        `gorm:"column:contract_term" json:"contract_term"`
	DeveloperName *string        `gorm:"column:developer_name" json:"developer_name"`
	Status        string         `gorm:"column:status;type:varchar(20);not null;default:'draft'" json:"status"`
	PublishedAt   *time.Time     `gorm:"column:published_at" json:"published_at"`
	CreatedAt     time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Land) TableName() string {
	return "Lands"
}

// BeforeCreate ensures land_id is set for DBs without default uuid.
func (l *Land) BeforeCreate(tx *gorm.DB) error {
	if l.LandID == uuid.Nil {
		l.LandID = uuid.New()
	}
	return nil
}

// MissingMarketingFields returns the names of the marketing-required fields
// that are still empty. The marketplace transition is gated on this being
// empty; role-level publish is not.
func (l *Land) MissingMarketingFields() []string {
	var missing []string
	if l.Title == "" {
		missing = append(missing, "title")
	}
	if l.LocationText == "" {
		missing = append(missing, "location_text")
	}
	if l.EnergyType == "" {
		missing = append(missing, "energy_type")
	}
	if l.CapacityMW == nil {
		missing = append(missing, "capacity_mw")
	}
	if l.AskingPrice == nil {
		missing = append(missing, "asking_price")
	}
	if l.Timeline == nil || *l.Timeline == "" {
		missing = append(missing, "timeline")
	}
	if l.ContractTerm == nil || *l.ContractTerm == "" {
		missing = append(missing, "contract_term")
	}
	if l.DeveloperName == nil || *l.DeveloperName == "" {
		missing = append(missing, "developer_name")
	}
	return missing
}
