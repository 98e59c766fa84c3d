package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrLandInDraft is raised by the data layer when a task write targets a land
// that has not left draft yet.
var ErrLandInDraft = errors.New("tasks cannot be created while the land project is in draft")

// Task is a reviewer role's unit of work on a land project: one row per
// (land, role) pairing, owning an ordered checklist of subtasks.
type Task struct {
	TaskID        uuid.UUID `gorm:"column:task_id;type:uuid;primaryKey" json:"task_id"`
	LandID        uuid.UUID `gorm:"column:land_id;type:uuid;not null;uniqueIndex:idx_tasks_land_role" json:"land_id"`
	Role          string    `gorm:"column:role;type:varchar(20);not null;uniqueIndex:idx_tasks_land_role" json:"role"`
	TaskType      string    `gorm:"column:task_type;type:varchar(40)" json:"task_type"`
	AssigneeID    uuid.UUID `gorm:"column:assignee_id;type:uuid;not null;index" json:"assignee_id"`
	Status        string    `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CompletionPct int       `gorm:"column:completion_pct;not null;default:0" json:"completion_pct"`
	CreatedAt     time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updatedAt" json:"updatedAt"`

	Subtasks []Subtask `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
}

func (Task) TableName() string {
	return "Tasks"
}

// BeforeCreate sets task_id and enforces at the data layer that tasks only
// exist once the parent land has left draft, so direct writes cannot bypass
// the service check.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.TaskID == uuid.Nil {
		t.TaskID = uuid.New()
	}
	var land Land
	if err := tx.Select("status").Where("land_id = ?", t.LandID).First(&land).Error; err != nil {
		return err
	}
	if land.Status == "draft" {
		return ErrLandInDraft
	}
	return nil
}

// Subtask is an individual checklist item within a task. Its assignee may
// differ from the task's primary assignee (cross-role collaboration).
type Subtask struct {
	SubtaskID   uuid.UUID  `gorm:"column:subtask_id;type:uuid;primaryKey" json:"subtask_id"`
	TaskID      uuid.UUID  `gorm:"column:task_id;type:uuid;not null;index" json:"task_id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Status      string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	AssigneeID  *uuid.UUID `gorm:"column:assignee_id;type:uuid;index" json:"assignee_id"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	OrderIndex  int        `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt   time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Subtask) TableName() string {
	return "Subtasks"
}

// BeforeCreate ensures subtask_id is set for DBs without default uuid.
func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	if s.SubtaskID == uuid.Nil {
		s.SubtaskID = uuid.New()
	}
	return nil
}

// SubtaskTemplate is one checklist-item row of a role-and-task-type keyed
// template. Seeding reads rows ordered by order_index.
type SubtaskTemplate struct {
	TemplateID uuid.UUID `gorm:"column:template_id;type:uuid;primaryKey" json:"template_id"`
	Role       string    `gorm:"column:role;type:varchar(20);not null;index:idx_templates_role_type" json:"role"`
	TaskType   string    `gorm:"column:task_type;type:varchar(40);not null;index:idx_templates_role_type" json:"task_type"`
	Title      string    `gorm:"column:title;not null" json:"title"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt  time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (SubtaskTemplate) TableName() string {
	return "SubtaskTemplates"
}

// BeforeCreate ensures template_id is set for DBs without default uuid.
func (s *SubtaskTemplate) BeforeCreate(tx *gorm.DB) error {
	if s.TemplateID == uuid.Nil {
		s.TemplateID = uuid.New()
	}
	return nil
}
