package tasks

import (
	"context"

	"renewmart-backend/internal/application/notifications"
	"renewmart-backend/internal/application/reviews"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// defaultChecklists seed a role's task when no template rows exist in the DB.
var defaultChecklists = map[string][]string{
	constants.SalesAdvisor: {
		"Verify asking price against regional comparables",
		"Review landowner contact and ownership details",
		"Assess marketability of the site",
		"Confirm commission and contract terms",
	},
	constants.Analyst: {
		"Validate site survey measurements",
		"Assess grid connectivity and interconnection cost",
		"Review energy yield estimates",
		"Check capacity figures against feasibility report",
	},
	constants.GovernanceLead: {
		"Verify land deed and title chain",
		"Check zoning and land-use compliance",
		"Review environmental permits",
		"Confirm regulatory filing completeness",
	},
}

// Service owns one task per (land, reviewer role) and its ordered checklist.
// Every subtask mutation recomputes the parent task's completion from source
// and writes it through to the role's review status; there is no separate
// recompute step for clients to call.
type Service struct {
	DB      *gorm.DB
	Reviews *reviews.Service
	Events  *notifications.Dispatcher
}

// GetOrCreateInput identifies the task slot and the reviewer claiming it.
type GetOrCreateInput struct {
	LandID     uuid.UUID
	Role       string
	AssigneeID uuid.UUID
	TaskType   string
}

// GetOrCreateTask returns the role's task for the land, creating and seeding
// it on first access. Creation is rejected while the land is in draft (also
// enforced by the Task data-layer hook).
func (s *Service) GetOrCreateTask(ctx context.Context, in GetOrCreateInput) (*domain.Task, error) {
	if !constants.IsReviewerRole(in.Role) {
		return nil, ErrNotReviewerRole
	}
	var land domain.Land
	if err := s.DB.WithContext(ctx).Where("land_id = ?", in.LandID).First(&land).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLandNotFound
		}
		return nil, err
	}
	if land.Status == constants.LandDraft {
		return nil, domain.ErrLandInDraft
	}

	var task domain.Task
	err := s.DB.WithContext(ctx).Where("land_id = ? AND role = ?", in.LandID, in.Role).First(&task).Error
	if err == gorm.ErrRecordNotFound {
		task = domain.Task{
			LandID:     in.LandID,
			Role:       in.Role,
			TaskType:   in.TaskType,
			AssigneeID: in.AssigneeID,
			Status:     constants.TaskPending,
		}
		if createErr := s.DB.WithContext(ctx).Create(&task).Error; createErr != nil {
			// Concurrent first access loses on the unique key; re-read.
			if err := s.DB.WithContext(ctx).Where("land_id = ? AND role = ?", in.LandID, in.Role).First(&task).Error; err != nil {
				return nil, createErr
			}
		}
		// Review work has begun: move a freshly submitted land under review.
		res := s.DB.WithContext(ctx).Model(&domain.Land{}).
			Where("land_id = ? AND status = ?", in.LandID, constants.LandSubmitted).
			Update("status", constants.LandUnderReview)
		if res.Error != nil {
			log.Warn().Err(res.Error).Str("landId", in.LandID.String()).
				Msg("Failed to move land under review")
		}
	} else if err != nil {
		return nil, err
	}

	subtasks, err := s.ensureSeeded(ctx, &task)
	if err != nil {
		return nil, err
	}
	task.Subtasks = subtasks
	return &task, nil
}

// ensureSeeded seeds the checklist from the role-and-task-type keyed template
// when the task has no subtasks yet, and returns the ordered list.
func (s *Service) ensureSeeded(ctx context.Context, task *domain.Task) ([]domain.Subtask, error) {
	var subtasks []domain.Subtask
	if err := s.DB.WithContext(ctx).Where("task_id = ?", task.TaskID).Order("order_index ASC").Find(&subtasks).Error; err != nil {
		return nil, err
	}
	if len(subtasks) > 0 {
		return subtasks, nil
	}

	titles := s.templateTitles(ctx, task.Role, task.TaskType)
	for i, title := range titles {
		st := domain.Subtask{
			TaskID:     task.TaskID,
			Title:      title,
			Status:     constants.SubtaskPending,
			OrderIndex: i,
		}
		if err := s.DB.WithContext(ctx).Create(&st).Error; err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}
	if len(subtasks) > 0 {
		if err := s.recompute(ctx, task); err != nil {
			return nil, err
		}
	}
	return subtasks, nil
}

// templateTitles resolves the ordered checklist titles: exact (role, task
// type) template first, then the role's first available template, then the
// built-in defaults.
func (s *Service) templateTitles(ctx context.Context, role, taskType string) []string {
	var rows []domain.SubtaskTemplate
	if taskType != "" {
		s.DB.WithContext(ctx).Where("role = ? AND task_type = ?", role, taskType).
			Order("order_index ASC").Find(&rows)
	}
	if len(rows) == 0 {
		var first domain.SubtaskTemplate
		if err := s.DB.WithContext(ctx).Where("role = ?", role).Order(`"createdAt" ASC`).First(&first).Error; err == nil {
			s.DB.WithContext(ctx).Where("role = ? AND task_type = ?", role, first.TaskType).
				Order("order_index ASC").Find(&rows)
		}
	}
	if len(rows) > 0 {
		titles := make([]string, 0, len(rows))
		for _, r := range rows {
			titles = append(titles, r.Title)
		}
		return titles
	}
	return defaultChecklists[role]
}

// ListSubtasks returns the task's checklist in order.
func (s *Service) ListSubtasks(ctx context.Context, taskID uuid.UUID) ([]domain.Subtask, error) {
	var task domain.Task
	if err := s.DB.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	var subtasks []domain.Subtask
	if err := s.DB.WithContext(ctx).Where("task_id = ?", taskID).Order("order_index ASC").Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

// UpdateSubtaskInput is a partial patch; nil fields are left untouched.
type UpdateSubtaskInput struct {
	TaskID     uuid.UUID
	SubtaskID  uuid.UUID
	ActorID    uuid.UUID
	Status     *string
	AssigneeID *uuid.UUID
	Title      *string
}

// UpdateSubtask applies the patch, recomputes the parent task's completion
// from source and writes it through to the role's review status. Rejected
// once the owning role's review has been published.
func (s *Service) UpdateSubtask(ctx context.Context, in UpdateSubtaskInput) (*domain.Subtask, error) {
	var task domain.Task
	if err := s.DB.WithContext(ctx).Where("task_id = ?", in.TaskID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	var subtask domain.Subtask
	if err := s.DB.WithContext(ctx).Where("subtask_id = ? AND task_id = ?", in.SubtaskID, in.TaskID).First(&subtask).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}

	var review domain.ReviewStatus
	if err := s.DB.WithContext(ctx).Where("land_id = ? AND role = ?", task.LandID, task.Role).
		First(&review).Error; err == nil && review.Published {
		return nil, ErrReviewPublished
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	assigned := false
	if in.AssigneeID != nil && (subtask.AssigneeID == nil || *subtask.AssigneeID != *in.AssigneeID) {
		updates["assignee_id"] = *in.AssigneeID
		assigned = true
	}
	if in.Status != nil {
		if !constants.IsValidSubtaskStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *in.Status
		if *in.Status == constants.SubtaskCompleted {
			updates["completed_at"] = gorm.Expr("CURRENT_TIMESTAMP")
		} else {
			updates["completed_at"] = nil
		}
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&subtask).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := s.recompute(ctx, &task); err != nil {
		return nil, err
	}

	if assigned {
		s.Events.Emit(ctx, task.LandID, task.Role, domain.EventSubtaskAssigned, map[string]interface{}{
			"subtask_id":  subtask.SubtaskID.String(),
			"assignee_id": in.AssigneeID.String(),
			"assigned_by": in.ActorID.String(),
		})
	}

	if err := s.DB.WithContext(ctx).Where("subtask_id = ?", in.SubtaskID).First(&subtask).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

// recompute counts completed/total from the subtasks table (never increments
// blindly, so concurrent writers cannot drift the aggregates), updates the
// task row and writes the counts through to the review status.
func (s *Service) recompute(ctx context.Context, task *domain.Task) error {
	var total, completed int64
	if err := s.DB.WithContext(ctx).Model(&domain.Subtask{}).
		Where("task_id = ? AND status <> ?", task.TaskID, constants.SubtaskCancelled).
		Count(&total).Error; err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(&domain.Subtask{}).
		Where("task_id = ? AND status = ?", task.TaskID, constants.SubtaskCompleted).
		Count(&completed).Error; err != nil {
		return err
	}

	pct := 0
	if total > 0 {
		pct = int(float64(completed)/float64(total)*100 + 0.5)
	}
	status := constants.TaskPending
	switch {
	case total > 0 && completed == total:
		status = constants.TaskCompleted
	case completed > 0:
		status = constants.TaskInProgress
	}
	if err := s.DB.WithContext(ctx).Model(task).
		Updates(map[string]interface{}{"completion_pct": pct, "status": status}).Error; err != nil {
		return err
	}

	_, err := s.Reviews.SyncSubtaskProgress(ctx, task.LandID, task.Role, int(completed), int(total))
	return err
}

// InboxItem is a subtask delegated to a user on a task owned by someone else.
type InboxItem struct {
	Subtask domain.Subtask `json:"subtask"`
	Task    domain.Task    `json:"task"`
}

// CollaborationInbox lists subtasks assigned to userID whose parent task
// belongs to a different primary assignee. This is a separate access path
// from normal task listing.
func (s *Service) CollaborationInbox(ctx context.Context, userID uuid.UUID) ([]InboxItem, error) {
	var subtasks []domain.Subtask
	err := s.DB.WithContext(ctx).
		Joins(`JOIN "Tasks" ON "Tasks".task_id = "Subtasks".task_id`).
		Where(`"Subtasks".assignee_id = ? AND "Tasks".assignee_id <> ?`, userID, userID).
		Order(`"Subtasks".order_index ASC`).
		Find(&subtasks).Error
	if err != nil {
		return nil, err
	}
	items := make([]InboxItem, 0, len(subtasks))
	for _, st := range subtasks {
		var task domain.Task
		if err := s.DB.WithContext(ctx).Where("task_id = ?", st.TaskID).First(&task).Error; err != nil {
			continue
		}
		items = append(items, InboxItem{Subtask: st, Task: task})
	}
	return items, nil
}
