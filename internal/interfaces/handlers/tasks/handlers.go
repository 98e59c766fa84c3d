package tasks

import (
	tasksvc "renewmart-backend/internal/application/tasks"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/middleware"
	"renewmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *tasksvc.Service
}

type GetOrCreateRequest struct {
	LandID   string `json:"land_id"`
	TaskType string `json:"task_type"`
}

// GetOrCreate POST /api/v1/tasks/get-or-create — returns the session role's
// task for the land, creating and seeding its checklist on first access.
func (h *Handlers) GetOrCreate(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req GetOrCreateRequest
	if err := c.BodyParser(&req); err != nil || req.LandID == "" {
		return response.Error(c, "land_id is required", 400, nil)
	}
	landID, err := uuid.Parse(req.LandID)
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}

	task, err := h.Service.GetOrCreateTask(c.Context(), tasksvc.GetOrCreateInput{
		LandID:     landID,
		Role:       middleware.GetUserRole(c),
		AssigneeID: actorID,
		TaskType:   req.TaskType,
	})
	if err != nil {
		return mapTaskError(c, err)
	}
	return response.Success(c, "Task retrieved", fiber.Map{"task": task}, nil)
}

// Subtasks GET /api/v1/tasks/:task_id/subtasks
func (h *Handlers) Subtasks(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("task_id"))
	if err != nil {
		return response.Error(c, "Invalid task ID format (must be a valid UUID)", 400, nil)
	}
	subtasks, err := h.Service.ListSubtasks(c.Context(), taskID)
	if err != nil {
		return mapTaskError(c, err)
	}
	return response.Success(c, "Subtasks retrieved", fiber.Map{"subtasks": subtasks}, fiber.Map{"count": len(subtasks)})
}

type UpdateSubtaskRequest struct {
	Status     *string `json:"status"`
	AssigneeID *string `json:"assignee_id"`
	Title      *string `json:"title"`
}

// UpdateSubtask PATCH /api/v1/tasks/:task_id/subtasks/:subtask_id — partial
// patch; parent progress is recomputed and written through to the review.
func (h *Handlers) UpdateSubtask(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	taskID, err := uuid.Parse(c.Params("task_id"))
	if err != nil {
		return response.Error(c, "Invalid task ID format (must be a valid UUID)", 400, nil)
	}
	subtaskID, err := uuid.Parse(c.Params("subtask_id"))
	if err != nil {
		return response.Error(c, "Invalid subtask ID format (must be a valid UUID)", 400, nil)
	}
	var req UpdateSubtaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing update fields", 400, nil)
	}

	var assigneeID *uuid.UUID
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		id, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			return response.Error(c, "Invalid assignee ID format (must be a valid UUID)", 400, nil)
		}
		assigneeID = &id
	}

	subtask, err := h.Service.UpdateSubtask(c.Context(), tasksvc.UpdateSubtaskInput{
		TaskID:     taskID,
		SubtaskID:  subtaskID,
		ActorID:    actorID,
		Status:     req.Status,
		AssigneeID: assigneeID,
		Title:      req.Title,
	})
	if err != nil {
		return mapTaskError(c, err)
	}
	return response.Success(c, "Subtask updated successfully", fiber.Map{"subtask": subtask}, nil)
}

// Inbox GET /api/v1/tasks/inbox — subtasks assigned to the session user on
// tasks owned by someone else.
func (h *Handlers) Inbox(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.CollaborationInbox(c.Context(), actorID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Collaboration inbox retrieved", fiber.Map{"items": items}, fiber.Map{"count": len(items)})
}

func mapTaskError(c *fiber.Ctx, err error) error {
	switch err {
	case tasksvc.ErrLandNotFound, tasksvc.ErrTaskNotFound, tasksvc.ErrSubtaskNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case tasksvc.ErrNotReviewerRole:
		return response.Error(c, err.Error(), 403, nil)
	case tasksvc.ErrInvalidStatus:
		return response.Error(c, err.Error(), 400, nil)
	case tasksvc.ErrReviewPublished, domain.ErrLandInDraft:
		return response.Error(c, err.Error(), 409, nil)
	default:
		return response.Error(c, err.Error(), 500, nil)
	}
}

func sessionUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
