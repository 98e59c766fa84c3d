package tasks

import "errors"

var (
	ErrLandNotFound    = errors.New("Land project not found")
	ErrNotReviewerRole = errors.New("Not a reviewer role")
	ErrTaskNotFound    = errors.New("Task not found")
	ErrSubtaskNotFound = errors.New("Subtask not found")
	ErrInvalidStatus   = errors.New("Invalid subtask status")
	ErrReviewPublished = errors.New("Subtasks are immutable once the review is published")
)
