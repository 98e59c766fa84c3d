package tasks

import (
	"context"
	"testing"

	"renewmart-backend/internal/application/notifications"
	reviewsvc "renewmart-backend/internal/application/reviews"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTasksTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Land{}, &domain.Task{}, &domain.Subtask{}, &domain.SubtaskTemplate{},
		&domain.ReviewStatus{}, &domain.ReviewEvent{},
	))
	events := &notifications.Dispatcher{DB: db}
	reviews := &reviewsvc.Service{DB: db, Events: events}
	return &Service{DB: db, Reviews: reviews, Events: events}, db
}

func createTaskLand(t *testing.T, db *gorm.DB, status string) *domain.Land {
	land := &domain.Land{OwnerID: uuid.New(), Title: "Wind Park Beta", Status: status}
	require.NoError(t, db.Create(land).Error)
	return land
}

func TestGetOrCreateTask_RejectsDraftLand(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandDraft)

	_, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID:     land.LandID,
		Role:       constants.Analyst,
		AssigneeID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrLandInDraft)
}

func TestGetOrCreateTask_RejectsNonReviewerRole(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	_, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID:     land.LandID,
		Role:       constants.Investor,
		AssigneeID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrNotReviewerRole)
}

func TestGetOrCreateTask_SeedsDefaultChecklist(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID:     land.LandID,
		Role:       constants.Analyst,
		AssigneeID: uuid.New(),
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, len(defaultChecklists[constants.Analyst]))
	assert.Equal(t, "Validate site survey measurements", task.Subtasks[0].Title)
	assert.Equal(t, constants.SubtaskPending, task.Subtasks[0].Status)

	// First review activity moves a submitted land under review.
	var reloaded domain.Land
	require.NoError(t, db.Where("land_id = ?", land.LandID).First(&reloaded).Error)
	assert.Equal(t, constants.LandUnderReview, reloaded.Status)

	// The review aggregate picks up the seeded totals.
	var review domain.ReviewStatus
	require.NoError(t, db.Where("land_id = ? AND role = ?", land.LandID, constants.Analyst).First(&review).Error)
	assert.Equal(t, len(defaultChecklists[constants.Analyst]), review.TotalSubtasks)
	assert.Equal(t, 0, review.SubtasksCompleted)
}

func TestGetOrCreateTask_KeepsNonSubmittedStatus(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandApproved)

	_, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID:     land.LandID,
		Role:       constants.Analyst,
		AssigneeID: uuid.New(),
	})
	require.NoError(t, err)

	// Only submitted lands move under review; anything further along keeps
	// its status.
	var reloaded domain.Land
	require.NoError(t, db.Where("land_id = ?", land.LandID).First(&reloaded).Error)
	assert.Equal(t, constants.LandApproved, reloaded.Status)
}

func TestGetOrCreateTask_SecondCallReturnsSameTask(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)
	assignee := uuid.New()

	first, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.GovernanceLead, AssigneeID: assignee,
	})
	require.NoError(t, err)

	second, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.GovernanceLead, AssigneeID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, first.TaskID, second.TaskID)
	assert.Equal(t, assignee, second.AssigneeID)

	var count int64
	require.NoError(t, db.Model(&domain.Subtask{}).Where("task_id = ?", first.TaskID).Count(&count).Error)
	assert.Equal(t, int64(len(defaultChecklists[constants.GovernanceLead])), count)
}

func TestGetOrCreateTask_UsesTemplates(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	for i, title := range []string{"Inspect substation access", "Model curtailment risk"} {
		require.NoError(t, db.Create(&domain.SubtaskTemplate{
			Role:       constants.Analyst,
			TaskType:   "grid_assessment",
			Title:      title,
			OrderIndex: i,
		}).Error)
	}

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID:     land.LandID,
		Role:       constants.Analyst,
		AssigneeID: uuid.New(),
		TaskType:   "grid_assessment",
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "Inspect substation access", task.Subtasks[0].Title)
	assert.Equal(t, "Model curtailment risk", task.Subtasks[1].Title)
}

func TestUpdateSubtask_RecomputesProgress(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.Analyst, AssigneeID: uuid.New(),
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 4)

	completed := constants.SubtaskCompleted
	for i := 0; i < 2; i++ {
		st, err := svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
			TaskID:    task.TaskID,
			SubtaskID: task.Subtasks[i].SubtaskID,
			ActorID:   task.AssigneeID,
			Status:    &completed,
		})
		require.NoError(t, err)
		assert.Equal(t, constants.SubtaskCompleted, st.Status)
		assert.NotNil(t, st.CompletedAt)
	}

	var reloaded domain.Task
	require.NoError(t, db.Where("task_id = ?", task.TaskID).First(&reloaded).Error)
	assert.Equal(t, 50, reloaded.CompletionPct)
	assert.Equal(t, constants.TaskInProgress, reloaded.Status)

	var review domain.ReviewStatus
	require.NoError(t, db.Where("land_id = ? AND role = ?", land.LandID, constants.Analyst).First(&review).Error)
	assert.Equal(t, 2, review.SubtasksCompleted)
	assert.Equal(t, 4, review.TotalSubtasks)
	assert.Equal(t, constants.ReviewInProgress, review.Status)

	// Completing the rest finishes the task and the derived review status.
	for i := 2; i < 4; i++ {
		_, err := svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
			TaskID:    task.TaskID,
			SubtaskID: task.Subtasks[i].SubtaskID,
			ActorID:   task.AssigneeID,
			Status:    &completed,
		})
		require.NoError(t, err)
	}
	require.NoError(t, db.Where("task_id = ?", task.TaskID).First(&reloaded).Error)
	assert.Equal(t, 100, reloaded.CompletionPct)
	assert.Equal(t, constants.TaskCompleted, reloaded.Status)

	require.NoError(t, db.Where("land_id = ? AND role = ?", land.LandID, constants.Analyst).First(&review).Error)
	assert.Equal(t, constants.ReviewCompleted, review.Status)
}

func TestUpdateSubtask_CancelledExcludedFromTotal(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.SalesAdvisor, AssigneeID: uuid.New(),
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 4)

	cancelled := constants.SubtaskCancelled
	_, err = svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
		TaskID:    task.TaskID,
		SubtaskID: task.Subtasks[3].SubtaskID,
		ActorID:   task.AssigneeID,
		Status:    &cancelled,
	})
	require.NoError(t, err)

	completed := constants.SubtaskCompleted
	for i := 0; i < 3; i++ {
		_, err := svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
			TaskID:    task.TaskID,
			SubtaskID: task.Subtasks[i].SubtaskID,
			ActorID:   task.AssigneeID,
			Status:    &completed,
		})
		require.NoError(t, err)
	}

	var reloaded domain.Task
	require.NoError(t, db.Where("task_id = ?", task.TaskID).First(&reloaded).Error)
	assert.Equal(t, 100, reloaded.CompletionPct)
	assert.Equal(t, constants.TaskCompleted, reloaded.Status)
}

func TestUpdateSubtask_InvalidStatus(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.Analyst, AssigneeID: uuid.New(),
	})
	require.NoError(t, err)

	bogus := "paused"
	_, err = svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
		TaskID:    task.TaskID,
		SubtaskID: task.Subtasks[0].SubtaskID,
		ActorID:   task.AssigneeID,
		Status:    &bogus,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateSubtask_ImmutableAfterPublish(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.Analyst, AssigneeID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Reviews.Publish(context.Background(), land.LandID, constants.Analyst)
	require.NoError(t, err)

	completed := constants.SubtaskCompleted
	_, err = svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
		TaskID:    task.TaskID,
		SubtaskID: task.Subtasks[0].SubtaskID,
		ActorID:   task.AssigneeID,
		Status:    &completed,
	})
	assert.ErrorIs(t, err, ErrReviewPublished)

	// Another role's checklist on the same land is unaffected.
	other, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.GovernanceLead, AssigneeID: uuid.New(),
	})
	require.NoError(t, err)
	_, err = svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
		TaskID:    other.TaskID,
		SubtaskID: other.Subtasks[0].SubtaskID,
		ActorID:   other.AssigneeID,
		Status:    &completed,
	})
	assert.NoError(t, err)
}

func TestCollaborationInbox(t *testing.T) {
	svc, db := setupTasksTest(t)
	land := createTaskLand(t, db, constants.LandSubmitted)
	analyst := uuid.New()
	governance := uuid.New()

	task, err := svc.GetOrCreateTask(context.Background(), GetOrCreateInput{
		LandID: land.LandID, Role: constants.Analyst, AssigneeID: analyst,
	})
	require.NoError(t, err)

	// Delegate one checklist item to the governance lead.
	_, err = svc.UpdateSubtask(context.Background(), UpdateSubtaskInput{
		TaskID:     task.TaskID,
		SubtaskID:  task.Subtasks[1].SubtaskID,
		ActorID:    analyst,
		AssigneeID: &governance,
	})
	require.NoError(t, err)

	items, err := svc.CollaborationInbox(context.Background(), governance)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, task.Subtasks[1].SubtaskID, items[0].Subtask.SubtaskID)
	assert.Equal(t, task.TaskID, items[0].Task.TaskID)

	// The task owner's own delegations do not appear in their inbox.
	items, err = svc.CollaborationInbox(context.Background(), analyst)
	require.NoError(t, err)
	assert.Empty(t, items)

	// The assignment emitted a collaboration event.
	var count int64
	require.NoError(t, db.Model(&domain.ReviewEvent{}).
		Where("land_id = ? AND event_type = ?", land.LandID, domain.EventSubtaskAssigned).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
