package reviews

import (
	"renewmart-backend/internal/application/notifications"
	reviewsvc "renewmart-backend/internal/application/reviews"
	"renewmart-backend/internal/middleware"
	"renewmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *reviewsvc.Service
	Events  *notifications.Dispatcher
}

type ApproveRequest struct {
	Decision string  `json:"decision"`
	Rating   *int    `json:"rating"`
	Comments *string `json:"comments"`
}

// Approve POST /api/v1/reviews/:land_id/approve — records the session role's
// decision with optional rating and comments.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	var req ApproveRequest
	if err := c.BodyParser(&req); err != nil || req.Decision == "" {
		return response.Error(c, "decision is required", 400, nil)
	}

	review, err := h.Service.Approve(c.Context(), landID, middleware.GetUserRole(c), reviewsvc.ApproveInput{
		Decision: req.Decision,
		Rating:   req.Rating,
		Comments: req.Comments,
	})
	if err != nil {
		return mapReviewError(c, err)
	}
	return response.Success(c, "Review decision recorded", fiber.Map{"review": review}, nil)
}

// Publish POST /api/v1/reviews/:land_id/publish — publishes the session
// role's review and runs the marketplace publication trigger. Idempotent.
func (h *Handlers) Publish(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}

	result, err := h.Service.Publish(c.Context(), landID, middleware.GetUserRole(c))
	if err != nil {
		return mapReviewError(c, err)
	}

	msg := "Review published"
	if result.MarketplacePublished {
		msg = "Review published and land listed on the marketplace"
	}
	return response.Success(c, msg, result, nil)
}

// GetAll GET /api/v1/reviews/:land_id — one entry per reviewer role, pending
// defaults for untouched roles.
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	reviews, err := h.Service.GetAll(c.Context(), landID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Review statuses retrieved", fiber.Map{"reviews": reviews}, nil)
}

// EventHistory GET /api/v1/reviews/:land_id/events — recorded workflow
// events, newest first.
func (h *Handlers) EventHistory(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	events, err := h.Events.History(c.Context(), landID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Event history retrieved", fiber.Map{"events": events}, fiber.Map{"count": len(events)})
}

func mapReviewError(c *fiber.Ctx, err error) error {
	switch err {
	case reviewsvc.ErrLandNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case reviewsvc.ErrNotReviewerRole:
		return response.Error(c, err.Error(), 403, nil)
	case reviewsvc.ErrInvalidDecision, reviewsvc.ErrInvalidRating:
		return response.Error(c, err.Error(), 400, nil)
	default:
		return response.Error(c, err.Error(), 500, nil)
	}
}
