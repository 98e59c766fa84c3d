package lands

import (
	landsvc "renewmart-backend/internal/application/lands"
	"renewmart-backend/internal/middleware"
	"renewmart-backend/internal/pkg/constants"
	"renewmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *landsvc.Service
}

type CreateLandRequest struct {
	Title         string   `json:"title"`
	LocationText  string   `json:"location_text"`
	EnergyType    string   `json:"energy_type"`
	CapacityMW    *float64 `json:"capacity_mw"`
	AskingPrice   *float64 `json:"asking_price"`
	Timeline      *string  `json:"timeline"`
	ContractTerm  *string  `json:"contract_term"`
	DeveloperName *string  `json:"developer_name"`
}

// CreateLand POST /api/v1/lands/create-land — new draft owned by the session user.
func (h *Handlers) CreateLand(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateLandRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Title is required", 400, nil)
	}

	land, err := h.Service.Create(c.Context(), landsvc.CreateInput{
		OwnerID:       actorID,
		Title:         req.Title,
		LocationText:  req.LocationText,
		EnergyType:    req.EnergyType,
		CapacityMW:    req.CapacityMW,
		AskingPrice:   req.AskingPrice,
		Timeline:      req.Timeline,
		ContractTerm:  req.ContractTerm,
		DeveloperName: req.DeveloperName,
	})
	if err != nil {
		if err == landsvc.ErrTitleRequired {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.SuccessCreated(c, "Land project created successfully", fiber.Map{"land": land}, nil)
}

// GetLand GET /api/v1/lands/:land_id
func (h *Handlers) GetLand(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	land, err := h.Service.GetByID(c.Context(), landID)
	if err != nil {
		if err == landsvc.ErrLandNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Land project found", fiber.Map{"land": land}, nil)
}

// MyLands GET /api/v1/lands/my-lands — lands owned by the session user.
func (h *Handlers) MyLands(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	lands, err := h.Service.ListByOwner(c.Context(), actorID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Land projects retrieved", fiber.Map{"lands": lands}, fiber.Map{"count": len(lands)})
}

type UpdateMarketingRequest struct {
	Title         *string  `json:"title"`
	LocationText  *string  `json:"location_text"`
	EnergyType    *string  `json:"energy_type"`
	CapacityMW    *float64 `json:"capacity_mw"`
	AskingPrice   *float64 `json:"asking_price"`
	Timeline      *string  `json:"timeline"`
	ContractTerm  *string  `json:"contract_term"`
	DeveloperName *string  `json:"developer_name"`
}

// UpdateMarketing PATCH /api/v1/lands/:land_id/marketing — owner or admin only.
func (h *Handlers) UpdateMarketing(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	var req UpdateMarketingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing update fields", 400, nil)
	}

	land, err := h.Service.UpdateMarketing(c.Context(), landID, actorID, isAdmin(c), landsvc.MarketingPatch{
		Title:         req.Title,
		LocationText:  req.LocationText,
		EnergyType:    req.EnergyType,
		CapacityMW:    req.CapacityMW,
		AskingPrice:   req.AskingPrice,
		Timeline:      req.Timeline,
		ContractTerm:  req.ContractTerm,
		DeveloperName: req.DeveloperName,
	})
	if err != nil {
		return mapLandError(c, err)
	}
	return response.Success(c, "Land project updated successfully", fiber.Map{"land": land}, nil)
}

// SubmitLand POST /api/v1/lands/:land_id/submit — draft → submitted.
func (h *Handlers) SubmitLand(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	land, err := h.Service.Submit(c.Context(), landID, actorID, isAdmin(c))
	if err != nil {
		return mapLandError(c, err)
	}
	return response.Success(c, "Land project submitted for review", fiber.Map{"land": land}, nil)
}

// MissingFields GET /api/v1/lands/:land_id/missing-fields — marketing fields
// still blocking the marketplace transition.
func (h *Handlers) MissingFields(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	land, err := h.Service.GetByID(c.Context(), landID)
	if err != nil {
		if err == landsvc.ErrLandNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	missing := land.MissingMarketingFields()
	return response.Success(c, "Marketplace eligibility checked", fiber.Map{
		"eligible":       len(missing) == 0,
		"missing_fields": missing,
	}, nil)
}

func mapLandError(c *fiber.Ctx, err error) error {
	switch err {
	case landsvc.ErrLandNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case landsvc.ErrNotOwner:
		return response.Error(c, err.Error(), 403, nil)
	case landsvc.ErrNotDraft, landsvc.ErrLandComplete, landsvc.ErrTitleRequired:
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

func isAdmin(c *fiber.Ctx) bool {
	return middleware.GetUserRole(c) == constants.Admin
}
