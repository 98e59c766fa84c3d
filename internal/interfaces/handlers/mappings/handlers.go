package mappings

import (
	mapsvc "renewmart-backend/internal/application/rolemapping"
	"renewmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *mapsvc.Service
}

type SetOverrideRequest struct {
	Content map[string][]string `json:"content"`
}

// SetOverride PUT /api/v1/mappings/:land_id — per-land override of the
// role→document-type defaults. An empty content map is a valid override
// meaning "this land maps nothing".
func (h *Handlers) SetOverride(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	var req SetOverrideRequest
	if err := c.BodyParser(&req); err != nil || req.Content == nil {
		return response.Error(c, "content is required", 400, nil)
	}

	mapping, err := h.Service.SetOverride(c.Context(), landID, req.Content)
	if err != nil {
		if err == mapsvc.ErrInvalidRole {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Mapping override saved", fiber.Map{"mapping": mapping}, nil)
}

// ClearOverride DELETE /api/v1/mappings/:land_id — back to defaults.
func (h *Handlers) ClearOverride(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	if err := h.Service.ClearOverride(c.Context(), landID); err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Mapping override cleared", nil, nil)
}

// ResolvedTypes GET /api/v1/mappings/:land_id/:role — the document types the
// role reviews on this land after override resolution.
func (h *Handlers) ResolvedTypes(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	types, err := h.Service.ResolvedTypes(c.Context(), landID, c.Params("role"))
	if err != nil {
		if err == mapsvc.ErrInvalidRole {
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Resolved document types", fiber.Map{"document_types": types}, fiber.Map{"count": len(types)})
}
