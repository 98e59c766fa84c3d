package marketplace

import (
	marketsvc "renewmart-backend/internal/application/marketplace"
	"renewmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *marketsvc.Service
}

// Listings GET /api/v1/marketplace/listings?energy_type= — published lands, newest first.
func (h *Handlers) Listings(c *fiber.Ctx) error {
	lands, err := h.Service.ListPublished(c.Context(), c.Query("energy_type"))
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Marketplace listings retrieved", fiber.Map{"lands": lands}, fiber.Map{"count": len(lands)})
}

// Listing GET /api/v1/marketplace/listings/:land_id — single published land.
func (h *Handlers) Listing(c *fiber.Ctx) error {
	land, err := h.Service.GetListed(c.Context(), c.Params("land_id"))
	if err != nil {
		if err == marketsvc.ErrNotListed {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Marketplace listing found", fiber.Map{"land": land}, nil)
}
