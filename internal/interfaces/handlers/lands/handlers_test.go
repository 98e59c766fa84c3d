package lands

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	landsvc "renewmart-backend/internal/application/lands"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLandsHandlers(t *testing.T, userID uuid.UUID, role string) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Land{}))

	h := &Handlers{Service: &landsvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": userID.String(),
			"role":    role,
		})
		return c.Next()
	})
	app.Post("/lands/create-land", h.CreateLand)
	app.Get("/lands/my-lands", h.MyLands)
	app.Get("/lands/:land_id", h.GetLand)
	app.Post("/lands/:land_id/submit", h.SubmitLand)
	app.Get("/lands/:land_id/missing-fields", h.MissingFields)
	return app, db
}

func TestCreateLand_Success(t *testing.T) {
	owner := uuid.New()
	app, db := setupLandsHandlers(t, owner, constants.Landowner)

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Solar Field Epsilon",
		"energy_type": "solar",
	})
	req := httptest.NewRequest("POST", "/lands/create-land", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var land domain.Land
	require.NoError(t, db.Where("owner_id = ?", owner).First(&land).Error)
	assert.Equal(t, constants.LandDraft, land.Status)
	assert.Equal(t, "Solar Field Epsilon", land.Title)
}

func TestCreateLand_MissingTitle(t *testing.T) {
	app, _ := setupLandsHandlers(t, uuid.New(), constants.Landowner)

	body, _ := json.Marshal(map[string]interface{}{"energy_type": "wind"})
	req := httptest.NewRequest("POST", "/lands/create-land", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSubmitLand_DoubleSubmitConflicts(t *testing.T) {
	owner := uuid.New()
	app, db := setupLandsHandlers(t, owner, constants.Landowner)

	land := &domain.Land{OwnerID: owner, Title: "Test", Status: constants.LandDraft}
	require.NoError(t, db.Create(land).Error)

	resp, err := app.Test(httptest.NewRequest("POST", "/lands/"+land.LandID.String()+"/submit", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/lands/"+land.LandID.String()+"/submit", nil))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestMissingFields_ReportsGaps(t *testing.T) {
	owner := uuid.New()
	app, db := setupLandsHandlers(t, owner, constants.Landowner)

	land := &domain.Land{OwnerID: owner, Title: "Test", Status: constants.LandUnderReview}
	require.NoError(t, db.Create(land).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/lands/"+land.LandID.String()+"/missing-fields", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data := result["data"].(map[string]interface{})
	assert.Equal(t, false, data["eligible"])
	assert.Len(t, data["missing_fields"], 7)
}

func TestGetLand_NotFound(t *testing.T) {
	app, _ := setupLandsHandlers(t, uuid.New(), constants.Landowner)

	resp, err := app.Test(httptest.NewRequest("GET", "/lands/"+uuid.New().String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
