package rolemapping

import (
	"context"
	"testing"

	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMappingTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RoleDocumentMapping{}))
	return &Service{DB: db}
}

func TestResolve_DefaultsWhenNoOverride(t *testing.T) {
	svc := setupMappingTest(t)
	landID := uuid.New()

	resolved, err := svc.Resolve(context.Background(), landID, constants.Analyst)
	require.NoError(t, err)
	assert.True(t, resolved["site_survey"])
	assert.True(t, resolved["grid_connectivity"])
	assert.True(t, resolved["feasibility_report"])
	assert.False(t, resolved["land_deed"])
	assert.False(t, resolved["environmental_permit"])
}

func TestResolve_RejectsNonReviewerRole(t *testing.T) {
	svc := setupMappingTest(t)

	_, err := svc.Resolve(context.Background(), uuid.New(), constants.Landowner)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Resolve(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestResolve_OverrideIsExclusive(t *testing.T) {
	svc := setupMappingTest(t)
	landID := uuid.New()

	_, err := svc.SetOverride(context.Background(), landID, map[string][]string{
		"land_deed": {constants.Analyst},
	})
	require.NoError(t, err)

	// The override replaces the defaults entirely, it is never merged.
	resolved, err := svc.Resolve(context.Background(), landID, constants.Analyst)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"land_deed": true}, resolved)

	salesResolved, err := svc.Resolve(context.Background(), landID, constants.SalesAdvisor)
	require.NoError(t, err)
	assert.Empty(t, salesResolved)
}

func TestResolve_EmptyOverrideMeansNothingVisible(t *testing.T) {
	svc := setupMappingTest(t)
	landID := uuid.New()

	_, err := svc.SetOverride(context.Background(), landID, map[string][]string{})
	require.NoError(t, err)

	for _, role := range constants.ReviewerRoles {
		resolved, err := svc.Resolve(context.Background(), landID, role)
		require.NoError(t, err)
		assert.Empty(t, resolved, "role %s should see nothing under an empty override", role)
	}

	types, err := svc.ResolvedTypes(context.Background(), landID, constants.Analyst)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestClearOverride_RestoresDefaults(t *testing.T) {
	svc := setupMappingTest(t)
	landID := uuid.New()

	_, err := svc.SetOverride(context.Background(), landID, map[string][]string{})
	require.NoError(t, err)
	require.NoError(t, svc.ClearOverride(context.Background(), landID))

	resolved, err := svc.Resolve(context.Background(), landID, constants.GovernanceLead)
	require.NoError(t, err)
	assert.True(t, resolved["land_deed"])
	assert.True(t, resolved["environmental_permit"])
	assert.True(t, resolved["zoning_certificate"])
}

func TestSetOverride_ReplacesExisting(t *testing.T) {
	svc := setupMappingTest(t)
	landID := uuid.New()

	first, err := svc.SetOverride(context.Background(), landID, map[string][]string{
		"land_deed": {constants.SalesAdvisor},
	})
	require.NoError(t, err)

	second, err := svc.SetOverride(context.Background(), landID, map[string][]string{
		"site_survey": {constants.SalesAdvisor},
	})
	require.NoError(t, err)
	assert.Equal(t, first.MappingID, second.MappingID)

	types, err := svc.ResolvedTypes(context.Background(), landID, constants.SalesAdvisor)
	require.NoError(t, err)
	assert.Equal(t, []string{"site_survey"}, types)
}
