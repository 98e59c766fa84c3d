package rolemapping

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidRole is returned when resolution is requested for a role that
// does not review documents.
var ErrInvalidRole = errors.New("Not a reviewer role")

// DefaultMappings is the system-wide document_type -> allowed roles table,
// used for every land without a per-land override row.
var DefaultMappings = map[string][]string{
	"land_deed":            {constants.SalesAdvisor, constants.GovernanceLead},
	"ownership_proof":      {constants.SalesAdvisor, constants.GovernanceLead},
	"site_survey":          {constants.Analyst},
	"grid_connectivity":    {constants.Analyst},
	"feasibility_report":   {constants.Analyst, constants.SalesAdvisor},
	"environmental_permit": {constants.GovernanceLead},
	"zoning_certificate":   {constants.GovernanceLead},
	"financial_statement":  {constants.SalesAdvisor},
}

// Service resolves which document types a reviewer role may see and act on
// for a given land. The per-land override is tri-valued: an absent row means
// "use defaults", a present row with empty content means "no types visible",
// and a present row with content is used exclusively (never merged with
// defaults).
type Service struct {
	DB *gorm.DB
}

// Resolve returns the set of document types visible to role on landID.
func (s *Service) Resolve(ctx context.Context, landID uuid.UUID, role string) (map[string]bool, error) {
	if !constants.IsReviewerRole(role) {
		return nil, ErrInvalidRole
	}

	var mapping domain.RoleDocumentMapping
	err := s.DB.WithContext(ctx).Where("land_id = ?", landID).First(&mapping).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			// Fail closed: a resolution error counts as "no override", never "allow all".
			log.Warn().Err(err).Str("land_id", landID.String()).Str("role", role).
				Msg("rolemapping: override lookup failed, using defaults")
		}
		return defaultsFor(role), nil
	}

	override := map[string][]string{}
	if len(mapping.Types) > 0 {
		if err := json.Unmarshal(mapping.Types, &override); err != nil {
			log.Warn().Err(err).Str("land_id", landID.String()).
				Msg("rolemapping: malformed override content, using defaults")
			return defaultsFor(role), nil
		}
	}

	// The override exists: use it exclusively, even when empty.
	resolved := make(map[string]bool)
	for docType, roles := range override {
		for _, r := range roles {
			if r == role {
				resolved[docType] = true
				break
			}
		}
	}
	return resolved, nil
}

// ResolvedTypes returns the resolved set as a sorted slice, for responses.
func (s *Service) ResolvedTypes(ctx context.Context, landID uuid.UUID, role string) ([]string, error) {
	set, err := s.Resolve(ctx, landID, role)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

// SetOverride creates or replaces the per-land override. An empty (non-nil)
// content map is a valid override meaning "no types visible".
func (s *Service) SetOverride(ctx context.Context, landID uuid.UUID, content map[string][]string) (*domain.RoleDocumentMapping, error) {
	if content == nil {
		content = map[string][]string{}
	}
	b, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	var mapping domain.RoleDocumentMapping
	err = s.DB.WithContext(ctx).Where("land_id = ?", landID).First(&mapping).Error
	if err == gorm.ErrRecordNotFound {
		mapping = domain.RoleDocumentMapping{LandID: landID, Types: datatypes.JSON(b)}
		if err := s.DB.WithContext(ctx).Create(&mapping).Error; err != nil {
			return nil, err
		}
		return &mapping, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&mapping).Update("types", datatypes.JSON(b)).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

// ClearOverride removes the per-land override so the land falls back to the
// system defaults. Distinct from SetOverride with empty content.
func (s *Service) ClearOverride(ctx context.Context, landID uuid.UUID) error {
	return s.DB.WithContext(ctx).Where("land_id = ?", landID).Delete(&domain.RoleDocumentMapping{}).Error
}

func defaultsFor(role string) map[string]bool {
	resolved := make(map[string]bool)
	for docType, roles := range DefaultMappings {
		for _, r := range roles {
			if r == role {
				resolved[docType] = true
				break
			}
		}
	}
	return resolved
}
