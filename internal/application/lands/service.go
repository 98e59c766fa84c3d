package lands

import (
	"context"
	"errors"

	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrLandNotFound  = errors.New("Land project not found")
	ErrNotOwner      = errors.New("Only the owner may modify this land project")
	ErrNotDraft      = errors.New("Only draft land projects can be submitted")
	ErrTitleRequired = errors.New("Title is required")
	ErrLandComplete  = errors.New("Completed land projects can no longer be edited")
)

// Service owns the land project lifecycle on the landowner side: creation in
// draft, marketing-field edits and submission into review.
type Service struct {
	DB *gorm.DB
}

// CreateInput carries the initial project fields; only Title is mandatory at
// draft time, the rest can be filled before the marketplace transition.
type CreateInput struct {
	OwnerID       uuid.UUID
	Title         string
	LocationText  string
	EnergyType    string
	CapacityMW    *float64
	AskingPrice   *float64
	Timeline      *string
	ContractTerm  *string
	DeveloperName *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Land, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	land := &domain.Land{
		OwnerID:       in.OwnerID,
		Title:         in.Title,
		LocationText:  in.LocationText,
		EnergyType:    in.EnergyType,
		CapacityMW:    in.CapacityMW,
		AskingPrice:   in.AskingPrice,
		Timeline:      in.Timeline,
		ContractTerm:  in.ContractTerm,
		DeveloperName: in.DeveloperName,
		Status:        constants.LandDraft,
	}
	if err := s.DB.WithContext(ctx).Create(land).Error; err != nil {
		return nil, err
	}
	return land, nil
}

func (s *Service) GetByID(ctx context.Context, landID uuid.UUID) (*domain.Land, error) {
	var land domain.Land
	if err := s.DB.WithContext(ctx).Where("land_id = ?", landID).First(&land).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLandNotFound
		}
		return nil, err
	}
	return &land, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Land, error) {
	var lands []domain.Land
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order(`"createdAt" DESC`).Find(&lands).Error; err != nil {
		return nil, err
	}
	return lands, nil
}

// MarketingPatch updates the marketing-required fields; nil leaves a field
// untouched. Reviewer publishes are never blocked on these, but the
// marketplace transition is.
type MarketingPatch struct {
	Title         *string
	LocationText  *string
	EnergyType    *string
	CapacityMW    *float64
	AskingPrice   *float64
	Timeline      *string
	ContractTerm  *string
	DeveloperName *string
}

func (s *Service) UpdateMarketing(ctx context.Context, landID, actorID uuid.UUID, isAdmin bool, patch MarketingPatch) (*domain.Land, error) {
	land, err := s.GetByID(ctx, landID)
	if err != nil {
		return nil, err
	}
	if land.OwnerID != actorID && !isAdmin {
		return nil, ErrNotOwner
	}
	if land.Status == constants.LandComplete {
		return nil, ErrLandComplete
	}

	updates := map[string]interface{}{}
	if patch.Title != nil && *patch.Title != "" {
		updates["title"] = *patch.Title
	}
	if patch.LocationText != nil {
		updates["location_text"] = *patch.LocationText
	}
	if patch.EnergyType != nil {
		updates["energy_type"] = *patch.EnergyType
	}
	if patch.CapacityMW != nil {
		updates["capacity_mw"] = *patch.CapacityMW
	}
	if patch.AskingPrice != nil {
		updates["asking_price"] = *patch.AskingPrice
	}
	if patch.Timeline != nil {
		updates["timeline"] = *patch.Timeline
	}
	if patch.ContractTerm != nil {
		updates["contract_term"] = *patch.ContractTerm
	}
	if patch.DeveloperName != nil {
		updates["developer_name"] = *patch.DeveloperName
	}
	if len(updates) == 0 {
		return land, nil
	}
	if err := s.DB.WithContext(ctx).Model(land).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, landID)
}

// Submit moves a draft into the review pipeline. The status write is
// conditional on the land still being in draft so a double submit is a
// reported conflict, not a second transition.
func (s *Service) Submit(ctx context.Context, landID, actorID uuid.UUID, isAdmin bool) (*domain.Land, error) {
	land, err := s.GetByID(ctx, landID)
	if err != nil {
		return nil, err
	}
	if land.OwnerID != actorID && !isAdmin {
		return nil, ErrNotOwner
	}
	res := s.DB.WithContext(ctx).Model(&domain.Land{}).
		Where("land_id = ? AND status = ?", landID, constants.LandDraft).
		Update("status", constants.LandSubmitted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotDraft
	}
	return s.GetByID(ctx, landID)
}
