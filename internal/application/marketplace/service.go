package marketplace

import (
	"context"
	"errors"

	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"gorm.io/gorm"
)

var ErrNotListed = errors.New("Land project is not listed on the marketplace")

// Service is the investor-facing read side: only lands that have passed the
// publication trigger (published or later) are visible here.
type Service struct {
	DB *gorm.DB
}

// ListPublished returns marketplace-visible lands, newest publish first.
func (s *Service) ListPublished(ctx context.Context, energyType string) ([]domain.Land, error) {
	q := s.DB.WithContext(ctx).Where("status IN ?", constants.MarketplaceVisibleStatuses)
	if energyType != "" {
		q = q.Where("energy_type = ?", energyType)
	}
	var lands []domain.Land
	if err := q.Order("published_at DESC").Find(&lands).Error; err != nil {
		return nil, err
	}
	return lands, nil
}

// GetListed returns a single marketplace-visible land.
func (s *Service) GetListed(ctx context.Context, landID string) (*domain.Land, error) {
	var land domain.Land
	err := s.DB.WithContext(ctx).Where("land_id = ?", landID).First(&land).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotListed
		}
		return nil, err
	}
	if !constants.IsMarketplaceVisible(land.Status) {
		return nil, ErrNotListed
	}
	return &land, nil
}
