package reviews

import (
	"context"
	"time"

	"renewmart-backend/internal/application/notifications"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service tracks per (land, role) review status and owns the marketplace
// publication trigger. Rows are created lazily on first write and upserted
// on the (land_id, role) unique key; aggregate counters are always written
// from recomputed source values, never incremented in place.
type Service struct {
	DB     *gorm.DB
	Events *notifications.Dispatcher
}

// ApproveInput is the explicit reviewer decision. Approval is never implied
// by checklist completion.
type ApproveInput struct {
	Decision string  `json:"decision"`
	Rating   *int    `json:"rating"`
	Comments *string `json:"comments"`
}

// PublishResult reports the two-level outcome of a publish call. A deferred
// marketplace transition (missing marketing fields, trigger failure) is not
// an error: the role-level publish already succeeded.
type PublishResult struct {
	ReviewPublished      bool       `json:"reviewPublished"`
	MarketplacePublished bool       `json:"marketplacePublished"`
	PublishedAt          *time.Time `json:"published_at"`
	MissingFields        []string   `json:"missing_fields,omitempty"`
	Warning              string     `json:"warning,omitempty"`
}

// landExists guards the lazy row creation: no review row may ever exist for
// a land id that is not in the Lands table.
func (s *Service) landExists(ctx context.Context, landID uuid.UUID) error {
	var land domain.Land
	err := s.DB.WithContext(ctx).Select("land_id").Where("land_id = ?", landID).First(&land).Error
	if err == gorm.ErrRecordNotFound {
		return ErrLandNotFound
	}
	return err
}

// loadOrCreate fetches the (land, role) row, creating the default row on
// first touch. A concurrent create losing on the unique index falls back to
// a re-read.
func (s *Service) loadOrCreate(ctx context.Context, landID uuid.UUID, role string) (*domain.ReviewStatus, error) {
	var review domain.ReviewStatus
	err := s.DB.WithContext(ctx).Where("land_id = ? AND role = ?", landID, role).First(&review).Error
	if err == nil {
		return &review, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	review = domain.ReviewStatus{LandID: landID, Role: role, Status: constants.ReviewPending}
	if createErr := s.DB.WithContext(ctx).Create(&review).Error; createErr != nil {
		if err := s.DB.WithContext(ctx).Where("land_id = ? AND role = ?", landID, role).First(&review).Error; err != nil {
			return nil, createErr
		}
	}
	return &review, nil
}

// SyncSubtaskProgress writes through recomputed checklist counts. The status
// field is derived from the completion percentage unless an explicit
// approve/reject decision has already been recorded.
func (s *Service) SyncSubtaskProgress(ctx context.Context, landID uuid.UUID, role string, completed, total int) (*domain.ReviewStatus, error) {
	review, err := s.loadOrCreate(ctx, landID, role)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"subtasks_completed": completed,
		"total_subtasks":     total,
	}
	if review.Status != constants.ReviewApproved && review.Status != constants.ReviewRejected {
		updates["status"] = derivedStatus(completed, total)
	}
	if err := s.DB.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// SyncDocumentProgress writes through recomputed document approval counts.
func (s *Service) SyncDocumentProgress(ctx context.Context, landID uuid.UUID, role string, approved, total int) (*domain.ReviewStatus, error) {
	review, err := s.loadOrCreate(ctx, landID, role)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"documents_approved": approved,
		"total_documents":    total,
	}
	if err := s.DB.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Approve records the reviewer's explicit decision with rating and comments.
func (s *Service) Approve(ctx context.Context, landID uuid.UUID, role string, in ApproveInput) (*domain.ReviewStatus, error) {
	if !constants.IsReviewerRole(role) {
		return nil, ErrNotReviewerRole
	}
	if in.Decision != constants.ReviewApproved && in.Decision != constants.ReviewRejected {
		return nil, ErrInvalidDecision
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, ErrInvalidRating
	}
	if err := s.landExists(ctx, landID); err != nil {
		return nil, err
	}
	review, err := s.loadOrCreate(ctx, landID, role)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":      in.Decision,
		"approved_at": now,
	}
	if in.Rating != nil {
		updates["rating"] = *in.Rating
	}
	if in.Comments != nil {
		updates["comments"] = *in.Comments
	}
	if err := s.DB.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Publish flips the role's published flag exactly once, then runs the
// marketplace publication trigger. The flag write is durable before the
// trigger runs; a trigger failure surfaces as a warning on the result and
// never invalidates the role-level publish.
func (s *Service) Publish(ctx context.Context, landID uuid.UUID, role string) (*PublishResult, error) {
	if !constants.IsReviewerRole(role) {
		return nil, ErrNotReviewerRole
	}
	if err := s.landExists(ctx, landID); err != nil {
		return nil, err
	}
	review, err := s.loadOrCreate(ctx, landID, role)
	if err != nil {
		return nil, err
	}

	firstPublish := !review.Published
	if firstPublish {
		now := time.Now()
		// Conditional write keeps published_at stable under two racing
		// sessions acting as the same role.
		res := s.DB.WithContext(ctx).Model(&domain.ReviewStatus{}).
			Where("review_id = ? AND published = ?", review.ReviewID, false).
			Updates(map[string]interface{}{"published": true, "published_at": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			firstPublish = false
		}
		if err := s.DB.WithContext(ctx).Where("review_id = ?", review.ReviewID).First(review).Error; err != nil {
			return nil, err
		}
	}

	result := &PublishResult{ReviewPublished: true, PublishedAt: review.PublishedAt}

	if firstPublish {
		s.Events.Emit(ctx, landID, role, domain.EventReviewPublished, map[string]interface{}{
			"review_id": review.ReviewID.String(),
		})
	}

	s.runPublicationTrigger(ctx, landID, role, result)
	return result, nil
}

// runPublicationTrigger applies the idempotent, eligibility-gated marketplace
// transition. All failures are absorbed into result.Warning.
func (s *Service) runPublicationTrigger(ctx context.Context, landID uuid.UUID, role string, result *PublishResult) {
	var land domain.Land
	if err := s.DB.WithContext(ctx).Where("land_id = ?", landID).First(&land).Error; err != nil {
		result.Warning = "marketplace check failed: " + err.Error()
		log.Warn().Err(err).Str("land_id", landID.String()).Str("role", role).
			Msg("publication trigger: land lookup failed")
		return
	}

	// Already published (or a later state): nothing to do, report success.
	if constants.IsMarketplaceVisible(land.Status) {
		result.MarketplacePublished = true
		return
	}

	if missing := land.MissingMarketingFields(); len(missing) > 0 {
		result.MissingFields = missing
		log.Info().Str("land_id", landID.String()).Str("role", role).Strs("missing", missing).
			Msg("publication trigger: marketing fields incomplete, marketplace transition deferred")
		return
	}

	// Optimistic check-then-set: flip to published only from an allowed
	// predecessor status, so two simultaneous first-publishers cannot
	// double-transition or overwrite published_at.
	now := time.Now()
	res := s.DB.WithContext(ctx).Model(&domain.Land{}).
		Where("land_id = ? AND status IN ?", landID, constants.PublishablePredecessors).
		Updates(map[string]interface{}{"status": constants.LandPublished, "published_at": now})
	if res.Error != nil {
		result.Warning = "marketplace transition failed: " + res.Error.Error()
		log.Warn().Err(res.Error).Str("land_id", landID.String()).Str("role", role).
			Msg("publication trigger: status update failed")
		return
	}
	if res.RowsAffected == 0 {
		// Lost a race or the land sits in a non-publishable state; re-read
		// to report what actually happened.
		if err := s.DB.WithContext(ctx).Where("land_id = ?", landID).First(&land).Error; err == nil &&
			constants.IsMarketplaceVisible(land.Status) {
			result.MarketplacePublished = true
		}
		return
	}

	result.MarketplacePublished = true
	s.Events.Emit(ctx, landID, role, domain.EventMarketplacePublished, map[string]interface{}{
		"published_at": now,
	})
}

// GetAll returns one entry per reviewer role, defaulting untouched roles to
// a pending, unpublished zero-count record so consumers never branch on
// absence.
func (s *Service) GetAll(ctx context.Context, landID uuid.UUID) (map[string]domain.ReviewStatus, error) {
	var rows []domain.ReviewStatus
	if err := s.DB.WithContext(ctx).Where("land_id = ?", landID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]domain.ReviewStatus, len(constants.ReviewerRoles))
	for _, role := range constants.ReviewerRoles {
		out[role] = domain.ReviewStatus{LandID: landID, Role: role, Status: constants.ReviewPending}
	}
	for _, row := range rows {
		if _, ok := out[row.Role]; ok {
			out[row.Role] = row
		}
	}
	return out, nil
}

func derivedStatus(completed, total int) string {
	if total == 0 {
		return constants.ReviewPending
	}
	pct := int(float64(completed)/float64(total)*100 + 0.5)
	switch {
	case pct >= 100:
		return constants.ReviewCompleted
	case pct > 0:
		return constants.ReviewInProgress
	default:
		return constants.ReviewPending
	}
}
