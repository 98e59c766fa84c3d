package documents

import (
	"context"
	"encoding/json"
	"time"

	"renewmart-backend/internal/application/reviews"
	"renewmart-backend/internal/application/rolemapping"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the document store: blob + metadata rows, per-slot version
// bookkeeping, the single reviewer lock, and the append-only audit trail.
// A slot is a (land, document_type[, subtask]) group; exactly one row per
// slot carries is_latest_version = true.
type Service struct {
	DB       *gorm.DB
	Mappings *rolemapping.Service
	Reviews  *reviews.Service
}

// UploadInput carries the blob and its metadata.
type UploadInput struct {
	LandID       uuid.UUID
	SubtaskID    *uuid.UUID
	UploaderID   uuid.UUID
	DocumentType string
	FileName     string
	MimeType     string
	Content      []byte
}

// Upload creates the next version row and archives the prior latest in one
// transaction. Uploading into a locked slot is a conflict, never a silent
// supersede.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*domain.Document, error) {
	var doc *domain.Document
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior domain.Document
		err := slotQuery(tx, in.LandID, in.DocumentType, in.SubtaskID).
			Where("is_latest_version = ?", true).First(&prior).Error
		version := 1
		if err == nil {
			if prior.ReviewLockedBy != nil {
				return ErrSlotLocked
			}
			version = prior.VersionNumber + 1
			if err := tx.Model(&prior).Updates(map[string]interface{}{
				"is_latest_version": false,
				"version_status":    constants.DocArchived,
			}).Error; err != nil {
				return err
			}
			oldStatus := prior.VersionStatus
			newStatus := constants.DocArchived
			if err := tx.Create(&domain.DocumentAudit{
				DocumentID: prior.DocumentID,
				ActionType: "version_superseded",
				OldStatus:  &oldStatus,
				NewStatus:  &newStatus,
				OldVersion: &prior.VersionNumber,
				NewVersion: &version,
				ActorID:    in.UploaderID,
			}).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		doc = &domain.Document{
			LandID:          in.LandID,
			SubtaskID:       in.SubtaskID,
			UploaderID:      in.UploaderID,
			DocumentType:    in.DocumentType,
			FileName:        in.FileName,
			FileSize:        int64(len(in.Content)),
			MimeType:        in.MimeType,
			Content:         in.Content,
			VersionNumber:   version,
			IsLatestVersion: true,
			VersionStatus:   constants.DocUnderReview,
		}
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		newStatus := constants.DocUnderReview
		return tx.Create(&domain.DocumentAudit{
			DocumentID: doc.DocumentID,
			ActionType: "uploaded",
			NewStatus:  &newStatus,
			NewVersion: &version,
			ActorID:    in.UploaderID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.syncReviewCounts(ctx, in.LandID)
	return doc, nil
}

// GetLatest returns the latest version in a top-level slot, or nil.
func (s *Service) GetLatest(ctx context.Context, landID uuid.UUID, documentType string) (*domain.Document, error) {
	var doc domain.Document
	err := slotQuery(s.DB.WithContext(ctx), landID, documentType, nil).
		Where("is_latest_version = ?", true).First(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetReviewable lists the latest top-level documents visible to the role on
// this land. Subtask-scoped documents belong to the checklist, not the
// review list. Admins bypass filtering only when impersonating no role.
func (s *Service) GetReviewable(ctx context.Context, landID uuid.UUID, role string, isAdmin bool) ([]domain.Document, error) {
	q := s.DB.WithContext(ctx).
		Where("land_id = ? AND subtask_id IS NULL AND is_latest_version = ?", landID, true).
		Order("document_type ASC")

	if isAdmin && role == "" {
		var docs []domain.Document
		if err := q.Find(&docs).Error; err != nil {
			return nil, err
		}
		return docs, nil
	}

	allowed, err := s.Mappings.Resolve(ctx, landID, role)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return []domain.Document{}, nil
	}
	types := make([]string, 0, len(allowed))
	for t := range allowed {
		types = append(types, t)
	}
	var docs []domain.Document
	if err := q.Where("document_type IN ?", types).Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Lock acquires the single reviewer lock with one atomic conditional write:
// acquire iff currently unlocked. Failure to acquire is an expected,
// reportable conflict.
func (s *Service) Lock(ctx context.Context, documentID, actorID uuid.UUID) (*domain.Document, error) {
	doc, err := s.byID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	res := s.DB.WithContext(ctx).Model(&domain.Document{}).
		Where("document_id = ? AND review_locked_by IS NULL", documentID).
		Updates(map[string]interface{}{
			"review_locked_by": actorID,
			"review_locked_at": now,
			"version_status":   constants.DocLocked,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyLocked
	}
	oldStatus := doc.VersionStatus
	newStatus := constants.DocLocked
	s.audit(ctx, domain.DocumentAudit{
		DocumentID: documentID,
		ActionType: "locked",
		OldStatus:  &oldStatus,
		NewStatus:  &newStatus,
		ActorID:    actorID,
	})
	return s.byID(ctx, documentID)
}

// Unlock releases the lock. Only the holder (or an admin) may clear it.
func (s *Service) Unlock(ctx context.Context, documentID, actorID uuid.UUID, isAdmin bool) (*domain.Document, error) {
	doc, err := s.byID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ReviewLockedBy == nil {
		return doc, nil
	}
	if *doc.ReviewLockedBy != actorID && !isAdmin {
		return nil, ErrNotLockHolder
	}
	res := s.DB.WithContext(ctx).Model(&domain.Document{}).
		Where("document_id = ? AND review_locked_by = ?", documentID, *doc.ReviewLockedBy).
		Updates(map[string]interface{}{
			"review_locked_by": nil,
			"review_locked_at": nil,
			"version_status":   constants.DocUnderReview,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	oldStatus := constants.DocLocked
	newStatus := constants.DocUnderReview
	s.audit(ctx, domain.DocumentAudit{
		DocumentID: documentID,
		ActionType: "unlocked",
		OldStatus:  &oldStatus,
		NewStatus:  &newStatus,
		ActorID:    actorID,
	})
	return s.byID(ctx, documentID)
}

// SetVersionStatus records a reviewer's approve/reject on a document version.
// The role must be authorized for the document's type; authorization errors
// fail closed.
func (s *Service) SetVersionStatus(ctx context.Context, documentID, actorID uuid.UUID, role string, isAdmin bool, status, reason string) (*domain.Document, error) {
	if status != constants.DocApproved && status != constants.DocRejected {
		return nil, ErrInvalidVersionStat
	}
	doc, err := s.byID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	// Admins bypass type authorization only when impersonating no role.
	if !(isAdmin && role == "") {
		allowed, err := s.Mappings.Resolve(ctx, doc.LandID, role)
		if err != nil {
			return nil, ErrRoleNotAuthorized
		}
		if !allowed[doc.DocumentType] {
			return nil, ErrRoleNotAuthorized
		}
	}
	if doc.ReviewLockedBy != nil && *doc.ReviewLockedBy != actorID {
		return nil, ErrAlreadyLocked
	}

	oldStatus := doc.VersionStatus
	if err := s.DB.WithContext(ctx).Model(doc).Update("version_status", status).Error; err != nil {
		return nil, err
	}
	s.audit(ctx, domain.DocumentAudit{
		DocumentID: documentID,
		ActionType: "status_changed",
		OldStatus:  &oldStatus,
		NewStatus:  &status,
		ActorID:    actorID,
		Reason:     reason,
	})
	s.syncReviewCounts(ctx, doc.LandID)
	return s.byID(ctx, documentID)
}

// Delete removes a document after writing a snapshot audit row in the same
// transaction. The trail row carries a JSON copy rather than a foreign key,
// so the capture survives the delete.
func (s *Service) Delete(ctx context.Context, documentID, actorID uuid.UUID, reason string) error {
	doc, err := s.byID(ctx, documentID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot, _ := json.Marshal(doc)
		oldStatus := doc.VersionStatus
		if err := tx.Create(&domain.DocumentAudit{
			DocumentID: doc.DocumentID,
			ActionType: "deleted",
			OldStatus:  &oldStatus,
			OldVersion: &doc.VersionNumber,
			ActorID:    actorID,
			Reason:     reason,
			Snapshot:   datatypes.JSON(snapshot),
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Document{}, "document_id = ?", documentID).Error
	})
	if err != nil {
		return err
	}
	s.syncReviewCounts(ctx, doc.LandID)
	return nil
}

// AuditTrail returns the document's trail rows, oldest first.
func (s *Service) AuditTrail(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentAudit, error) {
	var rows []domain.DocumentAudit
	if err := s.DB.WithContext(ctx).Where("document_id = ?", documentID).
		Order(`"createdAt" ASC`).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) byID(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	if err := s.DB.WithContext(ctx).Where("document_id = ?", documentID).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// audit appends a trail row; trail write failures are logged, not surfaced,
// because the primary mutation already committed.
func (s *Service) audit(ctx context.Context, row domain.DocumentAudit) {
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		log.Warn().Err(err).Str("document_id", row.DocumentID.String()).Str("action", row.ActionType).
			Msg("documents: audit write failed")
	}
}

// syncReviewCounts recounts per-role approved/total from the documents table
// and writes the aggregates through to each reviewer role's review status.
func (s *Service) syncReviewCounts(ctx context.Context, landID uuid.UUID) {
	if s.Reviews == nil || s.Mappings == nil {
		return
	}
	var docs []domain.Document
	if err := s.DB.WithContext(ctx).
		Select("document_id", "document_type", "version_status").
		Where("land_id = ? AND subtask_id IS NULL AND is_latest_version = ?", landID, true).
		Find(&docs).Error; err != nil {
		log.Warn().Err(err).Str("land_id", landID.String()).Msg("documents: review count sync failed")
		return
	}
	for _, role := range constants.ReviewerRoles {
		allowed, err := s.Mappings.Resolve(ctx, landID, role)
		if err != nil {
			continue
		}
		total, approved := 0, 0
		for _, d := range docs {
			if !allowed[d.DocumentType] {
				continue
			}
			total++
			if d.VersionStatus == constants.DocApproved {
				approved++
			}
		}
		if _, err := s.Reviews.SyncDocumentProgress(ctx, landID, role, approved, total); err != nil {
			log.Warn().Err(err).Str("land_id", landID.String()).Str("role", role).
				Msg("documents: review count write-through failed")
		}
	}
}

func slotQuery(db *gorm.DB, landID uuid.UUID, documentType string, subtaskID *uuid.UUID) *gorm.DB {
	q := db.Model(&domain.Document{}).Where("land_id = ? AND document_type = ?", landID, documentType)
	if subtaskID != nil {
		return q.Where("subtask_id = ?", *subtaskID)
	}
	return q.Where("subtask_id IS NULL")
}
