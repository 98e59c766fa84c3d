package documents

import (
	"context"
	"testing"

	"renewmart-backend/internal/application/notifications"
	reviewsvc "renewmart-backend/internal/application/reviews"
	"renewmart-backend/internal/application/rolemapping"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDocumentsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Land{}, &domain.Document{}, &domain.DocumentAudit{},
		&domain.RoleDocumentMapping{}, &domain.ReviewStatus{}, &domain.ReviewEvent{},
	))
	mappings := &rolemapping.Service{DB: db}
	reviews := &reviewsvc.Service{DB: db, Events: &notifications.Dispatcher{DB: db}}
	return &Service{DB: db, Mappings: mappings, Reviews: reviews}, db
}

func createDocLand(t *testing.T, db *gorm.DB) *domain.Land {
	land := &domain.Land{OwnerID: uuid.New(), Title: "Hydro Site Gamma", Status: constants.LandUnderReview}
	require.NoError(t, db.Create(land).Error)
	return land
}

func upload(t *testing.T, svc *Service, landID uuid.UUID, docType, fileName string) *domain.Document {
	doc, err := svc.Upload(context.Background(), UploadInput{
		LandID:       landID,
		UploaderID:   uuid.New(),
		DocumentType: docType,
		FileName:     fileName,
		MimeType:     "application/pdf",
		Content:      []byte("%PDF-1.7 test"),
	})
	require.NoError(t, err)
	return doc
}

func TestUpload_VersionChain(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)

	upload(t, svc, land.LandID, "land_deed", "deed_v1.pdf")
	upload(t, svc, land.LandID, "land_deed", "deed_v2.pdf")
	third := upload(t, svc, land.LandID, "land_deed", "deed_v3.pdf")

	assert.Equal(t, 3, third.VersionNumber)
	assert.True(t, third.IsLatestVersion)
	assert.Equal(t, constants.DocUnderReview, third.VersionStatus)

	// Exactly one latest row per slot; priors archived.
	var latest []domain.Document
	require.NoError(t, db.Where("land_id = ? AND document_type = ? AND is_latest_version = ?",
		land.LandID, "land_deed", true).Find(&latest).Error)
	require.Len(t, latest, 1)
	assert.Equal(t, third.DocumentID, latest[0].DocumentID)

	var archived int64
	require.NoError(t, db.Model(&domain.Document{}).
		Where("land_id = ? AND version_status = ?", land.LandID, constants.DocArchived).
		Count(&archived).Error)
	assert.Equal(t, int64(2), archived)

	got, err := svc.GetLatest(context.Background(), land.LandID, "land_deed")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "deed_v3.pdf", got.FileName)
}

func TestUpload_LockedSlotConflict(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)
	reviewer := uuid.New()

	doc := upload(t, svc, land.LandID, "land_deed", "deed.pdf")
	_, err := svc.Lock(context.Background(), doc.DocumentID, reviewer)
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), UploadInput{
		LandID:       land.LandID,
		UploaderID:   uuid.New(),
		DocumentType: "land_deed",
		FileName:     "deed_new.pdf",
		Content:      []byte("new"),
	})
	assert.ErrorIs(t, err, ErrSlotLocked)

	// A different slot on the same land is unaffected.
	upload(t, svc, land.LandID, "site_survey", "survey.pdf")
}

func TestLock_SecondReviewerConflicts(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)
	first := uuid.New()
	second := uuid.New()

	doc := upload(t, svc, land.LandID, "site_survey", "survey.pdf")

	locked, err := svc.Lock(context.Background(), doc.DocumentID, first)
	require.NoError(t, err)
	require.NotNil(t, locked.ReviewLockedBy)
	assert.Equal(t, first, *locked.ReviewLockedBy)
	assert.Equal(t, constants.DocLocked, locked.VersionStatus)

	_, err = svc.Lock(context.Background(), doc.DocumentID, second)
	assert.ErrorIs(t, err, ErrAlreadyLocked)
}

func TestUnlock_OnlyHolderOrAdmin(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)
	holder := uuid.New()
	other := uuid.New()

	doc := upload(t, svc, land.LandID, "site_survey", "survey.pdf")
	_, err := svc.Lock(context.Background(), doc.DocumentID, holder)
	require.NoError(t, err)

	_, err = svc.Unlock(context.Background(), doc.DocumentID, other, false)
	assert.ErrorIs(t, err, ErrNotLockHolder)

	unlocked, err := svc.Unlock(context.Background(), doc.DocumentID, other, true)
	require.NoError(t, err)
	assert.Nil(t, unlocked.ReviewLockedBy)
	assert.Equal(t, constants.DocUnderReview, unlocked.VersionStatus)
}

func TestSetVersionStatus_RoleAuthorization(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)
	reviewer := uuid.New()

	doc := upload(t, svc, land.LandID, "land_deed", "deed.pdf")

	// land_deed is not mapped to the analyst by default.
	_, err := svc.SetVersionStatus(context.Background(), doc.DocumentID, reviewer,
		constants.Analyst, false, constants.DocApproved, "")
	assert.ErrorIs(t, err, ErrRoleNotAuthorized)

	approved, err := svc.SetVersionStatus(context.Background(), doc.DocumentID, reviewer,
		constants.SalesAdvisor, false, constants.DocApproved, "ownership chain verified")
	require.NoError(t, err)
	assert.Equal(t, constants.DocApproved, approved.VersionStatus)

	// The approval is written through to the mapped roles' review counts.
	var review domain.ReviewStatus
	require.NoError(t, db.Where("land_id = ? AND role = ?", land.LandID, constants.SalesAdvisor).First(&review).Error)
	assert.Equal(t, 1, review.DocumentsApproved)
	assert.Equal(t, 1, review.TotalDocuments)
}

func TestSetVersionStatus_AdminWithoutRoleBypasses(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)

	doc := upload(t, svc, land.LandID, "environmental_permit", "permit.pdf")

	rejected, err := svc.SetVersionStatus(context.Background(), doc.DocumentID, uuid.New(),
		"", true, constants.DocRejected, "permit expired")
	require.NoError(t, err)
	assert.Equal(t, constants.DocRejected, rejected.VersionStatus)
}

func TestSetVersionStatus_RespectsLockHolder(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)
	holder := uuid.New()

	doc := upload(t, svc, land.LandID, "land_deed", "deed.pdf")
	_, err := svc.Lock(context.Background(), doc.DocumentID, holder)
	require.NoError(t, err)

	_, err = svc.SetVersionStatus(context.Background(), doc.DocumentID, uuid.New(),
		constants.SalesAdvisor, false, constants.DocApproved, "")
	assert.ErrorIs(t, err, ErrAlreadyLocked)

	_, err = svc.SetVersionStatus(context.Background(), doc.DocumentID, holder,
		constants.SalesAdvisor, false, constants.DocApproved, "")
	assert.NoError(t, err)
}

func TestDelete_AuditSnapshotSurvives(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)
	actor := uuid.New()

	doc := upload(t, svc, land.LandID, "zoning_certificate", "zoning.pdf")
	require.NoError(t, svc.Delete(context.Background(), doc.DocumentID, actor, "superseded by municipal update"))

	_, err := svc.GetLatest(context.Background(), land.LandID, "zoning_certificate")
	require.NoError(t, err)

	var gone int64
	require.NoError(t, db.Model(&domain.Document{}).Where("document_id = ?", doc.DocumentID).Count(&gone).Error)
	assert.Equal(t, int64(0), gone)

	trail, err := svc.AuditTrail(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	require.NotEmpty(t, trail)
	last := trail[len(trail)-1]
	assert.Equal(t, "deleted", last.ActionType)
	assert.Equal(t, "superseded by municipal update", last.Reason)
	assert.NotEmpty(t, last.Snapshot)
	assert.Contains(t, string(last.Snapshot), "zoning.pdf")
}

func TestGetReviewable_ExcludesSubtaskDocuments(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)

	topLevel := upload(t, svc, land.LandID, "site_survey", "survey.pdf")

	subtaskID := uuid.New()
	attached, err := svc.Upload(context.Background(), UploadInput{
		LandID:       land.LandID,
		SubtaskID:    &subtaskID,
		UploaderID:   uuid.New(),
		DocumentType: "site_survey",
		FileName:     "survey_checklist.pdf",
		MimeType:     "application/pdf",
		Content:      []byte("%PDF-1.7 test"),
	})
	require.NoError(t, err)

	// Checklist attachments never surface in the review list, not even for
	// the admin view.
	docs, err := svc.GetReviewable(context.Background(), land.LandID, constants.Analyst, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, topLevel.DocumentID, docs[0].DocumentID)

	adminDocs, err := svc.GetReviewable(context.Background(), land.LandID, "", true)
	require.NoError(t, err)
	require.Len(t, adminDocs, 1)
	assert.Equal(t, topLevel.DocumentID, adminDocs[0].DocumentID)

	// The top-level slot keeps its own version chain; the subtask copy
	// lives in a separate one.
	latest, err := svc.GetLatest(context.Background(), land.LandID, "site_survey")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, topLevel.DocumentID, latest.DocumentID)
	assert.Equal(t, 1, attached.VersionNumber)
}

func TestGetReviewable_FiltersByMapping(t *testing.T) {
	svc, db := setupDocumentsTest(t)
	land := createDocLand(t, db)

	upload(t, svc, land.LandID, "land_deed", "deed.pdf")
	upload(t, svc, land.LandID, "site_survey", "survey.pdf")

	analystDocs, err := svc.GetReviewable(context.Background(), land.LandID, constants.Analyst, false)
	require.NoError(t, err)
	require.Len(t, analystDocs, 1)
	assert.Equal(t, "site_survey", analystDocs[0].DocumentType)

	adminDocs, err := svc.GetReviewable(context.Background(), land.LandID, "", true)
	require.NoError(t, err)
	assert.Len(t, adminDocs, 2)

	// An empty override hides everything from every role.
	_, err = svc.Mappings.SetOverride(context.Background(), land.LandID, map[string][]string{})
	require.NoError(t, err)
	hidden, err := svc.GetReviewable(context.Background(), land.LandID, constants.Analyst, false)
	require.NoError(t, err)
	assert.Empty(t, hidden)
}
