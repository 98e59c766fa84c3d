package documents

import (
	docsvc "renewmart-backend/internal/application/documents"
	"renewmart-backend/internal/middleware"
	"renewmart-backend/internal/pkg/constants"
	"renewmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *docsvc.Service
}

type UploadRequest struct {
	LandID       string `json:"land_id"`
	SubtaskID    string `json:"subtask_id"`
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	Content      string `json:"content"`
}

// Upload POST /api/v1/documents/upload — new version for a (land, type[, subtask]) slot.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "land_id, document_type and file_name are required", 400, nil)
	}
	if req.LandID == "" || req.DocumentType == "" || req.FileName == "" {
		return response.Error(c, "land_id, document_type and file_name are required", 400, nil)
	}
	landID, err := uuid.Parse(req.LandID)
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	var subtaskID *uuid.UUID
	if req.SubtaskID != "" {
		id, err := uuid.Parse(req.SubtaskID)
		if err != nil {
			return response.Error(c, "Invalid subtask ID format (must be a valid UUID)", 400, nil)
		}
		subtaskID = &id
	}

	doc, err := h.Service.Upload(c.Context(), docsvc.UploadInput{
		LandID:       landID,
		SubtaskID:    subtaskID,
		UploaderID:   actorID,
		DocumentType: req.DocumentType,
		FileName:     req.FileName,
		MimeType:     req.MimeType,
		Content:      []byte(req.Content),
	})
	if err != nil {
		return mapDocError(c, err)
	}
	return response.SuccessCreated(c, "Document uploaded successfully", fiber.Map{"document": doc}, nil)
}

// Reviewable GET /api/v1/documents/reviewable/:land_id — latest land-level
// versions this role's mapping allows.
func (h *Handlers) Reviewable(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	role, admin := effectiveRole(c)
	docs, err := h.Service.GetReviewable(c.Context(), landID, role, admin)
	if err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Reviewable documents retrieved", fiber.Map{"documents": docs}, fiber.Map{"count": len(docs)})
}

// Latest GET /api/v1/documents/latest/:land_id/:document_type
func (h *Handlers) Latest(c *fiber.Ctx) error {
	landID, err := uuid.Parse(c.Params("land_id"))
	if err != nil {
		return response.Error(c, "Invalid land ID format (must be a valid UUID)", 400, nil)
	}
	doc, err := h.Service.GetLatest(c.Context(), landID, c.Params("document_type"))
	if err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Document found", fiber.Map{"document": doc}, nil)
}

// Lock POST /api/v1/documents/:document_id/lock — exclusive review claim.
func (h *Handlers) Lock(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	docID, err := uuid.Parse(c.Params("document_id"))
	if err != nil {
		return response.Error(c, "Invalid document ID format (must be a valid UUID)", 400, nil)
	}
	doc, err := h.Service.Lock(c.Context(), docID, actorID)
	if err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Document locked for review", fiber.Map{"document": doc}, nil)
}

// Unlock DELETE /api/v1/documents/:document_id/lock — holder or admin.
func (h *Handlers) Unlock(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	docID, err := uuid.Parse(c.Params("document_id"))
	if err != nil {
		return response.Error(c, "Invalid document ID format (must be a valid UUID)", 400, nil)
	}
	doc, err := h.Service.Unlock(c.Context(), docID, actorID, isAdmin(c))
	if err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Document lock released", fiber.Map{"document": doc}, nil)
}

type VersionStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// SetVersionStatus PATCH /api/v1/documents/:document_id/status — approve or
// reject the version; requires the role's mapping and the review lock.
func (h *Handlers) SetVersionStatus(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	docID, err := uuid.Parse(c.Params("document_id"))
	if err != nil {
		return response.Error(c, "Invalid document ID format (must be a valid UUID)", 400, nil)
	}
	var req VersionStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return response.Error(c, "status is required", 400, nil)
	}

	role, admin := effectiveRole(c)
	doc, err := h.Service.SetVersionStatus(c.Context(), docID, actorID, role, admin, req.Status, req.Reason)
	if err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Document status updated", fiber.Map{"document": doc}, nil)
}

type DeleteRequest struct {
	Reason string `json:"reason"`
}

// Delete DELETE /api/v1/documents/:document_id — removes the row after
// snapshotting it into the audit trail.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actorID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	docID, err := uuid.Parse(c.Params("document_id"))
	if err != nil {
		return response.Error(c, "Invalid document ID format (must be a valid UUID)", 400, nil)
	}
	var req DeleteRequest
	_ = c.BodyParser(&req)

	if err := h.Service.Delete(c.Context(), docID, actorID, req.Reason); err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Document deleted", nil, nil)
}

// AuditTrail GET /api/v1/documents/:document_id/audit — full history, the
// deletion snapshot included.
func (h *Handlers) AuditTrail(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("document_id"))
	if err != nil {
		return response.Error(c, "Invalid document ID format (must be a valid UUID)", 400, nil)
	}
	entries, err := h.Service.AuditTrail(c.Context(), docID)
	if err != nil {
		return mapDocError(c, err)
	}
	return response.Success(c, "Audit trail retrieved", fiber.Map{"audit": entries}, fiber.Map{"count": len(entries)})
}

func mapDocError(c *fiber.Ctx, err error) error {
	switch err {
	case docsvc.ErrDocumentNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case docsvc.ErrSlotLocked, docsvc.ErrAlreadyLocked:
		return response.Error(c, err.Error(), 409, nil)
	case docsvc.ErrNotLockHolder, docsvc.ErrRoleNotAuthorized:
		return response.Error(c, err.Error(), 403, nil)
	case docsvc.ErrInvalidVersionStat:
		return response.Error(c, err.Error(), 400, nil)
	default:
		return response.Error(c, err.Error(), 500, nil)
	}
}

// effectiveRole returns the role used for mapping checks. Admins act without
// a role unless they impersonate one via ?as_role=.
func effectiveRole(c *fiber.Ctx) (string, bool) {
	role := middleware.GetUserRole(c)
	if role != constants.Admin {
		return role, false
	}
	return c.Query("as_role"), true
}

func sessionUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(c *fiber.Ctx) bool {
	return middleware.GetUserRole(c) == constants.Admin
}
