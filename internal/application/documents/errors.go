package documents

import "errors"

var (
	ErrDocumentNotFound   = errors.New("Document not found")
	ErrSlotLocked         = errors.New("Document slot is locked for review; release the lock before uploading a new version")
	ErrAlreadyLocked      = errors.New("Document is already locked by another reviewer")
	ErrNotLockHolder      = errors.New("Only the lock holder may release this lock")
	ErrRoleNotAuthorized  = errors.New("Role is not authorized for this document type")
	ErrInvalidVersionStat = errors.New("Invalid version status")
)
