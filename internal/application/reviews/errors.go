package reviews

import "errors"

var (
	ErrNotReviewerRole = errors.New("Not a reviewer role")
	ErrLandNotFound    = errors.New("Land project not found")
	ErrInvalidDecision = errors.New("Decision must be approved or rejected")
	ErrInvalidRating   = errors.New("Rating must be between 1 and 5")
)
