package constants

// Land project lifecycle statuses.
const (
	LandDraft          = "draft"
	LandSubmitted      = "submitted"
	LandUnderReview    = "under_review"
	LandApproved       = "approved"
	LandRejected       = "rejected"
	LandInvestorReady  = "investor_ready"
	LandPublished      = "published"
	LandInterestLocked = "interest_locked"
	LandRTB            = "rtb"
	LandComplete       = "complete"
)

// PublishablePredecessors are the land statuses from which the marketplace
// transition to "published" is allowed. A land already in interest_locked,
// rtb or complete must never be moved back to published.
var PublishablePredecessors = []string{
	LandDraft, LandSubmitted, LandUnderReview, LandApproved, LandInvestorReady,
}

// MarketplaceVisibleStatuses are the statuses investors may see.
var MarketplaceVisibleStatuses = []string{
	LandPublished, LandInterestLocked, LandRTB, LandComplete,
}

// IsMarketplaceVisible reports whether a land in the given status is live on
// the marketplace (published or any later state).
func IsMarketplaceVisible(status string) bool {
	for _, s := range MarketplaceVisibleStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task and subtask statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"

	SubtaskPending    = "pending"
	SubtaskInProgress = "in_progress"
	SubtaskCompleted  = "completed"
	SubtaskCancelled  = "cancelled"
)

// ValidSubtaskStatuses for update validation.
var ValidSubtaskStatuses = []string{SubtaskPending, SubtaskInProgress, SubtaskCompleted, SubtaskCancelled}

// IsValidSubtaskStatus returns true if status is an allowed subtask status.
func IsValidSubtaskStatus(status string) bool {
	for _, s := range ValidSubtaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Review status values. pending/in_progress/completed are derived from
// checklist progress; approved/rejected are explicit reviewer decisions.
const (
	ReviewPending    = "pending"
	ReviewInProgress = "in_progress"
	ReviewCompleted  = "completed"
	ReviewApproved   = "approved"
	ReviewRejected   = "rejected"
)

// Document version statuses.
const (
	DocUnderReview = "under_review"
	DocArchived    = "archived"
	DocLocked      = "locked"
	DocApproved    = "approved"
	DocRejected    = "rejected"
)
