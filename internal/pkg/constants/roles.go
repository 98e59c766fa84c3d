package constants

const (
	Landowner      = "landowner"
	Investor       = "investor"
	SalesAdvisor   = "sales_advisor"
	Analyst        = "analyst"
	GovernanceLead = "governance_lead"
	Admin          = "admin"
)

// ValidRoles is the set of allowed DB enum values for user role (must match enum_Users_role).
var ValidRoles = []string{Landowner, Investor, SalesAdvisor, Analyst, GovernanceLead, Admin}

// ReviewerRoles are the three roles that each own a review slice per land project.
var ReviewerRoles = []string{SalesAdvisor, Analyst, GovernanceLead}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsReviewerRole returns true for the three review-owning roles.
func IsReviewerRole(role string) bool {
	for _, r := range ReviewerRoles {
		if r == role {
			return true
		}
	}
	return false
}
