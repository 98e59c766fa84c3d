package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:        {Landowner, Investor, SalesAdvisor, Analyst, GovernanceLead, Admin},
	CreateLand:      {Landowner, Admin},
	SubmitLand:      {Landowner, Admin},
	UpdateMarketing: {Landowner, Admin},
	UploadDocument:  {Landowner, SalesAdvisor, Analyst, GovernanceLead, Admin},
	ReviewDocuments: {SalesAdvisor, Analyst, GovernanceLead, Admin},
	ManageSubtasks:  {SalesAdvisor, Analyst, GovernanceLead, Admin},
	ApproveReview:   {SalesAdvisor, Analyst, GovernanceLead, Admin},
	PublishReview:   {SalesAdvisor, Analyst, GovernanceLead, Admin},
	ViewMarketplace: {Landowner, Investor, SalesAdvisor, Analyst, GovernanceLead, Admin},
	ManageMappings:  {Admin},
	AssignRole:      {Admin},
	RemoveUser:      {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
