package constants

const (
	ViewData        = "view_data"
	CreateLand      = "create_land"
	SubmitLand      = "submit_land"
	UpdateMarketing = "update_marketing"
	UploadDocument  = "upload_document"
	ReviewDocuments = "review_documents"
	ManageSubtasks  = "manage_subtasks"
	ApproveReview   = "approve_review"
	PublishReview   = "publish_review"
	ViewMarketplace = "view_marketplace"
	ManageMappings  = "manage_mappings"
	AssignRole      = "assign_role"
	RemoveUser      = "remove_user"
)
