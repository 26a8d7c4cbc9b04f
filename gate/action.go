package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Domain actions used by the incorporation workflow.
	ActionUpload     Action = "upload"
	ActionLink       Action = "link"
	ActionTransition Action = "transition"
	ActionVerify     Action = "verify"
	ActionExport     Action = "export"
)
