package domain

// EnforceRequest carries everything the RBAC layer needs for one
// authorization decision.
type EnforceRequest struct {
	UserID   string
	Role     string
	Resource string
	Action   string
}
