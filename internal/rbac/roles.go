package rbac

// Role names. Keep these stable; tokens in the wild carry them.
const (
	RoleAdmin   = "admin"
	RoleSupport = "support"
)
