package constant

// Casbin objects and actions used by usecases that check permissions
// directly instead of relying on the route-based middleware.
const (
	PermIdentityUsers = "identity:users"

	PermActRead  = "read"
	PermActWrite = "write"
)
