package constants

// User roles
const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleStaff     = "staff"

	// Special role matching any authenticated user
	RoleAny = "any"
)

// Role groups for convenience
var (
	// StaffRoles are the back-office roles that see all booking requests
	// and receive submission notifications.
	StaffRoles = []string{
		RoleAdmin,
		RoleSecretary,
	}
)
