package types

// AuthUser is the authenticated identity injected by the bearer-token
// middleware and consumed by controllers and services.
type AuthUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (a AuthUser) IsAdmin() bool {
	return a.Role == "admin"
}

// IsStaff reports whether the caller holds a back-office role.
func (a AuthUser) IsStaff() bool {
	return a.Role == "admin" || a.Role == "secretary"
}
