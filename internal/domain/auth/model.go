// Package auth defines the authentication domain model.
package auth

// AdminRole is the role marker that grants administrative access.
const AdminRole = "ADMIN"

// User is the backend's snapshot of an authenticated account. It is
// replaced wholesale on each fetch, never field-patched.
type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
	Active    bool     `json:"active"`
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.HasRole(AdminRole)
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the backend's reply to a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
