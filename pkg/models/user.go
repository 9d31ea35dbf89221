package models

// User represents a registered account
type User struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"` // bcrypt hash, never serialized
	IsAdmin  bool   `json:"is_admin" db:"is_admin"`
	Active   bool   `json:"active" db:"active"`
	Roles    []Role `json:"roles,omitempty" db:"-"`
}

// FirstName returns the first word of the user's name, embedded as a token claim
func (u *User) FirstName() string {
	for i := 0; i < len(u.Name); i++ {
		if u.Name[i] == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}

// RoleNames returns the names of the user's roles for token claims
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}
