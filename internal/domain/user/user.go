package user

// Role is the access role stored on the reservation system's user profile.
type Role string

const (
	RoleInternal Role = "internal"
	RoleExternal Role = "external"
	RoleAdmin    Role = "admin"
	RoleNone     Role = "" // Registered but not yet approved by an admin
)

// User represents a reservation system account together with its profile role.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Email     string
	Role      Role
}

// FullName returns "First Last", falling back to the username when both are empty.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
