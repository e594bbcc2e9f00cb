package auth

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleCustomer: true,
	RoleOwner:    true,
	RoleAdmin:    true,
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, validRoles[r]
}

func (r Role) Staff() bool { return r == RoleOwner || r == RoleAdmin }

// Identity hasil verifikasi token, dibawa di request context.
type Identity struct {
	UserID string
	Role   Role
	Email  string
}
