package enums

// StaffRole is the authenticated actor's role carried in access tokens.
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleManager StaffRole = "manager"
	StaffRoleCashier StaffRole = "cashier"
)

var validStaffRoles = []StaffRole{
	StaffRoleAdmin,
	StaffRoleManager,
	StaffRoleCashier,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known staff role.
func (r StaffRole) IsValid() bool {
	for _, v := range validStaffRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseStaffRole converts a raw string into a StaffRole, if valid.
func ParseStaffRole(raw string) (StaffRole, bool) {
	role := StaffRole(raw)
	return role, role.IsValid()
}
