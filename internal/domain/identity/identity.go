package identity

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller. ID is the customer id, staff id or
// owner user id depending on Role.
type Actor struct {
	ID   uint `json:"id"`
	Role Role `json:"role"`

	// Set for owners from their token claims; ownership is still
	// re-checked against the stored salon or freelancer.
	SalonID      uint `json:"salon_id,omitempty"`
	FreelancerID uint `json:"freelancer_id,omitempty"`
}

func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
