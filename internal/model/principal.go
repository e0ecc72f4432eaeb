package model

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ProfileID int64
	Role      Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
