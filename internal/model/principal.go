package model

import "github.com/google/uuid"

const (
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

// Principal is the authenticated caller. UserID doubles as the owner
// (tenant) id that scopes all catalog operations.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) OwnerID() uuid.UUID {
	return p.UserID
}
