package service

import (
	"github.com/google/uuid"

	"github.com/avelkov/cardvault/internal/domain"
)

// Principal identifies the authenticated caller of a service operation.
// It is built from validated JWT claims by the API layer and passed
// explicitly; services never reach into ambient request state.
type Principal struct {
	UserID uuid.UUID
	Role   domain.Role
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// Is reports whether the principal is the given user.
func (p Principal) Is(userID uuid.UUID) bool {
	return p.UserID == userID
}

// CanAccessUser reports whether the principal may read or modify the given
// user's account: admins may, and users may access their own.
func (p Principal) CanAccessUser(userID uuid.UUID) bool {
	return p.IsAdmin() || p.Is(userID)
}

// CanAccessCard reports whether the principal may view the given card:
// admins may, and owners may view their own.
func (p Principal) CanAccessCard(card *domain.Card) bool {
	return p.IsAdmin() || p.Is(card.OwnerID)
}
