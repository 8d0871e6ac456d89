package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// Actor is the authenticated caller as resolved from the access token. The
// zero value is an anonymous visitor.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

// IsPlatformAdmin reports whether the actor holds the site-wide admin role.
func (a Actor) IsPlatformAdmin() bool {
	return a.Authenticated() && a.Role == enums.UserRoleAdmin
}
