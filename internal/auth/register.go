package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/security"
)

// Register opens a user account and signs the new user in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.Validation("email is required")
	}
	if len(strings.TrimSpace(req.Name)) < 2 {
		return nil, pkgerrors.Validation("name must be at least 2 characters")
	}
	if err := security.CheckPasswordPolicy(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()).
			WithDetails(map[string]string{"password": err.Error()})
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		Location:     req.Location,
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		// A concurrent register with the same email loses on the unique index.
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Conflict("email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.registered")

	return s.issue(ctx, user, s.now())
}
