package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

// Service exposes the profile surface of the users domain.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	PublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds the users service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) PublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.NotFound("user not found")
	}
	count, err := s.repo.CountPostedPets(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count posted pets")
	}
	return &PublicProfile{
		ID:        user.ID,
		Name:      user.Name,
		Location:  user.Location,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		PetsCount: count,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	if input.Name != nil && len(strings.TrimSpace(*input.Name)) < 2 {
		return nil, pkgerrors.Validation("name must be at least 2 characters")
	}
	user, err := s.repo.Update(ctx, userID, input.Updates())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
