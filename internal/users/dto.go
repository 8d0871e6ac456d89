package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       *string        `json:"phone,omitempty"`
	Location    *string        `json:"location,omitempty"`
	Bio         *string        `json:"bio,omitempty"`
	AvatarURL   *string        `json:"avatarUrl,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"isActive"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PublicProfile is what other users may see.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	PetsCount int64     `json:"petsCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Location     *string
	Role         enums.UserRole
}

// UpdateProfileInput is a partial profile update; nil fields are unchanged.
type UpdateProfileInput struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=80"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=120"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// Updates turns the input into a column map.
func (in UpdateProfileInput) Updates() map[string]any {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	set := func(col string, v *string) {
		if v == nil {
			return
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			updates[col] = trimmed
		} else {
			updates[col] = nil
		}
	}
	set("phone", in.Phone)
	set("location", in.Location)
	set("bio", in.Bio)
	set("avatar_url", in.AvatarURL)
	return updates
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Location:    u.Location,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	return &models.User{
		Name:         strings.TrimSpace(c.Name),
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash: c.PasswordHash,
		Phone:        c.Phone,
		Location:     c.Location,
		Role:         role,
		IsActive:     true,
	}
}
