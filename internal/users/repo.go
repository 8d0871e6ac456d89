package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/repo"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored hash, used when parameters are upgraded.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// Update applies column updates and returns the reloaded user.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		res := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a user row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountPostedPets returns how many listings a user has posted.
func (r *Repository) CountPostedPets(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Pet{}).Where("posted_by = ?", id).Count(&n).Error
	return n, err
}

// ListFilters narrows the admin user listing.
type ListFilters struct {
	Query    string
	Role     *enums.UserRole
	IsActive *bool
}

// UserSorts is the admin sort table.
var UserSorts = pagination.SortTable{
	Default: "newest",
	Orders: map[string]string{
		"newest": "created_at DESC, id DESC",
		"oldest": "created_at ASC, id ASC",
		"name":   "LOWER(name) ASC, id ASC",
	},
}

// List returns a page of users for the admin surface.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.User, int64, error) {
	order, err := UserSorts.Resolve(params.Sort)
	if err != nil {
		return nil, 0, err
	}
	q := r.DB(ctx).Model(&models.User{})
	q = repo.MatchAny(q, filters.Query, "name", "email")
	if filters.Role != nil {
		q = q.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}

	p := params.Normalize()
	var rows []models.User
	total, err := repo.Page(q, order, p.Limit, p.Offset(), &rows)
	return rows, total, err
}

// Count returns the total number of users, optionally only active ones.
func (r *Repository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var n int64
	q := r.DB(ctx).Model(&models.User{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Count(&n).Error
	return n, err
}
