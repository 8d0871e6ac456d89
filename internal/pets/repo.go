package pets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/repo"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

// Sorts maps the public sort keys of the catalog to fixed ORDER BY clauses.
var Sorts = pagination.SortTable{
	Default: "newest",
	Orders: map[string]string{
		"newest":   "created_at DESC, id DESC",
		"oldest":   "created_at ASC, id ASC",
		"popular":  "likes_count DESC, created_at DESC",
		"views":    "views DESC, created_at DESC",
		"fee-low":  "adoption_fee ASC, created_at DESC",
		"fee-high": "adoption_fee DESC, created_at DESC",
		"name":     "LOWER(name) ASC, id ASC",
	},
}

// Repository is the persistence surface of the pet catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pet *models.Pet) error
	Save(ctx context.Context, pet *models.Pet) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Pet, int64, error)
	ListAdoptedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Pet, int64, error)
	ListLikedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Pet, int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasLike(ctx context.Context, petID, userID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, petID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, petID, userID uuid.UUID) error
	AdjustLikes(ctx context.Context, id uuid.UUID, delta int) error
	HasOpenReport(ctx context.Context, petID, reporterID uuid.UUID) (bool, error)
	CreateReport(ctx context.Context, report *models.PetReport) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a pets repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, pet *models.Pet) error {
	return r.DB(ctx).Create(pet).Error
}

func (r *repository) Save(ctx context.Context, pet *models.Pet) error {
	return r.DB(ctx).Save(pet).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	var pet models.Pet
	if err := r.DB(ctx).First(&pet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	var pet models.Pet
	if err := db.ForUpdate(r.DB(ctx)).First(&pet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Pet, int64, error) {
	order, err := Sorts.Resolve(params.Sort)
	if err != nil {
		return nil, 0, err
	}
	q := applyFilters(r.DB(ctx).Model(&models.Pet{}), filters)

	p := params.Normalize()
	var rows []models.Pet
	total, err := repo.Page(q, order, p.Limit, p.Offset(), &rows)
	return rows, total, err
}

func applyFilters(q *gorm.DB, f ListFilters) *gorm.DB {
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	q = repo.MatchAny(q, f.Breed, "breed")
	if f.Size != nil {
		q = q.Where("size = ?", *f.Size)
	}
	if f.Gender != nil {
		q = q.Where("gender = ?", *f.Gender)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.OriginType != nil {
		q = q.Where("origin_type = ?", *f.OriginType)
	}
	q = repo.MatchAny(q, f.Location, "location")
	if f.AgeMin != nil {
		q = q.Where("age >= ?", *f.AgeMin)
	}
	if f.AgeMax != nil {
		q = q.Where("age <= ?", *f.AgeMax)
	}
	if f.FeeMax != nil {
		q = q.Where("adoption_fee <= ?", *f.FeeMax)
	}
	if f.PostedBy != nil {
		q = q.Where("posted_by = ?", *f.PostedBy)
	}
	return repo.MatchAny(q, f.Query, "name", "breed", "description")
}

func (r *repository) ListAdoptedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Pet, int64, error) {
	q := r.DB(ctx).Model(&models.Pet{}).Where("adopted_by = ?", userID)
	p := params.Normalize()
	var rows []models.Pet
	total, err := repo.Page(q, "adopted_at DESC, id DESC", p.Limit, p.Offset(), &rows)
	return rows, total, err
}

func (r *repository) ListLikedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Pet, int64, error) {
	liked := r.DB(ctx).Model(&models.PetLike{}).Select("pet_id").Where("user_id = ?", userID)
	q := r.DB(ctx).Model(&models.Pet{}).Where("id IN (?)", liked)
	order, err := Sorts.Resolve(params.Sort)
	if err != nil {
		return nil, 0, err
	}
	p := params.Normalize()
	var rows []models.Pet
	total, err := repo.Page(q, order, p.Limit, p.Offset(), &rows)
	return rows, total, err
}

func (r *repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Model(&models.Pet{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// Delete removes the pet with its likes and reports, and detaches posts that
// referenced it.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	conn := r.DB(ctx)
	if err := conn.Where("pet_id = ?", id).Delete(&models.PetLike{}).Error; err != nil {
		return err
	}
	if err := conn.Where("pet_id = ?", id).Delete(&models.PetReport{}).Error; err != nil {
		return err
	}
	if err := conn.Model(&models.GroupPost{}).Where("pet_id = ?", id).UpdateColumn("pet_id", nil).Error; err != nil {
		return err
	}
	res := conn.Delete(&models.Pet{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) HasLike(ctx context.Context, petID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.PetLike{}).
		Where("pet_id = ? AND user_id = ?", petID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) AddLike(ctx context.Context, petID, userID uuid.UUID) error {
	return r.DB(ctx).Create(&models.PetLike{PetID: petID, UserID: userID}).Error
}

func (r *repository) RemoveLike(ctx context.Context, petID, userID uuid.UUID) error {
	return r.DB(ctx).Where("pet_id = ? AND user_id = ?", petID, userID).Delete(&models.PetLike{}).Error
}

func (r *repository) AdjustLikes(ctx context.Context, id uuid.UUID, delta int) error {
	return r.DB(ctx).Model(&models.Pet{}).Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

func (r *repository) HasOpenReport(ctx context.Context, petID, reporterID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.PetReport{}).
		Where("pet_id = ? AND reporter_id = ? AND status = ?", petID, reporterID, enums.ReportStatusOpen).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) CreateReport(ctx context.Context, report *models.PetReport) error {
	return r.DB(ctx).Create(report).Error
}
