package admin

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

// Repository holds the cross-table queries only the admin surface needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountPetsByStatus(ctx context.Context) (map[enums.PetStatus]int64, error)
	CountActiveGroups(ctx context.Context) (int64, error)
	CountPostsByStatus(ctx context.Context) (map[enums.PostStatus]int64, error)
	CountReports(ctx context.Context, status enums.ReportStatus) (int64, error)
	ListReports(ctx context.Context, params pagination.Params, status *enums.ReportStatus) ([]models.PetReport, int64, error)
	FindReportForUpdate(ctx context.Context, id uuid.UUID) (*models.PetReport, error)
	SaveReport(ctx context.Context, report *models.PetReport) error
	CreatedActiveGroups(ctx context.Context, userID uuid.UUID) (int64, error)
	RemoveMemberships(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

type statusCount struct {
	Status string
	N      int64
}

func (r *repository) countBy(ctx context.Context, model any) ([]statusCount, error) {
	var rows []statusCount
	err := r.DB(ctx).Model(model).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountPetsByStatus(ctx context.Context) (map[enums.PetStatus]int64, error) {
	rows, err := r.countBy(ctx, &models.Pet{})
	if err != nil {
		return nil, err
	}
	out := make(map[enums.PetStatus]int64, len(rows))
	for _, row := range rows {
		out[enums.PetStatus(row.Status)] = row.N
	}
	return out, nil
}

func (r *repository) CountPostsByStatus(ctx context.Context) (map[enums.PostStatus]int64, error) {
	rows, err := r.countBy(ctx, &models.GroupPost{})
	if err != nil {
		return nil, err
	}
	out := make(map[enums.PostStatus]int64, len(rows))
	for _, row := range rows {
		out[enums.PostStatus(row.Status)] = row.N
	}
	return out, nil
}

func (r *repository) CountActiveGroups(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Group{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *repository) CountReports(ctx context.Context, status enums.ReportStatus) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.PetReport{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *repository) ListReports(ctx context.Context, params pagination.Params, status *enums.ReportStatus) ([]models.PetReport, int64, error) {
	q := r.DB(ctx).Model(&models.PetReport{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	p := params.Normalize()
	var rows []models.PetReport
	total, err := repo.Page(q, "created_at DESC, id DESC", p.Limit, p.Offset(), &rows)
	return rows, total, err
}

func (r *repository) FindReportForUpdate(ctx context.Context, id uuid.UUID) (*models.PetReport, error) {
	var report models.PetReport
	if err := db.ForUpdate(r.DB(ctx)).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *repository) SaveReport(ctx context.Context, report *models.PetReport) error {
	return r.DB(ctx).Save(report).Error
}

func (r *repository) CreatedActiveGroups(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Group{}).
		Where("created_by = ? AND is_active = ?", userID, true).
		Count(&n).Error
	return n, err
}

// RemoveMemberships drops every roster row of the user and decrements
// member_count on the groups where they were active.
func (r *repository) RemoveMemberships(ctx context.Context, userID uuid.UUID) error {
	active := r.DB(ctx).Model(&models.GroupMember{}).
		Select("group_id").
		Where("user_id = ? AND status = ?", userID, enums.MembershipStatusActive)
	if err := r.DB(ctx).Model(&models.Group{}).
		Where("id IN (?)", active).
		UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error; err != nil {
		return err
	}
	return r.DB(ctx).Where("user_id = ?", userID).Delete(&models.GroupMember{}).Error
}
