package groups

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/repo"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

// Sorts maps the directory sort keys to fixed ORDER BY clauses.
var Sorts = pagination.SortTable{
	Default: "newest",
	Orders: map[string]string{
		"newest":       "created_at DESC, id DESC",
		"popular":      "member_count DESC, created_at DESC",
		"alphabetical": "LOWER(name) ASC, id ASC",
		"active":       "updated_at DESC, id DESC",
	},
}

// Repository persists groups and the group_members roster.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, group *models.Group) error
	Save(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Group, error)
	ActiveNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Group, int64, error)
	AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error
	AdjustTotalPosts(ctx context.Context, id uuid.UUID, delta int) error

	Member(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error)
	CreateMember(ctx context.Context, m *models.GroupMember) error
	UpdateMember(ctx context.Context, groupID, userID uuid.UUID, updates map[string]any) error
	DeleteMember(ctx context.Context, groupID, userID uuid.UUID) error
	CountMembers(ctx context.Context, groupID uuid.UUID, status enums.MembershipStatus) (int64, error)
	ListStaff(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error)
	ListMembers(ctx context.Context, groupID uuid.UUID, status enums.MembershipStatus, params pagination.Params) ([]MemberRow, int64, error)
	ListUserMemberships(ctx context.Context, userID uuid.UUID, status *enums.MembershipStatus, params pagination.Params) ([]models.GroupMember, int64, error)
}

// MemberRow is a roster row joined with the member's profile.
type MemberRow struct {
	UserID    uuid.UUID
	Name      string
	AvatarURL *string
	Role      enums.MemberRole
	Status    enums.MembershipStatus
	JoinedAt  time.Time
}

type repository struct {
	repo.Base
}

// NewRepository builds a groups repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, group *models.Group) error {
	return r.DB(ctx).Create(group).Error
}

func (r *repository) Save(ctx context.Context, group *models.Group) error {
	return r.DB(ctx).Save(group).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var g models.Group
	if err := r.DB(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// FindByIDForUpdate locks the group row for the rest of the transaction so
// roster changes on the same group serialize.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var g models.Group
	if err := db.ForUpdate(r.DB(ctx)).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Group
	err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repository) ActiveNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	q := r.DB(ctx).Model(&models.Group{}).
		Where("LOWER(name) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(name)), true)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *repository) List(ctx context.Context, params pagination.Params, f ListFilters) ([]models.Group, int64, error) {
	order, err := Sorts.Resolve(params.Sort)
	if err != nil {
		return nil, 0, err
	}
	q := r.DB(ctx).Model(&models.Group{}).Where("is_active = ?", true)
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Privacy != nil {
		q = q.Where("privacy = ?", *f.Privacy)
	}
	q = repo.MatchAny(q, f.Query, "name", "description")

	p := params.Normalize()
	var rows []models.Group
	total, err := repo.Page(q, order, p.Limit, p.Offset(), &rows)
	return rows, total, err
}

func (r *repository) AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Group{}).Where("id = ?", id).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", delta)).Error
}

func (r *repository) AdjustTotalPosts(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Group{}).Where("id = ?", id).
		UpdateColumn("total_posts", gorm.Expr("total_posts + ?", delta)).Error
}

// Member returns the roster row for the pair, or nil when there is none.
func (r *repository) Member(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var m models.GroupMember
	err := r.DB(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) CreateMember(ctx context.Context, m *models.GroupMember) error {
	return r.DB(ctx).Create(m).Error
}

func (r *repository) UpdateMember(ctx context.Context, groupID, userID uuid.UUID, updates map[string]any) error {
	res := r.DB(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.DB(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (r *repository) CountMembers(ctx context.Context, groupID uuid.UUID, status enums.MembershipStatus) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, status).
		Count(&n).Error
	return n, err
}

// ListStaff returns the active admins and moderators of a group.
func (r *repository) ListStaff(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	var rows []models.GroupMember
	err := r.DB(ctx).
		Where("group_id = ? AND status = ? AND role IN ?", groupID, enums.MembershipStatusActive,
			[]enums.MemberRole{enums.MemberRoleAdmin, enums.MemberRoleModerator}).
		Order("joined_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListMembers(ctx context.Context, groupID uuid.UUID, status enums.MembershipStatus, params pagination.Params) ([]MemberRow, int64, error) {
	total, err := r.CountMembers(ctx, groupID, status)
	if err != nil || total == 0 {
		return nil, total, err
	}
	p := params.Normalize()
	var rows []MemberRow
	err = r.DB(ctx).Table("group_members").
		Select("group_members.user_id, COALESCE(users.name, '') AS name, users.avatar_url, group_members.role, group_members.status, group_members.joined_at").
		Joins("LEFT JOIN users ON users.id = group_members.user_id").
		Where("group_members.group_id = ? AND group_members.status = ?", groupID, status).
		Order("group_members.joined_at ASC, group_members.user_id ASC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

// ListUserMemberships serves a user's group list from the roster table, only
// for groups that are still active.
func (r *repository) ListUserMemberships(ctx context.Context, userID uuid.UUID, status *enums.MembershipStatus, params pagination.Params) ([]models.GroupMember, int64, error) {
	active := r.DB(ctx).Model(&models.Group{}).Select("id").Where("is_active = ?", true)
	q := r.DB(ctx).Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id IN (?)", userID, active)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	p := params.Normalize()
	var rows []models.GroupMember
	total, err := repo.Page(q, "joined_at DESC, group_id ASC", p.Limit, p.Offset(), &rows)
	return rows, total, err
}
