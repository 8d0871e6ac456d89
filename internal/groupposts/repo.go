package groupposts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/repo"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
	"github.com/angelmondragon/pawfinderz-backend/pkg/visibility"
)

// Sorts maps feed sort keys to ORDER BY clauses. Pinned posts always lead.
var Sorts = pagination.SortTable{
	Default: "newest",
	Orders: map[string]string{
		"newest":    "created_at DESC, id DESC",
		"popular":   "likes_count DESC, created_at DESC",
		"commented": "comments_count DESC, created_at DESC",
	},
}

// counter names a denormalized column on group_posts.
type counter string

const (
	likesCounter    counter = "likes_count"
	commentsCounter counter = "comments_count"
	sharesCounter   counter = "shares_count"
)

// DefaultCommentLimit bounds the comment thread returned with a post.
const DefaultCommentLimit = 200

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, post *models.GroupPost) error
	Save(ctx context.Context, post *models.GroupPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GroupPost, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.GroupPost, error)
	List(ctx context.Context, groupID uuid.UUID, filter visibility.PostFilter, params pagination.Params, filters ListFilters) ([]models.GroupPost, int64, error)
	Adjust(ctx context.Context, postID uuid.UUID, c counter, delta int) error
	PetExists(ctx context.Context, petID uuid.UUID) (bool, error)
	Authors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]AuthorDTO, error)

	HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, postID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) error
	HasShare(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	AddShare(ctx context.Context, postID, userID uuid.UUID) error

	CreateComment(ctx context.Context, c *models.PostComment) error
	FindComment(ctx context.Context, id uuid.UUID) (*models.PostComment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	ListComments(ctx context.Context, postID uuid.UUID, limit int) ([]models.PostComment, error)
	CreateReply(ctx context.Context, r *models.CommentReply) error
	FindReply(ctx context.Context, id uuid.UUID) (*models.CommentReply, error)
	DeleteReply(ctx context.Context, id uuid.UUID) error
	ListReplies(ctx context.Context, commentIDs []uuid.UUID) ([]models.CommentReply, error)
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

func (r *repository) Create(ctx context.Context, post *models.GroupPost) error {
	return r.DB(ctx).Create(post).Error
}

func (r *repository) Save(ctx context.Context, post *models.GroupPost) error {
	return r.DB(ctx).Save(post).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GroupPost, error) {
	var p models.GroupPost
	if err := r.DB(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.GroupPost, error) {
	var p models.GroupPost
	if err := db.ForUpdate(r.DB(ctx)).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List applies the viewer's visibility filter. Authors also see their own
// pending posts when the filter allows it.
func (r *repository) List(ctx context.Context, groupID uuid.UUID, filter visibility.PostFilter, params pagination.Params, filters ListFilters) ([]models.GroupPost, int64, error) {
	order, err := Sorts.Resolve(params.Sort)
	if err != nil {
		return nil, 0, err
	}
	q := r.DB(ctx).Model(&models.GroupPost{}).
		Where("group_id = ? AND visibility IN ?", groupID, filter.Visibilities)
	if filter.OwnPending && filter.Viewer != uuid.Nil {
		q = q.Where("(status IN ? OR (status = ? AND author_id = ?))",
			filter.Statuses, enums.PostStatusPendingApproval, filter.Viewer)
	} else {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filters.Type != nil {
		q = q.Where("type = ?", *filters.Type)
	}

	p := params.Normalize()
	var rows []models.GroupPost
	total, err := repo.Page(q, "is_pinned DESC, "+order, p.Limit, p.Offset(), &rows)
	return rows, total, err
}

func (r *repository) Adjust(ctx context.Context, postID uuid.UUID, c counter, delta int) error {
	if delta == 0 {
		return nil
	}
	col := string(c)
	return r.DB(ctx).Model(&models.GroupPost{}).Where("id = ?", postID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}

func (r *repository) PetExists(ctx context.Context, petID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Pet{}).Where("id = ?", petID).Count(&n).Error
	return n > 0, err
}

func (r *repository) Authors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]AuthorDTO, error) {
	out := make(map[uuid.UUID]AuthorDTO, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.User
	err := r.DB(ctx).Select("id", "name", "avatar_url").Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = AuthorDTO{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
	}
	return out, nil
}

func (r *repository) HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&n).Error
	return n > 0, err
}

func (r *repository) AddLike(ctx context.Context, postID, userID uuid.UUID) error {
	return r.DB(ctx).Create(&models.PostLike{PostID: postID, UserID: userID}).Error
}

func (r *repository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	return r.DB(ctx).Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}

func (r *repository) HasShare(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.PostShare{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&n).Error
	return n > 0, err
}

func (r *repository) AddShare(ctx context.Context, postID, userID uuid.UUID) error {
	return r.DB(ctx).Create(&models.PostShare{PostID: postID, UserID: userID}).Error
}

func (r *repository) CreateComment(ctx context.Context, c *models.PostComment) error {
	return r.DB(ctx).Create(c).Error
}

func (r *repository) FindComment(ctx context.Context, id uuid.UUID) (*models.PostComment, error) {
	var c models.PostComment
	if err := r.DB(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComment removes the comment together with its replies.
func (r *repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).Where("comment_id = ?", id).Delete(&models.CommentReply{}).Error; err != nil {
		return err
	}
	return r.DB(ctx).Where("id = ?", id).Delete(&models.PostComment{}).Error
}

// ListComments returns the oldest limit comments of a post.
func (r *repository) ListComments(ctx context.Context, postID uuid.UUID, limit int) ([]models.PostComment, error) {
	var rows []models.PostComment
	err := r.DB(ctx).Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateReply(ctx context.Context, reply *models.CommentReply) error {
	return r.DB(ctx).Create(reply).Error
}

func (r *repository) FindReply(ctx context.Context, id uuid.UUID) (*models.CommentReply, error) {
	var reply models.CommentReply
	if err := r.DB(ctx).First(&reply, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *repository) DeleteReply(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.CommentReply{}).Error
}

func (r *repository) ListReplies(ctx context.Context, commentIDs []uuid.UUID) ([]models.CommentReply, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var rows []models.CommentReply
	err := r.DB(ctx).Where("comment_id IN ?", commentIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
