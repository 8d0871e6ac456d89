package groupposts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/groups"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/membership"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
	"github.com/angelmondragon/pawfinderz-backend/pkg/visibility"
)

// Service exposes the group feed, post moderation and interactions.
type Service interface {
	List(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, params pagination.Params, filters ListFilters) (pagination.Page[PostDTO], error)
	Create(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, input CreatePostInput) (*PostDTO, error)
	Get(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error)
	Update(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, input UpdatePostInput) (*PostDTO, error)
	Delete(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) error
	Approve(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error)
	Archive(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error)
	Pin(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error)
	Unpin(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error)
	ToggleLike(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*LikeResult, error)
	Share(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*ShareResult, error)
	AddComment(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, input CommentInput) (*CommentDTO, error)
	DeleteComment(ctx context.Context, actor pkgAuth.Actor, groupID, postID, commentID uuid.UUID) error
	AddReply(ctx context.Context, actor pkgAuth.Actor, groupID, postID, commentID uuid.UUID, input CommentInput) (*ReplyDTO, error)
	DeleteReply(ctx context.Context, actor pkgAuth.Actor, groupID, postID, commentID, replyID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo    Repository
	Groups  groups.Repository
	Tx      txRunner
	Metrics *metrics.DomainMetrics
	Logger  *logger.Logger
	// CommentLimit caps comments on a post detail; zero uses DefaultCommentLimit.
	CommentLimit int
}

type service struct {
	repo         Repository
	groups       groups.Repository
	tx           txRunner
	metrics      *metrics.DomainMetrics
	logg         *logger.Logger
	commentLimit int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("posts repository required")
	}
	if params.Groups == nil {
		return nil, fmt.Errorf("groups repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	commentLimit := params.CommentLimit
	if commentLimit <= 0 {
		commentLimit = DefaultCommentLimit
	}
	return &service{
		repo:         params.Repo,
		groups:       params.Groups,
		tx:           params.Tx,
		metrics:      params.Metrics,
		logg:         logg,
		commentLimit: commentLimit,
	}, nil
}

// scope is one post as seen by one viewer, loaded inside a transaction.
type scope struct {
	repo   Repository
	groups groups.Repository
	access *groups.Access
	post   *models.GroupPost
}

func (sc *scope) level() membership.Level {
	return sc.access.Level
}

func (sc *scope) isAuthor(actor pkgAuth.Actor) bool {
	return actor.Authenticated() && sc.post.AuthorID == actor.UserID
}

// withPost runs fn in a transaction once the group gate and the post gate
// pass. Posts the viewer may not see are reported as not found.
func (s *service) withPost(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, fn func(sc *scope) error) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sc := &scope{repo: s.repo.WithTx(tx), groups: s.groups.WithTx(tx)}
		access, err := groups.LoadAccess(ctx, sc.groups, groupID, actor.UserID, false)
		if err != nil {
			return err
		}
		if err := visibility.EnsureGroupContent(access.Group, access.Level); err != nil {
			return err
		}
		post, err := sc.repo.FindByIDForUpdate(ctx, postID)
		if err != nil {
			return translateFind(err, "post")
		}
		if post.GroupID != groupID || !visibility.CanViewPost(post, actor.UserID, access.Level) {
			return pkgerrors.NotFound("post not found")
		}
		sc.access, sc.post = access, post
		return fn(sc)
	})
}

func (s *service) List(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, params pagination.Params, filters ListFilters) (pagination.Page[PostDTO], error) {
	if _, err := Sorts.Resolve(params.Sort); err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Validation(err.Error()).
			WithDetails(map[string]any{"sort": Sorts.Keys()})
	}
	access, err := groups.LoadAccess(ctx, s.groups, groupID, actor.UserID, false)
	if err != nil {
		return pagination.Page[PostDTO]{}, err
	}
	if err := visibility.EnsureGroupContent(access.Group, access.Level); err != nil {
		return pagination.Page[PostDTO]{}, err
	}
	filter := visibility.PostFilterFor(actor.UserID, access.Level)
	rows, total, err := s.repo.List(ctx, groupID, filter, params, filters)
	if err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.AuthorID)
	}
	authors, err := s.repo.Authors(ctx, ids)
	if err != nil {
		return pagination.Page[PostDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), func(p models.GroupPost) PostDTO {
		return fromModel(p, authors)
	}), nil
}

func (s *service) Create(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, input CreatePostInput) (*PostDTO, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	post := &models.GroupPost{
		GroupID:    groupID,
		AuthorID:   actor.UserID,
		Type:       input.Type,
		Title:      trimmedPtr(input.Title),
		Content:    strings.TrimSpace(input.Content),
		Images:     input.Images,
		PetID:      input.PetID,
		Visibility: input.Visibility,
	}
	if post.Type == "" {
		post.Type = enums.PostTypeText
	}
	if post.Visibility == "" {
		post.Visibility = enums.PostVisibilityPublic
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo, groupRepo := s.repo.WithTx(tx), s.groups.WithTx(tx)
		access, err := groups.LoadAccess(ctx, groupRepo, groupID, actor.UserID, false)
		if err != nil {
			return err
		}
		if err := membership.Require(membership.PermCreatePost, access.Level); err != nil {
			return err
		}
		if !access.Group.AllowMemberPosts && access.Level == membership.LevelMember {
			return pkgerrors.Forbidden("only admins and moderators can post in this group")
		}
		if post.PetID != nil {
			ok, err := repo.PetExists(ctx, *post.PetID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pet")
			}
			if !ok {
				return pkgerrors.NotFound("pet not found")
			}
		}
		post.Status = enums.PostStatusActive
		if access.Group.RequireApproval && access.Level == membership.LevelMember {
			post.Status = enums.PostStatusPendingApproval
		}
		if err := repo.Create(ctx, post); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
		}
		return groupRepo.AdjustTotalPosts(ctx, groupID, activeDelta("", post.Status))
	})
	if err != nil {
		return nil, err
	}
	s.recordPost(ctx, post, "group.post.created")
	return s.view(ctx, post)
}

func validatePost(p *models.GroupPost) error {
	details := map[string]string{}
	if p.Content == "" {
		details["content"] = "is required"
	}
	if !p.Type.IsValid() {
		details["type"] = "is invalid"
	}
	if !p.Visibility.IsValid() {
		details["visibility"] = "is invalid"
	}
	if p.Type == enums.PostTypePetShare && p.PetID == nil {
		details["petId"] = "is required for pet-share posts"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// Get returns a post with its comment thread.
func (s *service) Get(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error) {
	var (
		post     *models.GroupPost
		liked    *bool
		comments  []models.PostComment
		replies   []models.CommentReply
		truncated bool
	)
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		post = sc.post
		if actor.Authenticated() {
			has, err := sc.repo.HasLike(ctx, postID, actor.UserID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load like")
			}
			liked = &has
		}
		var err error
		if comments, err = sc.repo.ListComments(ctx, postID, s.commentLimit+1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comments")
		}
		if len(comments) > s.commentLimit {
			comments, truncated = comments[:s.commentLimit], true
		}
		ids := make([]uuid.UUID, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.ID)
		}
		if replies, err = sc.repo.ListReplies(ctx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load replies")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	authorIDs := []uuid.UUID{post.AuthorID}
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	for _, r := range replies {
		authorIDs = append(authorIDs, r.AuthorID)
	}
	authors, err := s.repo.Authors(ctx, authorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}

	dto := fromModel(*post, authors)
	dto.Liked = liked
	dto.CommentsTruncated = truncated
	dto.Comments = make([]CommentDTO, 0, len(comments))
	index := make(map[uuid.UUID]int, len(comments))
	for i, c := range comments {
		index[c.ID] = i
		dto.Comments = append(dto.Comments, commentOf(c, authors))
	}
	for _, r := range replies {
		if i, ok := index[r.CommentID]; ok {
			dto.Comments[i].Replies = append(dto.Comments[i].Replies, replyOf(r, authors))
		}
	}
	return &dto, nil
}

// Update edits content. Only the author may change their post.
func (s *service) Update(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, input UpdatePostInput) (*PostDTO, error) {
	var post *models.GroupPost
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if !sc.isAuthor(actor) {
			return pkgerrors.Forbidden("only the author can edit this post")
		}
		p := sc.post
		if input.Title != nil {
			p.Title = trimmedPtr(input.Title)
		}
		if input.Content != nil {
			p.Content = strings.TrimSpace(*input.Content)
		}
		if input.Images != nil {
			p.Images = *input.Images
		}
		if input.Visibility != nil {
			p.Visibility = *input.Visibility
		}
		if err := validatePost(p); err != nil {
			return err
		}
		if err := sc.repo.Save(ctx, p); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post")
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

// Delete marks the post removed; removed posts vanish from every read.
func (s *service) Delete(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) error {
	var post *models.GroupPost
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if !sc.isAuthor(actor) && !membership.Allows(membership.PermModeratePost, sc.level()) {
			return pkgerrors.Forbidden("only the author or a moderator can delete this post")
		}
		post = sc.post
		return s.moveTo(ctx, sc, enums.PostStatusRemoved)
	})
	if err != nil {
		return err
	}
	s.recordPost(ctx, post, "group.post.removed")
	return nil
}

func (s *service) Approve(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error) {
	return s.moderate(ctx, actor, groupID, postID, "group.post.approved", func(sc *scope) error {
		if err := membership.Require(membership.PermApprovePost, sc.level()); err != nil {
			return err
		}
		if sc.post.Status != enums.PostStatusPendingApproval {
			return pkgerrors.Conflict("post is not pending approval")
		}
		return s.moveTo(ctx, sc, enums.PostStatusActive)
	})
}

func (s *service) Archive(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error) {
	return s.moderate(ctx, actor, groupID, postID, "group.post.archived", func(sc *scope) error {
		if !sc.isAuthor(actor) && !membership.Allows(membership.PermModeratePost, sc.level()) {
			return pkgerrors.Forbidden("only the author or a moderator can archive this post")
		}
		if sc.post.Status != enums.PostStatusActive {
			return pkgerrors.Conflict("only active posts can be archived")
		}
		return s.moveTo(ctx, sc, enums.PostStatusArchived)
	})
}

func (s *service) Pin(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error) {
	return s.setPinned(ctx, actor, groupID, postID, true)
}

func (s *service) Unpin(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*PostDTO, error) {
	return s.setPinned(ctx, actor, groupID, postID, false)
}

func (s *service) setPinned(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, pinned bool) (*PostDTO, error) {
	var post *models.GroupPost
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if err := membership.Require(membership.PermPinPost, sc.level()); err != nil {
			return err
		}
		post = sc.post
		if post.IsPinned == pinned {
			return nil
		}
		post.IsPinned = pinned
		if err := sc.repo.Save(ctx, post); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pin post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

func (s *service) moderate(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, event string, fn func(sc *scope) error) (*PostDTO, error) {
	var post *models.GroupPost
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		post = sc.post
		return fn(sc)
	})
	if err != nil {
		return nil, err
	}
	s.recordPost(ctx, post, event)
	return s.view(ctx, post)
}

// moveTo persists a status change and keeps groups.total_posts counting the
// active posts.
func (s *service) moveTo(ctx context.Context, sc *scope, next enums.PostStatus) error {
	prev := sc.post.Status
	sc.post.Status = next
	if next == enums.PostStatusRemoved {
		sc.post.IsPinned = false
	}
	if err := sc.repo.Save(ctx, sc.post); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post status")
	}
	if err := sc.groups.AdjustTotalPosts(ctx, sc.post.GroupID, activeDelta(prev, next)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post count")
	}
	return nil
}

func activeDelta(prev, next enums.PostStatus) int {
	delta := 0
	if prev == enums.PostStatusActive {
		delta--
	}
	if next == enums.PostStatusActive {
		delta++
	}
	return delta
}

// interact guards likes, shares and comments: active members on active posts.
func interact(sc *scope) error {
	if err := membership.Require(membership.PermInteract, sc.level()); err != nil {
		return err
	}
	if sc.post.Status != enums.PostStatusActive {
		return pkgerrors.Conflict("post is not active")
	}
	return nil
}

func (s *service) ToggleLike(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*LikeResult, error) {
	var result LikeResult
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if err := interact(sc); err != nil {
			return err
		}
		liked, err := sc.repo.HasLike(ctx, postID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load like")
		}
		delta := 1
		if liked {
			delta = -1
			err = sc.repo.RemoveLike(ctx, postID, actor.UserID)
		} else {
			err = sc.repo.AddLike(ctx, postID, actor.UserID)
		}
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Conflict("like already recorded")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle like")
		}
		if err := sc.repo.Adjust(ctx, postID, likesCounter, delta); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update like count")
		}
		result = LikeResult{Liked: !liked, LikesCount: sc.post.LikesCount + delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Share records one share per member; repeats leave the count unchanged.
func (s *service) Share(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*ShareResult, error) {
	var result ShareResult
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if err := interact(sc); err != nil {
			return err
		}
		result = ShareResult{Shared: true, SharesCount: sc.post.SharesCount}
		shared, err := sc.repo.HasShare(ctx, postID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load share")
		}
		if shared {
			return nil
		}
		if err := sc.repo.AddShare(ctx, postID, actor.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "share post")
		}
		if err := sc.repo.Adjust(ctx, postID, sharesCounter, 1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update share count")
		}
		result.SharesCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) AddComment(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID, input CommentInput) (*CommentDTO, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"content": "is required"})
	}
	comment := &models.PostComment{PostID: postID, AuthorID: actor.UserID, Content: content}
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if err := interact(sc); err != nil {
			return err
		}
		if err := sc.repo.CreateComment(ctx, comment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
		}
		if err := sc.repo.Adjust(ctx, postID, commentsCounter, 1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update comment count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	authors, err := s.repo.Authors(ctx, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}
	dto := commentOf(*comment, authors)
	return &dto, nil
}

// DeleteComment removes a comment and its replies. The comment author and
// moderators may do this.
func (s *service) DeleteComment(ctx context.Context, actor pkgAuth.Actor, groupID, postID, commentID uuid.UUID) error {
	return s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		comment, err := s.comment(ctx, sc, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != actor.UserID && !membership.Allows(membership.PermModerateComment, sc.level()) {
			return pkgerrors.Forbidden("only the author or a moderator can delete this comment")
		}
		if err := sc.repo.DeleteComment(ctx, commentID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
		}
		if err := sc.repo.Adjust(ctx, postID, commentsCounter, -1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update comment count")
		}
		return nil
	})
}

func (s *service) AddReply(ctx context.Context, actor pkgAuth.Actor, groupID, postID, commentID uuid.UUID, input CommentInput) (*ReplyDTO, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"content": "is required"})
	}
	reply := &models.CommentReply{CommentID: commentID, PostID: postID, AuthorID: actor.UserID, Content: content}
	err := s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		if err := interact(sc); err != nil {
			return err
		}
		if _, err := s.comment(ctx, sc, commentID); err != nil {
			return err
		}
		if err := sc.repo.CreateReply(ctx, reply); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reply")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	authors, err := s.repo.Authors(ctx, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}
	dto := replyOf(*reply, authors)
	return &dto, nil
}

func (s *service) DeleteReply(ctx context.Context, actor pkgAuth.Actor, groupID, postID, commentID, replyID uuid.UUID) error {
	return s.withPost(ctx, actor, groupID, postID, func(sc *scope) error {
		reply, err := sc.repo.FindReply(ctx, replyID)
		if err != nil {
			return translateFind(err, "reply")
		}
		if reply.CommentID != commentID || reply.PostID != postID {
			return pkgerrors.NotFound("reply not found")
		}
		if reply.AuthorID != actor.UserID && !membership.Allows(membership.PermModerateComment, sc.level()) {
			return pkgerrors.Forbidden("only the author or a moderator can delete this reply")
		}
		if err := sc.repo.DeleteReply(ctx, replyID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reply")
		}
		return nil
	})
}

func (s *service) comment(ctx context.Context, sc *scope, commentID uuid.UUID) (*models.PostComment, error) {
	comment, err := sc.repo.FindComment(ctx, commentID)
	if err != nil {
		return nil, translateFind(err, "comment")
	}
	if comment.PostID != sc.post.ID {
		return nil, pkgerrors.NotFound("comment not found")
	}
	return comment, nil
}

func (s *service) view(ctx context.Context, post *models.GroupPost) (*PostDTO, error) {
	authors, err := s.repo.Authors(ctx, []uuid.UUID{post.AuthorID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}
	dto := fromModel(*post, authors)
	return &dto, nil
}

func (s *service) recordPost(ctx context.Context, post *models.GroupPost, event string) {
	s.metrics.PostEvent(string(post.Status))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"group_id": post.GroupID.String(),
		"post_id":  post.ID.String(),
		"status":   string(post.Status),
	}), event)
}

func translateFind(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(what + " not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
