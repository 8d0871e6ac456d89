package groupposts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/dbtest"
	"github.com/angelmondragon/pawfinderz-backend/internal/groups"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

type fixture struct {
	svc       Service
	groupSvc  groups.Service
	groupRepo groups.Repository
	client    *db.Client
	conn      *gorm.DB
	creator   pkgAuth.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	groupRepo := groups.NewRepository(conn)
	groupSvc, err := groups.NewService(groups.ServiceParams{Repo: groupRepo, Tx: client})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Groups: groupRepo, Tx: client})
	require.NoError(t, err)
	f := &fixture{svc: svc, groupSvc: groupSvc, groupRepo: groupRepo, client: client, conn: conn}
	f.creator = f.user(t, "Creator")
	return f
}

func (f *fixture) user(t *testing.T, name string) pkgAuth.Actor {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}
	require.NoError(t, f.conn.Create(u).Error)
	return pkgAuth.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) group(t *testing.T, mutate func(*groups.CreateGroupInput)) uuid.UUID {
	t.Helper()
	in := groups.CreateGroupInput{
		Name:        "Cat Corner " + uuid.NewString()[:8],
		Description: "All things cats",
		Type:        enums.GroupTypeCommunity,
		Category:    enums.GroupCategoryCats,
	}
	if mutate != nil {
		mutate(&in)
	}
	g, err := f.groupSvc.Create(context.Background(), f.creator, in)
	require.NoError(t, err)
	return g.ID
}

func (f *fixture) member(t *testing.T, groupID uuid.UUID, name string) pkgAuth.Actor {
	t.Helper()
	u := f.user(t, name)
	_, err := f.groupSvc.Join(context.Background(), u, groupID)
	require.NoError(t, err)
	return u
}

func (f *fixture) moderator(t *testing.T, groupID uuid.UUID) pkgAuth.Actor {
	t.Helper()
	u := f.member(t, groupID, "Moderator")
	_, err := f.groupSvc.Promote(context.Background(), f.creator, groupID, u.UserID, groups.RoleInput{})
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, actor pkgAuth.Actor, groupID uuid.UUID, mutate func(*CreatePostInput)) *PostDTO {
	t.Helper()
	in := CreatePostInput{Content: "Looking for a foster this weekend"}
	if mutate != nil {
		mutate(&in)
	}
	p, err := f.svc.Create(context.Background(), actor, groupID, in)
	require.NoError(t, err)
	return p
}

// assertTotalPosts checks groups.total_posts against the active post rows.
func (f *fixture) assertTotalPosts(t *testing.T, groupID uuid.UUID, want int) {
	t.Helper()
	g, err := f.groupRepo.FindByID(context.Background(), groupID)
	require.NoError(t, err)
	var active int64
	require.NoError(t, f.conn.Model(&models.GroupPost{}).
		Where("group_id = ? AND status = ?", groupID, enums.PostStatusActive).
		Count(&active).Error)
	assert.Equal(t, want, g.TotalPosts)
	assert.Equal(t, int(active), g.TotalPosts)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, pkgerrors.As(err).Code(), "error: %v", err)
}

func TestCreateRequiresActiveMember(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user(t, "Outsider"), g, CreatePostInput{Content: "hi"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	member := f.member(t, g, "Member")
	p := f.post(t, member, g, nil)
	assert.Equal(t, enums.PostStatusActive, p.Status)
	assert.Equal(t, enums.PostTypeText, p.Type)
	assert.Equal(t, enums.PostVisibilityPublic, p.Visibility)
	require.NotNil(t, p.Author)
	assert.Equal(t, "Member", p.Author.Name)
	f.assertTotalPosts(t, g, 1)

	_, err = f.svc.Create(ctx, member, g, CreatePostInput{Content: "  "})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Create(ctx, member, g, CreatePostInput{Content: "meet Rex", Type: enums.PostTypePetShare})
	requireCode(t, err, pkgerrors.CodeValidation)

	missing := uuid.New()
	_, err = f.svc.Create(ctx, member, g, CreatePostInput{Content: "meet Rex", Type: enums.PostTypePetShare, PetID: &missing})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateHonoursAllowMemberPosts(t *testing.T) {
	f := newFixture(t)
	closed := false
	g := f.group(t, func(in *groups.CreateGroupInput) { in.AllowMemberPosts = &closed })
	member := f.member(t, g, "Member")
	mod := f.moderator(t, g)

	_, err := f.svc.Create(context.Background(), member, g, CreatePostInput{Content: "hello"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	p := f.post(t, mod, g, nil)
	assert.Equal(t, enums.PostStatusActive, p.Status)
}

func TestApprovalFlow(t *testing.T) {
	f := newFixture(t)
	approval := true
	g := f.group(t, func(in *groups.CreateGroupInput) { in.RequireApproval = &approval })
	ctx := context.Background()
	member := f.user(t, "Member")
	_, err := f.groupSvc.Join(ctx, member, g)
	require.NoError(t, err)
	_, err = f.groupSvc.Approve(ctx, f.creator, g, member.UserID)
	require.NoError(t, err)

	p := f.post(t, member, g, nil)
	assert.Equal(t, enums.PostStatusPendingApproval, p.Status)
	f.assertTotalPosts(t, g, 0)

	own := f.post(t, f.creator, g, nil)
	assert.Equal(t, enums.PostStatusActive, own.Status, "staff posts skip approval")
	f.assertTotalPosts(t, g, 1)

	_, err = f.svc.Approve(ctx, member, g, p.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	approved, err := f.svc.Approve(ctx, f.creator, g, p.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PostStatusActive, approved.Status)
	f.assertTotalPosts(t, g, 2)

	_, err = f.svc.Approve(ctx, f.creator, g, p.ID)
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestListFiltersByViewer(t *testing.T) {
	f := newFixture(t)
	approval := true
	g := f.group(t, func(in *groups.CreateGroupInput) { in.RequireApproval = &approval })
	ctx := context.Background()
	member := f.user(t, "Member")
	_, err := f.groupSvc.Join(ctx, member, g)
	require.NoError(t, err)
	_, err = f.groupSvc.Approve(ctx, f.creator, g, member.UserID)
	require.NoError(t, err)

	public := f.post(t, f.creator, g, nil)
	f.post(t, f.creator, g, func(in *CreatePostInput) { in.Visibility = enums.PostVisibilityMembersOnly })
	f.post(t, f.creator, g, func(in *CreatePostInput) { in.Visibility = enums.PostVisibilityAdminsOnly })
	f.post(t, member, g, nil)

	cases := []struct {
		name   string
		viewer pkgAuth.Actor
		want   int
	}{
		{"anonymous", pkgAuth.Actor{}, 1},
		{"outsider", f.user(t, "Outsider"), 1},
		{"member sees own pending", member, 3},
		{"creator sees everything", f.creator, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := f.svc.List(ctx, tc.viewer, g, pagination.Params{}, ListFilters{})
			require.NoError(t, err)
			assert.Len(t, page.Items, tc.want)
			assert.Equal(t, int64(tc.want), page.Pagination.Total)
		})
	}

	_, err = f.svc.Pin(ctx, f.creator, g, public.ID)
	require.NoError(t, err)
	page, err := f.svc.List(ctx, f.creator, g, pagination.Params{Sort: "newest"}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, public.ID, page.Items[0].ID, "pinned posts lead the feed")

	_, err = f.svc.List(ctx, f.creator, g, pagination.Params{Sort: "oldest"}, ListFilters{})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestPrivateGroupPostsAreForbidden(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, func(in *groups.CreateGroupInput) { in.Privacy = enums.GroupPrivacyPrivate })
	p := f.post(t, f.creator, g, nil)
	outsider := f.user(t, "Outsider")
	ctx := context.Background()

	_, err := f.svc.List(ctx, outsider, g, pagination.Params{}, ListFilters{})
	requireCode(t, err, pkgerrors.CodeForbidden)
	_, err = f.svc.Get(ctx, outsider, g, p.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	got, err := f.svc.Get(ctx, f.creator, g, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestHiddenPostsReadAsNotFound(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	p := f.post(t, f.creator, g, func(in *CreatePostInput) { in.Visibility = enums.PostVisibilityAdminsOnly })
	member := f.member(t, g, "Member")

	_, err := f.svc.Get(context.Background(), member, g, p.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	other := f.group(t, nil)
	_, err = f.svc.Get(context.Background(), f.creator, other, p.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestArchiveAndDelete(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	author := f.member(t, g, "Author")
	other := f.member(t, g, "Other")
	mod := f.moderator(t, g)
	ctx := context.Background()

	first := f.post(t, author, g, nil)
	second := f.post(t, author, g, nil)
	f.assertTotalPosts(t, g, 2)

	_, err := f.svc.Archive(ctx, other, g, first.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	archived, err := f.svc.Archive(ctx, author, g, first.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PostStatusArchived, archived.Status)
	f.assertTotalPosts(t, g, 1)

	_, err = f.svc.Archive(ctx, mod, g, first.ID)
	requireCode(t, err, pkgerrors.CodeConflict)

	requireCode(t, f.svc.Delete(ctx, other, g, second.ID), pkgerrors.CodeForbidden)
	require.NoError(t, f.svc.Delete(ctx, mod, g, second.ID))
	f.assertTotalPosts(t, g, 0)

	_, err = f.svc.Get(ctx, f.creator, g, second.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	require.NoError(t, f.svc.Delete(ctx, mod, g, first.ID), "archived posts can still be removed")
	f.assertTotalPosts(t, g, 0)
}

func TestUpdateIsAuthorOnly(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	author := f.member(t, g, "Author")
	p := f.post(t, author, g, nil)
	ctx := context.Background()

	content := "Found a foster, thanks all"
	_, err := f.svc.Update(ctx, f.creator, g, p.ID, UpdatePostInput{Content: &content})
	requireCode(t, err, pkgerrors.CodeForbidden)

	updated, err := f.svc.Update(ctx, author, g, p.ID, UpdatePostInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)

	bad := enums.PostVisibility("everyone")
	_, err = f.svc.Update(ctx, author, g, p.ID, UpdatePostInput{Visibility: &bad})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestPinRequiresModerator(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	member := f.member(t, g, "Member")
	p := f.post(t, member, g, nil)
	ctx := context.Background()

	_, err := f.svc.Pin(ctx, member, g, p.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	pinned, err := f.svc.Pin(ctx, f.creator, g, p.ID)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	unpinned, err := f.svc.Unpin(ctx, f.creator, g, p.ID)
	require.NoError(t, err)
	assert.False(t, unpinned.IsPinned)
}

func TestLikesAndShares(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	member := f.member(t, g, "Member")
	p := f.post(t, f.creator, g, nil)
	ctx := context.Background()

	_, err := f.svc.ToggleLike(ctx, f.user(t, "Outsider"), g, p.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	res, err := f.svc.ToggleLike(ctx, member, g, p.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikesCount: 1}, *res)

	got, err := f.svc.Get(ctx, member, g, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Liked)
	assert.True(t, *got.Liked)

	res, err = f.svc.ToggleLike(ctx, member, g, p.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikesCount: 0}, *res)

	for i := 0; i < 2; i++ {
		share, err := f.svc.Share(ctx, member, g, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, share.SharesCount)
	}
}

func TestCommentsAndReplies(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	author := f.member(t, g, "Commenter")
	other := f.member(t, g, "Other")
	p := f.post(t, f.creator, g, nil)
	ctx := context.Background()

	c, err := f.svc.AddComment(ctx, author, g, p.ID, CommentInput{Content: "I can help Saturday"})
	require.NoError(t, err)
	require.NotNil(t, c.Author)
	assert.Equal(t, "Commenter", c.Author.Name)

	r, err := f.svc.AddReply(ctx, other, g, p.ID, c.ID, CommentInput{Content: "Me too"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, r.CommentID)

	_, err = f.svc.AddReply(ctx, other, g, p.ID, uuid.New(), CommentInput{Content: "lost"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	got, err := f.svc.Get(ctx, other, g, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount, "replies do not count as comments")
	require.Len(t, got.Comments, 1)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, "Me too", got.Comments[0].Replies[0].Content)

	requireCode(t, f.svc.DeleteReply(ctx, author, g, p.ID, c.ID, r.ID), pkgerrors.CodeForbidden)
	requireCode(t, f.svc.DeleteComment(ctx, other, g, p.ID, c.ID), pkgerrors.CodeForbidden)

	require.NoError(t, f.svc.DeleteComment(ctx, f.creator, g, p.ID, c.ID))
	got, err = f.svc.Get(ctx, other, g, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)
	assert.Empty(t, got.Comments)

	var replies int64
	require.NoError(t, f.conn.Model(&models.CommentReply{}).Where("comment_id = ?", c.ID).Count(&replies).Error)
	assert.Zero(t, replies)
}

func TestGetFlagsTruncatedCommentThread(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	author := f.member(t, g, "Chatty")
	p := f.post(t, f.creator, g, nil)
	ctx := context.Background()

	svc, err := NewService(ServiceParams{Repo: NewRepository(f.conn), Groups: f.groupRepo, Tx: f.client, CommentLimit: 2})
	require.NoError(t, err)

	for _, text := range []string{"first", "second"} {
		_, err := svc.AddComment(ctx, author, g, p.ID, CommentInput{Content: text})
		require.NoError(t, err)
	}
	got, err := svc.Get(ctx, author, g, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 2)
	assert.False(t, got.CommentsTruncated)

	_, err = svc.AddComment(ctx, author, g, p.ID, CommentInput{Content: "third"})
	require.NoError(t, err)
	got, err = svc.Get(ctx, author, g, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 2)
	assert.True(t, got.CommentsTruncated)
	assert.Equal(t, 3, got.CommentsCount)
}

func TestInteractionsNeedActivePost(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	author := f.member(t, g, "Author")
	p := f.post(t, author, g, nil)
	ctx := context.Background()

	_, err := f.svc.Archive(ctx, author, g, p.ID)
	require.NoError(t, err)

	_, err = f.svc.ToggleLike(ctx, author, g, p.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.AddComment(ctx, f.creator, g, p.ID, CommentInput{Content: "closed?"})
	requireCode(t, err, pkgerrors.CodeConflict)
}
