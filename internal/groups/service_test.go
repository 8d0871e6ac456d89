package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/dbtest"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

type fixture struct {
	svc     Service
	repo    Repository
	conn    *gorm.DB
	reg     *prometheus.Registry
	creator pkgAuth.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	reg := prometheus.NewRegistry()
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      client,
		Metrics: metrics.NewDomainMetrics(reg),
	})
	require.NoError(t, err)
	f := &fixture{svc: svc, repo: repo, conn: conn, reg: reg}
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
	return pkgAuth.Actor{UserID: u.ID, Role: enums.UserRoleUser}
}

func (f *fixture) group(t *testing.T, mutate func(*CreateGroupInput)) *GroupDTO {
	t.Helper()
	input := CreateGroupInput{
		Name:        "Rescue Runners " + uuid.NewString()[:8],
		Description: "Weekend transport volunteers",
		Type:        enums.GroupTypeRescue,
		Category:    enums.GroupCategoryDogs,
	}
	if mutate != nil {
		mutate(&input)
	}
	g, err := f.svc.Create(context.Background(), f.creator, input)
	require.NoError(t, err)
	return g
}

func (f *fixture) memberCount(t *testing.T, groupID uuid.UUID) int {
	t.Helper()
	g, err := f.repo.FindByID(context.Background(), groupID)
	require.NoError(t, err)
	return g.MemberCount
}

// assertCountMatchesRoster checks member_count against the active rows.
func (f *fixture) assertCountMatchesRoster(t *testing.T, groupID uuid.UUID) {
	t.Helper()
	active, err := f.repo.CountMembers(context.Background(), groupID, enums.MembershipStatusActive)
	require.NoError(t, err)
	assert.Equal(t, int(active), f.memberCount(t, groupID))
}

func (f *fixture) transitions(t *testing.T, action string) float64 {
	t.Helper()
	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "group_membership_transitions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "action" && l.GetValue() == action {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, pkgerrors.As(err).Code(), "error: %v", err)
}

func TestCreateSeedsCreatorMembership(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, func(in *CreateGroupInput) { in.Tags = []string{" Dogs", "dogs", "Transport"} })

	assert.Equal(t, 1, g.MemberCount)
	assert.Equal(t, enums.GroupPrivacyPublic, g.Privacy)
	assert.True(t, g.Settings.AllowMemberPosts)
	assert.Equal(t, []uuid.UUID{f.creator.UserID}, g.Admins)
	assert.Empty(t, g.Moderators)
	assert.Equal(t, []string{"dogs", "transport"}, g.Tags)
	require.NotNil(t, g.Membership)
	assert.Equal(t, enums.MemberRoleAdmin, g.Membership.Role)
	f.assertCountMatchesRoster(t, g.ID)

	_, err := f.svc.Create(context.Background(), f.user(t, "Other"), CreateGroupInput{
		Name:        g.Name,
		Description: "copy",
		Type:        enums.GroupTypeRescue,
		Category:    enums.GroupCategoryDogs,
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.creator, CreateGroupInput{
		Name:        "ab",
		Description: "short name",
		Type:        "club",
		Category:    enums.GroupCategoryCats,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "type")

	_, err = f.svc.Create(context.Background(), pkgAuth.Actor{}, CreateGroupInput{})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestJoinOpenGroup(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	u := f.user(t, "Joiner")

	m, err := f.svc.Join(context.Background(), u, g.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusActive, m.Status)
	assert.Equal(t, enums.MemberRoleMember, m.Role)
	assert.Equal(t, 2, f.memberCount(t, g.ID))

	_, err = f.svc.Join(context.Background(), u, g.ID)
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "already a member", pkgerrors.As(err).Message())
	assert.Equal(t, 2, f.memberCount(t, g.ID))
	assert.Equal(t, float64(1), f.transitions(t, "join"))
}

func TestJoinWithApproval(t *testing.T) {
	f := newFixture(t)
	approval := true
	g := f.group(t, func(in *CreateGroupInput) { in.RequireApproval = &approval })
	u := f.user(t, "Applicant")
	ctx := context.Background()

	m, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusPending, m.Status)
	assert.Equal(t, 1, f.memberCount(t, g.ID))

	_, err = f.svc.Join(ctx, u, g.ID)
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "request already pending", pkgerrors.As(err).Message())

	_, err = f.svc.Requests(ctx, u, g.ID, pagination.Params{})
	requireCode(t, err, pkgerrors.CodeForbidden)

	requests, err := f.svc.Requests(ctx, f.creator, g.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, requests.Items, 1)
	assert.Equal(t, "Applicant", requests.Items[0].Name)

	m, err = f.svc.Approve(ctx, f.creator, g.ID, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusActive, m.Status)
	assert.Equal(t, 2, f.memberCount(t, g.ID))

	m, err = f.svc.Approve(ctx, f.creator, g.ID, u.UserID)
	require.NoError(t, err, "approving an active member is a no-op")
	assert.Equal(t, enums.MembershipStatusActive, m.Status)
	assert.Equal(t, 2, f.memberCount(t, g.ID))
	assert.Equal(t, float64(1), f.transitions(t, "approve"))
}

func TestRejectDeletesRequest(t *testing.T) {
	f := newFixture(t)
	approval := true
	g := f.group(t, func(in *CreateGroupInput) { in.RequireApproval = &approval })
	u := f.user(t, "Applicant")
	ctx := context.Background()

	_, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(ctx, f.creator, g.ID, u.UserID))

	row, err := f.repo.Member(ctx, g.ID, u.UserID)
	require.NoError(t, err)
	assert.Nil(t, row)
	requireCode(t, f.svc.Reject(ctx, f.creator, g.ID, u.UserID), pkgerrors.CodeNotFound)

	m, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err, "a rejected user may ask again")
	assert.Equal(t, enums.MembershipStatusPending, m.Status)
}

func TestCapacityLimit(t *testing.T) {
	f := newFixture(t)
	limit := 2
	g := f.group(t, func(in *CreateGroupInput) { in.MaxMembersLimit = &limit })
	ctx := context.Background()

	_, err := f.svc.Join(ctx, f.user(t, "First"), g.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, f.user(t, "Second"), g.ID)
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "maximum member limit reached", pkgerrors.As(err).Message())
	assert.Equal(t, 2, f.memberCount(t, g.ID))
	f.assertCountMatchesRoster(t, g.ID)
}

func TestCapacityAppliesOnApprove(t *testing.T) {
	f := newFixture(t)
	limit, approval := 2, true
	g := f.group(t, func(in *CreateGroupInput) {
		in.MaxMembersLimit = &limit
		in.RequireApproval = &approval
	})
	ctx := context.Background()
	a, b := f.user(t, "A"), f.user(t, "B")

	_, err := f.svc.Join(ctx, a, g.ID)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, b, g.ID)
	require.NoError(t, err, "pending requests do not consume capacity")

	_, err = f.svc.Approve(ctx, f.creator, g.ID, a.UserID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.creator, g.ID, b.UserID)
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestPrivateGroupVisibility(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, func(in *CreateGroupInput) { in.Privacy = enums.GroupPrivacyPrivate })
	outsider := f.user(t, "Outsider")
	ctx := context.Background()

	detail, err := f.svc.Get(ctx, outsider, g.ID)
	require.NoError(t, err)
	require.True(t, detail.Restricted())
	assert.Equal(t, g.Name, detail.Summary.Name)
	assert.Equal(t, 1, detail.Summary.MemberCount)

	anon, err := f.svc.Get(ctx, pkgAuth.Actor{}, g.ID)
	require.NoError(t, err)
	assert.True(t, anon.Restricted())

	_, err = f.svc.Members(ctx, outsider, g.ID, nil, pagination.Params{})
	requireCode(t, err, pkgerrors.CodeForbidden)

	detail, err = f.svc.Get(ctx, f.creator, g.ID)
	require.NoError(t, err)
	require.False(t, detail.Restricted())
	assert.Equal(t, []uuid.UUID{f.creator.UserID}, detail.Full.Admins)

	members, err := f.svc.Members(ctx, f.creator, g.ID, nil, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, members.Items, 1)
	assert.True(t, members.Items[0].IsCreator)
	assert.Equal(t, "Creator", members.Items[0].Name)
}

func TestListShowsSummaryForPrivateGroups(t *testing.T) {
	f := newFixture(t)
	pub := f.group(t, func(in *CreateGroupInput) { in.Tags = []string{"dogs"} })
	priv := f.group(t, func(in *CreateGroupInput) {
		in.Privacy = enums.GroupPrivacyPrivate
		in.Tags = []string{"secret"}
	})

	page, err := f.svc.List(context.Background(), pagination.Params{Sort: "alphabetical"}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		switch item.ID {
		case pub.ID:
			assert.Equal(t, []string{"dogs"}, item.Tags)
			assert.NotNil(t, item.TotalPosts)
		case priv.ID:
			assert.Nil(t, item.Tags)
			assert.Nil(t, item.TotalPosts)
		}
	}

	private := enums.GroupPrivacyPrivate
	page, err = f.svc.List(context.Background(), pagination.Params{}, ListFilters{Privacy: &private})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, priv.ID, page.Items[0].ID)

	_, err = f.svc.List(context.Background(), pagination.Params{Sort: "random"}, ListFilters{})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreatorCannotLeave(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)

	err := f.svc.Leave(context.Background(), f.creator, g.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
	assert.Equal(t, 1, f.memberCount(t, g.ID))
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	u := f.user(t, "Member")
	ctx := context.Background()

	requireCode(t, f.svc.Leave(ctx, u, g.ID), pkgerrors.CodeNotFound)

	_, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Leave(ctx, u, g.ID))
	assert.Equal(t, 1, f.memberCount(t, g.ID))
	f.assertCountMatchesRoster(t, g.ID)
}

func TestBannedUserNeedsUnban(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	u := f.user(t, "Troll")
	ctx := context.Background()

	_, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)

	m, err := f.svc.Ban(ctx, f.creator, g.ID, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusBanned, m.Status)
	assert.Equal(t, 1, f.memberCount(t, g.ID))

	_, err = f.svc.Join(ctx, u, g.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
	assert.Equal(t, "banned from this group", pkgerrors.As(err).Message())

	_, err = f.svc.Ban(ctx, f.creator, g.ID, u.UserID)
	requireCode(t, err, pkgerrors.CodeConflict)

	m, err = f.svc.Unban(ctx, f.creator, g.ID, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, enums.MembershipStatusActive, m.Status)
	assert.Equal(t, 2, f.memberCount(t, g.ID))

	_, err = f.svc.Unban(ctx, f.creator, g.ID, u.UserID)
	requireCode(t, err, pkgerrors.CodeConflict)
	f.assertCountMatchesRoster(t, g.ID)
}

func TestBanResetsRole(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	u := f.user(t, "Moderator")
	ctx := context.Background()

	_, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)
	_, err = f.svc.Promote(ctx, f.creator, g.ID, u.UserID, RoleInput{})
	require.NoError(t, err)

	m, err := f.svc.Ban(ctx, f.creator, g.ID, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleMember, m.Role)

	detail, err := f.svc.Get(ctx, f.creator, g.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Full.Moderators)
}

func TestPromoteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	u := f.user(t, "Helper")
	ctx := context.Background()

	_, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		m, err := f.svc.Promote(ctx, f.creator, g.ID, u.UserID, RoleInput{Role: enums.MemberRoleModerator})
		require.NoError(t, err)
		assert.Equal(t, enums.MemberRoleModerator, m.Role)
	}

	detail, err := f.svc.Get(ctx, f.creator, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{u.UserID}, detail.Full.Moderators)

	_, err = f.svc.Demote(ctx, f.creator, g.ID, u.UserID, RoleInput{Role: enums.MemberRoleAdmin})
	requireCode(t, err, pkgerrors.CodeValidation)

	m, err := f.svc.Demote(ctx, f.creator, g.ID, u.UserID, RoleInput{})
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleMember, m.Role)
}

func TestRoleChangePermissions(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	admin, member := f.user(t, "Admin"), f.user(t, "Member")
	ctx := context.Background()

	for _, u := range []pkgAuth.Actor{admin, member} {
		_, err := f.svc.Join(ctx, u, g.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.Promote(ctx, f.creator, g.ID, admin.UserID, RoleInput{Role: enums.MemberRoleAdmin})
	require.NoError(t, err)

	_, err = f.svc.Promote(ctx, admin, g.ID, member.UserID, RoleInput{Role: enums.MemberRoleAdmin})
	requireCode(t, err, pkgerrors.CodeForbidden)

	m, err := f.svc.Promote(ctx, admin, g.ID, member.UserID, RoleInput{Role: enums.MemberRoleModerator})
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleModerator, m.Role)

	_, err = f.svc.Demote(ctx, member, g.ID, f.creator.UserID, RoleInput{})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestAdminCannotBanAdmin(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	a, b, mod := f.user(t, "A"), f.user(t, "B"), f.user(t, "Mod")
	ctx := context.Background()

	for _, u := range []pkgAuth.Actor{a, b, mod} {
		_, err := f.svc.Join(ctx, u, g.ID)
		require.NoError(t, err)
	}
	for _, u := range []pkgAuth.Actor{a, b} {
		_, err := f.svc.Promote(ctx, f.creator, g.ID, u.UserID, RoleInput{Role: enums.MemberRoleAdmin})
		require.NoError(t, err)
	}
	_, err := f.svc.Promote(ctx, f.creator, g.ID, mod.UserID, RoleInput{})
	require.NoError(t, err)

	_, err = f.svc.Ban(ctx, a, g.ID, b.UserID)
	requireCode(t, err, pkgerrors.CodeForbidden)
	assert.Equal(t, "only the group creator can ban an admin", pkgerrors.As(err).Message())

	_, err = f.svc.Ban(ctx, mod, g.ID, a.UserID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Ban(ctx, a, g.ID, f.creator.UserID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Ban(ctx, f.creator, g.ID, b.UserID)
	require.NoError(t, err)
	f.assertCountMatchesRoster(t, g.ID)
}

func TestMemberCountInvariantAcrossTransitions(t *testing.T) {
	f := newFixture(t)
	approval := true
	g := f.group(t, func(in *CreateGroupInput) { in.RequireApproval = &approval })
	ctx := context.Background()
	users := []pkgAuth.Actor{f.user(t, "U1"), f.user(t, "U2"), f.user(t, "U3")}

	for _, u := range users {
		_, err := f.svc.Join(ctx, u, g.ID)
		require.NoError(t, err)
		f.assertCountMatchesRoster(t, g.ID)
	}
	_, err := f.svc.Approve(ctx, f.creator, g.ID, users[0].UserID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.creator, g.ID, users[1].UserID)
	require.NoError(t, err)
	f.assertCountMatchesRoster(t, g.ID)

	_, err = f.svc.Ban(ctx, f.creator, g.ID, users[2].UserID)
	require.NoError(t, err, "pending members can be banned")
	f.assertCountMatchesRoster(t, g.ID)

	require.NoError(t, f.svc.Leave(ctx, users[0], g.ID))
	require.NoError(t, f.svc.Leave(ctx, users[2], g.ID))
	f.assertCountMatchesRoster(t, g.ID)
	assert.Equal(t, 2, f.memberCount(t, g.ID))
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	u := f.user(t, "Member")
	ctx := context.Background()
	_, err := f.svc.Join(ctx, u, g.ID)
	require.NoError(t, err)

	desc := "Updated description"
	_, err = f.svc.Update(ctx, u, g.ID, UpdateGroupInput{Description: &desc})
	requireCode(t, err, pkgerrors.CodeForbidden)

	updated, err := f.svc.Update(ctx, f.creator, g.ID, UpdateGroupInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	limit := 1
	_, err = f.svc.Update(ctx, f.creator, g.ID, UpdateGroupInput{MaxMembersLimit: &limit})
	requireCode(t, err, pkgerrors.CodeValidation)

	requireCode(t, f.svc.Delete(ctx, u, g.ID), pkgerrors.CodeForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.creator, g.ID))

	_, err = f.svc.Get(ctx, f.creator, g.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	page, err := f.svc.List(ctx, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestPlatformAdminCanDelete(t *testing.T) {
	f := newFixture(t)
	g := f.group(t, nil)
	admin := f.user(t, "Site Admin")
	admin.Role = enums.UserRoleAdmin

	require.NoError(t, f.svc.Delete(context.Background(), admin, g.ID))
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	approval := true
	open := f.group(t, nil)
	gated := f.group(t, func(in *CreateGroupInput) { in.RequireApproval = &approval })
	gone := f.group(t, nil)
	u := f.user(t, "Member")
	ctx := context.Background()

	for _, id := range []uuid.UUID{open.ID, gated.ID, gone.ID} {
		_, err := f.svc.Join(ctx, u, id)
		require.NoError(t, err)
	}
	require.NoError(t, f.svc.Delete(ctx, f.creator, gone.ID))

	page, err := f.svc.ListForUser(ctx, u.UserID, nil, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.Total)

	active := enums.MembershipStatusActive
	page, err = f.svc.ListForUser(ctx, u.UserID, &active, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, open.ID, page.Items[0].Group.ID)
	assert.Equal(t, enums.MemberRoleMember, page.Items[0].Role)
}
