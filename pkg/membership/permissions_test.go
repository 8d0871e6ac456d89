package membership

import (
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

func member(id uuid.UUID, role enums.MemberRole, status enums.MembershipStatus) *models.GroupMember {
	return &models.GroupMember{UserID: id, Role: role, Status: status}
}

func TestPredicates(t *testing.T) {
	creator, admin, mod, plain := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	roster := NewRoster(creator, []models.GroupMember{
		*member(creator, enums.MemberRoleAdmin, enums.MembershipStatusActive),
		*member(admin, enums.MemberRoleAdmin, enums.MembershipStatusActive),
		*member(mod, enums.MemberRoleModerator, enums.MembershipStatusActive),
		*member(plain, enums.MemberRoleMember, enums.MembershipStatusActive),
		*member(uuid.New(), enums.MemberRoleModerator, enums.MembershipStatusBanned),
	})

	if len(roster.Moderators) != 1 {
		t.Fatalf("banned moderators must not count, got %v", roster.Moderators)
	}
	if !IsCreator(creator, roster) || IsCreator(admin, roster) {
		t.Fatal("creator predicate wrong")
	}
	if !IsAdmin(creator, roster) || !IsAdmin(admin, roster) || IsAdmin(mod, roster) {
		t.Fatal("admin predicate wrong")
	}
	if !IsModerator(mod, roster) || IsModerator(plain, roster) {
		t.Fatal("moderator predicate wrong")
	}
	if !CanModerate(mod, roster) || !CanModerate(admin, roster) || CanModerate(plain, roster) {
		t.Fatal("can moderate predicate wrong")
	}
	if IsCreator(uuid.Nil, Roster{}) {
		t.Fatal("nil actor is never the creator")
	}
}

func TestLevelOf(t *testing.T) {
	creator, u := uuid.New(), uuid.New()
	if LevelOf(creator, creator, nil) != LevelCreator {
		t.Fatal("creator ranks highest even without a row")
	}
	if LevelOf(u, creator, member(u, enums.MemberRoleAdmin, enums.MembershipStatusPending)) != LevelNone {
		t.Fatal("non-active rows confer nothing")
	}
	if LevelOf(u, creator, member(u, enums.MemberRoleModerator, enums.MembershipStatusActive)) != LevelModerator {
		t.Fatal("expected moderator")
	}
	if LevelOf(u, creator, member(uuid.New(), enums.MemberRoleAdmin, enums.MembershipStatusActive)) != LevelNone {
		t.Fatal("another user's row must not apply")
	}
}

func TestPermissionMatrix(t *testing.T) {
	cases := []struct {
		perm    Permission
		allowed []Level
		denied  []Level
	}{
		{PermManageAdmins, []Level{LevelCreator}, []Level{LevelAdmin, LevelModerator, LevelMember}},
		{PermManageModerators, []Level{LevelCreator, LevelAdmin}, []Level{LevelModerator, LevelMember}},
		{PermBanMember, []Level{LevelCreator, LevelAdmin, LevelModerator}, []Level{LevelMember, LevelNone}},
		{PermPinPost, []Level{LevelModerator}, []Level{LevelMember}},
		{PermInteract, []Level{LevelMember}, []Level{LevelNone}},
		{PermDeleteGroup, []Level{LevelCreator}, []Level{LevelAdmin}},
		{PermEditGroup, []Level{LevelAdmin}, []Level{LevelModerator}},
	}
	for _, tc := range cases {
		for _, l := range tc.allowed {
			if !Allows(tc.perm, l) {
				t.Fatalf("%s should allow %s", tc.perm, l)
			}
		}
		for _, l := range tc.denied {
			if Allows(tc.perm, l) {
				t.Fatalf("%s should deny %s", tc.perm, l)
			}
			if !pkgerrors.IsCode(Require(tc.perm, l), pkgerrors.CodeForbidden) {
				t.Fatalf("%s: expected forbidden for %s", tc.perm, l)
			}
		}
	}
	if Allows("unknown", LevelCreator) {
		t.Fatal("unknown permissions are denied")
	}
}

func TestCheckModeration(t *testing.T) {
	creator, admin, other := uuid.New(), uuid.New(), uuid.New()

	cases := []struct {
		name   string
		actor  uuid.UUID
		level  Level
		target *models.GroupMember
		ok     bool
		msg    string
	}{
		{"moderator bans member", admin, LevelModerator, member(other, enums.MemberRoleMember, enums.MembershipStatusActive), true, ""},
		{"member cannot ban", admin, LevelMember, member(other, enums.MemberRoleMember, enums.MembershipStatusActive), false, ""},
		{"self ban", admin, LevelAdmin, member(admin, enums.MemberRoleAdmin, enums.MembershipStatusActive), false, "cannot moderate yourself"},
		{"creator untouchable", admin, LevelAdmin, member(creator, enums.MemberRoleAdmin, enums.MembershipStatusActive), false, "the group creator cannot be moderated"},
		{"admin bans admin", admin, LevelAdmin, member(other, enums.MemberRoleAdmin, enums.MembershipStatusActive), false, "only the group creator can ban an admin"},
		{"creator bans admin", creator, LevelCreator, member(other, enums.MemberRoleAdmin, enums.MembershipStatusActive), true, ""},
		{"moderator bans moderator", admin, LevelModerator, member(other, enums.MemberRoleModerator, enums.MembershipStatusActive), false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckModeration(PermBanMember, tc.actor, tc.level, tc.target, creator)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
			if tc.msg != "" && pkgerrors.As(err).Message() != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, pkgerrors.As(err).Message())
			}
		})
	}
}

func TestCheckRoleChange(t *testing.T) {
	creator, target := uuid.New(), uuid.New()
	active := member(target, enums.MemberRoleMember, enums.MembershipStatusActive)

	change, err := CheckRoleChange(LevelAdmin, active, creator, enums.MemberRoleModerator)
	if err != nil || !change.Changed() {
		t.Fatalf("admin may grant moderator: %+v %v", change, err)
	}

	if _, err := CheckRoleChange(LevelAdmin, active, creator, enums.MemberRoleAdmin); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("only the creator grants admin, got %v", err)
	}
	if _, err := CheckRoleChange(LevelCreator, active, creator, enums.MemberRoleAdmin); err != nil {
		t.Fatalf("creator may grant admin: %v", err)
	}

	admin := member(target, enums.MemberRoleAdmin, enums.MembershipStatusActive)
	if _, err := CheckRoleChange(LevelAdmin, admin, creator, enums.MemberRoleMember); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("only the creator revokes admin, got %v", err)
	}

	if _, err := CheckRoleChange(LevelModerator, active, creator, enums.MemberRoleModerator); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("moderators cannot promote, got %v", err)
	}

	mod := member(target, enums.MemberRoleModerator, enums.MembershipStatusActive)
	change, err = CheckRoleChange(LevelAdmin, mod, creator, enums.MemberRoleModerator)
	if err != nil || change.Changed() {
		t.Fatalf("promoting to the current role is a no-op: %+v %v", change, err)
	}

	self := member(creator, enums.MemberRoleAdmin, enums.MembershipStatusActive)
	if _, err := CheckRoleChange(LevelCreator, self, creator, enums.MemberRoleMember); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("creator role is fixed, got %v", err)
	}

	pending := member(target, enums.MemberRoleMember, enums.MembershipStatusPending)
	if _, err := CheckRoleChange(LevelCreator, pending, creator, enums.MemberRoleModerator); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("target must be active, got %v", err)
	}
}

func TestRoleChangeDirection(t *testing.T) {
	cases := []struct {
		change  RoleChange
		promote bool
		ok      bool
	}{
		{RoleChange{From: enums.MemberRoleMember, To: enums.MemberRoleModerator}, true, true},
		{RoleChange{From: enums.MemberRoleAdmin, To: enums.MemberRoleMember}, true, false},
		{RoleChange{From: enums.MemberRoleAdmin, To: enums.MemberRoleModerator}, false, true},
		{RoleChange{From: enums.MemberRoleMember, To: enums.MemberRoleAdmin}, false, false},
		{RoleChange{From: enums.MemberRoleModerator, To: enums.MemberRoleModerator}, false, true},
	}
	for _, tc := range cases {
		err := tc.change.CheckDirection(tc.promote)
		if tc.ok && err != nil {
			t.Fatalf("%+v promote=%v: unexpected error %v", tc.change, tc.promote, err)
		}
		if !tc.ok && !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%+v promote=%v: expected validation error, got %v", tc.change, tc.promote, err)
		}
	}
}
