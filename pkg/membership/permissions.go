package membership

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

// Permission names one guarded group or post operation.
type Permission string

const (
	PermEditGroup        Permission = "group.edit"
	PermDeleteGroup      Permission = "group.delete"
	PermViewRequests     Permission = "group.requests.view"
	PermApproveMember    Permission = "member.approve"
	PermRejectMember     Permission = "member.reject"
	PermBanMember        Permission = "member.ban"
	PermUnbanMember      Permission = "member.unban"
	PermManageModerators Permission = "member.role.moderator"
	PermManageAdmins     Permission = "member.role.admin"
	PermCreatePost       Permission = "post.create"
	PermInteract         Permission = "post.interact"
	PermPinPost          Permission = "post.pin"
	PermApprovePost      Permission = "post.approve"
	PermModeratePost     Permission = "post.moderate"
	PermModerateComment  Permission = "comment.moderate"
	PermViewHidden       Permission = "post.view_hidden"
)

// matrix holds the minimum level required for each permission.
var matrix = map[Permission]Level{
	PermEditGroup:        LevelAdmin,
	PermDeleteGroup:      LevelCreator,
	PermViewRequests:     LevelModerator,
	PermApproveMember:    LevelModerator,
	PermRejectMember:     LevelModerator,
	PermBanMember:        LevelModerator,
	PermUnbanMember:      LevelModerator,
	PermManageModerators: LevelAdmin,
	PermManageAdmins:     LevelCreator,
	PermCreatePost:       LevelMember,
	PermInteract:         LevelMember,
	PermPinPost:          LevelModerator,
	PermApprovePost:      LevelModerator,
	PermModeratePost:     LevelModerator,
	PermModerateComment:  LevelModerator,
	PermViewHidden:       LevelModerator,
}

// Allows reports whether level may exercise perm.
func Allows(perm Permission, level Level) bool {
	min, ok := matrix[perm]
	if !ok {
		return false
	}
	return level >= min
}

// Require returns Forbidden when level may not exercise perm.
func Require(perm Permission, level Level) error {
	if Allows(perm, level) {
		return nil
	}
	if level == LevelNone {
		return pkgerrors.Forbidden("not an active member of this group")
	}
	return pkgerrors.Forbidden("insufficient group permissions")
}

// CheckModeration validates a ban-style action by actor against target. The
// actor must hold perm, never act on themselves, and outrank the target; only
// the creator outranks an admin and nobody outranks the creator.
func CheckModeration(perm Permission, actor uuid.UUID, actorLevel Level, target *models.GroupMember, createdBy uuid.UUID) error {
	if err := Require(perm, actorLevel); err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if target.UserID == actor {
		return pkgerrors.Forbidden("cannot moderate yourself")
	}
	rank := RankOf(createdBy, target)
	if rank == LevelCreator {
		return pkgerrors.Forbidden("the group creator cannot be moderated")
	}
	if rank >= actorLevel {
		if rank == LevelAdmin {
			return pkgerrors.Forbidden("only the group creator can ban an admin")
		}
		return pkgerrors.Forbidden("insufficient group permissions")
	}
	return nil
}

// RoleChange is the validated result of a promote or demote request.
type RoleChange struct {
	From enums.MemberRole
	To   enums.MemberRole
}

// Changed reports whether the role actually moves.
func (c RoleChange) Changed() bool {
	return c.From != c.To
}

// CheckRoleChange validates changing target's role to next by an actor at
// actorLevel. Granting or revoking admin needs the creator, moderator changes
// need an admin, the creator's own role is fixed and the target must be active.
func CheckRoleChange(actorLevel Level, target *models.GroupMember, createdBy uuid.UUID, next enums.MemberRole) (RoleChange, error) {
	if target == nil {
		return RoleChange{}, pkgerrors.NotFound("member not found")
	}
	if !next.IsValid() {
		return RoleChange{}, pkgerrors.Validation("invalid member role")
	}
	if target.UserID == createdBy {
		return RoleChange{}, pkgerrors.Forbidden("the group creator's role cannot change")
	}
	if target.Status != enums.MembershipStatusActive {
		return RoleChange{}, pkgerrors.Conflict("member is not active")
	}
	change := RoleChange{From: target.Role, To: next}
	perm := PermManageModerators
	if change.From == enums.MemberRoleAdmin || change.To == enums.MemberRoleAdmin {
		perm = PermManageAdmins
	}
	if err := Require(perm, actorLevel); err != nil {
		return RoleChange{}, err
	}
	return change, nil
}

// CheckDirection rejects a promote that would lower the role and a demote
// that would raise it. Keeping the same role passes in both directions.
func (c RoleChange) CheckDirection(promote bool) error {
	from, to := roleLevel(c.From), roleLevel(c.To)
	if promote && to < from {
		return pkgerrors.Validation("promote cannot lower a member's role")
	}
	if !promote && to > from {
		return pkgerrors.Validation("demote cannot raise a member's role")
	}
	return nil
}
