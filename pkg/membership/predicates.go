package membership

import (
	"slices"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// Roster is the authorization view of a group: its creator and the derived
// admin and moderator sets of active members.
type Roster struct {
	CreatedBy  uuid.UUID
	Admins     []uuid.UUID
	Moderators []uuid.UUID
}

// NewRoster derives the admin and moderator sets from active roster rows.
func NewRoster(createdBy uuid.UUID, members []models.GroupMember) Roster {
	r := Roster{CreatedBy: createdBy}
	for _, m := range members {
		if m.Status != enums.MembershipStatusActive {
			continue
		}
		switch m.Role {
		case enums.MemberRoleAdmin:
			r.Admins = append(r.Admins, m.UserID)
		case enums.MemberRoleModerator:
			r.Moderators = append(r.Moderators, m.UserID)
		}
	}
	return r
}

func IsCreator(actor uuid.UUID, g Roster) bool {
	return actor != uuid.Nil && actor == g.CreatedBy
}

func IsAdmin(actor uuid.UUID, g Roster) bool {
	return IsCreator(actor, g) || slices.Contains(g.Admins, actor)
}

func IsModerator(actor uuid.UUID, g Roster) bool {
	return actor != uuid.Nil && slices.Contains(g.Moderators, actor)
}

func CanModerate(actor uuid.UUID, g Roster) bool {
	return IsAdmin(actor, g) || IsModerator(actor, g)
}

// Level ranks an actor within one group.
type Level int

const (
	LevelNone Level = iota
	LevelMember
	LevelModerator
	LevelAdmin
	LevelCreator
)

func (l Level) String() string {
	switch l {
	case LevelMember:
		return "member"
	case LevelModerator:
		return "moderator"
	case LevelAdmin:
		return "admin"
	case LevelCreator:
		return "creator"
	}
	return "none"
}

// LevelOf resolves actor's level from their roster row. Only active rows
// confer a level, and the creator always ranks highest.
func LevelOf(actor, createdBy uuid.UUID, m *models.GroupMember) Level {
	if actor != uuid.Nil && actor == createdBy {
		return LevelCreator
	}
	if m == nil || m.UserID != actor || m.Status != enums.MembershipStatusActive {
		return LevelNone
	}
	return roleLevel(m.Role)
}

// RankOf is the level a target holds by role regardless of status. Used when
// the target is the subject of a moderation action.
func RankOf(createdBy uuid.UUID, m *models.GroupMember) Level {
	if m == nil {
		return LevelNone
	}
	if m.UserID == createdBy {
		return LevelCreator
	}
	return roleLevel(m.Role)
}

func roleLevel(role enums.MemberRole) Level {
	switch role {
	case enums.MemberRoleAdmin:
		return LevelAdmin
	case enums.MemberRoleModerator:
		return LevelModerator
	case enums.MemberRoleMember:
		return LevelMember
	}
	return LevelNone
}

func (l Level) CanModerate() bool {
	return l >= LevelModerator
}

func (l Level) IsAdmin() bool {
	return l >= LevelAdmin
}
