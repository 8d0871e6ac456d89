package groups

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/visibility"
)

// Settings are the moderation knobs of a group.
type Settings struct {
	RequireApproval  bool `json:"requireApproval"`
	AllowMemberPosts bool `json:"allowMemberPosts"`
	MaxMembersLimit  int  `json:"maxMembersLimit"`
}

// GroupDTO is the full group view returned to anyone who passes the
// visibility gate.
type GroupDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Type          enums.GroupType     `json:"type"`
	Category      enums.GroupCategory `json:"category"`
	Privacy       enums.GroupPrivacy  `json:"privacy"`
	CoverImageURL *string             `json:"coverImageUrl,omitempty"`
	Location      *string             `json:"location,omitempty"`
	Rules         []string            `json:"rules"`
	Tags          []string            `json:"tags"`
	CreatedBy     uuid.UUID           `json:"createdBy"`
	Settings      Settings            `json:"settings"`
	MemberCount   int                 `json:"memberCount"`
	TotalPosts    int                 `json:"totalPosts"`
	Admins        []uuid.UUID         `json:"admins"`
	Moderators    []uuid.UUID         `json:"moderators"`
	Membership    *MembershipDTO      `json:"membership,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Detail is what GET /groups/{id} returns: the full view, or only the summary
// for outsiders of a private group.
type Detail struct {
	Full    *GroupDTO
	Summary *visibility.GroupSummary
}

// Restricted reports whether only the summary may be shown.
func (d Detail) Restricted() bool {
	return d.Full == nil
}

func (d Detail) MarshalJSON() ([]byte, error) {
	if d.Full != nil {
		return json.Marshal(d.Full)
	}
	return json.Marshal(d.Summary)
}

// ListItem is one row of the group directory. Private groups expose only the
// summary fields.
type ListItem struct {
	visibility.GroupSummary
	CoverImageURL *string  `json:"coverImageUrl,omitempty"`
	Location      *string  `json:"location,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	TotalPosts    *int     `json:"totalPosts,omitempty"`
}

// MembershipDTO is one user's relationship with one group.
type MembershipDTO struct {
	GroupID  uuid.UUID              `json:"groupId"`
	UserID   uuid.UUID              `json:"userId"`
	Role     enums.MemberRole       `json:"role"`
	Status   enums.MembershipStatus `json:"status"`
	JoinedAt time.Time              `json:"joinedAt"`
}

// MemberDTO is a roster entry with the member's public profile.
type MemberDTO struct {
	UserID    uuid.UUID              `json:"userId"`
	Name      string                 `json:"name"`
	AvatarURL *string                `json:"avatarUrl,omitempty"`
	Role      enums.MemberRole       `json:"role"`
	Status    enums.MembershipStatus `json:"status"`
	IsCreator bool                   `json:"isCreator"`
	JoinedAt  time.Time              `json:"joinedAt"`
}

// UserGroupDTO is one entry of a user's group list.
type UserGroupDTO struct {
	Group  ListItem               `json:"group"`
	Role   enums.MemberRole       `json:"role"`
	Status enums.MembershipStatus `json:"status"`
}

// CreateGroupInput is the body of POST /groups.
type CreateGroupInput struct {
	Name             string              `json:"name" validate:"required,min=3,max=100"`
	Description      string              `json:"description" validate:"required,max=2000"`
	Type             enums.GroupType     `json:"type" validate:"required"`
	Category         enums.GroupCategory `json:"category" validate:"required"`
	Privacy          enums.GroupPrivacy  `json:"privacy,omitempty"`
	CoverImageURL    *string             `json:"coverImageUrl,omitempty" validate:"omitempty,url"`
	Location         *string             `json:"location,omitempty" validate:"omitempty,max=120"`
	Rules            []string            `json:"rules,omitempty" validate:"max=20,dive,max=500"`
	Tags             []string            `json:"tags,omitempty" validate:"max=20,dive,max=40"`
	RequireApproval  *bool               `json:"requireApproval,omitempty"`
	AllowMemberPosts *bool               `json:"allowMemberPosts,omitempty"`
	MaxMembersLimit  *int                `json:"maxMembersLimit,omitempty" validate:"omitempty,min=0"`
}

// UpdateGroupInput is a partial update; nil fields are unchanged.
type UpdateGroupInput struct {
	Name             *string              `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description      *string              `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type             *enums.GroupType     `json:"type,omitempty"`
	Category         *enums.GroupCategory `json:"category,omitempty"`
	Privacy          *enums.GroupPrivacy  `json:"privacy,omitempty"`
	CoverImageURL    *string              `json:"coverImageUrl,omitempty" validate:"omitempty,url"`
	Location         *string              `json:"location,omitempty" validate:"omitempty,max=120"`
	Rules            *[]string            `json:"rules,omitempty" validate:"omitempty,max=20,dive,max=500"`
	Tags             *[]string            `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
	RequireApproval  *bool                `json:"requireApproval,omitempty"`
	AllowMemberPosts *bool                `json:"allowMemberPosts,omitempty"`
	MaxMembersLimit  *int                 `json:"maxMembersLimit,omitempty" validate:"omitempty,min=0"`
}

// RoleInput is the body of promote and demote.
type RoleInput struct {
	Role enums.MemberRole `json:"role,omitempty"`
}

// ListFilters narrows the group directory.
type ListFilters struct {
	Type     *enums.GroupType
	Category *enums.GroupCategory
	Privacy  *enums.GroupPrivacy
	Query    string
}

func fullView(g *models.Group, staff []models.GroupMember) *GroupDTO {
	roster := rosterOf(g, staff)
	admins := append([]uuid.UUID{g.CreatedBy}, roster.Admins...)
	return &GroupDTO{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		Type:          g.Type,
		Category:      g.Category,
		Privacy:       g.Privacy,
		CoverImageURL: g.CoverImageURL,
		Location:      g.Location,
		Rules:         orEmpty(g.Rules),
		Tags:          orEmpty(g.Tags),
		CreatedBy:     g.CreatedBy,
		Settings: Settings{
			RequireApproval:  g.RequireApproval,
			AllowMemberPosts: g.AllowMemberPosts,
			MaxMembersLimit:  g.MaxMembersLimit,
		},
		MemberCount: g.MemberCount,
		TotalPosts:  g.TotalPosts,
		Admins:      dedupe(admins),
		Moderators:  orEmptyIDs(roster.Moderators),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func listItem(g models.Group) ListItem {
	item := ListItem{GroupSummary: visibility.Summarize(&g)}
	if g.Privacy == enums.GroupPrivacyPublic {
		total := g.TotalPosts
		item.CoverImageURL = g.CoverImageURL
		item.Location = g.Location
		item.Tags = g.Tags
		item.TotalPosts = &total
	}
	return item
}

func membershipOf(m *models.GroupMember) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanTags(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		tag := strings.ToLower(strings.TrimSpace(v))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func orEmptyIDs(in []uuid.UUID) []uuid.UUID {
	if in == nil {
		return []uuid.UUID{}
	}
	return in
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
