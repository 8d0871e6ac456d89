package visibility

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/membership"
)

// GroupSummary is all a non-member may learn about a private group.
type GroupSummary struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        enums.GroupType     `json:"type"`
	Category    enums.GroupCategory `json:"category"`
	Privacy     enums.GroupPrivacy  `json:"privacy"`
	MemberCount int                 `json:"memberCount"`
	CreatedBy   uuid.UUID           `json:"createdBy"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func Summarize(g *models.Group) GroupSummary {
	return GroupSummary{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Type:        g.Type,
		Category:    g.Category,
		Privacy:     g.Privacy,
		MemberCount: g.MemberCount,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

// CanSeeGroupContent reports whether a viewer at level may see the roster and
// posts of g. Public groups are open to anyone; private ones to active members.
func CanSeeGroupContent(g *models.Group, level membership.Level) bool {
	if g == nil {
		return false
	}
	return g.Privacy != enums.GroupPrivacyPrivate || level >= membership.LevelMember
}

// EnsureGroupContent is CanSeeGroupContent as an error: Forbidden for
// outsiders of a private group.
func EnsureGroupContent(g *models.Group, level membership.Level) error {
	if g == nil || !g.IsActive {
		return pkgerrors.NotFound("group not found")
	}
	if !CanSeeGroupContent(g, level) {
		return pkgerrors.Forbidden("this group is private")
	}
	return nil
}

// PostFilter is the set of statuses and visibilities a viewer may list.
type PostFilter struct {
	Visibilities []enums.PostVisibility
	Statuses     []enums.PostStatus
	// OwnPending lets the author see their own pending posts.
	OwnPending bool
	Viewer     uuid.UUID
}

// PostFilterFor builds the listing filter for viewer at level.
func PostFilterFor(viewer uuid.UUID, level membership.Level) PostFilter {
	f := PostFilter{
		Visibilities: []enums.PostVisibility{enums.PostVisibilityPublic},
		Statuses:     []enums.PostStatus{enums.PostStatusActive},
		Viewer:       viewer,
	}
	if level >= membership.LevelMember {
		f.Visibilities = append(f.Visibilities, enums.PostVisibilityMembersOnly)
		f.OwnPending = true
	}
	if level.CanModerate() {
		f.Visibilities = append(f.Visibilities, enums.PostVisibilityAdminsOnly)
		f.Statuses = append(f.Statuses, enums.PostStatusPendingApproval, enums.PostStatusArchived)
		f.OwnPending = false
	}
	return f
}

// CanViewPost applies the post-level gate once the group gate passed.
func CanViewPost(p *models.GroupPost, viewer uuid.UUID, level membership.Level) bool {
	if p == nil || p.Status == enums.PostStatusRemoved {
		return false
	}
	switch p.Visibility {
	case enums.PostVisibilityMembersOnly:
		if level < membership.LevelMember {
			return false
		}
	case enums.PostVisibilityAdminsOnly:
		if !level.CanModerate() {
			return false
		}
	}
	if p.Status == enums.PostStatusActive || level.CanModerate() {
		return true
	}
	return p.Status == enums.PostStatusPendingApproval && viewer != uuid.Nil && p.AuthorID == viewer
}
