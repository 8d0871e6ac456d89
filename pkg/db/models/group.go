package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// Group is a community space. The roster lives in group_members; MemberCount
// and TotalPosts are maintained in the same transaction as the rows they count.
type Group struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name             string              `gorm:"column:name;not null"`
	Description      string              `gorm:"column:description;not null"`
	Type             enums.GroupType     `gorm:"column:type;type:text;not null"`
	Category         enums.GroupCategory `gorm:"column:category;type:text;not null"`
	Privacy          enums.GroupPrivacy  `gorm:"column:privacy;type:text;not null"`
	CoverImageURL    *string             `gorm:"column:cover_image_url"`
	Location         *string             `gorm:"column:location"`
	Rules            pq.StringArray      `gorm:"column:rules;type:text[]"`
	Tags             pq.StringArray      `gorm:"column:tags;type:text[]"`
	CreatedBy        uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	RequireApproval  bool                `gorm:"column:require_approval;not null"`
	AllowMemberPosts bool                `gorm:"column:allow_member_posts;not null"`
	MaxMembersLimit  int                 `gorm:"column:max_members_limit;not null"`
	MemberCount      int                 `gorm:"column:member_count;not null"`
	TotalPosts       int                 `gorm:"column:total_posts;not null"`
	IsActive         bool                `gorm:"column:is_active;not null"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (g *Group) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// GroupMember is the single authoritative membership record for a
// (group, user) pair. A missing row means the user has no relationship.
type GroupMember struct {
	GroupID   uuid.UUID              `gorm:"column:group_id;type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;primaryKey"`
	Role      enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status    enums.MembershipStatus `gorm:"column:status;type:text;not null"`
	JoinedAt  time.Time              `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
