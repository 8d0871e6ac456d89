package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// GroupPost is a feed entry inside a group.
type GroupPost struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	GroupID       uuid.UUID            `gorm:"column:group_id;type:uuid;not null"`
	AuthorID      uuid.UUID            `gorm:"column:author_id;type:uuid;not null"`
	Type          enums.PostType       `gorm:"column:type;type:text;not null"`
	Title         *string              `gorm:"column:title"`
	Content       string               `gorm:"column:content;not null"`
	Images        pq.StringArray       `gorm:"column:images;type:text[]"`
	PetID         *uuid.UUID           `gorm:"column:pet_id;type:uuid"`
	Status        enums.PostStatus     `gorm:"column:status;type:text;not null"`
	Visibility    enums.PostVisibility `gorm:"column:visibility;type:text;not null"`
	IsPinned      bool                 `gorm:"column:is_pinned;not null"`
	LikesCount    int                  `gorm:"column:likes_count;not null"`
	CommentsCount int                  `gorm:"column:comments_count;not null"`
	SharesCount   int                  `gorm:"column:shares_count;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *GroupPost) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PostLike records one user's like; the pair is unique.
type PostLike struct {
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PostShare records one user's share; the pair is unique.
type PostShare struct {
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type PostComment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Content   string    `gorm:"column:content;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *PostComment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type CommentReply struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CommentID uuid.UUID `gorm:"column:comment_id;type:uuid;not null"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Content   string    `gorm:"column:content;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *CommentReply) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
