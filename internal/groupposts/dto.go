package groupposts

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// AuthorDTO is the public slice of a post or comment author.
type AuthorDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
}

// PostDTO is a feed entry. Comments, CommentsTruncated and Liked are only
// filled on detail reads.
type PostDTO struct {
	ID                uuid.UUID            `json:"id"`
	GroupID           uuid.UUID            `json:"groupId"`
	AuthorID          uuid.UUID            `json:"authorId"`
	Author            *AuthorDTO           `json:"author,omitempty"`
	Type              enums.PostType       `json:"type"`
	Title             *string              `json:"title,omitempty"`
	Content           string               `json:"content"`
	Images            []string             `json:"images"`
	PetID             *uuid.UUID           `json:"petId,omitempty"`
	Status            enums.PostStatus     `json:"status"`
	Visibility        enums.PostVisibility `json:"visibility"`
	IsPinned          bool                 `json:"isPinned"`
	LikesCount        int                  `json:"likesCount"`
	CommentsCount     int                  `json:"commentsCount"`
	SharesCount       int                  `json:"sharesCount"`
	Liked             *bool                `json:"liked,omitempty"`
	Comments          []CommentDTO         `json:"comments,omitempty"`
	CommentsTruncated bool                 `json:"commentsTruncated,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

type CommentDTO struct {
	ID        uuid.UUID  `json:"id"`
	PostID    uuid.UUID  `json:"postId"`
	AuthorID  uuid.UUID  `json:"authorId"`
	Author    *AuthorDTO `json:"author,omitempty"`
	Content   string     `json:"content"`
	Replies   []ReplyDTO `json:"replies"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ReplyDTO struct {
	ID        uuid.UUID  `json:"id"`
	CommentID uuid.UUID  `json:"commentId"`
	AuthorID  uuid.UUID  `json:"authorId"`
	Author    *AuthorDTO `json:"author,omitempty"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CreatePostInput is the body of POST /groups/{groupId}/posts.
type CreatePostInput struct {
	Type       enums.PostType       `json:"type,omitempty"`
	Title      *string              `json:"title,omitempty" validate:"omitempty,max=200"`
	Content    string               `json:"content" validate:"required,max=5000"`
	Images     []string             `json:"images,omitempty" validate:"max=10,dive,url"`
	PetID      *uuid.UUID           `json:"petId,omitempty"`
	Visibility enums.PostVisibility `json:"visibility,omitempty"`
}

// UpdatePostInput edits the author's own content; nil fields are unchanged.
type UpdatePostInput struct {
	Title      *string               `json:"title,omitempty" validate:"omitempty,max=200"`
	Content    *string               `json:"content,omitempty" validate:"omitempty,min=1,max=5000"`
	Images     *[]string             `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Visibility *enums.PostVisibility `json:"visibility,omitempty"`
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type ShareResult struct {
	Shared      bool `json:"shared"`
	SharesCount int  `json:"sharesCount"`
}

// ListFilters narrows a group feed.
type ListFilters struct {
	Type *enums.PostType
}

func fromModel(p models.GroupPost, authors map[uuid.UUID]AuthorDTO) PostDTO {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return PostDTO{
		ID:            p.ID,
		GroupID:       p.GroupID,
		AuthorID:      p.AuthorID,
		Author:        authorOf(authors, p.AuthorID),
		Type:          p.Type,
		Title:         p.Title,
		Content:       p.Content,
		Images:        images,
		PetID:         p.PetID,
		Status:        p.Status,
		Visibility:    p.Visibility,
		IsPinned:      p.IsPinned,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		SharesCount:   p.SharesCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func commentOf(c models.PostComment, authors map[uuid.UUID]AuthorDTO) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Author:    authorOf(authors, c.AuthorID),
		Content:   c.Content,
		Replies:   []ReplyDTO{},
		CreatedAt: c.CreatedAt,
	}
}

func replyOf(r models.CommentReply, authors map[uuid.UUID]AuthorDTO) ReplyDTO {
	return ReplyDTO{
		ID:        r.ID,
		CommentID: r.CommentID,
		AuthorID:  r.AuthorID,
		Author:    authorOf(authors, r.AuthorID),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

func authorOf(authors map[uuid.UUID]AuthorDTO, id uuid.UUID) *AuthorDTO {
	a, ok := authors[id]
	if !ok {
		return nil
	}
	return &a
}
