package enums

import "fmt"

// PostType classifies a group post.
type PostType string

const (
	PostTypeText            PostType = "text"
	PostTypePetShare        PostType = "pet-share"
	PostTypeAdoptionSuccess PostType = "adoption-success"
	PostTypeHelpRequest     PostType = "help-request"
	PostTypeEvent           PostType = "event"
	PostTypeResource        PostType = "resource"
)

var validPostTypes = []PostType{
	PostTypeText,
	PostTypePetShare,
	PostTypeAdoptionSuccess,
	PostTypeHelpRequest,
	PostTypeEvent,
	PostTypeResource,
}

// String implements fmt.Stringer.
func (p PostType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PostType.
func (p PostType) IsValid() bool {
	for _, candidate := range validPostTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePostType converts raw input into a PostType.
func ParsePostType(value string) (PostType, error) {
	for _, candidate := range validPostTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid post type %q", value)
}

// PostStatus is the moderation state of a group post.
type PostStatus string

const (
	PostStatusActive          PostStatus = "active"
	PostStatusPendingApproval PostStatus = "pending-approval"
	PostStatusArchived        PostStatus = "archived"
	PostStatusRemoved         PostStatus = "removed"
)

var validPostStatuses = []PostStatus{
	PostStatusActive,
	PostStatusPendingApproval,
	PostStatusArchived,
	PostStatusRemoved,
}

// String implements fmt.Stringer.
func (p PostStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PostStatus.
func (p PostStatus) IsValid() bool {
	for _, candidate := range validPostStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePostStatus converts raw input into a PostStatus.
func ParsePostStatus(value string) (PostStatus, error) {
	for _, candidate := range validPostStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid post status %q", value)
}

// PostVisibility limits which group members can read a post.
type PostVisibility string

const (
	PostVisibilityPublic      PostVisibility = "public"
	PostVisibilityMembersOnly PostVisibility = "members-only"
	PostVisibilityAdminsOnly  PostVisibility = "admins-only"
)

var validPostVisibilities = []PostVisibility{
	PostVisibilityPublic,
	PostVisibilityMembersOnly,
	PostVisibilityAdminsOnly,
}

// String implements fmt.Stringer.
func (p PostVisibility) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PostVisibility.
func (p PostVisibility) IsValid() bool {
	for _, candidate := range validPostVisibilities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePostVisibility converts raw input into a PostVisibility.
func ParsePostVisibility(value string) (PostVisibility, error) {
	for _, candidate := range validPostVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid post visibility %q", value)
}
