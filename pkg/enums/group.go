package enums

import "fmt"

// GroupType classifies what a group is for.
type GroupType string

const (
	GroupTypeCommunity GroupType = "community"
	GroupTypeRescue    GroupType = "rescue"
	GroupTypeBreed     GroupType = "breed"
	GroupTypeLocal     GroupType = "local"
	GroupTypeSupport   GroupType = "support"
	GroupTypeEvent     GroupType = "event"
)

var validGroupTypes = []GroupType{
	GroupTypeCommunity,
	GroupTypeRescue,
	GroupTypeBreed,
	GroupTypeLocal,
	GroupTypeSupport,
	GroupTypeEvent,
}

// String implements fmt.Stringer.
func (g GroupType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroupType.
func (g GroupType) IsValid() bool {
	for _, candidate := range validGroupTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGroupType converts raw input into a GroupType.
func ParseGroupType(value string) (GroupType, error) {
	for _, candidate := range validGroupTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group type %q", value)
}

// GroupCategory is the species focus of a group.
type GroupCategory string

const (
	GroupCategoryDogs      GroupCategory = "dogs"
	GroupCategoryCats      GroupCategory = "cats"
	GroupCategoryBirds     GroupCategory = "birds"
	GroupCategorySmallPets GroupCategory = "small-pets"
	GroupCategoryReptiles  GroupCategory = "reptiles"
	GroupCategoryGeneral   GroupCategory = "general"
)

var validGroupCategories = []GroupCategory{
	GroupCategoryDogs,
	GroupCategoryCats,
	GroupCategoryBirds,
	GroupCategorySmallPets,
	GroupCategoryReptiles,
	GroupCategoryGeneral,
}

// String implements fmt.Stringer.
func (g GroupCategory) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroupCategory.
func (g GroupCategory) IsValid() bool {
	for _, candidate := range validGroupCategories {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGroupCategory converts raw input into a GroupCategory.
func ParseGroupCategory(value string) (GroupCategory, error) {
	for _, candidate := range validGroupCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group category %q", value)
}

// GroupPrivacy controls who can see a group's roster and feed.
type GroupPrivacy string

const (
	GroupPrivacyPublic  GroupPrivacy = "public"
	GroupPrivacyPrivate GroupPrivacy = "private"
)

var validGroupPrivacies = []GroupPrivacy{
	GroupPrivacyPublic,
	GroupPrivacyPrivate,
}

// String implements fmt.Stringer.
func (g GroupPrivacy) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroupPrivacy.
func (g GroupPrivacy) IsValid() bool {
	for _, candidate := range validGroupPrivacies {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGroupPrivacy converts raw input into a GroupPrivacy.
func ParseGroupPrivacy(value string) (GroupPrivacy, error) {
	for _, candidate := range validGroupPrivacies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group privacy %q", value)
}
