package enums

import "fmt"

// PetCategory is the species of a listed pet.
type PetCategory string

const (
	PetCategoryDog     PetCategory = "dog"
	PetCategoryCat     PetCategory = "cat"
	PetCategoryBird    PetCategory = "bird"
	PetCategoryRabbit  PetCategory = "rabbit"
	PetCategoryFish    PetCategory = "fish"
	PetCategoryReptile PetCategory = "reptile"
	PetCategoryOther   PetCategory = "other"
)

var validPetCategories = []PetCategory{
	PetCategoryDog,
	PetCategoryCat,
	PetCategoryBird,
	PetCategoryRabbit,
	PetCategoryFish,
	PetCategoryReptile,
	PetCategoryOther,
}

// String implements fmt.Stringer.
func (p PetCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PetCategory.
func (p PetCategory) IsValid() bool {
	for _, candidate := range validPetCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePetCategory converts raw input into a PetCategory.
func ParsePetCategory(value string) (PetCategory, error) {
	for _, candidate := range validPetCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pet category %q", value)
}

// PetSize buckets a pet by size.
type PetSize string

const (
	PetSizeSmall  PetSize = "small"
	PetSizeMedium PetSize = "medium"
	PetSizeLarge  PetSize = "large"
)

var validPetSizes = []PetSize{
	PetSizeSmall,
	PetSizeMedium,
	PetSizeLarge,
}

// String implements fmt.Stringer.
func (p PetSize) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PetSize.
func (p PetSize) IsValid() bool {
	for _, candidate := range validPetSizes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePetSize converts raw input into a PetSize.
func ParsePetSize(value string) (PetSize, error) {
	for _, candidate := range validPetSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pet size %q", value)
}

type PetGender string

const (
	PetGenderMale    PetGender = "male"
	PetGenderFemale  PetGender = "female"
	PetGenderUnknown PetGender = "unknown"
)

var validPetGenders = []PetGender{
	PetGenderMale,
	PetGenderFemale,
	PetGenderUnknown,
}

// String implements fmt.Stringer.
func (p PetGender) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PetGender.
func (p PetGender) IsValid() bool {
	for _, candidate := range validPetGenders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePetGender converts raw input into a PetGender.
func ParsePetGender(value string) (PetGender, error) {
	for _, candidate := range validPetGenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pet gender %q", value)
}

// PetStatus is the adoption lifecycle state of a pet listing.
type PetStatus string

const (
	PetStatusAvailable PetStatus = "available"
	PetStatusPending   PetStatus = "pending"
	PetStatusAdopted   PetStatus = "adopted"
)

var validPetStatuses = []PetStatus{
	PetStatusAvailable,
	PetStatusPending,
	PetStatusAdopted,
}

// String implements fmt.Stringer.
func (p PetStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PetStatus.
func (p PetStatus) IsValid() bool {
	for _, candidate := range validPetStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePetStatus converts raw input into a PetStatus.
func ParsePetStatus(value string) (PetStatus, error) {
	for _, candidate := range validPetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pet status %q", value)
}

// OriginType records whether a pet is owned or a rescued stray.
type OriginType string

const (
	OriginTypeOwned OriginType = "owned"
	OriginTypeStray OriginType = "stray"
)

var validOriginTypes = []OriginType{
	OriginTypeOwned,
	OriginTypeStray,
}

// String implements fmt.Stringer.
func (o OriginType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OriginType.
func (o OriginType) IsValid() bool {
	for _, candidate := range validOriginTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOriginType converts raw input into a OriginType.
func ParseOriginType(value string) (OriginType, error) {
	for _, candidate := range validOriginTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid origin type %q", value)
}
