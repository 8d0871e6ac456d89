package pets

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// PetDTO is the public shape of a listing.
type PetDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Category    enums.PetCategory `json:"category"`
	Breed       *string           `json:"breed,omitempty"`
	Age         int               `json:"age"`
	Size        enums.PetSize     `json:"size"`
	Gender      enums.PetGender   `json:"gender"`
	Description string            `json:"description"`
	Images      []string          `json:"images"`
	Location    string            `json:"location"`
	Vaccinated  bool              `json:"vaccinated"`
	Neutered    bool              `json:"neutered"`
	AdoptionFee decimal.Decimal   `json:"adoptionFee"`
	OriginType  enums.OriginType  `json:"originType"`
	Status      enums.PetStatus   `json:"status"`
	PostedBy    uuid.UUID         `json:"postedBy"`
	AdoptedBy   *uuid.UUID        `json:"adoptedBy,omitempty"`
	AdoptedAt   *time.Time        `json:"adoptedAt,omitempty"`
	Views       int               `json:"views"`
	LikesCount  int               `json:"likesCount"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func FromModel(p models.Pet) PetDTO {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return PetDTO{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Breed:       p.Breed,
		Age:         p.Age,
		Size:        p.Size,
		Gender:      p.Gender,
		Description: p.Description,
		Images:      images,
		Location:    p.Location,
		Vaccinated:  p.Vaccinated,
		Neutered:    p.Neutered,
		AdoptionFee: p.AdoptionFee,
		OriginType:  p.OriginType,
		Status:      p.Status,
		PostedBy:    p.PostedBy,
		AdoptedBy:   p.AdoptedBy,
		AdoptedAt:   p.AdoptedAt,
		Views:       p.Views,
		LikesCount:  p.LikesCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreatePetInput is the body of POST /pets.
type CreatePetInput struct {
	Name        string            `json:"name" validate:"required,min=1,max=80"`
	Category    enums.PetCategory `json:"category" validate:"required"`
	Breed       *string           `json:"breed,omitempty" validate:"omitempty,max=80"`
	Age         int               `json:"age" validate:"min=0,max=50"`
	Size        enums.PetSize     `json:"size" validate:"required"`
	Gender      enums.PetGender   `json:"gender" validate:"required"`
	Description string            `json:"description" validate:"required,max=2000"`
	Images      []string          `json:"images" validate:"max=10,dive,url"`
	Location    string            `json:"location" validate:"required,max=120"`
	Vaccinated  bool              `json:"vaccinated"`
	Neutered    bool              `json:"neutered"`
	AdoptionFee decimal.Decimal   `json:"adoptionFee"`
	OriginType  enums.OriginType  `json:"originType,omitempty"`
}

// UpdatePetInput is a partial update; nil fields are unchanged.
type UpdatePetInput struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Category    *enums.PetCategory `json:"category,omitempty"`
	Breed       *string            `json:"breed,omitempty" validate:"omitempty,max=80"`
	Age         *int               `json:"age,omitempty" validate:"omitempty,min=0,max=50"`
	Size        *enums.PetSize     `json:"size,omitempty"`
	Gender      *enums.PetGender   `json:"gender,omitempty"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	Images      *[]string          `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	Location    *string            `json:"location,omitempty" validate:"omitempty,max=120"`
	Vaccinated  *bool              `json:"vaccinated,omitempty"`
	Neutered    *bool              `json:"neutered,omitempty"`
	AdoptionFee *decimal.Decimal   `json:"adoptionFee,omitempty"`
	OriginType  *enums.OriginType  `json:"originType,omitempty"`
	Status      *enums.PetStatus   `json:"status,omitempty"`
}

// ReportInput is the body of POST /pets/{petId}/report.
type ReportInput struct {
	Reason  enums.ReportReason `json:"reason" validate:"required"`
	Details *string            `json:"details,omitempty" validate:"omitempty,max=1000"`
}

// LikeResult is returned by the like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ListFilters narrows the public catalog. Nil fields are not applied.
type ListFilters struct {
	Category   *enums.PetCategory
	Breed      string
	Size       *enums.PetSize
	Gender     *enums.PetGender
	Status     *enums.PetStatus
	OriginType *enums.OriginType
	Location   string
	AgeMin     *int
	AgeMax     *int
	FeeMax     *decimal.Decimal
	Query      string
	PostedBy   *uuid.UUID
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// ReportDTO is the public shape of a pet report.
type ReportDTO struct {
	ID         uuid.UUID          `json:"id"`
	PetID      uuid.UUID          `json:"petId"`
	ReporterID uuid.UUID          `json:"reporterId"`
	Reason     enums.ReportReason `json:"reason"`
	Details    *string            `json:"details,omitempty"`
	Status     enums.ReportStatus `json:"status"`
	ResolvedBy *uuid.UUID         `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time         `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

func ReportFromModel(r models.PetReport) ReportDTO {
	return ReportDTO{
		ID:         r.ID,
		PetID:      r.PetID,
		ReporterID: r.ReporterID,
		Reason:     r.Reason,
		Details:    r.Details,
		Status:     r.Status,
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
	}
}
