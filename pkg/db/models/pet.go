package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

// ErrAdoptionInconsistent is returned when adopted_by, adopted_at and status disagree.
var ErrAdoptionInconsistent = errors.New("adoption fields inconsistent with status")

// Pet is an adoption listing.
type Pet struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Category    enums.PetCategory `gorm:"column:category;type:text;not null"`
	Breed       *string           `gorm:"column:breed"`
	Age         int               `gorm:"column:age;not null"`
	Size        enums.PetSize     `gorm:"column:size;type:text;not null"`
	Gender      enums.PetGender   `gorm:"column:gender;type:text;not null"`
	Description string            `gorm:"column:description;not null"`
	Images      pq.StringArray    `gorm:"column:images;type:text[]"`
	Location    string            `gorm:"column:location;not null"`
	Vaccinated  bool              `gorm:"column:vaccinated;not null"`
	Neutered    bool              `gorm:"column:neutered;not null"`
	AdoptionFee decimal.Decimal   `gorm:"column:adoption_fee;type:numeric(10,2);not null"`
	OriginType  enums.OriginType  `gorm:"column:origin_type;type:text;not null"`
	Status      enums.PetStatus   `gorm:"column:status;type:text;not null"`
	PostedBy    uuid.UUID         `gorm:"column:posted_by;type:uuid;not null"`
	AdoptedBy   *uuid.UUID        `gorm:"column:adopted_by;type:uuid"`
	AdoptedAt   *time.Time        `gorm:"column:adopted_at"`
	Views       int               `gorm:"column:views;not null"`
	LikesCount  int               `gorm:"column:likes_count;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Pet) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// BeforeSave keeps stray listings free and the adoption triple consistent.
func (p *Pet) BeforeSave(*gorm.DB) error {
	if p.OriginType == enums.OriginTypeStray {
		p.AdoptionFee = decimal.Zero
	}
	return p.CheckAdoption()
}

// CheckAdoption reports whether adopted_by, adopted_at and status agree.
func (p *Pet) CheckAdoption() error {
	adopted := p.Status == enums.PetStatusAdopted
	if adopted != (p.AdoptedBy != nil) || adopted != (p.AdoptedAt != nil) {
		return ErrAdoptionInconsistent
	}
	return nil
}

type PetLike struct {
	PetID     uuid.UUID `gorm:"column:pet_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PetReport is a user flag on a listing awaiting admin review.
type PetReport struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	PetID      uuid.UUID          `gorm:"column:pet_id;type:uuid;not null"`
	ReporterID uuid.UUID          `gorm:"column:reporter_id;type:uuid;not null"`
	Reason     enums.ReportReason `gorm:"column:reason;type:text;not null"`
	Details    *string            `gorm:"column:details"`
	Status     enums.ReportStatus `gorm:"column:status;type:text;not null"`
	ResolvedBy *uuid.UUID         `gorm:"column:resolved_by;type:uuid"`
	ResolvedAt *time.Time         `gorm:"column:resolved_at"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *PetReport) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	if r.Status == "" {
		r.Status = enums.ReportStatusOpen
	}
	return nil
}
