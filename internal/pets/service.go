package pets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

const defaultViewWindow = 5 * time.Second

// Service exposes the pet catalog operations.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (pagination.Page[PetDTO], error)
	Get(ctx context.Context, petID uuid.UUID, viewerIP string) (*PetDTO, error)
	Create(ctx context.Context, actor pkgAuth.Actor, input CreatePetInput) (*PetDTO, error)
	Update(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID, input UpdatePetInput) (*PetDTO, error)
	Delete(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) error
	Adopt(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) (*PetDTO, error)
	ToggleLike(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) (*LikeResult, error)
	Report(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID, input ReportInput) (*ReportDTO, error)
	ListPostedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[PetDTO], error)
	ListAdoptedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[PetDTO], error)
	ListLikedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[PetDTO], error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// viewMarker debounces view increments; *redis.Client satisfies it.
type viewMarker interface {
	PetViewKey(petID, viewerHash string) string
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ServiceParams bundles the pet service dependencies.
type ServiceParams struct {
	Repo       Repository
	Tx         txRunner
	Views      viewMarker
	ViewWindow time.Duration
	Metrics    *metrics.DomainMetrics
	Logger     *logger.Logger
}

type service struct {
	repo       Repository
	tx         txRunner
	views      viewMarker
	viewWindow time.Duration
	metrics    *metrics.DomainMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService validates dependencies and builds the pet service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("pets repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	window := params.ViewWindow
	if window <= 0 {
		window = defaultViewWindow
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		views:      params.Views,
		viewWindow: window,
		metrics:    params.Metrics,
		logg:       logg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (pagination.Page[PetDTO], error) {
	if filters.Status == nil {
		available := enums.PetStatusAvailable
		filters.Status = &available
	}
	return s.page(params, func() ([]models.Pet, int64, error) {
		return s.repo.List(ctx, params, filters)
	})
}

func (s *service) ListPostedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[PetDTO], error) {
	return s.page(params, func() ([]models.Pet, int64, error) {
		return s.repo.List(ctx, params, ListFilters{PostedBy: &userID})
	})
}

func (s *service) ListAdoptedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[PetDTO], error) {
	return s.page(params, func() ([]models.Pet, int64, error) {
		return s.repo.ListAdoptedBy(ctx, userID, params)
	})
}

func (s *service) ListLikedBy(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[PetDTO], error) {
	return s.page(params, func() ([]models.Pet, int64, error) {
		return s.repo.ListLikedBy(ctx, userID, params)
	})
}

func (s *service) page(params pagination.Params, load func() ([]models.Pet, int64, error)) (pagination.Page[PetDTO], error) {
	if _, err := Sorts.Resolve(params.Sort); err != nil {
		return pagination.Page[PetDTO]{}, pkgerrors.Validation(err.Error()).
			WithDetails(map[string]any{"sort": Sorts.Keys()})
	}
	rows, total, err := load()
	if err != nil {
		return pagination.Page[PetDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pets")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), FromModel), nil
}

// Get returns a pet and counts a view unless the same viewer was counted
// within the debounce window.
func (s *service) Get(ctx context.Context, petID uuid.UUID, viewerIP string) (*PetDTO, error) {
	pet, err := s.load(ctx, s.repo, petID)
	if err != nil {
		return nil, err
	}

	if s.shouldCountView(ctx, petID, viewerIP) {
		if err := s.repo.IncrementViews(ctx, petID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "pet.view_increment_failed")
		} else {
			pet.Views++
			s.metrics.PetViewed()
		}
	}

	dto := FromModel(*pet)
	return &dto, nil
}

func (s *service) shouldCountView(ctx context.Context, petID uuid.UUID, viewerIP string) bool {
	if s.views == nil {
		return true
	}
	key := s.views.PetViewKey(petID.String(), hashViewer(viewerIP))
	first, err := s.views.MarkOnce(ctx, key, s.viewWindow)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"pet_id": petID.String(), "error": err.Error()}), "pet.view_debounce_unavailable")
		return false
	}
	return first
}

func hashViewer(ip string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ip)))
	return hex.EncodeToString(sum[:12])
}

func (s *service) Create(ctx context.Context, actor pkgAuth.Actor, input CreatePetInput) (*PetDTO, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	origin := input.OriginType
	if origin == "" {
		origin = enums.OriginTypeOwned
	}
	pet := &models.Pet{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Breed:       trimmedPtr(input.Breed),
		Age:         input.Age,
		Size:        input.Size,
		Gender:      input.Gender,
		Description: strings.TrimSpace(input.Description),
		Images:      input.Images,
		Location:    strings.TrimSpace(input.Location),
		Vaccinated:  input.Vaccinated,
		Neutered:    input.Neutered,
		AdoptionFee: input.AdoptionFee,
		OriginType:  origin,
		Status:      enums.PetStatusAvailable,
		PostedBy:    actor.UserID,
	}
	if err := validatePet(pet); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pet")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"pet_id": pet.ID.String(), "user_id": actor.UserID.String()}), "pet.created")

	dto := FromModel(*pet)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID, input UpdatePetInput) (*PetDTO, error) {
	var updated *models.Pet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pet, err := s.lockPet(ctx, repo, petID)
		if err != nil {
			return err
		}
		if pet.PostedBy != actor.UserID && !actor.IsPlatformAdmin() {
			return pkgerrors.Forbidden("only the poster can edit this pet")
		}
		if err := applyUpdate(pet, input); err != nil {
			return err
		}
		if err := validatePet(pet); err != nil {
			return err
		}
		if err := repo.Save(ctx, pet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pet")
		}
		updated = pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(*updated)
	return &dto, nil
}

// applyUpdate merges input into pet. Status may only move between available
// and pending here; adoption goes through Adopt and is final.
func applyUpdate(pet *models.Pet, in UpdatePetInput) error {
	if in.Status != nil && *in.Status != pet.Status {
		if pet.Status == enums.PetStatusAdopted {
			return pkgerrors.Conflict("adopted pets cannot change status")
		}
		switch *in.Status {
		case enums.PetStatusAvailable, enums.PetStatusPending:
			pet.Status = *in.Status
		case enums.PetStatusAdopted:
			return pkgerrors.Validation("use the adopt operation to mark a pet adopted")
		default:
			return pkgerrors.Validation("invalid pet status")
		}
	}
	if in.Name != nil {
		pet.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		pet.Category = *in.Category
	}
	if in.Breed != nil {
		pet.Breed = trimmedPtr(in.Breed)
	}
	if in.Age != nil {
		pet.Age = *in.Age
	}
	if in.Size != nil {
		pet.Size = *in.Size
	}
	if in.Gender != nil {
		pet.Gender = *in.Gender
	}
	if in.Description != nil {
		pet.Description = strings.TrimSpace(*in.Description)
	}
	if in.Images != nil {
		pet.Images = *in.Images
	}
	if in.Location != nil {
		pet.Location = strings.TrimSpace(*in.Location)
	}
	if in.Vaccinated != nil {
		pet.Vaccinated = *in.Vaccinated
	}
	if in.Neutered != nil {
		pet.Neutered = *in.Neutered
	}
	if in.AdoptionFee != nil {
		pet.AdoptionFee = *in.AdoptionFee
	}
	if in.OriginType != nil {
		pet.OriginType = *in.OriginType
	}
	return nil
}

func validatePet(p *models.Pet) error {
	details := map[string]string{}
	if p.Name == "" {
		details["name"] = "is required"
	}
	if !p.Category.IsValid() {
		details["category"] = "is invalid"
	}
	if !p.Size.IsValid() {
		details["size"] = "is invalid"
	}
	if !p.Gender.IsValid() {
		details["gender"] = "is invalid"
	}
	if !p.OriginType.IsValid() {
		details["originType"] = "is invalid"
	}
	if p.Age < 0 {
		details["age"] = "must be at least 0"
	}
	if p.AdoptionFee.IsNegative() {
		details["adoptionFee"] = "must be at least 0"
	}
	if p.Description == "" {
		details["description"] = "is required"
	}
	if p.Location == "" {
		details["location"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	if p.OriginType == enums.OriginTypeStray {
		p.AdoptionFee = decimal.Zero
	}
	return nil
}

func (s *service) Delete(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pet, err := s.lockPet(ctx, repo, petID)
		if err != nil {
			return err
		}
		if pet.PostedBy != actor.UserID && !actor.IsPlatformAdmin() {
			return pkgerrors.Forbidden("only the poster or an admin can delete this pet")
		}
		if err := repo.Delete(ctx, petID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pet")
		}
		s.logg.Info(s.logg.WithField(ctx, "pet_id", petID.String()), "pet.deleted")
		return nil
	})
}

func (s *service) Adopt(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) (*PetDTO, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	var adopted *models.Pet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pet, err := s.lockPet(ctx, repo, petID)
		if err != nil {
			return err
		}
		if pet.Status == enums.PetStatusAdopted {
			return pkgerrors.Conflict("pet already adopted")
		}
		if pet.PostedBy == actor.UserID {
			return pkgerrors.Conflict("you cannot adopt your own pet")
		}
		now := s.now()
		adopter := actor.UserID
		pet.Status = enums.PetStatusAdopted
		pet.AdoptedBy = &adopter
		pet.AdoptedAt = &now
		if err := repo.Save(ctx, pet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adopt pet")
		}
		adopted = pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.PetAdopted()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"pet_id": petID.String(), "user_id": actor.UserID.String()}), "pet.adopted")

	dto := FromModel(*adopted)
	return &dto, nil
}

func (s *service) ToggleLike(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) (*LikeResult, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	var result LikeResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pet, err := s.lockPet(ctx, repo, petID)
		if err != nil {
			return err
		}
		liked, err := repo.HasLike(ctx, petID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load like")
		}
		delta := 1
		if liked {
			delta = -1
			err = repo.RemoveLike(ctx, petID, actor.UserID)
		} else {
			err = repo.AddLike(ctx, petID, actor.UserID)
		}
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Conflict("like already recorded")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle like")
		}
		if err := repo.AdjustLikes(ctx, petID, delta); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update like count")
		}
		result = LikeResult{Liked: !liked, LikesCount: pet.LikesCount + delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Report(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID, input ReportInput) (*ReportDTO, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"reason": "is invalid"})
	}
	if _, err := s.load(ctx, s.repo, petID); err != nil {
		return nil, err
	}
	open, err := s.repo.HasOpenReport(ctx, petID, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check reports")
	}
	if open {
		return nil, pkgerrors.Conflict("you already reported this pet")
	}
	report := &models.PetReport{
		PetID:      petID,
		ReporterID: actor.UserID,
		Reason:     input.Reason,
		Details:    trimmedPtr(input.Details),
		Status:     enums.ReportStatusOpen,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create report")
	}
	s.logg.Info(s.logg.WithField(ctx, "pet_id", petID.String()), "pet.reported")
	dto := ReportFromModel(*report)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo Repository, petID uuid.UUID) (*models.Pet, error) {
	pet, err := repo.FindByID(ctx, petID)
	return pet, translateFind(err)
}

func (s *service) lockPet(ctx context.Context, repo Repository, petID uuid.UUID) (*models.Pet, error) {
	pet, err := repo.FindByIDForUpdate(ctx, petID)
	return pet, translateFind(err)
}

func translateFind(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound("pet not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pet")
}
