package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/pets"
	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

// Service backs the /admin surface. Every method expects a platform admin.
type Service interface {
	Stats(ctx context.Context, actor pkgAuth.Actor) (*Stats, error)
	ListUsers(ctx context.Context, actor pkgAuth.Actor, params pagination.Params, filters users.ListFilters) (pagination.Page[users.UserDTO], error)
	UpdateUser(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID, input UpdateUserInput) (*users.UserDTO, error)
	DeleteUser(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID) error
	ListPets(ctx context.Context, actor pkgAuth.Actor, params pagination.Params, filters pets.ListFilters) (pagination.Page[pets.PetDTO], error)
	DeletePet(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) error
	ListReports(ctx context.Context, actor pkgAuth.Actor, params pagination.Params, status *enums.ReportStatus) (pagination.Page[pets.ReportDTO], error)
	ResolveReport(ctx context.Context, actor pkgAuth.Actor, reportID uuid.UUID, input ResolveReportInput) (*pets.ReportDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the admin service dependencies.
type ServiceParams struct {
	Repo       Repository
	Users      *users.Repository
	Pets       pets.Repository
	PetService pets.Service
	Tx         txRunner
	Logger     *logger.Logger
}

type service struct {
	repo       Repository
	users      *users.Repository
	pets       pets.Repository
	petService pets.Service
	tx         txRunner
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("admin repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("users repository required")
	case params.Pets == nil:
		return nil, fmt.Errorf("pets repository required")
	case params.PetService == nil:
		return nil, fmt.Errorf("pets service required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:       params.Repo,
		users:      params.Users,
		pets:       params.Pets,
		petService: params.PetService,
		tx:         params.Tx,
		logg:       logg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func requireAdmin(actor pkgAuth.Actor) error {
	if !actor.IsPlatformAdmin() {
		return pkgerrors.Forbidden("admin access required")
	}
	return nil
}

func (s *service) Stats(ctx context.Context, actor pkgAuth.Actor) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var out Stats
	var err error
	if out.Users.Total, err = s.users.Count(ctx, false); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if out.Users.Active, err = s.users.Count(ctx, true); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active users")
	}

	petCounts, err := s.repo.CountPetsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pets")
	}
	out.Pets.Available = petCounts[enums.PetStatusAvailable]
	out.Pets.Pending = petCounts[enums.PetStatusPending]
	out.Pets.Adopted = petCounts[enums.PetStatusAdopted]
	for _, n := range petCounts {
		out.Pets.Total += n
	}

	if out.Groups.Active, err = s.repo.CountActiveGroups(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count groups")
	}
	postCounts, err := s.repo.CountPostsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count posts")
	}
	out.Posts.Active = postCounts[enums.PostStatusActive]
	out.Posts.PendingApproval = postCounts[enums.PostStatusPendingApproval]

	if out.Reports.Open, err = s.repo.CountReports(ctx, enums.ReportStatusOpen); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count reports")
	}
	return &out, nil
}

func (s *service) ListUsers(ctx context.Context, actor pkgAuth.Actor, params pagination.Params, filters users.ListFilters) (pagination.Page[users.UserDTO], error) {
	if err := requireAdmin(actor); err != nil {
		return pagination.Page[users.UserDTO]{}, err
	}
	if _, err := users.UserSorts.Resolve(params.Sort); err != nil {
		return pagination.Page[users.UserDTO]{}, pkgerrors.Validation(err.Error()).
			WithDetails(map[string]any{"sort": users.UserSorts.Keys()})
	}
	rows, total, err := s.users.List(ctx, params, filters)
	if err != nil {
		return pagination.Page[users.UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), func(u models.User) users.UserDTO {
		return *users.FromModel(&u)
	}), nil
}

func (s *service) UpdateUser(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID, input UpdateUserInput) (*users.UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.Validation("invalid user role").
				WithDetails(map[string]string{"role": "must be user or admin"})
		}
		updates["role"] = *input.Role
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.Validation("nothing to update")
	}
	if userID == actor.UserID {
		return nil, pkgerrors.Forbidden("admins cannot change their own role or status")
	}

	user, err := s.users.Update(ctx, userID, updates)
	if err != nil {
		return nil, translateFind(err, "user not found")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":  userID.String(),
		"admin_id": actor.UserID.String(),
	}), "admin.user.updated")
	return users.FromModel(user), nil
}

// DeleteUser hard-deletes an account and its group roster rows. Users who
// still own an active group must have it deleted first.
func (s *service) DeleteUser(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.UserID {
		return pkgerrors.Forbidden("admins cannot delete their own account")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		repo := s.repo.WithTx(tx)
		if _, err := userRepo.FindByID(ctx, userID); err != nil {
			return translateFind(err, "user not found")
		}
		owned, err := repo.CreatedActiveGroups(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owned groups")
		}
		if owned > 0 {
			return pkgerrors.Conflict("user still owns active groups").
				WithDetails(map[string]any{"groups": owned})
		}
		if err := repo.RemoveMemberships(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove memberships")
		}
		if err := userRepo.Delete(ctx, userID); err != nil {
			return translateFind(err, "user not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":  userID.String(),
		"admin_id": actor.UserID.String(),
	}), "admin.user.deleted")
	return nil
}

// ListPets lists every listing regardless of status unless filtered.
func (s *service) ListPets(ctx context.Context, actor pkgAuth.Actor, params pagination.Params, filters pets.ListFilters) (pagination.Page[pets.PetDTO], error) {
	if err := requireAdmin(actor); err != nil {
		return pagination.Page[pets.PetDTO]{}, err
	}
	if _, err := pets.Sorts.Resolve(params.Sort); err != nil {
		return pagination.Page[pets.PetDTO]{}, pkgerrors.Validation(err.Error()).
			WithDetails(map[string]any{"sort": pets.Sorts.Keys()})
	}
	rows, total, err := s.pets.List(ctx, params, filters)
	if err != nil {
		return pagination.Page[pets.PetDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pets")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), pets.FromModel), nil
}

func (s *service) DeletePet(ctx context.Context, actor pkgAuth.Actor, petID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.petService.Delete(ctx, actor, petID)
}

func (s *service) ListReports(ctx context.Context, actor pkgAuth.Actor, params pagination.Params, status *enums.ReportStatus) (pagination.Page[pets.ReportDTO], error) {
	if err := requireAdmin(actor); err != nil {
		return pagination.Page[pets.ReportDTO]{}, err
	}
	if status != nil && !status.IsValid() {
		return pagination.Page[pets.ReportDTO]{}, pkgerrors.Validation("invalid report status").
			WithDetails(map[string]string{"status": "must be open, resolved or dismissed"})
	}
	rows, total, err := s.repo.ListReports(ctx, params, status)
	if err != nil {
		return pagination.Page[pets.ReportDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reports")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), pets.ReportFromModel), nil
}

func (s *service) ResolveReport(ctx context.Context, actor pkgAuth.Actor, reportID uuid.UUID, input ResolveReportInput) (*pets.ReportDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.ReportStatusResolved
	}
	if status != enums.ReportStatusResolved && status != enums.ReportStatusDismissed {
		return nil, pkgerrors.Validation("invalid resolution").
			WithDetails(map[string]string{"status": "must be resolved or dismissed"})
	}

	var out pets.ReportDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		report, err := repo.FindReportForUpdate(ctx, reportID)
		if err != nil {
			return translateFind(err, "report not found")
		}
		if report.Status != enums.ReportStatusOpen {
			return pkgerrors.Conflict("report already closed")
		}
		now := s.now()
		adminID := actor.UserID
		report.Status = status
		report.ResolvedBy = &adminID
		report.ResolvedAt = &now
		if err := repo.SaveReport(ctx, report); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save report")
		}
		out = pets.ReportFromModel(*report)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"report_id": reportID.String(),
		"status":    string(status),
	}), "admin.report.closed")
	return &out, nil
}

func translateFind(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
