package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/membership"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
	"github.com/angelmondragon/pawfinderz-backend/pkg/visibility"
)

// Service exposes group CRUD and the roster workflow.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (pagination.Page[ListItem], error)
	Create(ctx context.Context, actor pkgAuth.Actor, input CreateGroupInput) (*GroupDTO, error)
	Get(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) (*Detail, error)
	Update(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, input UpdateGroupInput) (*GroupDTO, error)
	Delete(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) error

	Join(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) (*MembershipDTO, error)
	Leave(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) error
	Members(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, status *enums.MembershipStatus, params pagination.Params) (pagination.Page[MemberDTO], error)
	Requests(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, params pagination.Params) (pagination.Page[MemberDTO], error)
	Approve(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*MembershipDTO, error)
	Reject(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) error
	Ban(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*MembershipDTO, error)
	Unban(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*MembershipDTO, error)
	Promote(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID, input RoleInput) (*MembershipDTO, error)
	Demote(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID, input RoleInput) (*MembershipDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status *enums.MembershipStatus, params pagination.Params) (pagination.Page[UserGroupDTO], error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the group service dependencies.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Metrics *metrics.DomainMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.DomainMetrics
	logg    *logger.Logger
}

// NewService validates dependencies and builds the group service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("groups repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

// Access is a viewer's standing in one group.
type Access struct {
	Group  *models.Group
	Member *models.GroupMember
	Level  membership.Level
}

// LoadAccess resolves viewer's level in an active group. With lock set the
// group row is held for the rest of the transaction repo is bound to.
func LoadAccess(ctx context.Context, repo Repository, groupID, viewer uuid.UUID, lock bool) (*Access, error) {
	var (
		g   *models.Group
		err error
	)
	if lock {
		g, err = repo.FindByIDForUpdate(ctx, groupID)
	} else {
		g, err = repo.FindByID(ctx, groupID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}
	if !g.IsActive {
		return nil, pkgerrors.NotFound("group not found")
	}
	m, err := repo.Member(ctx, groupID, viewer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return &Access{Group: g, Member: m, Level: membership.LevelOf(viewer, g.CreatedBy, m)}, nil
}

func rosterOf(g *models.Group, staff []models.GroupMember) membership.Roster {
	return membership.NewRoster(g.CreatedBy, staff)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (pagination.Page[ListItem], error) {
	if _, err := Sorts.Resolve(params.Sort); err != nil {
		return pagination.Page[ListItem]{}, pkgerrors.Validation(err.Error()).
			WithDetails(map[string]any{"sort": Sorts.Keys()})
	}
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return pagination.Page[ListItem]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list groups")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), listItem), nil
}

func (s *service) Create(ctx context.Context, actor pkgAuth.Actor, input CreateGroupInput) (*GroupDTO, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	privacy := input.Privacy
	if privacy == "" {
		privacy = enums.GroupPrivacyPublic
	}
	g := &models.Group{
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		Type:             input.Type,
		Category:         input.Category,
		Privacy:          privacy,
		CoverImageURL:    input.CoverImageURL,
		Location:         input.Location,
		Rules:            cleanList(input.Rules),
		Tags:             cleanTags(input.Tags),
		CreatedBy:        actor.UserID,
		RequireApproval:  boolOr(input.RequireApproval, false),
		AllowMemberPosts: boolOr(input.AllowMemberPosts, true),
		MemberCount:      1,
		IsActive:         true,
	}
	if input.MaxMembersLimit != nil {
		g.MaxMembersLimit = *input.MaxMembersLimit
	}
	if err := validateGroup(g); err != nil {
		return nil, err
	}

	creator := models.GroupMember{
		UserID: actor.UserID,
		Role:   enums.MemberRoleAdmin,
		Status: enums.MembershipStatusActive,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureNameFree(ctx, repo, g.Name, uuid.Nil); err != nil {
			return err
		}
		if err := repo.Create(ctx, g); err != nil {
			return translateWrite(err, "create group")
		}
		creator.GroupID = g.ID
		if err := repo.CreateMember(ctx, &creator); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create creator membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"group_id": g.ID.String(), "user_id": actor.UserID.String()}), "group.created")

	full := fullView(g, []models.GroupMember{creator})
	full.Membership = membershipOf(&creator)
	return full, nil
}

// Get returns the full group to anyone who passes the visibility gate and
// only the summary to outsiders of a private group.
func (s *service) Get(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) (*Detail, error) {
	access, err := LoadAccess(ctx, s.repo, groupID, actor.UserID, false)
	if err != nil {
		return nil, err
	}
	if !visibility.CanSeeGroupContent(access.Group, access.Level) {
		summary := visibility.Summarize(access.Group)
		return &Detail{Summary: &summary}, nil
	}
	staff, err := s.repo.ListStaff(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group staff")
	}
	full := fullView(access.Group, staff)
	full.Membership = membershipOf(access.Member)
	return &Detail{Full: full}, nil
}

func (s *service) Update(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, input UpdateGroupInput) (*GroupDTO, error) {
	var (
		updated *models.Group
		viewer  *models.GroupMember
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		access, err := LoadAccess(ctx, repo, groupID, actor.UserID, true)
		if err != nil {
			return err
		}
		if err := membership.Require(membership.PermEditGroup, access.Level); err != nil {
			return err
		}
		g := access.Group
		applyUpdate(g, input)
		if err := validateGroup(g); err != nil {
			return err
		}
		if g.MaxMembersLimit > 0 && g.MaxMembersLimit < g.MemberCount {
			return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"maxMembersLimit": "is below the current member count"})
		}
		if input.Name != nil {
			if err := s.ensureNameFree(ctx, repo, g.Name, g.ID); err != nil {
				return err
			}
		}
		if err := repo.Save(ctx, g); err != nil {
			return translateWrite(err, "update group")
		}
		updated, viewer = g, access.Member
		return nil
	})
	if err != nil {
		return nil, err
	}
	staff, err := s.repo.ListStaff(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group staff")
	}
	s.logg.Info(s.logg.WithField(ctx, "group_id", groupID.String()), "group.updated")
	full := fullView(updated, staff)
	full.Membership = membershipOf(viewer)
	return full, nil
}

func applyUpdate(g *models.Group, in UpdateGroupInput) {
	if in.Name != nil {
		g.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		g.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		g.Type = *in.Type
	}
	if in.Category != nil {
		g.Category = *in.Category
	}
	if in.Privacy != nil {
		g.Privacy = *in.Privacy
	}
	if in.CoverImageURL != nil {
		g.CoverImageURL = in.CoverImageURL
	}
	if in.Location != nil {
		g.Location = in.Location
	}
	if in.Rules != nil {
		g.Rules = cleanList(*in.Rules)
	}
	if in.Tags != nil {
		g.Tags = cleanTags(*in.Tags)
	}
	if in.RequireApproval != nil {
		g.RequireApproval = *in.RequireApproval
	}
	if in.AllowMemberPosts != nil {
		g.AllowMemberPosts = *in.AllowMemberPosts
	}
	if in.MaxMembersLimit != nil {
		g.MaxMembersLimit = *in.MaxMembersLimit
	}
}

func validateGroup(g *models.Group) error {
	details := map[string]string{}
	if l := len(g.Name); l < 3 || l > 100 {
		details["name"] = "must be between 3 and 100 characters"
	}
	if g.Description == "" {
		details["description"] = "is required"
	}
	if !g.Type.IsValid() {
		details["type"] = "is invalid"
	}
	if !g.Category.IsValid() {
		details["category"] = "is invalid"
	}
	if !g.Privacy.IsValid() {
		details["privacy"] = "is invalid"
	}
	if g.MaxMembersLimit < 0 {
		details["maxMembersLimit"] = "must be at least 0"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// Delete soft-deletes the group; it disappears from every read.
func (s *service) Delete(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		access, err := LoadAccess(ctx, repo, groupID, actor.UserID, true)
		if err != nil {
			return err
		}
		if !actor.IsPlatformAdmin() {
			if err := membership.Require(membership.PermDeleteGroup, access.Level); err != nil {
				return pkgerrors.Forbidden("only the group creator can delete this group")
			}
		}
		access.Group.IsActive = false
		if err := repo.Save(ctx, access.Group); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete group")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"group_id": groupID.String(), "user_id": actor.UserID.String()}), "group.deleted")
	return nil
}

func (s *service) Join(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) (*MembershipDTO, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	var row *models.GroupMember
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		access, err := LoadAccess(ctx, repo, groupID, actor.UserID, true)
		if err != nil {
			return err
		}
		row, _, err = s.apply(ctx, repo, access.Group, actor.UserID, access.Member, membership.ActionJoin)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(ctx, membership.ActionJoin, groupID, actor.UserID, row)
	return membershipOf(row), nil
}

func (s *service) Leave(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID) error {
	if !actor.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		access, err := LoadAccess(ctx, repo, groupID, actor.UserID, true)
		if err != nil {
			return err
		}
		if access.Level == membership.LevelCreator {
			return pkgerrors.Forbidden("the group creator cannot leave the group")
		}
		_, _, err = s.apply(ctx, repo, access.Group, actor.UserID, access.Member, membership.ActionLeave)
		return err
	})
	if err != nil {
		return err
	}
	s.recordTransition(ctx, membership.ActionLeave, groupID, actor.UserID, nil)
	return nil
}

// Members lists the roster. Active members are visible to anyone who passes
// the visibility gate; other statuses need moderator rights.
func (s *service) Members(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, status *enums.MembershipStatus, params pagination.Params) (pagination.Page[MemberDTO], error) {
	want := enums.MembershipStatusActive
	if status != nil {
		if !status.IsValid() {
			return pagination.Page[MemberDTO]{}, pkgerrors.Validation("invalid membership status")
		}
		want = *status
	}
	access, err := LoadAccess(ctx, s.repo, groupID, actor.UserID, false)
	if err != nil {
		return pagination.Page[MemberDTO]{}, err
	}
	if err := visibility.EnsureGroupContent(access.Group, access.Level); err != nil {
		return pagination.Page[MemberDTO]{}, err
	}
	if want != enums.MembershipStatusActive {
		if err := membership.Require(membership.PermViewRequests, access.Level); err != nil {
			return pagination.Page[MemberDTO]{}, err
		}
	}
	rows, total, err := s.repo.ListMembers(ctx, groupID, want, params)
	if err != nil {
		return pagination.Page[MemberDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	createdBy := access.Group.CreatedBy
	return pagination.Map(pagination.NewPage(rows, params, total), func(r MemberRow) MemberDTO {
		return MemberDTO{
			UserID:    r.UserID,
			Name:      r.Name,
			AvatarURL: r.AvatarURL,
			Role:      r.Role,
			Status:    r.Status,
			IsCreator: r.UserID == createdBy,
			JoinedAt:  r.JoinedAt,
		}
	}), nil
}

func (s *service) Requests(ctx context.Context, actor pkgAuth.Actor, groupID uuid.UUID, params pagination.Params) (pagination.Page[MemberDTO], error) {
	pending := enums.MembershipStatusPending
	return s.Members(ctx, actor, groupID, &pending, params)
}

func (s *service) Approve(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*MembershipDTO, error) {
	return s.moderate(ctx, actor, groupID, userID, membership.ActionApprove, membership.PermApproveMember)
}

func (s *service) Reject(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) error {
	_, err := s.moderate(ctx, actor, groupID, userID, membership.ActionReject, membership.PermRejectMember)
	return err
}

func (s *service) Ban(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*MembershipDTO, error) {
	return s.moderate(ctx, actor, groupID, userID, membership.ActionBan, membership.PermBanMember)
}

func (s *service) Unban(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*MembershipDTO, error) {
	return s.moderate(ctx, actor, groupID, userID, membership.ActionUnban, membership.PermUnbanMember)
}

func (s *service) moderate(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID, action membership.Action, perm membership.Permission) (*MembershipDTO, error) {
	var (
		row     *models.GroupMember
		outcome membership.Outcome
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		access, err := LoadAccess(ctx, repo, groupID, actor.UserID, true)
		if err != nil {
			return err
		}
		target, err := repo.Member(ctx, groupID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}
		switch action {
		case membership.ActionBan, membership.ActionUnban:
			err = membership.CheckModeration(perm, actor.UserID, access.Level, target, access.Group.CreatedBy)
		default:
			err = membership.Require(perm, access.Level)
		}
		if err != nil {
			return err
		}
		row, outcome, err = s.apply(ctx, repo, access.Group, userID, target, action)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !outcome.NoOp {
		s.recordTransition(ctx, action, groupID, userID, row)
	}
	return membershipOf(row), nil
}

// apply runs action against target, writes the roster change and keeps
// member_count in step. It must run inside the transaction that locked g.
func (s *service) apply(ctx context.Context, repo Repository, g *models.Group, userID uuid.UUID, target *models.GroupMember, action membership.Action) (*models.GroupMember, membership.Outcome, error) {
	outcome, err := membership.Transition(action, membership.StateOf(target), membership.Options{RequireApproval: g.RequireApproval})
	if err != nil {
		return nil, outcome, err
	}
	if outcome.NoOp {
		return target, outcome, nil
	}
	if outcome.ActiveDelta() > 0 {
		active, err := repo.CountMembers(ctx, g.ID, enums.MembershipStatusActive)
		if err != nil {
			return nil, outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
		}
		if err := membership.CheckCapacity(outcome, g.MaxMembersLimit, active); err != nil {
			return nil, outcome, err
		}
	}

	switch {
	case outcome.Delete():
		if err := repo.DeleteMember(ctx, g.ID, userID); err != nil {
			return nil, outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
		}
		target = nil
	case target == nil:
		status, _ := outcome.To.Status()
		target = &models.GroupMember{
			GroupID: g.ID,
			UserID:  userID,
			Role:    enums.MemberRoleMember,
			Status:  status,
		}
		if err := repo.CreateMember(ctx, target); err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, outcome, pkgerrors.Conflict("already a member")
			}
			return nil, outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}
	default:
		status, _ := outcome.To.Status()
		updates := map[string]any{"status": status}
		if action == membership.ActionBan {
			updates["role"] = enums.MemberRoleMember
			target.Role = enums.MemberRoleMember
		}
		if err := repo.UpdateMember(ctx, g.ID, userID, updates); err != nil {
			return nil, outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update membership")
		}
		target.Status = status
	}

	if err := repo.AdjustMemberCount(ctx, g.ID, outcome.ActiveDelta()); err != nil {
		return nil, outcome, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member count")
	}
	return target, outcome, nil
}

func (s *service) Promote(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID, input RoleInput) (*MembershipDTO, error) {
	role := input.Role
	if role == "" {
		role = enums.MemberRoleModerator
	}
	return s.changeRole(ctx, actor, groupID, userID, role, true)
}

func (s *service) Demote(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID, input RoleInput) (*MembershipDTO, error) {
	role := input.Role
	if role == "" {
		role = enums.MemberRoleMember
	}
	return s.changeRole(ctx, actor, groupID, userID, role, false)
}

func (s *service) changeRole(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID, role enums.MemberRole, promote bool) (*MembershipDTO, error) {
	var (
		row    *models.GroupMember
		change membership.RoleChange
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		access, err := LoadAccess(ctx, repo, groupID, actor.UserID, true)
		if err != nil {
			return err
		}
		target, err := repo.Member(ctx, groupID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}
		change, err = membership.CheckRoleChange(access.Level, target, access.Group.CreatedBy, role)
		if err != nil {
			return err
		}
		if err := change.CheckDirection(promote); err != nil {
			return err
		}
		row = target
		if !change.Changed() {
			return nil
		}
		if err := repo.UpdateMember(ctx, groupID, userID, map[string]any{"role": change.To}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member role")
		}
		row.Role = change.To
		return nil
	})
	if err != nil {
		return nil, err
	}
	if change.Changed() {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"group_id": groupID.String(),
			"user_id":  userID.String(),
			"from":     string(change.From),
			"to":       string(change.To),
		}), "group.member.role_changed")
	}
	return membershipOf(row), nil
}

// ListForUser is the user-side view of memberships, served from the roster.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, status *enums.MembershipStatus, params pagination.Params) (pagination.Page[UserGroupDTO], error) {
	if status != nil && !status.IsValid() {
		return pagination.Page[UserGroupDTO]{}, pkgerrors.Validation("invalid membership status")
	}
	rows, total, err := s.repo.ListUserMemberships(ctx, userID, status, params)
	if err != nil {
		return pagination.Page[UserGroupDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user groups")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GroupID)
	}
	groups, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return pagination.Page[UserGroupDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user groups")
	}
	byID := make(map[uuid.UUID]models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	items := make([]UserGroupDTO, 0, len(rows))
	for _, r := range rows {
		g, ok := byID[r.GroupID]
		if !ok {
			continue
		}
		items = append(items, UserGroupDTO{Group: listItem(g), Role: r.Role, Status: r.Status})
	}
	return pagination.NewPage(items, params, total), nil
}

func (s *service) ensureNameFree(ctx context.Context, repo Repository, name string, exclude uuid.UUID) error {
	taken, err := repo.ActiveNameTaken(ctx, name, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check group name")
	}
	if taken {
		return pkgerrors.Conflict("a group with this name already exists")
	}
	return nil
}

func (s *service) recordTransition(ctx context.Context, action membership.Action, groupID, userID uuid.UUID, row *models.GroupMember) {
	s.metrics.MembershipTransition(string(action))
	fields := map[string]any{
		"group_id": groupID.String(),
		"user_id":  userID.String(),
		"action":   string(action),
	}
	if row != nil {
		fields["status"] = string(row.Status)
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "group.member.transition")
}

func translateWrite(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Conflict("a group with this name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
