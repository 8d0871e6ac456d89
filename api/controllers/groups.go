package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/api/validators"
	"github.com/angelmondragon/pawfinderz-backend/internal/groups"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

func GroupsList(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filters groups.ListFilters
		if filters.Type, err = validators.ParseQueryEnum(r, "type", enums.ParseGroupType); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.Category, err = validators.ParseQueryEnum(r, "category", enums.ParseGroupCategory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.Privacy, err = validators.ParseQueryEnum(r, "privacy", enums.ParseGroupPrivacy); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Query = validators.SearchTerm(r)

		page, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GroupsCreate(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body groups.CreateGroupInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.Create(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Group created", group)
	}
}

// GroupsGet is public; the caller's membership is attached when a token is present.
func GroupsGet(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), actorOf(r), groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func GroupsUpdate(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body groups.UpdateGroupInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.Update(r.Context(), actor, groupID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Group updated", group)
	}
}

func GroupsDelete(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, groupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Group deleted", nil)
	}
}

func GroupsJoin(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		membership, err := svc.Join(r.Context(), actor, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if membership.Status == enums.MembershipStatusPending {
			responses.WriteMessage(w, http.StatusOK, "Join request sent", membership)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Joined group", membership)
	}
}

func GroupsLeave(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Leave(r.Context(), actor, groupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Left group", nil)
	}
}

func GroupsMembers(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseMembershipStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Members(r.Context(), actorOf(r), groupID, status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GroupsRequests(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Requests(r.Context(), actor, groupID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

type memberAction func(ctx context.Context, actor pkgAuth.Actor, groupID, userID uuid.UUID) (*groups.MembershipDTO, error)

// moderate runs a staff action against one member of a group.
func moderate(svc groups.Service, logg *logger.Logger, msg string, pick func(groups.Service) memberAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, userID, ok := memberParams(w, r, logg)
		if !ok {
			return
		}

		membership, err := pick(svc)(r.Context(), actor, groupID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msg, membership)
	}
}

func memberParams(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, uuid.UUID, bool) {
	groupID, err := validators.ParseUUIDParam(r, "groupId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := validators.ParseUUIDParam(r, "userId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return groupID, userID, true
}

func GroupsApprove(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return moderate(svc, logg, "Request approved", func(s groups.Service) memberAction { return s.Approve })
}

func GroupsBan(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return moderate(svc, logg, "Member banned", func(s groups.Service) memberAction { return s.Ban })
}

func GroupsUnban(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return moderate(svc, logg, "Member unbanned", func(s groups.Service) memberAction { return s.Unban })
}

func GroupsReject(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, userID, ok := memberParams(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Reject(r.Context(), actor, groupID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Request rejected", nil)
	}
}

func GroupsPromote(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return roleChange(svc, logg, "Member promoted", true)
}

func GroupsDemote(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return roleChange(svc, logg, "Member demoted", false)
}

// roleChange accepts an empty body; the service picks the default role.
func roleChange(svc groups.Service, logg *logger.Logger, msg string, promote bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "groups")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, userID, ok := memberParams(w, r, logg)
		if !ok {
			return
		}

		var body groups.RoleInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var (
			membership *groups.MembershipDTO
			err        error
		)
		if promote {
			membership, err = svc.Promote(r.Context(), actor, groupID, userID, body)
		} else {
			membership, err = svc.Demote(r.Context(), actor, groupID, userID, body)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msg, membership)
	}
}
