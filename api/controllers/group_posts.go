package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	"github.com/angelmondragon/pawfinderz-backend/api/validators"
	"github.com/angelmondragon/pawfinderz-backend/internal/groupposts"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

// postParams reads {groupId} and {postId}.
func postParams(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, uuid.UUID, bool) {
	groupID, err := validators.ParseUUIDParam(r, "groupId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	postID, err := validators.ParseUUIDParam(r, "postId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return groupID, postID, true
}

func GroupPostsList(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
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
		var filters groupposts.ListFilters
		if filters.Type, err = validators.ParseQueryEnum(r, "type", enums.ParsePostType); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), actorOf(r), groupID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GroupPostsCreate(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
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

		var body groupposts.CreatePostInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Create(r.Context(), actor, groupID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg := "Post created"
		if post.Status == enums.PostStatusPendingApproval {
			msg = "Post submitted for approval"
		}
		responses.WriteMessage(w, http.StatusCreated, msg, post)
	}
}

func GroupPostsGet(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		post, err := svc.Get(r.Context(), actorOf(r), groupID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func GroupPostsUpdate(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		var body groupposts.UpdatePostInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Update(r.Context(), actor, groupID, postID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Post updated", post)
	}
}

func GroupPostsDelete(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor, groupID, postID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Post deleted", nil)
	}
}

type postAction func(ctx context.Context, actor pkgAuth.Actor, groupID, postID uuid.UUID) (*groupposts.PostDTO, error)

// curate runs a moderator action that returns the updated post.
func curate(svc groupposts.Service, logg *logger.Logger, msg string, pick func(groupposts.Service) postAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		post, err := pick(svc)(r.Context(), actor, groupID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, msg, post)
	}
}

func GroupPostsApprove(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return curate(svc, logg, "Post approved", func(s groupposts.Service) postAction { return s.Approve })
}

func GroupPostsArchive(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return curate(svc, logg, "Post archived", func(s groupposts.Service) postAction { return s.Archive })
}

func GroupPostsPin(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return curate(svc, logg, "Post pinned", func(s groupposts.Service) postAction { return s.Pin })
}

func GroupPostsUnpin(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return curate(svc, logg, "Post unpinned", func(s groupposts.Service) postAction { return s.Unpin })
}

func GroupPostsLike(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		result, err := svc.ToggleLike(r.Context(), actor, groupID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg := "Post unliked"
		if result.Liked {
			msg = "Post liked"
		}
		responses.WriteMessage(w, http.StatusOK, msg, result)
	}
}

func GroupPostsShare(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		result, err := svc.Share(r.Context(), actor, groupID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Post shared", result)
	}
}

func GroupPostsAddComment(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}

		var body groupposts.CommentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comment, err := svc.AddComment(r.Context(), actor, groupID, postID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Comment added", comment)
	}
}

func GroupPostsDeleteComment(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}
		commentID, err := validators.ParseUUIDParam(r, "commentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteComment(r.Context(), actor, groupID, postID, commentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Comment deleted", nil)
	}
}

func GroupPostsAddReply(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}
		commentID, err := validators.ParseUUIDParam(r, "commentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body groupposts.CommentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.AddReply(r.Context(), actor, groupID, postID, commentID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Reply added", reply)
	}
}

func GroupPostsDeleteReply(svc groupposts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "posts")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, postID, ok := postParams(w, r, logg)
		if !ok {
			return
		}
		commentID, err := validators.ParseUUIDParam(r, "commentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		replyID, err := validators.ParseUUIDParam(r, "replyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteReply(r.Context(), actor, groupID, postID, commentID, replyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Reply deleted", nil)
	}
}
