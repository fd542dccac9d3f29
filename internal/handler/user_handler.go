/*
Package handler provides HTTP handler functions for inspecting and managing room membership.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stormchat/internal/app/chat"
	"stormchat/internal/pkg/errs"
	"stormchat/internal/pkg/req"
	"stormchat/internal/pkg/resp"
)

// HandleListUsers returns the identifiers of every user currently in the
// room. Metadata for a single user is served by HandleGetUser.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, roomErr := chat.FromContext(r.Context())
		if roomErr != nil {
			resp.RespondError(w, r, roomErr)
			return
		}

		data := map[string]any{
			"users": room.UserList(),
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleGetUser returns the metadata of a single user, or 404 when the user
// is not in the room.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, roomErr := chat.FromContext(r.Context())
		if roomErr != nil {
			resp.RespondError(w, r, roomErr)
			return
		}

		userID := chi.URLParam(r, "id")

		u, ok := room.GetUser(userID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownUser, userID))
			return
		}

		data := map[string]any{
			"user": u,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleKickUser sends a kick notice to the user and closes their connection.
// The user leaves the room through the normal disconnect path afterwards.
func HandleKickUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, roomErr := chat.FromContext(r.Context())
		if roomErr != nil {
			resp.RespondError(w, r, roomErr)
			return
		}

		userID := chi.URLParam(r, "id")

		if kickErr := room.KickUser(userID); kickErr != nil {
			resp.RespondError(w, r, kickErr)
			return
		}

		data := map[string]any{
			"kicked": userID,
		}
		resp.RespondSuccess(w, r, data)
	}
}

type WhisperInput struct {
	// FromUser is the registered user the whisper is attributed to.
	FromUser string `json:"from_user"`

	// Msg is the private message text.
	Msg string `json:"msg"`
}

// HandleWhisper delivers a private message from one registered user to the
// user addressed in the URL. An unregistered target is not a failure; the
// sender is notified with an ERROR frame instead.
func HandleWhisper(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, roomErr := chat.FromContext(r.Context())
		if roomErr != nil {
			resp.RespondError(w, r, roomErr)
			return
		}

		toID := chi.URLParam(r, "id")

		var input WhisperInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FromUser == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if whisperErr := room.Whisper(input.FromUser, toID, input.Msg); whisperErr != nil {
			resp.RespondError(w, r, whisperErr)
			return
		}

		data := map[string]any{
			"from_user": input.FromUser,
			"to_user":   toID,
		}
		resp.RespondSuccess(w, r, data)
	}
}
