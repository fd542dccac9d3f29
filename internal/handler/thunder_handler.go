/*
Package handler provides the HTTP handler function for ambient broadcasts.
*/
package handler

import (
	"net/http"

	"stormchat/internal/app/chat"
	"stormchat/internal/pkg/req"
	"stormchat/internal/pkg/resp"
)

type ThunderInput struct {
	// Category indicates how close the thunder strikes: "near", "far", or "extreme".
	Category string `json:"category"`
}

// thunderText maps the distance category to the broadcast text. Anything
// outside the two named distances reads as a faint tremor.
func thunderText(category string) string {
	switch category {
	case "near":
		return "Thunder booms overhead"
	case "far":
		return "Thunder rumbles in the distance"
	default:
		return "You feel a faint tremor"
	}
}

// HandleThunder broadcasts an ambient message, attributed to the server
// itself, to all chat room users.
func HandleThunder(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, roomErr := chat.FromContext(r.Context())
		if roomErr != nil {
			resp.RespondError(w, r, roomErr)
			return
		}

		var input ThunderInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		room.BroadcastMessage(chat.ServerUserID, thunderText(input.Category))

		data := map[string]any{
			"broadcast": input.Category,
		}
		resp.RespondSuccess(w, r, data)
	}
}
