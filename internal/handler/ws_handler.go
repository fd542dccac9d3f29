/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
resolving the shared room, upgrading the HTTP connection to WebSocket, and driving the
connection's session lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"stormchat/internal/app/chat"
	"stormchat/internal/pkg/errs"
	"stormchat/internal/pkg/limiter"
	"stormchat/internal/pkg/logx"
	"stormchat/internal/pkg/randx"
	"stormchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The shared room must be resolvable before the upgrade happens; a request without it
// is aborted as a server error. After the upgrade the handler goroutine becomes the
// connection's read loop and returns when the connection ends.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		room, roomErr := chat.FromContext(r.Context())
		if roomErr != nil {
			logx.Error(roomErr, "WebSocket connection rejected: Shared room unavailable.")
			resp.RespondError(w, r, roomErr)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnID()

		client := chat.NewClient(conn, connID)
		sess := chat.NewSession(room, client, connID)

		go client.WritePump()

		if connectErr := sess.OnConnect(); connectErr != nil {
			logx.Error(connectErr, "Session connect failed, closing connection", "conn_id", connID)

			if closeErr := client.Close(); closeErr != nil {
				logx.Error(closeErr, "Failed to close client after connect failure", "conn_id", connID)
			}
			return
		}

		logx.Info("WebSocket connection established", "conn_id", connID, "user_id", sess.UserID())

		client.ReadPump(sess)

		logx.Debug("WebSocket connection closed", "conn_id", connID, "user_id", sess.UserID())
	}
}
