/*
Package chat contains the core logic for the shared chat room: user identity
allocation, the connection registry, message broadcasting, and the per-connection
session lifecycle.

This file provides the single process-wide Room instance to request contexts.
Every handler obtains the room from its context rather than from a package-level
global, which keeps the room an explicitly owned dependency.
*/
package chat

import (
	"context"
	"net/http"

	"stormchat/internal/pkg/errs"
)

// Define Context Key for storing the Room, preventing key collisions with other packages.
type contextKey string

const (
	// ContextRoomKey is the key used to store the shared *Room in the request Context.
	ContextRoomKey contextKey = "chat_room"
)

// NewContext returns a copy of ctx that carries the shared room.
func NewContext(ctx context.Context, room *Room) context.Context {
	return context.WithValue(ctx, ContextRoomKey, room)
}

// FromContext extracts the shared room injected by ProviderMiddleware.
// A missing room is a fatal configuration error: handlers must abort the
// request or connection with ErrRoomUnavailable rather than continue.
func FromContext(ctx context.Context) (*Room, *errs.CustomError) {
	room, ok := ctx.Value(ContextRoomKey).(*Room)
	if !ok || room == nil {
		return nil, errs.NewError(errs.ErrRoomUnavailable)
	}

	return room, nil
}

// ProviderMiddleware injects the shared room into the context of every request
// passing through it, HTTP and WebSocket alike.
func ProviderMiddleware(room *Room) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := NewContext(r.Context(), room)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
