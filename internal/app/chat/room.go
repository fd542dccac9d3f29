/*
Package chat contains the core logic for the shared chat room: user identity
allocation, the connection registry, message broadcasting, and the per-connection
session lifecycle.

This file defines the Room struct, the single shared registry of connected users.
It maps each user identity to a connection handle and per-user metadata, and fans
structured messages out to registered connections.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"stormchat/internal/app/user"
	"stormchat/internal/pkg/errs"
	"stormchat/internal/pkg/logx"
)

// Conn is the transmit side of a registered connection handle.
// Implementations must be safe for concurrent use: broadcasts, whispers, and
// kicks may arrive from different goroutines.
type Conn interface {
	// Send queues an envelope for delivery to the peer.
	Send(env Envelope) error

	// Close tears down the connection. Multiple calls must be harmless.
	// Closing is expected to surface as a disconnect event on the
	// connection's own session, which performs the registry removal.
	Close() error
}

// Room is the process-wide registry of connected users. It holds two maps
// keyed by user ID, connections and metadata, which are always updated
// together under one lock: an ID is present in one map if and only if it is
// present in the other.
type Room struct {
	// mu protects clients and users as a single unit.
	mu sync.RWMutex

	// clients maps user ID to the user's connection handle.
	clients map[string]Conn

	// users maps user ID to the user's metadata.
	users map[string]user.User

	// ids issues the identities assigned to new connections.
	ids *IDAllocator

	// structured logger with room context.
	logger zerolog.Logger
}

// NewRoom creates the empty room. The process creates exactly one Room at
// startup and shares it across all requests and connections.
func NewRoom() *Room {
	roomLogger := logx.Logger().With().
		Str("component", "room").
		Logger()

	return &Room{
		clients: make(map[string]Conn),
		users:   make(map[string]user.User),
		ids:     NewIDAllocator(),
		logger:  roomLogger,
	}
}

// NextUserID allocates the identity for an incoming connection. Allocation is
// independent of registration: concurrent joiners may register out of
// allocation order, but identities stay unique.
func (r *Room) NextUserID() string {
	return r.ids.NextID()
}

// AddUser registers the connection handle under the given user ID and creates
// the user's metadata in the same atomic step. It fails with ErrDuplicateUser
// when the ID is already registered, leaving the registry untouched.
func (r *Room) AddUser(userID string, conn Conn) *errs.CustomError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[userID]; ok {
		return errs.NewError(errs.ErrDuplicateUser, userID)
	}

	r.clients[userID] = conn
	r.users[userID] = user.New(userID)

	r.logger.Info().
		Str("user_id", userID).
		Int("total_users", len(r.clients)).
		Msg("User joined room")

	return nil
}

// RemoveUser deletes the user's connection handle and metadata in the same
// atomic step. It fails with ErrUnknownUser when the ID is not registered.
func (r *Room) RemoveUser(userID string) *errs.CustomError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[userID]; !ok {
		return errs.NewError(errs.ErrUnknownUser, userID)
	}

	delete(r.clients, userID)
	delete(r.users, userID)

	r.logger.Info().
		Str("user_id", userID).
		Int("total_users", len(r.clients)).
		Msg("User left room")

	return nil
}

// GetUser returns the metadata for the given user ID. A miss is reported via
// the boolean, not an error; callers decide how to treat an absent user.
func (r *Room) GetUser(userID string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	return u, ok
}

// UserList returns a snapshot of the identifiers of all registered users.
// Order is not guaranteed. Per-user metadata is served by GetUser.
func (r *Room) UserList() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]string, 0, len(r.users))
	for id := range r.users {
		list = append(list, id)
	}

	return list
}

// KickUser sends a ROOM_KICK notice to the user and closes their connection.
// It does not touch the registry: removal happens through the disconnect event
// the close provokes on the user's session, so a kick and a racing natural
// disconnect cannot remove the same user twice. Fails with ErrUnknownUser when
// the ID is not registered.
func (r *Room) KickUser(userID string) *errs.CustomError {
	r.mu.RLock()
	conn, ok := r.clients[userID]
	r.mu.RUnlock()

	if !ok {
		return errs.NewError(errs.ErrUnknownUser, userID)
	}

	if err := conn.Send(NewRoomKick(KickNotice)); err != nil {
		r.logger.Warn().Err(err).
			Str("user_id", userID).
			Msg("Kick notice not delivered")
	}

	if err := conn.Close(); err != nil {
		r.logger.Warn().Err(err).
			Str("user_id", userID).
			Msg("Error closing kicked connection")
	}

	r.logger.Info().
		Str("user_id", userID).
		Msg("User kicked from room")

	return nil
}

// Whisper sends a private WHISPER from one registered user to another. The
// sender must be registered; whispering from an unknown ID fails with
// ErrUnknownUser. An unknown target is not a failure: the sender receives an
// ERROR frame instead and the call succeeds.
func (r *Room) Whisper(fromID, toID, msg string) *errs.CustomError {
	r.mu.RLock()
	sender, senderOK := r.clients[fromID]
	target, targetOK := r.clients[toID]
	r.mu.RUnlock()

	if !senderOK {
		return errs.NewError(errs.ErrUnknownUser, fromID)
	}

	if !targetOK {
		notice := errs.NewError(errs.ErrUnknownUser, toID)
		if err := sender.Send(NewErrorMessage(notice.Message)); err != nil {
			r.logger.Warn().Err(err).
				Str("user_id", fromID).
				Msg("Whisper error notice not delivered")
		}
		return nil
	}

	if err := target.Send(NewWhisper(fromID, toID, msg)); err != nil {
		r.logger.Warn().Err(err).
			Str("from_user", fromID).
			Str("to_user", toID).
			Msg("Whisper not delivered")
	}

	return nil
}

// BroadcastMessage fans a MESSAGE out to every registered connection,
// including the sender's own when the sender is registered. The sender does
// not have to be a member: server-originated messages use ServerUserID.
func (r *Room) BroadcastMessage(fromID, msg string) {
	r.broadcast(NewMessage(fromID, msg))
}

// BroadcastUserJoined fans a USER_JOIN out to every registered connection.
// The lifecycle controller calls this before registering the new user, so the
// new user never receives their own join announcement.
func (r *Room) BroadcastUserJoined(userID string) {
	r.broadcast(NewUserJoin(userID))
}

// BroadcastUserLeft fans a USER_LEAVE out to every registered connection.
func (r *Room) BroadcastUserLeft(userID string) {
	r.broadcast(NewUserLeave(userID))
}

// broadcast delivers the envelope to a snapshot of the registered connections.
// Delivery is best-effort per recipient: a failed send is logged and skipped,
// never unregisters the recipient, and never blocks delivery to the others.
func (r *Room) broadcast(env Envelope) {
	r.mu.RLock()
	recipients := make(map[string]Conn, len(r.clients))
	for id, conn := range r.clients {
		recipients[id] = conn
	}
	r.mu.RUnlock()

	for id, conn := range recipients {
		if err := conn.Send(env); err != nil {
			r.logger.Warn().Err(err).
				Str("user_id", id).
				Str("msg_type", string(env.Type)).
				Msg("Broadcast delivery failed")
		}
	}
}

// Shutdown closes every registered connection. Registry entries drain through
// the disconnect events of the closing connections, the same path as any other
// departure.
func (r *Room) Shutdown() {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.clients))
	for _, conn := range r.clients {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("Error closing connection during shutdown")
		}
	}

	r.logger.Info().Int("connections", len(conns)).Msg("Room shutdown complete")
}
