/*
Package chat contains the core logic for the shared chat room: user identity
allocation, the connection registry, message broadcasting, and the per-connection
session lifecycle.

This file defines the Session struct, the per-connection state machine that
drives room mutations from connect, receive, and disconnect events.
*/
package chat

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"stormchat/internal/pkg/errs"
	"stormchat/internal/pkg/logx"
)

// sessionState tracks where a connection is in its lifecycle.
type sessionState int

const (
	// statePending: session created, no identity assigned yet.
	statePending sessionState = iota

	// stateActive: identity assigned and registered in the room.
	stateActive

	// stateClosed: departure processed. Terminal.
	stateClosed
)

// Session drives a single connection through the room lifecycle:
// Pending, Active, Closed. Each connection gets exactly one connect and one
// disconnect, with any number of receives in between. Events for one session
// arrive serially from the connection's read loop, so no locking is needed;
// the room serializes the cross-connection work.
type Session struct {
	// the shared room this connection participates in.
	room *Room

	// the connection handle registered under this session's identity.
	conn Conn

	// userID is assigned on connect and never changes afterwards.
	userID string

	// current lifecycle state.
	state sessionState

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession prepares the lifecycle state machine for a freshly upgraded
// connection. The session stays Pending until OnConnect runs.
func NewSession(room *Room, conn Conn, connID string) *Session {
	sessionLogger := logx.Logger().With().
		Str("component", "session").
		Str("conn_id", connID).
		Logger()

	return &Session{
		room:   room,
		conn:   conn,
		state:  statePending,
		logger: sessionLogger,
	}
}

// UserID returns the identity assigned to this session, or the empty string
// before OnConnect has run.
func (s *Session) UserID() string {
	return s.userID
}

// OnConnect admits the connection to the room. It allocates the identity,
// confirms it to the new connection with ROOM_JOIN, announces the arrival with
// USER_JOIN, and finally registers the user. The announcement precedes the
// registration, so the joining user never receives their own USER_JOIN.
func (s *Session) OnConnect() *errs.CustomError {
	if s.state != statePending {
		return errs.NewError(errs.ErrSessionState, "connect")
	}

	s.userID = s.room.NextUserID()
	s.logger = s.logger.With().Str("user_id", s.userID).Logger()

	if err := s.conn.Send(NewRoomJoin(s.userID)); err != nil {
		s.logger.Warn().Err(err).Msg("ROOM_JOIN not delivered")
	}

	s.room.BroadcastUserJoined(s.userID)

	if err := s.room.AddUser(s.userID, s.conn); err != nil {
		return err
	}

	s.state = stateActive
	s.logger.Info().Msg("Session active")

	return nil
}

// OnReceive handles one inbound frame. Only text frames are accepted; anything
// else fails with ErrInvalidPayload and the caller is expected to abort the
// connection. A text frame is broadcast verbatim to the whole room, the sender
// included.
func (s *Session) OnReceive(frameType int, data []byte) *errs.CustomError {
	if s.state != stateActive {
		return errs.NewError(errs.ErrSessionState, "receive")
	}

	if frameType != websocket.TextMessage {
		return errs.NewError(errs.ErrInvalidPayload)
	}

	s.room.BroadcastMessage(s.userID, string(data))

	return nil
}

// OnDisconnect withdraws the user from the room and announces the departure
// with USER_LEAVE. The removal precedes the announcement, so the departing
// user is already out of the registry when the broadcast fans out. Calling
// OnDisconnect before OnConnect, or a second time, fails the state guard;
// that path signals a transport-wiring bug and is expected to be unreachable.
func (s *Session) OnDisconnect(closeCode int) *errs.CustomError {
	if s.state != stateActive {
		return errs.NewError(errs.ErrSessionState, "disconnect")
	}

	s.state = stateClosed

	if err := s.room.RemoveUser(s.userID); err != nil {
		return err
	}

	s.room.BroadcastUserLeft(s.userID)

	s.logger.Info().Int("close_code", closeCode).Msg("Session closed")

	return nil
}
