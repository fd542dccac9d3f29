/*
Package chat contains the core logic for the shared chat room: user identity
allocation, the connection registry, message broadcasting, and the per-connection
session lifecycle.

This file defines the envelope and the closed set of message types sent to clients.
No other frame shapes are ever emitted.
*/
package chat

// MessageType identifies the kind of frame sent to clients.
type MessageType string

const (
	// TypeMessage carries a chat message from a user or from the server itself.
	TypeMessage MessageType = "MESSAGE"

	// TypeUserJoin announces a new user to the room.
	TypeUserJoin MessageType = "USER_JOIN"

	// TypeUserLeave announces a departed user to the room.
	TypeUserLeave MessageType = "USER_LEAVE"

	// TypeRoomJoin confirms the assigned identity to a newly connected user.
	TypeRoomJoin MessageType = "ROOM_JOIN"

	// TypeRoomKick tells a user the server is about to close their connection.
	TypeRoomKick MessageType = "ROOM_KICK"

	// TypeWhisper carries a private message to a single user.
	TypeWhisper MessageType = "WHISPER"

	// TypeError reports a non-fatal problem to a single user.
	TypeError MessageType = "ERROR"
)

// ServerUserID is the reserved sender identity for server-originated messages.
// The identity allocator never produces it, so it cannot collide with a user.
const ServerUserID = "server"

// KickNotice is the text carried by a ROOM_KICK frame before the connection closes.
const KickNotice = "You have been kicked from the room."

// Envelope is the JSON frame sent to clients over the WebSocket.
type Envelope struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// MessagePayload is the data of a MESSAGE frame.
type MessagePayload struct {
	UserID string `json:"user_id"`
	Msg    string `json:"msg"`
}

// UserPayload is the data of USER_JOIN, USER_LEAVE, and ROOM_JOIN frames.
type UserPayload struct {
	UserID string `json:"user_id"`
}

// KickPayload is the data of a ROOM_KICK frame.
type KickPayload struct {
	Msg string `json:"msg"`
}

// WhisperPayload is the data of a WHISPER frame.
type WhisperPayload struct {
	FromUser string `json:"from_user"`
	ToUser   string `json:"to_user"`
	Msg      string `json:"msg"`
}

// ErrorPayload is the data of an ERROR frame.
type ErrorPayload struct {
	Msg string `json:"msg"`
}

// NewMessage builds a MESSAGE envelope attributed to the given sender.
func NewMessage(userID, msg string) Envelope {
	return Envelope{Type: TypeMessage, Data: MessagePayload{UserID: userID, Msg: msg}}
}

// NewUserJoin builds a USER_JOIN envelope for the given user.
func NewUserJoin(userID string) Envelope {
	return Envelope{Type: TypeUserJoin, Data: UserPayload{UserID: userID}}
}

// NewUserLeave builds a USER_LEAVE envelope for the given user.
func NewUserLeave(userID string) Envelope {
	return Envelope{Type: TypeUserLeave, Data: UserPayload{UserID: userID}}
}

// NewRoomJoin builds a ROOM_JOIN envelope confirming the given identity.
func NewRoomJoin(userID string) Envelope {
	return Envelope{Type: TypeRoomJoin, Data: UserPayload{UserID: userID}}
}

// NewRoomKick builds a ROOM_KICK envelope carrying the given notice.
func NewRoomKick(msg string) Envelope {
	return Envelope{Type: TypeRoomKick, Data: KickPayload{Msg: msg}}
}

// NewWhisper builds a WHISPER envelope between the given users.
func NewWhisper(fromUser, toUser, msg string) Envelope {
	return Envelope{Type: TypeWhisper, Data: WhisperPayload{FromUser: fromUser, ToUser: toUser, Msg: msg}}
}

// NewErrorMessage builds an ERROR envelope carrying the given text.
func NewErrorMessage(msg string) Envelope {
	return Envelope{Type: TypeError, Data: ErrorPayload{Msg: msg}}
}
