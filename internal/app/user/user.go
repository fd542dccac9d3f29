/*
Package user contains core data structures related to chat participants.

It defines the per-user metadata recorded by the room for each connected
participant, used for passing user information both internally and to clients.
*/
package user

import "time"

// User represents the metadata tracked for a connected chat participant.
// Fields use JSON tags for serialization in HTTP responses.
type User struct {
	// UserID is the unique identifier assigned to the user for the lifetime of the room.
	UserID string `json:"user_id"`

	// ConnectedAt records when the user was registered in the room.
	ConnectedAt time.Time `json:"connected_at"`

	// MessageCount counts messages attributed to the user. It is carried in
	// the model and reported to clients but nothing currently increments it.
	MessageCount int `json:"message_count"`
}

// New returns the metadata for a user registered at the current time.
func New(userID string) User {
	return User{
		UserID:       userID,
		ConnectedAt:  time.Now(),
		MessageCount: 0,
	}
}
