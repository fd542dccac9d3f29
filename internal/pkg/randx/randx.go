/*
Package randx provides functions for generating unique identifiers.

It is primarily used to generate connection correlation IDs attached to the
log context of every WebSocket session.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnID generates a standard UUID v4 string to serve as a unique identifier
// for a WebSocket connection. The ID only appears in logs and is never sent
// to clients.
func ConnID() string {
	return uuid.New().String()
}
