/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room Membership and Messaging Errors
const (
	// ErrDuplicateUser indicates an attempt to register a user ID that is already present in the room.
	ErrDuplicateUser = 2101

	// ErrUnknownUser indicates an operation that referenced a user ID not present in the room.
	ErrUnknownUser = 2102

	// ErrInvalidPayload indicates that an inbound WebSocket frame was not a text frame.
	ErrInvalidPayload = 2201
)

// 3xxx: Connection Session Errors
const (
	// ErrSessionState indicates a lifecycle event arrived for a session in the wrong state.
	ErrSessionState = 3001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrRoomUnavailable indicates the shared room instance was missing from the request context.
	ErrRoomUnavailable = 5001
)
