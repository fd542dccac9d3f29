/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room Membership and Messaging Errors
	ErrDuplicateUser:  {Code: ErrDuplicateUser, Message: "User %s is already in the room.", Status: http.StatusConflict},
	ErrUnknownUser:    {Code: ErrUnknownUser, Message: "User %s is not in the room.", Status: http.StatusNotFound},
	ErrInvalidPayload: {Code: ErrInvalidPayload, Message: "Only text frames are supported.", Status: http.StatusBadRequest},

	// 3xxx: Connection Session Errors
	ErrSessionState: {Code: ErrSessionState, Message: "Session received event %q in an invalid state.", Status: http.StatusInternalServerError},

	// 5xxx: Internal System Errors
	ErrUnknown:         {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrRoomUnavailable: {Code: ErrRoomUnavailable, Message: "Chat room is unavailable.", Status: http.StatusInternalServerError},
}
