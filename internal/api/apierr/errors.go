package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/roomrank/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidAddress      = "INVALID_ADDRESS"
	CodeInvalidScore        = "INVALID_SCORE"
	CodeInvalidTokenBalance = "INVALID_TOKEN_BALANCE"
	CodeInvalidRoomID       = "INVALID_ROOM_ID"
	CodeRoomRequired        = "ROOM_REQUIRED"
	CodeInvalidInviteCode   = "INVALID_INVITE_CODE"
	CodeSelfInvitation      = "SELF_INVITATION"
	CodeNoValidInvitation   = "NO_VALID_INVITATION"
	CodeDuplicateInvitation = "DUPLICATE_INVITATION"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeNotInRoom           = "NOT_IN_ROOM"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Specific sentinels are
// matched first, then the error class, and anything unclassified is an
// opaque internal error.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrInvalidAddress):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAddress, "User address is required"}}
	case errors.Is(err, model.ErrMissingScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Score is required"}}
	case errors.Is(err, model.ErrInvalidScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Score must be a non-negative integer"}}
	case errors.Is(err, model.ErrMissingTokenBalance):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTokenBalance, "Token balance is required"}}
	case errors.Is(err, model.ErrInvalidTokenBalance):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTokenBalance, "Token balance must be a non-negative number"}}
	case errors.Is(err, model.ErrInvalidRoomID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoomID, "Room id must be a positive integer"}}
	case errors.Is(err, model.ErrRoomRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeRoomRequired, "Room id is required"}}
	case errors.Is(err, model.ErrInvalidInviteCode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidInviteCode, "Invite code is missing or malformed"}}
	case errors.Is(err, model.ErrSelfInvitation):
		return &httpError{http.StatusBadRequest, APIError{CodeSelfInvitation, "A player cannot invite themselves"}}
	case errors.Is(err, model.ErrNoValidInvitation):
		return &httpError{http.StatusBadRequest, APIError{CodeNoValidInvitation, "No valid invitation for this address"}}
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, "Invalid input"}}

	// Conflicts are reported as bad requests
	case errors.Is(err, model.ErrDuplicateInvitation):
		return &httpError{http.StatusBadRequest, APIError{CodeDuplicateInvitation, "Invitation already exists for this invitee"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusBadRequest, APIError{CodeConflict, "Conflict"}}

	// Lookups
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusNotFound, APIError{CodeNotInRoom, "Player has not been assigned a room"}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
