package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tetranet/tetranet/internal/model"
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
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeGameNotFound    = "GAME_NOT_FOUND"
	CodeHistoryNotFound = "HISTORY_NOT_FOUND"
	CodeNotInLobby      = "NOT_IN_LOBBY"
	CodeAlreadyInLobby  = "ALREADY_IN_LOBBY"
	CodeNotHost         = "NOT_HOST"
	CodeLobbyFull       = "LOBBY_FULL"
	CodeGameInProgress  = "GAME_IN_PROGRESS"
	CodeUsernameExists  = "USERNAME_EXISTS"
	CodeInvalidUsername = "INVALID_USERNAME"
	CodeInternalError   = "INTERNAL_ERROR"
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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotExist):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not exist"}}
	case errors.Is(err, model.ErrHistoryNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHistoryNotFound, "No match history for this seed"}}
	case errors.Is(err, model.ErrNotInLobby):
		return &httpError{http.StatusNotFound, APIError{CodeNotInLobby, "Not in a lobby"}}
	case errors.Is(err, model.ErrAlreadyInLobby):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInLobby, "already in a lobby"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrLobbyFull):
		return &httpError{http.StatusConflict, APIError{CodeLobbyFull, "Lobby full"}}
	case errors.Is(err, model.ErrGameInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameInProgress, "Game in progress"}}
	case errors.Is(err, model.ErrSeedTaken), errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "username already exist"}}
	case errors.Is(err, model.ErrUsernameInvalid):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, "Invalid username"}}
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
