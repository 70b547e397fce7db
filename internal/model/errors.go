package model

import "errors"

// Common errors used across the application. The lobby error messages are
// part of the wire contract: they are surfaced verbatim in `error` events.
var (
	// Lobby errors
	ErrGameNotExist    = errors.New("Game not exist")
	ErrSeedTaken       = errors.New("username already exist")
	ErrLobbyFull       = errors.New("Lobby full")
	ErrGameInProgress  = errors.New("Game in progress")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUsernameInvalid = errors.New("invalid username")
	ErrNotInLobby      = errors.New("player is not in a lobby")
	ErrAlreadyInLobby  = errors.New("already in a lobby")
	ErrNotHost         = errors.New("player is not the host")
	ErrPlayersNotReady = errors.New("players are not all ready")

	// Session errors
	ErrNoSession = errors.New("no active game session")

	// History errors
	ErrHistoryNotFound = errors.New("no match history for seed")
)
