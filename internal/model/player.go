package model

// ConnID uniquely identifies a connection; it is the player's identity
// for the lifetime of that connection.
type ConnID string

// MaxUsernameLen caps display names.
const MaxUsernameLen = 16

// Player is a member of a lobby. Username is mutable display data; the
// connection id is the identity. Ready doubles as the alive flag while a
// game is in progress.
type Player struct {
	ConnID   ConnID
	Username string
	Host     bool
	Ready    bool
}
