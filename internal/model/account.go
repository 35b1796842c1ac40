package model

import (
	"fmt"
	"regexp"
	"time"
)

// Username uniquely identifies an account across the system.
// Usernames are case-sensitive and immutable once created.
type Username string

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// PIN validation constraints.
const (
	MinPINLength = 4
	MaxPINLength = 8
)

// usernameRegex matches usernames that start with a letter and contain
// only letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// pinRegex matches all-digit PINs.
var pinRegex = regexp.MustCompile(`^[0-9]+$`)

// Account is the ledger record for one user.
//
// All mutation must go through the store's version-checked update path;
// Version is bumped by the store on every successful commit and a stale
// Version causes the commit to fail with ErrConflict.
type Account struct {
	Username  Username
	PIN       string // short numeric secret, unique across live accounts
	Balance   float64
	Score     int64
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateUsername checks a username against the account naming rules.
func ValidateUsername(username Username) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: must be %d-%d characters", ErrInvalidUsername, MinUsernameLength, MaxUsernameLength)
	}
	if !usernameRegex.MatchString(string(username)) {
		return fmt.Errorf("%w: must start with a letter and contain only letters, numbers, and underscores", ErrInvalidUsername)
	}
	return nil
}

// ValidatePIN checks a PIN against the format rules.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return fmt.Errorf("%w: must be %d-%d digits", ErrInvalidPIN, MinPINLength, MaxPINLength)
	}
	if !pinRegex.MatchString(pin) {
		return fmt.Errorf("%w: must contain only digits", ErrInvalidPIN)
	}
	return nil
}
