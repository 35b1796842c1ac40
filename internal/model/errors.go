package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrInvalidUsername = errors.New("invalid username")

	// PIN errors
	ErrPinNotFound = errors.New("no account for pin")
	ErrPinInUse    = errors.New("pin already in use")
	ErrInvalidPIN  = errors.New("invalid pin")

	// Balance errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransfer   = errors.New("invalid transfer")
	ErrInvalidAmount     = errors.New("invalid amount")

	// Concurrency errors
	//
	// ErrConflict is transient: a version-checked update lost a race and
	// may be retried with fresh state. ErrTransferFailed is what the
	// transfer engine surfaces once its retry budget is spent.
	ErrConflict       = errors.New("concurrent modification conflict")
	ErrTransferFailed = errors.New("transfer failed after retries")

	// Infrastructure errors
	ErrStoreUnavailable = errors.New("store unavailable")
)
