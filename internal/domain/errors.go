package domain

import "errors"

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidReference   = errors.New("referenced row does not exist")
	ErrConflict           = errors.New("conflict")
	ErrEventFull          = errors.New("event is at capacity")
	ErrInvitationClosed   = errors.New("invitation is no longer pending")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)
