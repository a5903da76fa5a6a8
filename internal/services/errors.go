package services

import "errors"

// Sentinel errors shared by all services. Handlers map these to HTTP
// status codes.
var (
	// ErrNotFound signals a missing tenant, channel or subscription
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists signals an id collision on create
	ErrAlreadyExists = errors.New("already exists")

	// ErrForbidden signals a caller without admin privileges
	ErrForbidden = errors.New("admin privileges required")

	// ErrNoDeviceTokens signals a direct send to a user who never
	// registered a device
	ErrNoDeviceTokens = errors.New("user notification registration required")

	// ErrInvalidInput signals a malformed or incomplete request
	ErrInvalidInput = errors.New("invalid input")
)
