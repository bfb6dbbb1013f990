package repository

import "errors"

var (
	// ErrDocumentNotFound is returned when a document cannot be found.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDuplicateDocument is returned when attempting to create a document that already exists.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrVersionConflict is returned by conditional updates when the stored version has moved on.
	ErrVersionConflict = errors.New("document version conflict")

	// ErrAccountExists is returned when an account with the same email already exists.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials is returned when email and password do not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when no valid session backs the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAccountNotFound is returned when an account lookup finds nothing.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSessionNotFound is returned when a session does not exist or was revoked.
	ErrSessionNotFound = errors.New("session not found")
)
