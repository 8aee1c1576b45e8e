// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingUsername indicates an empty username field.
	ErrMissingUsername = errors.New("username is required")

	// ErrMissingEmail indicates an empty email field.
	ErrMissingEmail = errors.New("email is required")

	// ErrMissingPassword indicates an empty password field.
	ErrMissingPassword = errors.New("password is required")

	// ErrDuplicateUsername indicates the username is already registered.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUnknownUser indicates a login attempt for a username with no record.
	ErrUnknownUser = errors.New("unknown user")

	// ErrBadPassword indicates password verification failed for an existing user.
	ErrBadPassword = errors.New("bad password")

	// ErrAuthRequired indicates a protected operation was attempted anonymously.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNoFilePart indicates the upload request carried no file field.
	ErrNoFilePart = errors.New("no file part")

	// ErrEmptyFilename indicates the uploaded file has no filename.
	ErrEmptyFilename = errors.New("empty filename")

	// ErrDisallowedExtension indicates the filename extension is not in the allow-set.
	ErrDisallowedExtension = errors.New("disallowed extension")
)
