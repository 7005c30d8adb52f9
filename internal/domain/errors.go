package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a missing, invalid or expired credential.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates that the caller is not allowed to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrConflict indicates that the operation clashes with existing state.
	ErrConflict = errors.New("conflict")
	// ErrUpstream wraps failures of the store, blob storage or completion API.
	ErrUpstream = errors.New("upstream failure")

	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrImageNotFound   = fmt.Errorf("image %w", ErrNotFound)

	ErrEmailAlreadyExists = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrUserHasListings    = fmt.Errorf("%w: user still owns listings", ErrConflict)

	// ErrImageSetMismatch is returned when a reorder request is not a permutation of the listing's images.
	ErrImageSetMismatch   = fmt.Errorf("%w: image ids do not match the listing's images", ErrInvalidInput)
	ErrStorageUnavailable = fmt.Errorf("%w: no image bucket configured", ErrInvalidInput)
	ErrNoImageFiles       = fmt.Errorf("%w: no image file provided", ErrInvalidInput)

	// Login failures. Unknown email and wrong password share ErrInvalidCredentials.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotActive   = errors.New("account is not active")

	ErrAssistantDisabled = errors.New("assistant is not configured")
)
