package books

import "errors"

var (
	// ErrNotFound is returned when a book or a remote object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotPersisted is returned by operations that need a store-assigned id.
	ErrNotPersisted = errors.New("book has not been saved")

	// ErrNoImage is returned when an operation needs an image URL and the book has none.
	ErrNoImage = errors.New("book has no image")

	// ErrNoCoverImage is returned when an upload is requested without a cover image payload.
	ErrNoCoverImage = errors.New("no cover image attached")

	// ErrUnknownAttribute is returned by Apply for names outside the settable set.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrInvalidCursor is returned when a pagination cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrPermissionDenied wraps authorization failures from a backing service.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable wraps transient failures from a backing service.
	ErrUnavailable = errors.New("service unavailable")
)
