package registry

import "errors"

// Registry errors are returned as explicit outcomes and mapped by callers to
// HTTP statuses or targeted error frames, never raised as fatal process errors.
var (
	// ErrNotFound indicates an unknown room or connection ID.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument indicates missing or malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden indicates a wrong secret for a private room.
	ErrForbidden = errors.New("forbidden")
)
