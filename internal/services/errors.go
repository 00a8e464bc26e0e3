package services

import "errors"

// Failure taxonomy surfaced to the route layer. Handlers map these with
// errors.Is; anything else is treated as a persistence failure.
var (
	// ErrNotFound: entity absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrConceptNotFound: toggle targeted a concept id the subject does not
	// have. Deliberately a hard error rather than a silent no-op.
	ErrConceptNotFound = errors.New("concept not found")

	// ErrInvalidState: the operation is not legal for the entity's current
	// state (e.g. re-adding an in-progress subject).
	ErrInvalidState = errors.New("invalid state")

	// ErrUnsupportedFileType: documentation upload with a MIME type other
	// than PDF or Word. Rejected before any state mutation.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
