package workflow

import "errors"

var (
	// ErrInvalidRange indicates a box range whose start exceeds its end.
	ErrInvalidRange = errors.New("invalid box range")
	// ErrAborted indicates a run stopped before covering its whole range.
	ErrAborted = errors.New("batch run aborted")
	// ErrNoArtifact indicates the artifact exists neither locally nor in the archive.
	ErrNoArtifact = errors.New("artifact not found")
)
