package bridge

import (
	"errors"
	"fmt"

	"github.com/Iandenh/frontendengine/internal/engine"
	"github.com/Iandenh/frontendengine/internal/handle"
)

// ErrNullHandle reports an absent handle or pointer-shaped input. It is
// the same sentinel the registry returns so callers can match either.
var ErrNullHandle = handle.ErrNullHandle

var (
	// ErrInvalidJSON reports a malformed toggle-definition document.
	ErrInvalidJSON = errors.New("failed to parse JSON")

	// ErrInvalidProto reports a malformed binary context buffer.
	ErrInvalidProto = errors.New("invalid protobuf input")

	// ErrNotResolved reports a toggle the engine does not know.
	ErrNotResolved = errors.New("toggle could not be resolved")
)

// PartialUpdateError reports that a definition update was applied but
// produced engine warnings. The state change stands: callers must treat
// this as "state changed, proceed with caution", never as "state
// unchanged".
type PartialUpdateError struct {
	Warnings []engine.Warning
}

func (e *PartialUpdateError) Error() string {
	return fmt.Sprintf(
		"engine state was updated but warnings were reported, some flags may evaluate in unexpected ways: %v",
		e.Warnings,
	)
}
