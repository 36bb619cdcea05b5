package script

import "github.com/pkg/errors"

var (
	// ErrInterpreterFault is returned when an unknown word is met with no
	// entity to quarantine.
	ErrInterpreterFault = errors.New("interpreter fault")
	// ErrEntityFrozen is returned when an unknown word froze the entity's script.
	ErrEntityFrozen = errors.New("entity script frozen")
	// ErrStepLimit is returned when a dispatch exceeded Engine.MaxSteps.
	ErrStepLimit = errors.New("step limit exceeded")
	// ErrNestingLimit is returned when nested dispatches exceed MaxNesting.
	ErrNestingLimit = errors.New("nested dispatch limit exceeded")
	// ErrNoBracket is returned when an event name is not followed by '{'.
	ErrNoBracket = errors.New("no bracket after event")

	ErrDuplicateCommand = errors.New("duplicate command")
	ErrTypeMismatch     = errors.New("variable type mismatch")
	ErrReadOnly         = errors.New("system variables are read-only")
	ErrNoNamespace      = errors.New("name has no variable sigil")
)
