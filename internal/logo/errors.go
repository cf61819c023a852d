package logo

import (
	"errors"
	"fmt"
)

// Stage names a step in the attempt state chain.
type Stage string

const (
	StageTemplating        Stage = "templating"
	StageSynthesizing      Stage = "synthesizing"
	StageValidatingCode    Stage = "validating_code"
	StageRefining          Stage = "refining"
	StageValidatingRefined Stage = "validating_refined"
	StageReviewing         Stage = "reviewing"
	StageRecorded          Stage = "recorded"
)

var (
	// ErrNoMarkup means a completion succeeded but held no <svg>...</svg> block.
	ErrNoMarkup = errors.New("no valid markup in response")
	// ErrInvalidMarkup is matched by every *ValidationError.
	ErrInvalidMarkup = errors.New("markup failed structural validation")
)

// ValidationError is a deterministic rejection by Validate.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid markup: " + e.Reason
}

// Is makes errors.Is(err, ErrInvalidMarkup) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidMarkup
}

// StageError wraps a failure inside one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies terminal pipeline failures.
type ErrorKind string

const (
	// KindExhaustion means every attempt was abandoned.
	KindExhaustion ErrorKind = "exhaustion"
	// KindCanceled means the caller's context ended before any attempt completed.
	KindCanceled ErrorKind = "canceled"
	// KindConfiguration means the completion service rejected the credentials.
	// The run stops at the first such rejection.
	KindConfiguration ErrorKind = "configuration"
)

// GenerationError is the only failure visible to callers of Generate.
// Message is generic; stage detail goes to the log, Cause keeps the last
// abandonment reason for callers that want it.
type GenerationError struct {
	Kind     ErrorKind
	Message  string
	Attempts int
	Cause    error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
