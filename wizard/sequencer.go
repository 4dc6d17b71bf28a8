package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nssc-portal/validators"
)

var (
	ErrProfileLocked    = errors.New("profile is locked")
	ErrValidationFailed = errors.New("step validation failed")
	ErrFinalStep        = errors.New("already at the final step")
	ErrFirstStep        = errors.New("already at the first step")
	ErrStepNotReached   = errors.New("step has not been reached yet")
	ErrInvalidTotal     = errors.New("wizard needs at least one step")
)

// Sequencer tracks the current step of a wizard with steps numbered 1..total.
type Sequencer struct {
	current int
	total   int
}

// NewSequencer resumes at the step encoded in resume (the raw "step" query value).
// Missing, malformed or out of range values start at step 1. A locked profile
// cannot enter the wizard at all.
func NewSequencer(total int, resume string, locked bool) (*Sequencer, error) {
	if total < 1 {
		return nil, ErrInvalidTotal
	}
	if locked {
		return nil, ErrProfileLocked
	}
	s := &Sequencer{current: 1, total: total}
	if n, err := strconv.Atoi(strings.TrimSpace(resume)); err == nil && n >= 1 && n <= total {
		s.current = n
	}
	return s, nil
}

func (s *Sequencer) Current() int  { return s.current }
func (s *Sequencer) Total() int    { return s.total }
func (s *Sequencer) IsFinal() bool { return s.current == s.total }

// Advance moves forward exactly one step. It never moves when errs is non-empty,
// and refuses at the final step, which is completed by finalize instead.
func (s *Sequencer) Advance(errs validators.FieldErrors) error {
	if len(errs) > 0 {
		return ErrValidationFailed
	}
	if s.IsFinal() {
		return ErrFinalStep
	}
	s.current++
	return nil
}

// Retreat moves back one step without validation.
func (s *Sequencer) Retreat() error {
	if s.current <= 1 {
		return ErrFirstStep
	}
	s.current--
	return nil
}

// Location is the resumable URL for the current step.
func (s *Sequencer) Location(base string) string {
	return fmt.Sprintf("%s?step=%d", base, s.current)
}
