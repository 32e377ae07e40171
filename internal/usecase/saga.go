package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Clock supplies the current time to use cases. Nil means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// StepResult records what happened to one step of a multi-entity write.
type StepResult struct {
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	Secondary bool       `json:"secondary,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ErrHaltSaga ends a run early without failure. The returning step counts as
// completed and the remaining steps are skipped.
var ErrHaltSaga = errors.New("saga halted")

// StepError reports the first primary step that failed.
type StepError struct {
	Operation string
	Step      string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %s: %v", e.Operation, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type sagaStep struct {
	name      string
	secondary bool
	run       func(ctx context.Context) error
}

// Saga runs named writes in order without a surrounding transaction.
//
// A failing primary step stops the run; later steps are reported as skipped
// and nothing is rolled back. A failing secondary step is logged with an
// inconsistency marker when an earlier write already landed, and the run
// continues.
type Saga struct {
	operation string
	log       *zerolog.Logger
	steps     []sagaStep
}

func NewSaga(operation string, logger *zerolog.Logger) *Saga {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Saga{operation: operation, log: logger}
}

// Then appends a primary step.
func (s *Saga) Then(name string, fn func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, sagaStep{name: name, run: fn})
	return s
}

// ThenBestEffort appends a secondary step.
func (s *Saga) ThenBestEffort(name string, fn func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, sagaStep{name: name, secondary: true, run: fn})
	return s
}

// Run executes the steps and returns one result per step.
func (s *Saga) Run(ctx context.Context) ([]StepResult, error) {
	results := make([]StepResult, 0, len(s.steps))
	wrote := false
	for i, st := range s.steps {
		err := st.run(ctx)
		if err == nil {
			wrote = true
			results = append(results, StepResult{Name: st.name, Status: StepCompleted, Secondary: st.secondary})
			continue
		}
		if errors.Is(err, ErrHaltSaga) {
			results = append(results, StepResult{Name: st.name, Status: StepCompleted, Secondary: st.secondary})
			return append(results, skipped(s.steps[i+1:])...), nil
		}

		results = append(results, StepResult{Name: st.name, Status: StepFailed, Secondary: st.secondary, Error: err.Error()})
		ev := s.log.Error().Err(err).Str("operation", s.operation).Str("step", st.name)
		if wrote {
			ev = ev.Bool("inconsistency", true)
		}

		if st.secondary {
			ev.Msg("secondary write failed; earlier writes kept")
			continue
		}
		ev.Msg("step failed; aborting remaining steps")
		return append(results, skipped(s.steps[i+1:])...), &StepError{Operation: s.operation, Step: st.name, Err: err}
	}
	return results, nil
}

func skipped(rest []sagaStep) []StepResult {
	out := make([]StepResult, 0, len(rest))
	for _, st := range rest {
		out = append(out, StepResult{Name: st.name, Status: StepSkipped, Secondary: st.secondary})
	}
	return out
}

// FailedSecondary lists secondary steps that failed.
func FailedSecondary(results []StepResult) []string {
	var out []string
	for _, r := range results {
		if r.Secondary && r.Status == StepFailed {
			out = append(out, r.Name)
		}
	}
	return out
}
