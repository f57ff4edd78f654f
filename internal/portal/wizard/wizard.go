// Package wizard is a linear, step-gated state machine. Each step reports
// its own readiness; Forward checks readiness, then the step guard, then
// runs the step's effect before advancing. A failed effect leaves the
// state where it was.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"brokerage-portal/internal/common/metrics"
)

var (
	ErrAtFinalStep      = errors.New("wizard is at its final step")
	ErrStaleReport      = errors.New("readiness reported for a step that is not current")
	ErrInvalidReadiness = errors.New("readiness status must be incomplete or ready")
	ErrNoSteps          = errors.New("wizard needs at least one step")
)

type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusReady      Status = "ready"
)

// Readiness is a step's own verdict on whether it may be left.
type Readiness struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func Ready() Readiness { return Readiness{Status: StatusReady} }

func Incomplete(reason string) Readiness {
	return Readiness{Status: StatusIncomplete, Reason: reason}
}

// State is one wizard instance. Step is 1-based.
type State struct {
	ID         string            `json:"id"`
	Wizard     string            `json:"wizard"`
	Step       int               `json:"step"`
	Readiness  Readiness         `json:"readiness"`
	Selections map[string]string `json:"selections"`
	UserID     string            `json:"userId,omitempty"`
	UserEmail  string            `json:"userEmail,omitempty"`
	Version    int64             `json:"version"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func (s State) Selection(key string) string {
	return s.Selections[key]
}

// WithSelection returns a copy of s with key set.
func (s State) WithSelection(key, value string) State {
	next := make(map[string]string, len(s.Selections)+1)
	for k, v := range s.Selections {
		next[k] = v
	}
	next[key] = value
	s.Selections = next
	return s
}

// PreconditionError blocks a transition. Message is user-facing.
type PreconditionError struct {
	Step    int
	Name    string
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// EffectError wraps a failed transition side effect.
type EffectError struct {
	From, To string
	Err      error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("transition %s -> %s failed: %v", e.From, e.To, e.Err)
}

func (e *EffectError) Unwrap() error { return e.Err }

// Guard rejects leaving a step, typically with a *PreconditionError.
type Guard func(ctx context.Context, s State) error

// Effect runs when leaving a step forward.
type Effect func(ctx context.Context, s State) error

type Step struct {
	Name string
	// NotReadyMessage is shown when Forward is called before the step
	// reported ready. Falls back to the readiness reason.
	NotReadyMessage string
	Guard           Guard
	Effect          Effect
}

type Wizard struct {
	name  string
	steps []Step
}

func New(name string, steps ...Step) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Wizard{name: name, steps: steps}, nil
}

func (w *Wizard) Name() string { return w.name }

func (w *Wizard) Len() int { return len(w.steps) }

// StepAt returns the 1-based step.
func (w *Wizard) StepAt(i int) (Step, bool) {
	if i < 1 || i > len(w.steps) {
		return Step{}, false
	}
	return w.steps[i-1], true
}

func (w *Wizard) IsFinal(s State) bool { return s.Step >= len(w.steps) }

func (w *Wizard) Start(id string, now time.Time) State {
	return State{
		ID:         id,
		Wizard:     w.name,
		Step:       1,
		Readiness:  Incomplete(""),
		Selections: map[string]string{},
		UpdatedAt:  now.UTC(),
	}
}

// Report records readiness for step, which must be the current one.
func (w *Wizard) Report(s State, step int, r Readiness) (State, error) {
	if step != s.Step {
		return s, fmt.Errorf("%w: reported %d, current %d", ErrStaleReport, step, s.Step)
	}
	if r.Status != StatusReady && r.Status != StatusIncomplete {
		return s, fmt.Errorf("%w: %q", ErrInvalidReadiness, r.Status)
	}
	s.Readiness = r
	return s, nil
}

// Forward advances s by one step. On any error the returned state is s.
func (w *Wizard) Forward(ctx context.Context, s State) (State, error) {
	next, err := w.forward(ctx, s)
	metrics.WizardTransitions.WithLabelValues("forward", strconv.Itoa(s.Step), outcome(err)).Inc()
	return next, err
}

func (w *Wizard) forward(ctx context.Context, s State) (State, error) {
	cur, ok := w.StepAt(s.Step)
	if !ok {
		return s, fmt.Errorf("step %d outside wizard %q", s.Step, w.name)
	}
	if w.IsFinal(s) {
		return s, ErrAtFinalStep
	}

	if s.Readiness.Status != StatusReady {
		return s, &PreconditionError{Step: s.Step, Name: cur.Name, Message: notReadyMessage(cur, s.Readiness)}
	}
	if cur.Guard != nil {
		if err := cur.Guard(ctx, s); err != nil {
			var pre *PreconditionError
			if errors.As(err, &pre) && pre.Name == "" {
				pre.Step, pre.Name = s.Step, cur.Name
			}
			return s, err
		}
	}
	if cur.Effect != nil {
		to, _ := w.StepAt(s.Step + 1)
		if err := cur.Effect(ctx, s); err != nil {
			return s, &EffectError{From: cur.Name, To: to.Name, Err: err}
		}
	}

	s.Step++
	s.Readiness = Incomplete("")
	return s, nil
}

// Backward moves back one step without side effects. Step 1 is a floor.
func (w *Wizard) Backward(s State) State {
	from := s.Step
	if s.Step > 1 {
		s.Step--
		s.Readiness = Incomplete("")
	}
	metrics.WizardTransitions.WithLabelValues("backward", strconv.Itoa(from), "ok").Inc()
	return s
}

func notReadyMessage(step Step, r Readiness) string {
	switch {
	case step.NotReadyMessage != "":
		return step.NotReadyMessage
	case r.Reason != "":
		return r.Reason
	default:
		return fmt.Sprintf("please complete %s before continuing", step.Name)
	}
}

func outcome(err error) string {
	var pre *PreconditionError
	var eff *EffectError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &pre):
		return "blocked"
	case errors.As(err, &eff):
		return "effect_failed"
	default:
		return "error"
	}
}
