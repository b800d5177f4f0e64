// Package session holds the interaction state of a tip calculator screen
// and the registry of open screens served over RPC.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tipcalc/internal/calculator"
	"github.com/mmynk/tipcalc/internal/models"
)

var (
	// ErrControlsHidden is returned for slider, split and submit events
	// while the bill field is blank and the controls are not shown.
	ErrControlsHidden = errors.New("controls are hidden until a bill is entered")

	ErrUnknownEvent = errors.New("unknown event")
)

// EventKind names an input event.
type EventKind string

const (
	EventEditBill       EventKind = "edit_bill"
	EventMoveSlider     EventKind = "move_slider"
	EventIncrementSplit EventKind = "increment_split"
	EventDecrementSplit EventKind = "decrement_split"
	EventSubmit         EventKind = "submit"
)

// Observer is called with the recomputed snapshot after every accepted event.
type Observer func(models.Snapshot)

// Option configures a State.
type Option func(*State)

// WithSliderSteps sets how many equal intervals the tip slider snaps to.
// Zero or less makes the slider continuous.
func WithSliderSteps(steps int) Option {
	return func(s *State) {
		s.sliderSteps = steps
	}
}

// WithObserver subscribes fn from construction on.
func WithObserver(fn Observer) Option {
	return func(s *State) {
		s.Subscribe(fn)
	}
}

// State is the interaction state of one screen: three leaf inputs and the
// values derived from them. Every mutator recomputes the tip amount and
// then the per-person total before notifying observers, so no observer
// ever sees a stale derived value.
//
// State is not safe for concurrent use. Events are expected from a single
// input source; Registry serialises them for remote screens.
type State struct {
	inputs      models.Inputs
	sliderSteps int

	derived models.Snapshot
	focused bool
	rev     uint64

	observers map[int]Observer
	nextObs   int
}

// New creates a State with an empty bill, a 0% tip and a split of one.
func New(opts ...Option) *State {
	s := &State{
		inputs: models.Inputs{
			SplitCount: calculator.MinSplit,
		},
		sliderSteps: calculator.SliderSteps,
		focused:     true,
		observers:   make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s
}

// Subscribe registers fn for every future snapshot and returns a function
// that removes it.
func (s *State) Subscribe(fn Observer) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		delete(s.observers, id)
	}
}

// Snapshot returns the current view of the state.
func (s *State) Snapshot() models.Snapshot {
	return s.derived
}

// ControlsVisible reports whether the bill field holds non-blank text.
func (s *State) ControlsVisible() bool {
	return strings.TrimSpace(s.inputs.BillText) != ""
}

// EditBill replaces the bill text and focuses the bill field.
func (s *State) EditBill(text string) models.Snapshot {
	s.inputs.BillText = text
	s.focused = true
	return s.commit(EventEditBill)
}

// MoveSlider moves the tip slider, snapping to the step grid.
func (s *State) MoveSlider(position float64) (models.Snapshot, error) {
	if !s.ControlsVisible() {
		return s.derived, ErrControlsHidden
	}
	s.inputs.SliderPosition = calculator.SnapSlider(position, s.sliderSteps)
	return s.commit(EventMoveSlider), nil
}

// IncrementSplit adds one person to the split.
func (s *State) IncrementSplit() (models.Snapshot, error) {
	if !s.ControlsVisible() {
		return s.derived, ErrControlsHidden
	}
	s.inputs.SplitCount++
	return s.commit(EventIncrementSplit), nil
}

// DecrementSplit removes one person from the split, never going below one.
func (s *State) DecrementSplit() (models.Snapshot, error) {
	if !s.ControlsVisible() {
		return s.derived, ErrControlsHidden
	}
	s.inputs.SplitCount = calculator.ClampSplit(s.inputs.SplitCount - 1)
	return s.commit(EventDecrementSplit), nil
}

// Submit commits the bill entry: it recomputes with the current tip and
// split and then yields input focus.
func (s *State) Submit() (models.Snapshot, error) {
	if !s.ControlsVisible() {
		return s.derived, ErrControlsHidden
	}
	s.focused = false
	return s.commit(EventSubmit), nil
}

// Apply dispatches kind to the matching mutator. text is only read for
// EventEditBill and position only for EventMoveSlider.
func (s *State) Apply(kind EventKind, text string, position float64) (models.Snapshot, error) {
	switch kind {
	case EventEditBill:
		return s.EditBill(text), nil
	case EventMoveSlider:
		return s.MoveSlider(position)
	case EventIncrementSplit:
		return s.IncrementSplit()
	case EventDecrementSplit:
		return s.DecrementSplit()
	case EventSubmit:
		return s.Submit()
	}
	return s.derived, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
}

func (s *State) commit(kind EventKind) models.Snapshot {
	s.rev++
	s.recompute()
	slog.Debug("Session event applied",
		"event", kind,
		"revision", s.rev,
		"tip_percent", s.derived.TipPercent,
		"split", s.derived.SplitCount,
		"total_per_person", s.derived.TotalPerPerson,
	)
	for _, fn := range s.observers {
		fn(s.derived)
	}
	return s.derived
}

// recompute derives every output from the inputs, tip first.
func (s *State) recompute() {
	bill := calculator.ParseBill(s.inputs.BillText)
	tipPercent := calculator.TipPercent(s.inputs.SliderPosition)
	tipAmount := calculator.ComputeTip(bill, tipPercent)
	perPerson := calculator.ComputePerPerson(bill, s.inputs.SplitCount, tipPercent)

	s.derived = models.Snapshot{
		Inputs:          s.inputs,
		BillAmount:      bill,
		TipPercent:      tipPercent,
		TipAmount:       tipAmount,
		TotalPerPerson:  perPerson,
		ControlsVisible: s.ControlsVisible(),
		InputFocused:    s.focused,
		Revision:        s.rev,
	}
}
