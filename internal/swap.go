package monitop

import (
	"fmt"
	"log"
	"sync"
)

// RenderError is returned when a chart handle could not be constructed
type RenderError struct {
	Slot Slot
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s chart: %v", e.Slot, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

type slotState struct {
	mu     sync.Mutex
	handle Handle
}

// Swapper owns the live chart handle of every slot. Each Refresh releases the
// old handle before constructing the new one, so a slot never holds two.
type Swapper struct {
	renderer Renderer
	metrics  *Metrics

	mu    sync.Mutex
	slots map[Slot]*slotState
}

// NewSwapper creates a swapper with every slot empty
func NewSwapper(renderer Renderer, metrics *Metrics) *Swapper {
	return &Swapper{
		renderer: renderer,
		metrics:  metrics,
		slots:    make(map[Slot]*slotState),
	}
}

func (s *Swapper) slot(slot Slot) *slotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.slots[slot]
	if !ok {
		st = &slotState{}
		s.slots[slot] = st
	}
	return st
}

// Refresh replaces the chart in slot with one built from spec.
// If construction fails the slot is left empty.
func (s *Swapper) Refresh(slot Slot, spec ChartSpec) error {
	st := s.slot(slot)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.handle != nil {
		if err := st.handle.Release(); err != nil {
			log.Printf("Failed to release %s chart: %v", slot, err)
		}
		st.handle = nil
		s.metrics.SetLive(slot, false)
	}

	h, err := s.renderer.Render(slot, spec)
	if err != nil {
		return &RenderError{Slot: slot, Err: err}
	}
	st.handle = h
	s.metrics.SetLive(slot, true)
	return nil
}

// View draws the live chart in slot, or returns "" when the slot is empty
func (s *Swapper) View(slot Slot, width, height int) string {
	st := s.slot(slot)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.handle == nil {
		return ""
	}
	return st.handle.View(width, height)
}

// Live reports whether slot currently holds a handle
func (s *Swapper) Live(slot Slot) bool {
	st := s.slot(slot)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.handle != nil
}

// Close releases every live handle
func (s *Swapper) Close() error {
	s.mu.Lock()
	slots := make(map[Slot]*slotState, len(s.slots))
	for k, v := range s.slots {
		slots[k] = v
	}
	s.mu.Unlock()

	var firstErr error
	for slot, st := range slots {
		st.mu.Lock()
		if st.handle != nil {
			if err := st.handle.Release(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("release %s chart: %w", slot, err)
			}
			st.handle = nil
			s.metrics.SetLive(slot, false)
		}
		st.mu.Unlock()
	}
	return firstErr
}
