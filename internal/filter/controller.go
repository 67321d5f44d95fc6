package filter

import (
	"sync"
	"time"

	"fixview/internal/tree"
)

// Controller owns the filter state for one tree and recomputes visibility on every change.
// SetIndex, Toggle and Clear recompute on the caller's goroutine, which must be the rendering thread.
// Search edits are debounced and the pass is handed to schedule, since the timer fires elsewhere.
type Controller struct {
	mu       sync.Mutex
	index    *tree.Index
	state    State
	debounce *Debouncer
	schedule func(func())
	onChange func(Result)
}

// NewController creates a Controller.
// schedule runs a function on the rendering thread; nil runs it in place.
// onChange is called after every pass with the new result.
func NewController(delay time.Duration, schedule func(func()), onChange func(Result)) *Controller {
	if schedule == nil {
		schedule = func(fn func()) { fn() }
	}
	if onChange == nil {
		onChange = func(Result) {}
	}
	return &Controller{
		debounce: NewDebouncer(delay),
		schedule: schedule,
		onChange: onChange,
	}
}

// SetIndex installs a freshly built tree and resets the selection.
// A pending debounced search for the previous tree is dropped.
func (c *Controller) SetIndex(ix *tree.Index) Result {
	c.debounce.Stop()
	c.mu.Lock()
	c.index = ix
	c.state = State{}
	c.mu.Unlock()
	return c.recompute()
}

// Index returns the current tree.
func (c *Controller) Index() *tree.Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// State returns a copy of the current selection.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle flips one facet value and recomputes immediately.
func (c *Controller) Toggle(f Facet, value string) Result {
	c.mu.Lock()
	c.state.Toggle(f, value)
	c.mu.Unlock()
	return c.recompute()
}

// Clear resets every selection and recomputes immediately.
func (c *Controller) Clear() Result {
	c.debounce.Stop()
	c.mu.Lock()
	c.state.Clear()
	c.mu.Unlock()
	return c.recompute()
}

// SetSearch records the search term and schedules a recomputation once typing pauses.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	c.state.Search = term
	c.mu.Unlock()
	c.debounce.Trigger(func() {
		c.schedule(func() { c.recompute() })
	})
}

// Buttons returns the button states of a facet for the current selection.
func (c *Controller) Buttons(f Facet) []Button {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		return nil
	}
	return Buttons(c.index, c.state, f)
}

// Close cancels any pending search recomputation.
func (c *Controller) Close() {
	c.debounce.Stop()
}

func (c *Controller) recompute() Result {
	c.mu.Lock()
	ix, state := c.index, c.state
	var res Result
	if ix != nil {
		res = Apply(ix, state)
	}
	c.mu.Unlock()
	c.onChange(res)
	return res
}
