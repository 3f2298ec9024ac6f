// Package viewport decides whether a log view follows new records or stays
// where the user scrolled it.
package viewport

import (
	"sync"

	"github.com/charliek/tailboard/internal/constants"
)

// Mode is the scroll policy in effect
type Mode int

const (
	ModeAutoScroll Mode = iota
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "auto-scroll"
}

// Metrics describe the visible window over the rendered content, in rows
type Metrics struct {
	Offset  int // first visible row
	Height  int // visible rows
	Content int // total rows
}

// DistanceFromBottom returns how many rows lie below the visible window
func (m Metrics) DistanceFromBottom() int {
	d := m.Content - (m.Offset + m.Height)
	if d < 0 {
		return 0
	}
	return d
}

// Decision is what the view should do on the next render
type Decision struct {
	ScrollTo int  // index of the item to bring into view, or -1 to leave the viewport alone
	ShowJump bool // offer "jump to latest"
}

// Controller tracks the scroll mode. Starts in auto-scroll.
type Controller struct {
	mu        sync.Mutex
	mode      Mode
	tolerance int
}

// New creates a controller. A negative tolerance uses the default.
func New(tolerance int) *Controller {
	if tolerance < 0 {
		tolerance = constants.DefaultScrollTolerance
	}
	return &Controller{tolerance: tolerance}
}

// Mode returns the current mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// AutoScroll reports whether the view follows new records
func (c *Controller) AutoScroll() bool {
	return c.Mode() == ModeAutoScroll
}

// OnScroll updates the mode from a user-driven scroll position
func (c *Controller) OnScroll(m Metrics) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.DistanceFromBottom() > c.tolerance {
		c.mode = ModeManual
	} else {
		c.mode = ModeAutoScroll
	}
	return c.mode
}

// JumpToLatest switches back to auto-scroll
func (c *Controller) JumpToLatest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeAutoScroll
}

// Evaluate is called whenever the filtered list changes
func (c *Controller) Evaluate(filteredLen int) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeManual {
		return Decision{ScrollTo: -1, ShowJump: true}
	}
	if filteredLen == 0 {
		return Decision{ScrollTo: -1}
	}
	return Decision{ScrollTo: filteredLen - 1}
}
