package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestController_StartsInAutoScroll(t *testing.T) {
	c := New(1)
	assert.True(t, c.AutoScroll())
	assert.Equal(t, Decision{ScrollTo: 4}, c.Evaluate(5))
	assert.Equal(t, Decision{ScrollTo: -1}, c.Evaluate(0))
}

func TestController_OnScroll(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		want    Mode
	}{
		{"at bottom", Metrics{Offset: 80, Height: 20, Content: 100}, ModeAutoScroll},
		{"within tolerance", Metrics{Offset: 79, Height: 20, Content: 100}, ModeAutoScroll},
		{"beyond tolerance", Metrics{Offset: 78, Height: 20, Content: 100}, ModeManual},
		{"top of long content", Metrics{Offset: 0, Height: 20, Content: 100}, ModeManual},
		{"content shorter than view", Metrics{Offset: 0, Height: 20, Content: 5}, ModeAutoScroll},
		{"empty", Metrics{}, ModeAutoScroll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(1)
			assert.Equal(t, tt.want, c.OnScroll(tt.metrics))
			assert.Equal(t, tt.want, c.Mode())
		})
	}
}

func TestController_ManualHoldsPosition(t *testing.T) {
	c := New(1)

	// Following along as records arrive
	assert.Equal(t, 9, c.Evaluate(10).ScrollTo)
	c.OnScroll(Metrics{Offset: 0, Height: 5, Content: 10})
	assert.False(t, c.AutoScroll())

	// Further appends do not move the viewport
	for _, n := range []int{11, 50, 200} {
		d := c.Evaluate(n)
		assert.Equal(t, -1, d.ScrollTo)
		assert.True(t, d.ShowJump)
	}
}

func TestController_ReturnToBottomResumes(t *testing.T) {
	c := New(1)
	c.OnScroll(Metrics{Offset: 0, Height: 5, Content: 10})
	assert.Equal(t, ModeManual, c.Mode())

	c.OnScroll(Metrics{Offset: 5, Height: 5, Content: 10})
	assert.Equal(t, ModeAutoScroll, c.Mode())
	assert.Equal(t, Decision{ScrollTo: 11}, c.Evaluate(12))
}

func TestController_JumpToLatest(t *testing.T) {
	c := New(1)
	c.OnScroll(Metrics{Offset: 0, Height: 5, Content: 10})

	c.JumpToLatest()
	assert.True(t, c.AutoScroll())
	assert.Equal(t, Decision{ScrollTo: 29}, c.Evaluate(30))
}

func TestNew_NegativeToleranceUsesDefault(t *testing.T) {
	c := New(-1)
	assert.Equal(t, ModeAutoScroll, c.OnScroll(Metrics{Offset: 79, Height: 20, Content: 100}))
}

func TestMetrics_DistanceFromBottom(t *testing.T) {
	assert.Equal(t, 0, Metrics{Offset: 80, Height: 20, Content: 100}.DistanceFromBottom())
	assert.Equal(t, 30, Metrics{Offset: 50, Height: 20, Content: 100}.DistanceFromBottom())
	assert.Equal(t, 0, Metrics{Offset: 0, Height: 20, Content: 3}.DistanceFromBottom())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "auto-scroll", ModeAutoScroll.String())
	assert.Equal(t, "manual", ModeManual.String())
}
