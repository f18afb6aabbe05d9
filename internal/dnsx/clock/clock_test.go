package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_ReturnsCurrentTime(t *testing.T) {
	before := time.Now()
	got := RealClock{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestMockClock_AdvanceMovesTimeForward(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &MockClock{CurrentTime: base}

	assert.Equal(t, base, c.Now())

	c.Advance(5 * time.Second)
	assert.Equal(t, base.Add(5*time.Second), c.Now())
}
