package testutil

import (
	"time"

	"github.com/light-bringer/procat-changeset/internal/pkg/clock"
)

// FixedTime is the instant test clocks start at.
var FixedTime = time.Date(2024, time.August, 15, 12, 0, 0, 0, time.UTC)

// NewMockClock creates a mock clock stopped at FixedTime.
func NewMockClock() *clock.MockClock {
	return clock.NewMockClock(FixedTime)
}
