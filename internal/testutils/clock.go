package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
)

// NewMockClock creates a mock clock for testing
func NewMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// Advance moves the mock clock forward by d and waits until every timer and
// ticker due in that window has fired. d must not skip past a pending event.
func Advance(t testing.TB, mock *quartz.Mock, d time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mock.Advance(d).MustWait(ctx)
}

// AdvanceTicks advances the mock clock n times by interval
func AdvanceTicks(t testing.TB, mock *quartz.Mock, interval time.Duration, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		Advance(t, mock, interval)
	}
}
