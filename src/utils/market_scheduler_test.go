package utils

import (
	"testing"
	"time"

	"platform-observer/src/logger"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func schedulerLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "scheduler-test")
}

// -----------------------------------------------------------------------------

func TestIntervalFastWhenNoSymbolsTracked(t *testing.T) {
	ms := NewMarketScheduler(nil, schedulerLogger())

	fast := 30 * time.Second
	slow := 300 * time.Second
	assert.Equal(t, fast, ms.Interval(fast, slow))
}

// -----------------------------------------------------------------------------

func TestMapSymbolsToCalendars(t *testing.T) {
	ms := NewMarketScheduler([]string{"AAPL", "AIR.PA"}, schedulerLogger())

	assert.Len(t, ms.Calendars, 2)

	ms.MapSymbolsToCalendars([]string{"AAPL"})
	assert.Len(t, ms.Calendars, 1)
}

// -----------------------------------------------------------------------------

func TestIntervalMatchesMarketState(t *testing.T) {
	ms := NewMarketScheduler([]string{"AAPL"}, schedulerLogger())

	fast := 30 * time.Second
	slow := 300 * time.Second

	want := slow
	if ms.AnyMarketOpen() {
		want = fast
	}
	assert.Equal(t, want, ms.Interval(fast, slow))
}
