package utils

import (
	"sync"
	"time"

	"platform-observer/src/logger"
)

// -----------------------------------------------------------------------------
// MarketScheduler decides the polling cadence of the dashboard manager:
// the fast interval while any tracked market is open, the slow one
// otherwise. With no tracked symbols the fast interval always applies.
// -----------------------------------------------------------------------------

type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
	ms.MapSymbolsToCalendars(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// MapSymbolsToCalendars maps a list of symbols to their respective calendars
func (ms *MarketScheduler) MapSymbolsToCalendars(symbols []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar)

	for _, symbol := range symbols {
		cal := GetCalendar(symbol)
		if cal != nil {
			ms.Calendars[symbol] = cal
		}
	}

	ms.Logger.Info("MarketScheduler: Mapped %d symbols to calendars.", len(ms.Calendars))
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := time.Now().UTC()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// Interval picks the active polling interval.
func (ms *MarketScheduler) Interval(fast, slow time.Duration) time.Duration {
	ms.mu.RLock()
	tracked := len(ms.Calendars)
	ms.mu.RUnlock()

	if tracked == 0 || ms.AnyMarketOpen() {
		return fast
	}
	return slow
}
