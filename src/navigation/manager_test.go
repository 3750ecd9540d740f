package navigation

import (
	"context"
	"errors"
	"testing"

	"platform-observer/src/logger"
	"platform-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestManager() *Manager {
	return NewManager(models.PageDashboard, logger.NewLogger("ERROR", "nav-test"))
}

// -----------------------------------------------------------------------------

func TestNavigateToKnownPage(t *testing.T) {
	m := newTestManager()
	called := false
	m.RegisterHandler(models.PageAnalytics, func(ctx context.Context) error {
		called = true
		return nil
	})

	err := m.NavigateToPage(context.Background(), models.PageAnalytics)
	require.NoError(t, err)
	assert.True(t, called)

	state := m.State()
	assert.Equal(t, models.PageAnalytics, state.CurrentPage)
	assert.Equal(t, []models.Page{models.PageDashboard, models.PageAnalytics}, state.History)
	assert.False(t, state.IsNavigating)
}

// -----------------------------------------------------------------------------

func TestNavigateToUnknownPageRejected(t *testing.T) {
	m := newTestManager()

	err := m.NavigateToPage(context.Background(), models.Page("qemasi-secret"))
	require.Error(t, err)

	state := m.State()
	assert.Equal(t, models.PageDashboard, state.CurrentPage)
	assert.Len(t, state.History, 1)
	assert.False(t, state.IsNavigating)
}

// -----------------------------------------------------------------------------

func TestCurrentPageAlwaysMatchesHistoryTop(t *testing.T) {
	m := newTestManager()
	pages := []models.Page{
		models.PageAnalytics,
		models.PageSimulations,
		models.PageAgents,
		models.PageIntel,
		models.PageDashboard,
	}

	for _, p := range pages {
		require.NoError(t, m.NavigateToPage(context.Background(), p))
		state := m.State()
		assert.Equal(t, state.CurrentPage, state.History[len(state.History)-1])
	}
}

// -----------------------------------------------------------------------------

func TestNavigationRejectedWhileInFlight(t *testing.T) {
	m := newTestManager()

	var nestedErr error
	m.RegisterHandler(models.PageAgents, func(ctx context.Context) error {
		// Re-entrant navigation from inside a handler must be rejected.
		nestedErr = m.NavigateToPage(ctx, models.PageAnalytics)
		return nil
	})

	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAgents))
	require.Error(t, nestedErr)

	state := m.State()
	assert.Equal(t, models.PageAgents, state.CurrentPage)
	assert.Equal(t, []models.Page{models.PageDashboard, models.PageAgents}, state.History)
}

// -----------------------------------------------------------------------------

func TestHandlerErrorClearsGuard(t *testing.T) {
	m := newTestManager()
	m.RegisterHandler(models.PageAnalytics, func(ctx context.Context) error {
		return errors.New("backend down")
	})

	err := m.NavigateToPage(context.Background(), models.PageAnalytics)
	require.Error(t, err)
	assert.False(t, m.State().IsNavigating)

	// Next navigation must still work.
	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAgents))
}

// -----------------------------------------------------------------------------

func TestHandlerPanicClearsGuard(t *testing.T) {
	m := newTestManager()
	m.RegisterHandler(models.PageAnalytics, func(ctx context.Context) error {
		panic("boom")
	})

	err := m.NavigateToPage(context.Background(), models.PageAnalytics)
	require.Error(t, err)
	assert.False(t, m.State().IsNavigating)
}

// -----------------------------------------------------------------------------

func TestHistoryNavigationDoesNotPush(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAnalytics))

	require.NoError(t, m.HandleHistoryNavigation(context.Background(), models.PageSimulations))

	state := m.State()
	assert.Equal(t, models.PageSimulations, state.CurrentPage)
	assert.Equal(t, []models.Page{models.PageDashboard, models.PageSimulations}, state.History)
}

// -----------------------------------------------------------------------------

func TestGoBack(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAnalytics))
	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAgents))

	assert.True(t, m.GoBack(context.Background()))

	state := m.State()
	assert.Equal(t, models.PageAnalytics, state.CurrentPage)
	assert.Equal(t, []models.Page{models.PageDashboard, models.PageAnalytics}, state.History)
}

// -----------------------------------------------------------------------------

func TestGoBackHoldsGuardAcrossPopAndReplay(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAnalytics))
	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAgents))

	// A navigation racing into the middle of GoBack must be rejected: the
	// pop and the replay are one transition, never an intermediate state.
	var nestedErr error
	m.RegisterHandler(models.PageAnalytics, func(ctx context.Context) error {
		nestedErr = m.NavigateToPage(ctx, models.PageSimulations)
		return nil
	})

	assert.True(t, m.GoBack(context.Background()))
	require.Error(t, nestedErr)

	state := m.State()
	assert.Equal(t, models.PageAnalytics, state.CurrentPage)
	assert.Equal(t, []models.Page{models.PageDashboard, models.PageAnalytics}, state.History)
	assert.Equal(t, state.CurrentPage, state.History[len(state.History)-1])
	assert.False(t, state.IsNavigating)
}

// -----------------------------------------------------------------------------

func TestGoBackAtInitialPage(t *testing.T) {
	m := newTestManager()

	assert.False(t, m.GoBack(context.Background()))

	state := m.State()
	assert.Equal(t, models.PageDashboard, state.CurrentPage)
	assert.Len(t, state.History, 1)
}

// -----------------------------------------------------------------------------

func TestLastHandlerRegistrationWins(t *testing.T) {
	m := newTestManager()
	first, second := false, false
	m.RegisterHandler(models.PageAgents, func(ctx context.Context) error {
		first = true
		return nil
	})
	m.RegisterHandler(models.PageAgents, func(ctx context.Context) error {
		second = true
		return nil
	})

	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAgents))
	assert.False(t, first)
	assert.True(t, second)
}

// -----------------------------------------------------------------------------

func TestUnregisterHandler(t *testing.T) {
	m := newTestManager()
	called := false
	m.RegisterHandler(models.PageAgents, func(ctx context.Context) error {
		called = true
		return nil
	})
	m.UnregisterHandler(models.PageAgents)

	require.NoError(t, m.NavigateToPage(context.Background(), models.PageAgents))
	assert.False(t, called)
	assert.Equal(t, models.PageAgents, m.CurrentPage())
}
