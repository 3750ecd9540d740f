package navigation

import (
	"context"
	"fmt"
	"sync"

	"platform-observer/src/helpers"
	"platform-observer/src/logger"
	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// Handler is a per-page initialization callback invoked on transition.
// -----------------------------------------------------------------------------

type Handler func(ctx context.Context) error

// -----------------------------------------------------------------------------
// Manager
// -----------------------------------------------------------------------------

// Manager is a finite-state machine over the fixed page set. At most one
// navigation is in flight at a time; the guard clears once the page
// handler settles, whether it succeeds, errors or panics.
//
// Invariant: currentPage always equals the last history entry.
type Manager struct {
	Logger *logger.Logger

	mu           sync.Mutex
	currentPage  models.Page
	history      []models.Page
	isNavigating bool
	handlers     map[models.Page]Handler
}

// -----------------------------------------------------------------------------

// NewManager starts on initial without running its handler; the bootstrap
// triggers the first transition through HandleHistoryNavigation.
func NewManager(initial models.Page, log *logger.Logger) *Manager {
	return &Manager{
		Logger:      log,
		currentPage: initial,
		history:     []models.Page{initial},
		handlers:    make(map[models.Page]Handler),
	}
}

// -----------------------------------------------------------------------------
// Handler Registry
// -----------------------------------------------------------------------------

// RegisterHandler binds the page's initialization callback. At most one
// handler per page; the last registration wins.
func (m *Manager) RegisterHandler(page models.Page, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[page] = h
}

// -----------------------------------------------------------------------------

// UnregisterHandler removes the page's callback. Idempotent.
func (m *Manager) UnregisterHandler(page models.Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, page)
}

// -----------------------------------------------------------------------------
// Transitions
// -----------------------------------------------------------------------------

// NavigateToPage performs a user-initiated transition: pushes onto the
// history and runs the page handler. Rejected with no state change when
// the page is unknown or a navigation is already in flight.
func (m *Manager) NavigateToPage(ctx context.Context, page models.Page) error {
	return m.transition(ctx, page, true)
}

// -----------------------------------------------------------------------------

// HandleHistoryNavigation re-enters a page for an external history event
// (the back/forward replay path). The history is rewritten in place, not
// pushed, so replays never produce duplicate entries.
func (m *Manager) HandleHistoryNavigation(ctx context.Context, page models.Page) error {
	return m.transition(ctx, page, false)
}

// -----------------------------------------------------------------------------

func (m *Manager) transition(ctx context.Context, page models.Page, push bool) error {
	m.mu.Lock()
	if !models.IsKnownPage(page) {
		m.mu.Unlock()
		m.Logger.Warning("Rejected navigation to unknown page %q", page)
		return &helpers.NavigationError{PlatformError: helpers.PlatformError{
			Message: fmt.Sprintf("unknown page: %s", page),
		}}
	}
	if m.isNavigating {
		m.mu.Unlock()
		m.Logger.Warning("Rejected navigation to %q: navigation already in progress", page)
		return &helpers.NavigationError{PlatformError: helpers.PlatformError{
			Message: "navigation already in progress",
		}}
	}

	m.isNavigating = true
	m.currentPage = page
	if push {
		m.history = append(m.history, page)
	} else {
		m.history[len(m.history)-1] = page
	}
	handler := m.handlers[page]
	m.mu.Unlock()

	err := m.runHandler(ctx, page, handler)

	m.mu.Lock()
	m.isNavigating = false
	m.mu.Unlock()

	return err
}

// -----------------------------------------------------------------------------

// runHandler settles the page handler. A panicking handler is contained
// so the guard never sticks.
func (m *Manager) runHandler(ctx context.Context, page models.Page, handler Handler) (err error) {
	if handler == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			m.Logger.Error("Handler for page %q panicked: %v", page, r)
			err = &helpers.NavigationError{PlatformError: helpers.PlatformError{
				Message: fmt.Sprintf("handler for page %s panicked: %v", page, r),
			}}
		}
	}()

	if err := handler(ctx); err != nil {
		m.Logger.Error("Handler for page %q failed: %v", page, err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// GoBack pops the current entry and re-enters the previous page without
// pushing. Returns false when the history holds only the initial page.
// Pop and transition happen under one lock acquisition so a concurrent
// NavigateToPage never observes a popped history with the old current page.
func (m *Manager) GoBack(ctx context.Context) bool {
	m.mu.Lock()
	if len(m.history) <= 1 {
		m.mu.Unlock()
		m.Logger.Debug("GoBack ignored: already at the initial page")
		return false
	}
	if m.isNavigating {
		m.mu.Unlock()
		m.Logger.Warning("GoBack rejected: navigation already in progress")
		return false
	}
	m.isNavigating = true
	m.history = m.history[:len(m.history)-1]
	target := m.history[len(m.history)-1]
	m.currentPage = target
	handler := m.handlers[target]
	m.mu.Unlock()

	if err := m.runHandler(ctx, target, handler); err != nil {
		m.Logger.Warning("GoBack handler for %q failed: %v", target, err)
	}

	m.mu.Lock()
	m.isNavigating = false
	m.mu.Unlock()
	return true
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// CurrentPage returns the active page.
func (m *Manager) CurrentPage() models.Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentPage
}

// -----------------------------------------------------------------------------

// State returns a point-in-time copy of the navigation state.
func (m *Manager) State() models.MNavigationState {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := make([]models.Page, len(m.history))
	copy(history, m.history)
	return models.MNavigationState{
		CurrentPage:  m.currentPage,
		History:      history,
		IsNavigating: m.isNavigating,
	}
}
