package models

// -----------------------------------------------------------------------------
// Navigation
// -----------------------------------------------------------------------------

// Page enumerates the fixed set of navigable surfaces.
type Page string

const (
	PageDashboard   Page = "dashboard"
	PageAnalytics   Page = "analytics"
	PageSimulations Page = "simulations"
	PageAgents      Page = "agents"
	PageIntel       Page = "intel"
)

// -----------------------------------------------------------------------------

// KnownPages is the closed page set; navigation to anything else is rejected.
var KnownPages = []Page{
	PageDashboard,
	PageAnalytics,
	PageSimulations,
	PageAgents,
	PageIntel,
}

// -----------------------------------------------------------------------------

// IsKnownPage reports whether p belongs to the closed page set.
func IsKnownPage(p Page) bool {
	for _, k := range KnownPages {
		if k == p {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// MNavigationState is a point-in-time copy of the navigation manager state.
// Invariant: CurrentPage always equals History[len(History)-1].
type MNavigationState struct {
	CurrentPage  Page   `json:"current_page"`
	History      []Page `json:"history"`
	IsNavigating bool   `json:"is_navigating"`
}
