package models

// -----------------------------------------------------------------------------
// Dashboard Snapshot
// -----------------------------------------------------------------------------

// MCompany is one tracked company on the intelligence board.
type MCompany struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	MarketCap     float64 `json:"market_cap"` // USD
	RiskLevel     string  `json:"risk_level"` // "low", "medium", "high"
	ThreatScore   float64 `json:"threat_score"`
	LastActivity  int64   `json:"last_activity"`
}

// -----------------------------------------------------------------------------

// MMarketOverview is the market-wide sub-object replaced wholesale by
// market_data pushes.
type MMarketOverview struct {
	IndexValue    float64 `json:"index_value"`
	IndexChange   float64 `json:"index_change"`
	Volatility    float64 `json:"volatility"`
	Sentiment     string  `json:"sentiment"`
	TradingVolume float64 `json:"trading_volume"`
}

// -----------------------------------------------------------------------------

// MRealTimeUpdate is one entry of the bounded live feed.
type MRealTimeUpdate struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Severity  string `json:"severity,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MDashboardMetrics are derived aggregates. They are recomputed from the
// company list immediately after every mutation, never read stale.
type MDashboardMetrics struct {
	TotalCompanies   int                `json:"total_companies"`
	AverageMarketCap float64            `json:"average_market_cap"`
	RiskDistribution map[string]int     `json:"risk_distribution"`
	AverageThreat    float64            `json:"average_threat"`
}

// -----------------------------------------------------------------------------

// MDashboardData is the dashboard manager snapshot.
// Version increases monotonically with every applied mutation; refreshes
// started before an interleaving patch are discarded on completion.
type MDashboardData struct {
	Companies       []MCompany        `json:"companies"`
	Market          MMarketOverview   `json:"market"`
	RealTimeUpdates []MRealTimeUpdate `json:"real_time_updates"`
	Metrics         MDashboardMetrics `json:"metrics"`
	LastUpdated     int64             `json:"last_updated"`
	Version         uint64            `json:"version"`
}
