package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	LogLevel string         `yaml:"log_level"`
	API      MAPIConfig     `yaml:"api"`
	Socket   MSocketConfig  `yaml:"socket"`
	Polling  MPollingConfig `yaml:"polling"`
	Storage  MStorageConfig `yaml:"storage"`
	Server   MServerConfig  `yaml:"server"`
	Export   MExportConfig  `yaml:"export"`
	Updates  MUpdatesConfig `yaml:"updates"`
}

type MAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	RetryDelayMs   int    `yaml:"retry_delay_ms"`
}

type MSocketConfig struct {
	URL                  string `yaml:"url"`
	ReconnectIntervalMs  int    `yaml:"reconnect_interval_ms"`
	MaxReconnectAttempts int    `yaml:"max_reconnect_attempts"`
}

type MPollingConfig struct {
	IntervalSeconds         int      `yaml:"interval_seconds"`
	OffHoursIntervalSeconds int      `yaml:"off_hours_interval_seconds"`
	MarketSymbols           []string `yaml:"market_symbols"`
}

type MStorageConfig struct {
	DBType               string `yaml:"db_type"`
	DBPath               string `yaml:"db_path"`
	DBConnectionString   string `yaml:"db_connection_string"`
	CacheDurationMinutes int    `yaml:"cache_duration_minutes"`
}

type MServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MExportConfig struct {
	Directory string `yaml:"directory"`
}

type MUpdatesConfig struct {
	MaxEntries int `yaml:"max_entries"`
}
