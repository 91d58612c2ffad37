package config

import "time"

type InternalConfig struct {
	App       App          `mapstructure:"app"`
	Engine    AppEngine    `mapstructure:"engine"`
	Transport AppTransport `mapstructure:"transport"`
	Ledger    AppLedger    `mapstructure:"ledger"`
}

type App struct {
	Env                        string `mapstructure:"env"`
	Port                       string `mapstructure:"port"`
	Version                    string `mapstructure:"version"`
	Address                    string `mapstructure:"address"`
	Timezone                   string `mapstructure:"timezone"`
	EndpointPrefix             string `mapstructure:"endpoint_prefix"`
	MaxRequests                int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds   int    `mapstructure:"shutdown_timeout_in_seconds"`
	MaxTimeRequestsPerSeconds  int    `mapstructure:"max_time_requests_per_seconds"`
	RequestBodyLimitInMegabyte int    `mapstructure:"request_body_limit_in_megabyte"`
}

// AppEngine tunes the availability engine.
type AppEngine struct {
	// ConfirmationTimeout bounds how long a pending hold waits for reservation_confirmed
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
	// SubscriberQueueSize is the per-observer event buffer
	SubscriberQueueSize int `mapstructure:"subscriber_queue_size"`
	// RefreshWorker enables the leader-locked sweep, which needs redis
	RefreshWorker bool `mapstructure:"refresh_worker"`
	// RefreshCronSpec schedules the fleet-wide refresh_availability sweep (e.g. "@every 5m")
	RefreshCronSpec string `mapstructure:"refresh_cron_spec"`
	// RefreshRatePerSecond throttles refresh_availability sends during a sweep
	RefreshRatePerSecond int `mapstructure:"refresh_rate_per_second"`
	// LeaderLockTTL is the lifetime of the sweep leader lock, refreshed at half TTL
	LeaderLockTTL time.Duration `mapstructure:"leader_lock_ttl"`
	// RefreshInterval paces refresh_availability for a streaming observer
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	// SuggestionLimit is used when a suggestions request carries no limit
	SuggestionLimit int `mapstructure:"suggestion_limit"`
}

// AppTransport selects how outbound messages leave and inbound ones arrive.
type AppTransport struct {
	// Kind is one of memory, rabbitmq or redis
	Kind            string `mapstructure:"kind"`
	OutboundQueue   string `mapstructure:"outbound_queue"`
	InboundQueue    string `mapstructure:"inbound_queue"`
	OutboundChannel string `mapstructure:"outbound_channel"`
	InboundChannel  string `mapstructure:"inbound_channel"`
	Prefetch        int    `mapstructure:"prefetch"`
	// InboundAPIKey guards the HTTP inbound endpoint; empty leaves it open
	InboundAPIKey string `mapstructure:"inbound_api_key"`
}

// AppLedger toggles the postgres availability source and hold ledger.
type AppLedger struct {
	Enabled     bool `mapstructure:"enabled"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
}
