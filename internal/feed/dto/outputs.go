package dto

import "time"

// ServiceStatusOutput wraps the feed consumer's status for huma.
type ServiceStatusOutput struct {
	Body ServiceStatusResponse `json:"body" doc:"Feed consumer status"`
}

// ServiceStatusResponse mirrors the teacher's zkillboard ServiceStatusResponse
// shape, trimmed to what the feed consumer actually tracks.
type ServiceStatusResponse struct {
	Status       string         `json:"status" doc:"Service status (stopped, starting, running, throttled, draining)"`
	QueueID      string         `json:"queue_id" doc:"Unique queue identifier"`
	LastPoll     *time.Time     `json:"last_poll,omitempty" doc:"Last successful poll time"`
	LastEventID  string         `json:"last_event_id,omitempty" doc:"Last processed event id"`
	Metrics      ServiceMetrics `json:"metrics" doc:"Consumer performance metrics"`
	Config       ServiceConfig  `json:"config" doc:"Consumer configuration"`
	Message      string         `json:"message,omitempty" doc:"Status message"`
}

// ServiceMetrics tracks consumer throughput and error counters.
type ServiceMetrics struct {
	TotalPolls      int64         `json:"total_polls" doc:"Total number of polls made"`
	NullResponses   int64         `json:"null_responses" doc:"Number of null responses received"`
	EventsProcessed int64         `json:"events_processed" doc:"Number of events ingested into the engine"`
	EventsDropped   int64         `json:"events_dropped" doc:"Number of events rejected by the engine as invalid"`
	HTTPErrors      int64         `json:"http_errors" doc:"Number of HTTP errors encountered"`
	ParseErrors     int64         `json:"parse_errors" doc:"Number of parse/decode errors"`
	RateLimitHits   int64         `json:"rate_limit_hits" doc:"Number of rate limit hits"`
	CurrentTTW      int           `json:"current_ttw" doc:"Current time-to-wait value (seconds)"`
	NullStreak      int           `json:"null_streak" doc:"Consecutive null responses"`
	Uptime          time.Duration `json:"uptime" doc:"Service uptime duration"`
}

// ServiceConfig is the consumer's effective runtime configuration.
type ServiceConfig struct {
	Endpoint      string `json:"endpoint" doc:"RedisQ endpoint URL"`
	TTWMin        int    `json:"ttw_min" doc:"Minimum time-to-wait (seconds)"`
	TTWMax        int    `json:"ttw_max" doc:"Maximum time-to-wait (seconds)"`
	NullThreshold int    `json:"null_threshold" doc:"Null responses before increasing TTW"`
}
