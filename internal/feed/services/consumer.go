package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go-falcon/internal/activity/models"
	"go-falcon/internal/feed/dto"
)

// ServiceState mirrors the teacher's zkillboard consumer state machine
// (internal/zkillboard/services/redisq_consumer.go) — supplemented feature
// #3 in SPEC_FULL.md, since spec.md treats the poller as an external
// collaborator but the repository still needs one concrete implementation.
type ServiceState int32

const (
	StateStopped ServiceState = iota
	StateStarting
	StateRunning
	StateThrottled
	StateDraining
)

func (s ServiceState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateThrottled:
		return "throttled"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// metrics tracks consumer throughput, grounded on the teacher's
// ConsumerMetrics struct of atomic counters.
type metrics struct {
	totalPolls      atomic.Int64
	nullResponses   atomic.Int64
	eventsProcessed atomic.Int64
	eventsDropped   atomic.Int64
	httpErrors      atomic.Int64
	parseErrors     atomic.Int64
	rateLimitHits   atomic.Int64
}

// Config configures a Consumer's polling behavior.
type Config struct {
	QueueID       string
	Endpoint      string
	TTWMin        int
	TTWMax        int
	NullThreshold int
	HTTPTimeout   time.Duration
}

// DefaultConfig returns the teacher's tuned RedisQ defaults.
func DefaultConfig(queueID string) Config {
	return Config{
		QueueID:       queueID,
		Endpoint:      "https://zkillredisq.stream/listen.php",
		TTWMin:        1,
		TTWMax:        10,
		NullThreshold: 5,
		HTTPTimeout:   30 * time.Second,
	}
}

// Consumer polls a RedisQ-style long-poll endpoint, converts each package to
// a models.Event, and forwards it to the activity engine. Grounded on
// internal/zkillboard/services/redisq_consumer.go's Start/Stop/pollLoop/poll
// structure: adaptive TTW, atomic metrics, graceful drain on Stop.
type Consumer struct {
	httpClient *http.Client
	converter  *Converter
	ingest     func(ev models.Event) error

	cfg Config

	mu         sync.RWMutex
	state      atomic.Int32
	running    atomic.Bool
	lastPoll   time.Time
	lastEvent  string
	nullStreak int
	ttw        int
	startTime  time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	metrics     metrics
	rateLimiter *RateLimiter
}

// NewConsumer builds a Consumer. ingest is typically
// func(ev models.Event) error { return registry.Ingest(ev) }, passed in by
// the module wiring layer rather than held as a concrete *activity/services.Registry
// field, so this package only ever needs the registry's one entrypoint.
func NewConsumer(cfg Config, converter *Converter, ingest func(ev models.Event) error) *Consumer {
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
	c := &Consumer{
		httpClient:  httpClient,
		converter:   converter,
		ingest:      ingest,
		cfg:         cfg,
		rateLimiter: NewRateLimiter(),
	}
	c.state.Store(int32(StateStopped))
	return c
}

// Start begins the poll loop.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return fmt.Errorf("feed consumer already running")
	}

	c.state.Store(int32(StateStarting))
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.nullStreak = 0
	c.ttw = c.cfg.TTWMin
	c.startTime = time.Now()

	c.wg.Add(1)
	go c.pollLoop()

	c.running.Store(true)
	c.state.Store(int32(StateRunning))

	slog.Info("feed consumer started", "queue_id", c.cfg.QueueID, "endpoint", c.cfg.Endpoint)
	return nil
}

// Stop gracefully stops the poll loop, waiting up to 30s for it to drain.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return fmt.Errorf("feed consumer not running")
	}

	c.state.Store(int32(StateDraining))
	slog.Info("stopping feed consumer...")

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("feed consumer stopped gracefully")
	case <-time.After(30 * time.Second):
		slog.Warn("feed consumer stop timeout")
	}

	c.running.Store(false)
	c.state.Store(int32(StateStopped))
	return nil
}

func (c *Consumer) pollLoop() {
	defer c.wg.Done()
	slog.Info("starting feed poll loop")

	for {
		select {
		case <-c.ctx.Done():
			slog.Info("feed poll loop context cancelled")
			return
		default:
			c.poll()
		}
	}
}

func (c *Consumer) poll() {
	if err := c.rateLimiter.Acquire(); err != nil {
		c.metrics.rateLimitHits.Add(1)
		c.state.Store(int32(StateThrottled))
		time.Sleep(5 * time.Second)
		c.state.Store(int32(StateRunning))
		return
	}
	defer c.rateLimiter.Release()

	ttw := c.calculateTTW()
	url := fmt.Sprintf("%s?queueID=%s&ttw=%d", c.cfg.Endpoint, c.cfg.QueueID, ttw)

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Error("failed to build feed request", "error", err)
		c.metrics.httpErrors.Add(1)
		time.Sleep(5 * time.Second)
		return
	}
	req.Header.Set("User-Agent", "campwatch/1.0")
	req.Header.Set("Accept", "application/json")

	c.metrics.totalPolls.Add(1)
	c.mu.Lock()
	c.lastPoll = time.Now()
	c.ttw = ttw
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("feed HTTP request failed", "error", err)
		c.metrics.httpErrors.Add(1)
		time.Sleep(5 * time.Second)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.metrics.rateLimitHits.Add(1)
		c.state.Store(int32(StateThrottled))
		backoff := c.rateLimiter.GetBackoffDuration()
		slog.Info("feed backing off due to rate limit", "backoff", backoff)
		time.Sleep(backoff)
		c.state.Store(int32(StateRunning))
		return
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("unexpected feed HTTP status", "status", resp.StatusCode)
		c.metrics.httpErrors.Add(1)
		time.Sleep(5 * time.Second)
		return
	}

	var redisqResp dto.RedisQResponse
	if err := json.NewDecoder(resp.Body).Decode(&redisqResp); err != nil {
		slog.Error("failed to decode feed response", "error", err)
		c.metrics.parseErrors.Add(1)
		return
	}

	c.processResponse(&redisqResp)
}

func (c *Consumer) processResponse(resp *dto.RedisQResponse) {
	if resp.Package == nil {
		c.metrics.nullResponses.Add(1)
		c.mu.Lock()
		c.nullStreak++
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.nullStreak = 0
	c.ttw = c.cfg.TTWMin
	c.mu.Unlock()

	ev, err := c.converter.Convert(resp.Package)
	if err != nil {
		slog.Error("failed to convert killmail", "error", err, "kill_id", resp.Package.KillID)
		c.metrics.parseErrors.Add(1)
		return
	}

	if err := c.ingest(ev); err != nil {
		slog.Warn("engine rejected event", "error", err, "kill_id", resp.Package.KillID)
		c.metrics.eventsDropped.Add(1)
		return
	}

	c.metrics.eventsProcessed.Add(1)
	c.mu.Lock()
	c.lastEvent = fmt.Sprintf("%d", resp.Package.KillID)
	c.mu.Unlock()
}

func (c *Consumer) calculateTTW() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.nullStreak >= c.cfg.NullThreshold {
		return c.cfg.TTWMax
	}
	return c.cfg.TTWMin
}

// GetStatus returns the consumer's current status for the feed module's
// status endpoint.
func (c *Consumer) GetStatus() *dto.ServiceStatusOutput {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var lastPoll *time.Time
	if !c.lastPoll.IsZero() {
		lastPoll = &c.lastPoll
	}

	var uptime time.Duration
	if !c.startTime.IsZero() {
		uptime = time.Since(c.startTime)
	}

	return &dto.ServiceStatusOutput{
		Body: dto.ServiceStatusResponse{
			Status:      ServiceState(c.state.Load()).String(),
			QueueID:     c.cfg.QueueID,
			LastPoll:    lastPoll,
			LastEventID: c.lastEvent,
			Metrics: dto.ServiceMetrics{
				TotalPolls:      c.metrics.totalPolls.Load(),
				NullResponses:   c.metrics.nullResponses.Load(),
				EventsProcessed: c.metrics.eventsProcessed.Load(),
				EventsDropped:   c.metrics.eventsDropped.Load(),
				HTTPErrors:      c.metrics.httpErrors.Load(),
				ParseErrors:     c.metrics.parseErrors.Load(),
				RateLimitHits:   c.metrics.rateLimitHits.Load(),
				CurrentTTW:      c.ttw,
				NullStreak:      c.nullStreak,
				Uptime:          uptime,
			},
			Config: dto.ServiceConfig{
				Endpoint:      c.cfg.Endpoint,
				TTWMin:        c.cfg.TTWMin,
				TTWMax:        c.cfg.TTWMax,
				NullThreshold: c.cfg.NullThreshold,
			},
			Message: c.statusMessage(),
		},
	}
}

func (c *Consumer) statusMessage() string {
	switch ServiceState(c.state.Load()) {
	case StateRunning:
		return fmt.Sprintf("consumer running, %d events processed", c.metrics.eventsProcessed.Load())
	case StateThrottled:
		return "consumer throttled due to rate limiting"
	case StateDraining:
		return "consumer draining, shutdown in progress"
	case StateStopped:
		return "consumer stopped"
	default:
		return "consumer in unknown state"
	}
}
