package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Prober runs Client.Probe on a cron schedule so that readiness reflects
// upstream reachability even when no chat traffic is flowing.
type Prober struct {
	client   *Client
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewProber creates a prober for client. An empty schedule yields a prober
// whose Start is a no-op.
func NewProber(client *Client, schedule string) *Prober {
	return &Prober{
		client:   client,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "upstream.prober"),
	}
}

// Start schedules probing and runs one probe immediately. It stops when ctx
// is cancelled or Stop is called.
//
// Common schedules:
//   - "*/5 * * * *" - every five minutes
//   - "@every 30s"  - every thirty seconds
func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("probe schedule not configured, skipping prober")
		return nil
	}
	if p.running {
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() { p.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule probe: %w", err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("upstream prober started", "schedule", p.schedule)

	go p.RunOnce(ctx)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// RunOnce performs a single probe and logs the outcome.
func (p *Prober) RunOnce(ctx context.Context) error {
	start := time.Now()
	err := p.client.Probe(ctx)
	latency := time.Since(start)

	if err != nil {
		p.logger.Error("upstream probe failed",
			"error", err,
			"latency_ms", latency.Milliseconds(),
		)
		return err
	}

	p.logger.Debug("upstream probe passed", "latency_ms", latency.Milliseconds())
	return nil
}

// Stop stops the schedule and waits for a running probe to finish.
func (p *Prober) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("upstream prober stopped")
	}
}

// IsRunning returns true if the prober is scheduled.
func (p *Prober) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// NextRun returns the next scheduled probe time, or nil when not scheduled.
func (p *Prober) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
