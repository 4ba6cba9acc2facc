package monitop

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Refresher performs the three refresh cycles the poller schedules
type Refresher interface {
	RefreshCounts(ctx context.Context) error
	RefreshThroughput(ctx context.Context, target string) error
	RefreshStatus(ctx context.Context) error
}

// Poller schedules refresh cycles at startup, on every tick and on demand.
// Cycles are independent: overlapping cycles are not suppressed and a failing
// cycle never affects another one.
type Poller struct {
	refresher Refresher
	clock     clockwork.Clock
	interval  time.Duration
	metrics   *Metrics

	mu     sync.Mutex
	target string
	ctx    context.Context
	closed bool
	wg     sync.WaitGroup
}

// NewPoller creates a poller for refresher with target initially selected
func NewPoller(refresher Refresher, clock clockwork.Clock, interval time.Duration, target string, metrics *Metrics) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		refresher: refresher,
		clock:     clock,
		interval:  interval,
		target:    target,
		metrics:   metrics,
		ctx:       context.Background(),
	}, nil
}

// Target returns the currently selected target
func (p *Poller) Target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// Run performs the startup refreshes and then polls until ctx is canceled.
// It returns once every in-flight cycle has finished.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	// Throughput starts once the first counts refresh has returned, whether
	// or not it succeeded. A failed counts load does not hold it back.
	p.spawn(func(ctx context.Context) {
		p.refreshCounts(ctx)
		p.refreshThroughput(ctx, p.Target())
	})
	p.spawn(p.refreshStatus)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Poller stopping: %v", ctx.Err())
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			p.wg.Wait()
			return nil
		case <-ticker.Chan():
			p.Tick()
		}
	}
}

// Tick starts all three refreshes concurrently
func (p *Poller) Tick() {
	target := p.Target()
	p.spawn(p.refreshCounts)
	p.spawn(func(ctx context.Context) { p.refreshThroughput(ctx, target) })
	p.spawn(p.refreshStatus)
}

// RefreshCounts starts a counts refresh
func (p *Poller) RefreshCounts() {
	p.spawn(p.refreshCounts)
}

// RefreshThroughput starts a throughput refresh for the selected target
func (p *Poller) RefreshThroughput() {
	target := p.Target()
	p.spawn(func(ctx context.Context) { p.refreshThroughput(ctx, target) })
}

// SelectTarget changes the selected target and refreshes its throughput
func (p *Poller) SelectTarget(target string) {
	p.mu.Lock()
	p.target = target
	p.mu.Unlock()
	p.RefreshThroughput()
}

// Wait blocks until every cycle started so far has finished
func (p *Poller) Wait() {
	p.wg.Wait()
}

// spawn is a no-op once Run has started draining
func (p *Poller) spawn(fn func(ctx context.Context)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		fn(ctx)
	}()
}

func (p *Poller) refreshCounts(ctx context.Context) {
	p.guard(ctx, string(SlotCounts), p.refresher.RefreshCounts)
}

func (p *Poller) refreshThroughput(ctx context.Context, target string) {
	p.guard(ctx, string(SlotTPU), func(ctx context.Context) error {
		return p.refresher.RefreshThroughput(ctx, target)
	})
}

func (p *Poller) refreshStatus(ctx context.Context) {
	p.guard(ctx, "status", p.refresher.RefreshStatus)
}

// guard runs one cycle, logging its error and recovering a panic so neither can reach the ticker
func (p *Poller) guard(ctx context.Context, name string, fn func(context.Context) error) {
	started := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			log.Printf("Refresh %s failed: %v", name, err)
		}
		p.metrics.ObserveRefresh(name, started, err)
	}()
	err = fn(ctx)
}
