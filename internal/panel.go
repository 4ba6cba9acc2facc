package monitop

import (
	"context"
	"fmt"
	"sync"
)

// PanelText is a consistent copy of the panel's text regions
type PanelText struct {
	Meta   string
	Status string
	Model  string
	Trend  string
	Latest []NamedSeries
	Target string
}

// Panel fetches backend data, swaps charts and keeps the text regions current.
// A failed cycle leaves its chart and text as they were.
type Panel struct {
	client       *Client
	swapper      *Swapper
	samplesLimit int
	pointsLimit  int

	mu       sync.RWMutex
	text     PanelText
	onChange func()
}

// NewPanel wires a panel to client and swapper
func NewPanel(client *Client, swapper *Swapper, samplesLimit, pointsLimit int) *Panel {
	return &Panel{
		client:       client,
		swapper:      swapper,
		samplesLimit: samplesLimit,
		pointsLimit:  pointsLimit,
		text: PanelText{
			Meta:  "Loading…",
			Model: "model: —",
		},
	}
}

// OnChange registers fn to be called after any region changes
func (p *Panel) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Text returns the current text regions
func (p *Panel) Text() PanelText {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// RefreshCounts reloads samples and replaces the counts chart
func (p *Panel) RefreshCounts(ctx context.Context) error {
	samples, err := p.client.Samples(ctx, p.samplesLimit)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}
	frame := BuildCounts(samples)
	if err := p.swapper.Refresh(SlotCounts, frame.Spec()); err != nil {
		return err
	}
	p.update(func(t *PanelText) {
		t.Meta = frame.Meta()
		t.Latest = frame.Latest()
	})
	return nil
}

// RefreshThroughput reloads points and the model for target and replaces the throughput chart
func (p *Panel) RefreshThroughput(ctx context.Context, target string) error {
	points, err := p.client.Throughput(ctx, target, p.pointsLimit)
	if err != nil {
		return fmt.Errorf("load throughput for %s: %w", target, err)
	}
	model, err := p.client.Model(ctx, target)
	if err != nil {
		return fmt.Errorf("load model for %s: %w", target, err)
	}
	frame := BuildThroughput(target, points, model)
	if err := p.swapper.Refresh(SlotTPU, frame.Spec()); err != nil {
		// the slot is empty now, so no summary describes it
		p.update(func(t *PanelText) {
			t.Target = target
			t.Model = "model: —"
			t.Trend = ""
		})
		return err
	}
	p.update(func(t *PanelText) {
		t.Target = target
		t.Model = frame.Summary
		t.Trend = frame.Trend
	})
	return nil
}

// RefreshStatus reloads the pipeline status line. An empty message keeps the previous line.
func (p *Panel) RefreshStatus(ctx context.Context) error {
	status, err := p.client.Status(ctx)
	if err != nil {
		return fmt.Errorf("load status: %w", err)
	}
	if status.Message == nil || *status.Message == "" {
		return nil
	}
	p.update(func(t *PanelText) {
		t.Status = "Status: " + *status.Message
	})
	return nil
}

func (p *Panel) update(fn func(*PanelText)) {
	p.mu.Lock()
	fn(&p.text)
	onChange := p.onChange
	p.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}
