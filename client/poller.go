package client

import (
	"context"
	"sync"
	"time"

	"doomsday-orchestrator/core/models"
)

// State is the poller's lifecycle state. TimedOut is deliberately not
// a state: the advisory timeout coexists with Polling, and delivery
// can still happen after it fires.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateDelivered
	StateFailed
	StateRedirected
)

// EventKind tags poller events.
type EventKind int

const (
	// EventMessage rotates the human-readable status line.
	EventMessage EventKind = iota
	// EventStillWorking signals the advisory timeout; polling continues.
	EventStillWorking
	// EventDelivered carries the verdict exactly once.
	EventDelivered
	// EventFailed signals a terminal analysis error.
	EventFailed
	// EventRedirected signals there was no session to poll for.
	EventRedirected
)

// Event is one poller notification.
type Event struct {
	Kind    EventKind
	Message string
	Result  *Result
}

// PollerConfig tunes the three independent timers.
type PollerConfig struct {
	Interval        time.Duration // status query cadence
	Timeout         time.Duration // advisory "still working" deadline
	MessageInterval time.Duration // status message rotation
	Messages        []string
}

func (cfg *PollerConfig) applyDefaults() {
	if cfg.Interval <= 0 {
		cfg.Interval = 2000 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30000 * time.Millisecond
	}
	if cfg.MessageInterval <= 0 {
		cfg.MessageInterval = 3000 * time.Millisecond
	}
}

// Poller repeatedly queries one session's result until completion,
// terminal error, or teardown. It runs a single goroutine, so at most
// one status query is ever in flight.
type Poller struct {
	client    *Client
	sessionID string
	cfg       PollerConfig

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	state    State
	timedOut bool
}

// NewPoller creates a poller for the session. Start begins polling.
func NewPoller(c *Client, sessionID string, cfg PollerConfig) *Poller {
	cfg.applyDefaults()
	return &Poller{
		client:    c,
		sessionID: sessionID,
		cfg:       cfg,
		events:    make(chan Event, 16),
		done:      make(chan struct{}),
		state:     StateIdle,
	}
}

// Events is the poller's notification stream. It is closed when the
// poller reaches a terminal state or is stopped.
func (p *Poller) Events() <-chan Event {
	return p.events
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// TimedOut reports whether the advisory timeout has fired.
func (p *Poller) TimedOut() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timedOut
}

// Start launches the polling loop.
func (p *Poller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
}

// Stop tears the poller down, releasing all three timers together,
// and waits for the loop to exit. Safe to call from any state.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer close(p.events)

	if p.sessionID == "" {
		p.setState(StateRedirected)
		p.emit(ctx, Event{Kind: EventRedirected})
		return
	}
	p.setState(StatePolling)

	poll := time.NewTicker(p.cfg.Interval)
	messages := time.NewTicker(p.cfg.MessageInterval)
	deadline := time.NewTimer(p.cfg.Timeout)
	defer func() {
		poll.Stop()
		messages.Stop()
		deadline.Stop()
	}()

	// First query immediately; the ticker covers the rest.
	if p.pollOnce(ctx) {
		return
	}

	msgIndex := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			p.mu.Lock()
			p.timedOut = true
			p.mu.Unlock()
			p.emit(ctx, Event{Kind: EventStillWorking})
		case <-messages.C:
			if len(p.cfg.Messages) > 0 {
				msgIndex = (msgIndex + 1) % len(p.cfg.Messages)
				p.emit(ctx, Event{Kind: EventMessage, Message: p.cfg.Messages[msgIndex]})
			}
		case <-poll.C:
			if p.pollOnce(ctx) {
				return
			}
		}
	}
}

// pollOnce issues one status query. Transport failures are swallowed;
// the next tick simply retries. Returns true when a terminal state
// was reached.
func (p *Poller) pollOnce(ctx context.Context) bool {
	result, err := p.client.FetchResult(ctx, p.sessionID)
	if err != nil {
		return ctx.Err() != nil
	}
	switch result.Status {
	case models.JobStatusCompleted:
		p.setState(StateDelivered)
		p.emit(ctx, Event{Kind: EventDelivered, Result: result})
		return true
	case models.JobStatusError:
		p.setState(StateFailed)
		p.emit(ctx, Event{Kind: EventFailed, Result: result})
		return true
	}
	return false
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) emit(ctx context.Context, ev Event) {
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}
