package game

import (
	"context"
	"sync"
	"time"

	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/monitoring"
)

// Timing defaults.
const (
	DefaultTickInterval = time.Second
	DefaultResultDelay  = 2200 * time.Millisecond
)

// Hooks are called from the runner goroutine. They should return quickly.
type Hooks struct {
	OnSnapshot    func(Snapshot)
	OnStarted     func(Snapshot)
	OnRoundLocked func(Snapshot, Round)
	OnFinished    func(Snapshot)
	OnAbandoned   func(Snapshot)
}

// RunnerConfig sets the runner's clock.
type RunnerConfig struct {
	TickInterval time.Duration
	ResultDelay  time.Duration
}

// DefaultRunnerConfig returns a 1s countdown step and a 2.2s result display.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{TickInterval: DefaultTickInterval, ResultDelay: DefaultResultDelay}
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdAbandon
)

type command struct {
	kind   commandKind
	player string
	reply  chan error
}

// Runner owns a Match and drives it from a gesture stream and its own
// timers. Start and Abandon may be called from any goroutine; they are
// applied by the Run loop.
type Runner struct {
	match *Match
	cfg   RunnerConfig
	hooks Hooks
	cmds  chan command

	mu   sync.RWMutex
	snap Snapshot
}

// NewRunner wraps m. Zero config fields take their defaults.
func NewRunner(m *Match, cfg RunnerConfig, hooks Hooks) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.ResultDelay <= 0 {
		cfg.ResultDelay = DefaultResultDelay
	}
	return &Runner{
		match: m,
		cfg:   cfg,
		hooks: hooks,
		cmds:  make(chan command),
		snap:  m.Snapshot(),
	}
}

// Snapshot returns the latest published snapshot.
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Start begins a match for player.
func (r *Runner) Start(ctx context.Context, player string) error {
	return r.send(ctx, command{kind: cmdStart, player: player})
}

// Abandon drops the running match.
func (r *Runner) Abandon(ctx context.Context) error {
	return r.send(ctx, command{kind: cmdAbandon})
}

func (r *Runner) send(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case r.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the match until ctx is cancelled. Gestures are read from events;
// when events is closed the runner keeps serving commands and timers.
func (r *Runner) Run(ctx context.Context, events <-chan gesture.Confirmed) error {
	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
		delay  *time.Timer
		delayC <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	stopDelay := func() {
		if delay != nil {
			delay.Stop()
			delay, delayC = nil, nil
		}
	}
	startTicker := func() {
		stopTicker()
		ticker = time.NewTicker(r.cfg.TickInterval)
		tickC = ticker.C
	}
	defer stopTicker()
	defer stopDelay()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd := <-r.cmds:
			var err error
			switch cmd.kind {
			case cmdStart:
				if err = r.match.Start(cmd.player); err == nil {
					stopDelay()
					startTicker()
					snap := r.publish()
					monitoring.Logf("Match started for %s", snap.Player)
					if r.hooks.OnStarted != nil {
						r.hooks.OnStarted(snap)
					}
				}
			case cmdAbandon:
				if err = r.match.Abandon(); err == nil {
					stopTicker()
					stopDelay()
					snap := r.publish()
					monitoring.Logf("Match abandoned")
					if r.hooks.OnAbandoned != nil {
						r.hooks.OnAbandoned(snap)
					}
				}
			}
			cmd.reply <- err

		case c, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			round, locked := r.match.Gesture(c)
			if !locked {
				continue
			}
			snap := r.publish()
			monitoring.Logf("Round %d: %s vs %s, %s", round.Number, round.Player, round.Computer, round.Outcome)
			if r.hooks.OnRoundLocked != nil {
				r.hooks.OnRoundLocked(snap, round)
			}
			delay = time.NewTimer(r.cfg.ResultDelay)
			delayC = delay.C

		case <-tickC:
			r.match.Tick()
			if r.match.State() != WaitingForCountdown {
				stopTicker()
			}
			r.publish()

		case <-delayC:
			delay, delayC = nil, nil
			if r.match.Advance() == WaitingForCountdown {
				startTicker()
				r.publish()
				continue
			}
			snap := r.publish()
			monitoring.Logf("Match finished: %s", snap.Result)
			if r.hooks.OnFinished != nil {
				r.hooks.OnFinished(snap)
			}
		}
	}
}

func (r *Runner) publish() Snapshot {
	snap := r.match.Snapshot()
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	if r.hooks.OnSnapshot != nil {
		r.hooks.OnSnapshot(snap)
	}
	return snap
}
