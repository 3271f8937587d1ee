package sequencer

import (
	"context"
	"math/rand"
	"time"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/motion"
)

// Default playback timings.
const (
	DefaultStepInterval   = 1200 * time.Millisecond
	DefaultGoalPause      = 2000 * time.Millisecond
	DefaultJitterInterval = 500 * time.Millisecond
)

// UpdateKind tags a playback update.
type UpdateKind string

// Update kinds.
const (
	UpdateStep   UpdateKind = "step"   // an event was revealed
	UpdateResume UpdateKind = "resume" // a goal pause ended
	UpdateJitter UpdateKind = "jitter" // markers resampled, no state change
	UpdateEnd    UpdateKind = "end"    // playback finished
)

// Update is one message emitted by Playback.Run.
type Update struct {
	Kind    UpdateKind     `json:"kind"`
	Frame   Frame          `json:"frame"`
	Markers []motion.Point `json:"markers"`
}

// Option configures a Playback.
type Option func(*Playback)

// WithStepInterval sets the delay between reveals.
func WithStepInterval(d time.Duration) Option {
	return func(p *Playback) {
		if d > 0 {
			p.step = d
		}
	}
}

// WithGoalPause sets how long playback holds after a goal.
func WithGoalPause(d time.Duration) Option {
	return func(p *Playback) {
		if d >= 0 {
			p.goalPause = d
		}
	}
}

// WithJitterInterval sets how often marker jitter is resampled.
func WithJitterInterval(d time.Duration) Option {
	return func(p *Playback) {
		if d > 0 {
			p.jitterEvery = d
		}
	}
}

// WithRand sets the jitter source.
func WithRand(rng *rand.Rand) Option {
	return func(p *Playback) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// Playback drives a Sequencer on timers.
type Playback struct {
	seq         *Sequencer
	step        time.Duration
	goalPause   time.Duration
	jitterEvery time.Duration
	rng         *rand.Rand
	jitter      []motion.Point
}

// NewPlayback prepares a timed playback of events.
func NewPlayback(events []model.MatchEvent, opts ...Option) *Playback {
	p := &Playback{
		seq:         New(events),
		step:        DefaultStepInterval,
		goalPause:   DefaultGoalPause,
		jitterEvery: DefaultJitterInterval,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // cosmetic
	}
	for _, opt := range opts {
		opt(p)
	}
	p.jitter = make([]motion.Point, motion.Markers())
	return p
}

// Sequencer exposes the underlying sequencer for inspection.
func (p *Playback) Sequencer() *Sequencer {
	return p.seq
}

// Run emits the initial frame, then reveals one event per step interval,
// holding for the goal pause after each goal and resuming one step
// interval later. It returns nil after the last event (and any pause it
// triggered), ctx.Err() when ctx ends first, or the first emit error.
// All timers are stopped before Run returns.
func (p *Playback) Run(ctx context.Context, emit func(Update) error) error {
	if p.seq.Finished() {
		return emit(p.update(UpdateEnd))
	}
	if err := emit(p.update(UpdateStep)); err != nil {
		return err
	}

	stepTimer := time.NewTimer(p.step)
	defer stepTimer.Stop()
	jitterTicker := time.NewTicker(p.jitterEvery)
	defer jitterTicker.Stop()
	var pauseTimer *time.Timer
	defer func() {
		if pauseTimer != nil {
			pauseTimer.Stop()
		}
	}()

	stepC := stepTimer.C
	var resumeC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-jitterTicker.C:
			p.jitter = motion.SampleJitter(p.rng, len(p.jitter))
			if err := emit(p.update(UpdateJitter)); err != nil {
				return err
			}

		case <-stepC:
			stepC = nil
			if _, ok := p.seq.Step(); !ok {
				return emit(p.update(UpdateEnd))
			}
			if err := emit(p.update(UpdateStep)); err != nil {
				return err
			}
			if p.seq.Paused() {
				pauseTimer = time.NewTimer(p.goalPause)
				resumeC = pauseTimer.C
				continue
			}
			if p.seq.Finished() {
				return emit(p.update(UpdateEnd))
			}
			stepTimer.Reset(p.step)
			stepC = stepTimer.C

		case <-resumeC:
			resumeC = nil
			pauseTimer = nil
			p.seq.Resume()
			if p.seq.Finished() {
				return emit(p.update(UpdateEnd))
			}
			if err := emit(p.update(UpdateResume)); err != nil {
				return err
			}
			stepTimer.Reset(p.step)
			stepC = stepTimer.C
		}
	}
}

func (p *Playback) update(kind UpdateKind) Update {
	f := p.seq.Frame()
	return Update{
		Kind:    kind,
		Frame:   f,
		Markers: motion.Layout(f.Ball, p.jitter),
	}
}
