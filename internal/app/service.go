// Package service provides the career service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/kickoff/internal/adapters/content"
	"github.com/okian/kickoff/internal/adapters/mq/queue"
	"github.com/okian/kickoff/internal/adapters/mq/worker"
	"github.com/okian/kickoff/internal/adapters/photostore"
	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/generator"
	"github.com/okian/kickoff/internal/domain/inflight"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/sequencer"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// Guarded actions.
const (
	actionSimulate = "simulate"
	actionAdvice   = "advice"
)

// AvatarURL is the placeholder served for players without a cached photo
// or an image of their own.
const AvatarURL = "https://i.pravatar.cc/150?u="

// Service implements the API dependencies for the career game.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions    repository.Store
	photos      photostore.Store
	gen         *generator.Generator
	commentator *content.Commentator
	guard       *inflight.Guard
	jobs        queue.Queue
	pool        *worker.Pool

	// Configuration
	workerCount    int
	queueSize      int
	maxInFlight    int
	photoPrefix    string
	playbackOpts   []sequencer.Option
	photoBackend   string
	sessionIdleTTL time.Duration

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of simulation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxInFlight caps the number of simulations and advice requests
// pending at once across all sessions. Zero leaves it unbounded.
func WithMaxInFlight(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxInFlight = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(store repository.Store) Option {
	return func(s *Service) {
		s.sessions = store
	}
}

// WithSessionIdleTTL drops sessions untouched for d. Only applies to the
// default in-memory store.
func WithSessionIdleTTL(d time.Duration) Option {
	return func(s *Service) {
		s.sessionIdleTTL = d
	}
}

// WithPhotoStore sets the photo cache and the backend name reported in stats.
func WithPhotoStore(store photostore.Store, backend string) Option {
	return func(s *Service) {
		if store != nil {
			s.photos = store
			s.photoBackend = backend
		}
	}
}

// WithPhotoKeyPrefix namespaces photo cache keys.
func WithPhotoKeyPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.photoPrefix = prefix
		}
	}
}

// WithGenerator sets the squad and market generator.
func WithGenerator(gen *generator.Generator) Option {
	return func(s *Service) {
		if gen != nil {
			s.gen = gen
		}
	}
}

// WithCommentator sets the match and advice source.
func WithCommentator(c *content.Commentator) Option {
	return func(s *Service) {
		if c != nil {
			s.commentator = c
		}
	}
}

// WithPlaybackCadence sets the live match timings.
func WithPlaybackCadence(step, goalPause, jitter time.Duration) Option {
	return func(s *Service) {
		s.playbackOpts = []sequencer.Option{
			sequencer.WithStepInterval(step),
			sequencer.WithGoalPause(goalPause),
			sequencer.WithJitterInterval(jitter),
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    1024,
		photoPrefix:  photostore.DefaultKeyPrefix,
		photoBackend: "memory",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the components that were not supplied and starts the
// worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting career service...")

	if s.sessions == nil {
		s.sessions = repository.NewMemoryStore(ctx, repository.WithIdleTTL(s.sessionIdleTTL))
	}
	if s.photos == nil {
		s.photos = photostore.NewMemoryStore()
	}
	if s.gen == nil {
		s.gen = generator.New()
	}
	if s.commentator == nil {
		s.commentator = content.NewCommentator(s.gen, content.WithLogger(s.logger))
	}
	s.guard = inflight.New(inflight.WithMaxSize(s.maxInFlight))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	s.pool = worker.NewPool(s.workerCount, s.jobs, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "career service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("contentOnline", s.commentator.Online()),
		logger.String("photoBackend", s.photoBackend),
	)
	return nil
}

// Stop drains the job queue and closes the stores.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping career service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	if err := s.sessions.Close(); err != nil {
		s.logger.Error(ctx, "session store close failed", logger.Error(err))
	}
	if err := s.photos.Close(); err != nil {
		s.logger.Error(ctx, "photo store close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "career service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// NewSession starts a career with the club named teamName.
func (s *Service) NewSession(ctx context.Context, teamName string) (repository.Session, error) {
	if err := s.ready(); err != nil {
		return repository.Session{}, err
	}
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return repository.Session{}, ErrEmptyTeamName
	}

	team := s.gen.Squad(teamName)
	opponent := s.gen.Opponent(team.Name)
	sess := repository.Session{
		ID:    uuid.NewString(),
		State: game.NewState().StartGame(team, opponent),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return repository.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.RecordSessionStarted()
	s.logger.Info(ctx, "career started",
		logger.String("session", sess.ID),
		logger.String("team", team.Name),
		logger.String("opponent", opponent.Name),
	)
	return s.sessions.Get(ctx, sess.ID)
}

// Session returns a career by id.
func (s *Service) Session(ctx context.Context, id string) (repository.Session, error) {
	if err := s.ready(); err != nil {
		return repository.Session{}, err
	}
	return s.sessions.Get(ctx, id)
}

// SetView switches screens. Opening the transfer screen with an empty
// market lists a fresh batch.
func (s *Service) SetView(ctx context.Context, id string, view game.View) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	return s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		next, err := st.SetView(view)
		if err != nil {
			return st, err
		}
		if view == game.ViewTransfer && len(next.Market) == 0 {
			return next.SetMarket(s.gen.Market())
		}
		return next, nil
	})
}

// ChangeTactic sets the team formation.
func (s *Service) ChangeTactic(ctx context.Context, id, tactic string) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	return s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		return st.ChangeTactic(tactic)
	})
}

// RefreshMarket replaces the transfer listings with a new batch.
func (s *Service) RefreshMarket(ctx context.Context, id string) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	return s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		return st.SetMarket(s.gen.Market())
	})
}

// Buy signs a listed player.
func (s *Service) Buy(ctx context.Context, id, playerID string) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	st, err := s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		return st.Buy(playerID)
	})
	s.recordTransfer(ctx, "buy", id, playerID, err)
	return st, err
}

// Sell releases a squad player.
func (s *Service) Sell(ctx context.Context, id, playerID string) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	st, err := s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		return st.Sell(playerID)
	})
	s.recordTransfer(ctx, "sell", id, playerID, err)
	return st, err
}

func (s *Service) recordTransfer(ctx context.Context, kind, id, playerID string, err error) {
	switch {
	case err == nil:
		metrics.RecordTransfer(kind)
		s.logger.Debug(ctx, "transfer completed",
			logger.String("session", id),
			logger.String("kind", kind),
			logger.String("player", playerID))
	case errors.Is(err, game.ErrInsufficientBudget):
		metrics.RecordTransferRejected("budget")
	case errors.Is(err, game.ErrSquadTooSmall):
		metrics.RecordTransferRejected("squad_size")
	case errors.Is(err, game.ErrPlayerNotFound):
		metrics.RecordTransferRejected("not_found")
	}
}

// Advance rests the squad and queues the next match for simulation. The
// returned job id identifies the pending simulation; the session moves to
// the live view once a worker has played it.
func (s *Service) Advance(ctx context.Context, id string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	key := inflight.Key(id, actionSimulate)
	if err := s.guard.Acquire(ctx, key); err != nil {
		return "", err
	}

	if _, err := s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		return st.PrepareMatch()
	}); err != nil {
		s.guard.Release(ctx, key)
		return "", err
	}

	job := model.Job{
		ID:        uuid.NewString(),
		SessionID: id,
		Kind:      model.JobSimulateMatch,
		Enqueued:  time.Now(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.guard.Release(ctx, key)
		if _, uerr := s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
			return st.AbortLoading(), nil
		}); uerr != nil {
			s.logger.Warn(ctx, "failed to clear loading state", logger.String("session", id), logger.Error(uerr))
		}
		return "", err
	}

	s.logger.Debug(ctx, "match simulation queued",
		logger.String("session", id),
		logger.String("job", job.ID))
	return job.ID, nil
}

// Process runs a queued job. It implements worker.Processor.
func (s *Service) Process(ctx context.Context, j model.Job) error {
	switch j.Kind {
	case model.JobSimulateMatch:
		return s.simulate(ctx, j)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJob, j.Kind)
	}
}

func (s *Service) simulate(ctx context.Context, j model.Job) error {
	defer s.guard.Release(ctx, inflight.Key(j.SessionID, actionSimulate))

	sess, err := s.sessions.Get(ctx, j.SessionID)
	if err != nil {
		return err
	}
	st := sess.State
	if st.Team == nil {
		return game.ErrNoTeam
	}
	if st.NextOpponent == nil {
		return game.ErrNoOpponent
	}

	result, src := s.commentator.SimulateMatch(ctx, *st.Team, *st.NextOpponent)
	metrics.RecordMatchSimulated(string(src))

	if _, err := s.sessions.Update(ctx, j.SessionID, func(st game.State) (game.State, error) {
		return st.BeginMatch(result)
	}); err != nil {
		return err
	}

	s.logger.Info(ctx, "match simulated",
		logger.String("session", j.SessionID),
		logger.String("source", string(src)),
		logger.Int("events", len(result.Events)),
		logger.Int("homeScore", result.HomeScore),
		logger.Int("awayScore", result.AwayScore),
		logger.Duration("queued", time.Since(j.Enqueued)),
	)
	return nil
}

// Finish closes the played match and schedules the next opponent.
func (s *Service) Finish(ctx context.Context, id string) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	return s.sessions.Update(ctx, id, func(st game.State) (game.State, error) {
		if st.Team == nil {
			return st, game.ErrNoTeam
		}
		return st.FinishMatch(s.gen.Opponent(st.Team.Name))
	})
}

// Quit ends the career and forgets the session.
func (s *Service) Quit(ctx context.Context, id string) (game.State, error) {
	if err := s.ready(); err != nil {
		return game.State{}, err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return game.State{}, err
	}
	s.guard.Release(ctx, inflight.Key(id, actionAdvice))
	return game.State{}.Quit(), nil
}

// Advice asks the commentator for a game plan for the squad. Only one
// request per session runs at a time.
func (s *Service) Advice(ctx context.Context, id string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if sess.State.Team == nil {
		return "", game.ErrNoTeam
	}

	key := inflight.Key(id, actionAdvice)
	if err := s.guard.Acquire(ctx, key); err != nil {
		return "", err
	}
	defer s.guard.Release(ctx, key)

	return s.commentator.TacticalAdvice(ctx, sess.State.Team.Players), nil
}

// Playback streams the session's match through the sequencer. It returns
// when the match ends, ctx is canceled or emit fails.
func (s *Service) Playback(ctx context.Context, id string, emit func(sequencer.Update) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.State.Match == nil {
		return game.ErrNoMatch
	}

	metrics.AddPlaybackStreams(1)
	defer metrics.AddPlaybackStreams(-1)

	pb := sequencer.NewPlayback(sess.State.Match.Events, s.playbackOpts...)
	return pb.Run(ctx, func(u sequencer.Update) error {
		if u.Kind == sequencer.UpdateStep {
			metrics.RecordPlaybackFrame()
		}
		return emit(u)
	})
}

// findPlayer looks a player up in the squad and then in the market.
func findPlayer(st game.State, playerID string) (model.Player, bool) {
	if st.Team != nil {
		if i := st.Team.PlayerIndex(playerID); i >= 0 {
			return st.Team.Players[i], true
		}
	}
	for _, p := range st.Market {
		if p.ID == playerID {
			return p, true
		}
	}
	return model.Player{}, false
}

func (s *Service) player(ctx context.Context, id, playerID string) (model.Player, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return model.Player{}, err
	}
	if sess.State.Team == nil {
		return model.Player{}, game.ErrNoTeam
	}
	p, ok := findPlayer(sess.State, playerID)
	if !ok {
		return model.Player{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, playerID)
	}
	return p, nil
}

// PutPhoto normalises an uploaded image and caches it for the player.
func (s *Service) PutPhoto(ctx context.Context, id, playerID string, upload []byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.player(ctx, id, playerID); err != nil {
		return err
	}

	blob, err := photostore.Normalize(upload)
	if err != nil {
		metrics.RecordPhotoOp("put", "rejected")
		return err
	}
	if err := s.photos.Put(ctx, photostore.Key(s.photoPrefix, playerID), blob); err != nil {
		metrics.RecordPhotoOp("put", "error")
		return err
	}
	metrics.RecordPhotoOp("put", "ok")
	return nil
}

// Photo returns the cached photo for a player. When nothing is cached it
// returns a URL to fall back to instead.
func (s *Service) Photo(ctx context.Context, id, playerID string) (blob []byte, fallback string, err error) {
	if err := s.ready(); err != nil {
		return nil, "", err
	}
	p, err := s.player(ctx, id, playerID)
	if err != nil {
		return nil, "", err
	}

	blob, found, err := s.photos.Get(ctx, photostore.Key(s.photoPrefix, playerID))
	if err != nil {
		metrics.RecordPhotoOp("get", "error")
		s.logger.Warn(ctx, "photo cache read failed", logger.String("player", playerID), logger.Error(err))
	}
	if found {
		metrics.RecordPhotoOp("get", "hit")
		return blob, "", nil
	}
	metrics.RecordPhotoOp("get", "miss")
	if p.Image != "" {
		return nil, p.Image, nil
	}
	return nil, AvatarURL + p.ID, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"maxInFlight":  s.maxInFlight,
		"queueSize":    s.queueSize,
		"photoBackend": s.photoBackend,
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		sessions := s.sessions.Count(ctx)

		stats["workerCount"] = s.pool.Size()
		stats["queueLength"] = queueLen
		stats["sessions"] = sessions
		stats["inFlight"] = s.guard.Size()
		stats["contentOnline"] = s.commentator.Online()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateActiveSessions(sessions)
	}

	return stats
}
