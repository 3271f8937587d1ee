package matchday

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/sequencer"
	"github.com/okian/kickoff/pkg/logger"
)

// Season plays cfg.Weeks matchweeks for a new career and returns the tally.
func Season(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("matchday")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting season",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("team", cfg.Team),
		logger.Int("weeks", cfg.Weeks),
		logger.Bool("buy", cfg.Buy))

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Start the career
	sess, err := client.Start(ctx, cfg.Team)
	if err != nil {
		return nil, fmt.Errorf("failed to start career: %w", err)
	}
	stats.SessionID = sess.ID
	st := sess.State
	log.Debug(ctx, "career started", logger.String("session", sess.ID), logger.Int64("budget", st.Team.Budget))
	if !cfg.Keep {
		defer func() {
			if err := client.Quit(context.WithoutCancel(ctx), sess.ID); err != nil {
				log.Warn(ctx, "failed to quit career", logger.String("session", sess.ID), logger.Error(err))
			}
		}()
	}

	// Step 3: Prepare the squad
	if cfg.Tactic != "" {
		if st, err = client.ChangeTactic(ctx, sess.ID, cfg.Tactic); err != nil {
			return nil, fmt.Errorf("failed to set tactic: %w", err)
		}
	}
	if cfg.Buy {
		next, err := signCheapest(ctx, client, sess.ID)
		switch {
		case errors.Is(err, ErrNoAffordable):
			log.Warn(ctx, "nothing to sign", logger.Error(err))
		case err != nil:
			return nil, err
		default:
			st = next
			stats.Signed++
		}
	}
	PrintState(out, st)

	// Step 4: Play the matchweeks
	for week := 1; week <= cfg.Weeks; week++ {
		result, err := playWeek(ctx, client, cfg, sess.ID, out)
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", week, err)
		}
		tally(stats, st.Team.ID, result)
		log.Debug(ctx, "match finished",
			logger.Int("week", week),
			logger.Int("home", result.HomeScore),
			logger.Int("away", result.AwayScore))
	}

	final, err := client.Session(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch career: %w", err)
	}
	if final.State.Team != nil {
		stats.Budget = final.State.Team.Budget
	}
	stats.Duration = time.Since(stats.StartTime)

	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// signCheapest lists the market and buys the cheapest player the club can
// afford.
func signCheapest(ctx context.Context, client *Client, id string) (game.State, error) {
	st, err := client.SetView(ctx, id, game.ViewTransfer)
	if err != nil {
		return game.State{}, fmt.Errorf("failed to open market: %w", err)
	}
	if len(st.Market) == 0 {
		if st, err = client.RefreshMarket(ctx, id); err != nil {
			return game.State{}, fmt.Errorf("failed to refresh market: %w", err)
		}
	}

	var pick *model.Player
	for i := range st.Market {
		p := &st.Market[i]
		if p.Value > st.Team.Budget {
			continue
		}
		if pick == nil || p.Value < pick.Value {
			pick = p
		}
	}
	if pick == nil {
		return st, fmt.Errorf("%w: budget %s", ErrNoAffordable, Money(st.Team.Budget))
	}

	next, err := client.Buy(ctx, id, pick.ID)
	if err != nil {
		return game.State{}, fmt.Errorf("failed to buy %s: %w", pick.Name, err)
	}
	return next, nil
}

// playWeek advances, follows the live stream and closes the match.
func playWeek(ctx context.Context, client *Client, cfg *Config, id string, out io.Writer) (model.MatchResult, error) {
	if _, err := client.Advance(ctx, id); err != nil {
		return model.MatchResult{}, fmt.Errorf("failed to advance: %w", err)
	}
	st, err := client.WaitLive(ctx, id, cfg.Poll)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("failed waiting for simulation: %w", err)
	}
	result := *st.Match
	fmt.Fprintf(out, "%s vs %s\n", result.HomeTeam.Name, result.AwayTeam.Name)

	if !cfg.Quiet {
		if err := client.Watch(ctx, id, func(u sequencer.Update) error {
			PrintUpdate(out, u)
			return nil
		}); err != nil {
			return model.MatchResult{}, fmt.Errorf("failed to follow match: %w", err)
		}
	}

	if _, err := client.Finish(ctx, id); err != nil {
		return model.MatchResult{}, fmt.Errorf("failed to finish match: %w", err)
	}
	return result, nil
}

func tally(stats *Stats, teamID string, m model.MatchResult) {
	us, them := m.HomeScore, m.AwayScore
	if m.AwayTeam.ID == teamID {
		us, them = them, us
	}
	stats.Played++
	stats.GoalsFor += us
	stats.GoalsAgainst += them
	switch {
	case us > them:
		stats.Won++
	case us == them:
		stats.Drawn++
	default:
		stats.Lost++
	}
}

// displayFinalStats logs the season summary.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.String("session", stats.SessionID),
		logger.Int("played", stats.Played),
		logger.Int("won", stats.Won),
		logger.Int("drawn", stats.Drawn),
		logger.Int("lost", stats.Lost),
		logger.Int("goalsFor", stats.GoalsFor),
		logger.Int("goalsAgainst", stats.GoalsAgainst),
		logger.Int("points", stats.Points()),
		logger.Int("signed", stats.Signed),
		logger.String("budget", Money(stats.Budget)),
		logger.Duration("duration", stats.Duration))
}
