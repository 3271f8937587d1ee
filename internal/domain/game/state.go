// Package game holds the career state and its transitions. Every transition
// is a pure function of the receiver: it returns a new State and leaves the
// old one untouched.
package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/kickoff/internal/domain/model"
)

// View is the screen the player is on.
type View string

// Views.
const (
	ViewMenu         View = "MENU"
	ViewDashboard    View = "DASHBOARD"
	ViewSquad        View = "SQUAD"
	ViewMatchPreview View = "MATCH_PREVIEW"
	ViewMatchLive    View = "MATCH_LIVE"
	ViewLeague       View = "LEAGUE"
	ViewFixture      View = "FIXTURE"
	ViewTransfer     View = "TRANSFER"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewMenu, ViewDashboard, ViewSquad, ViewMatchPreview, ViewMatchLive, ViewLeague, ViewFixture, ViewTransfer:
		return true
	}
	return false
}

// Tactics lists the formations a manager may pick.
var Tactics = []string{"4-4-2", "4-3-3", "3-5-2", "4-2-3-1", "5-4-1"}

// Career rules.
const (
	MatchIncome      = 750_000
	MinSquadSize     = 11
	Starters         = 11
	RecoveryPerMatch = 15
	FatiguePerMatch  = 10
	MaxCondition     = 100
	MatchweekDays    = 7
	SellNumerator    = 85
	SellDenominator  = 100

	LoadingMatch  = "Maç Simülasyonu..."
	LoadingMarket = "Pazar Taranıyor..."
)

// StartDate is the first matchday of a new career.
var StartDate = time.Date(2024, time.August, 11, 0, 0, 0, 0, time.UTC)

// State is a single career.
type State struct {
	Team           *model.Team        `json:"team"`
	Date           time.Time          `json:"date"`
	View           View               `json:"view"`
	Loading        bool               `json:"loading"`
	LoadingMessage string             `json:"loadingMessage,omitempty"`
	Match          *model.MatchResult `json:"match,omitempty"`
	NextOpponent   *model.Team        `json:"nextOpponent,omitempty"`
	Market         []model.Player     `json:"market"`
}

// NewState returns the menu state before a team is picked.
func NewState() State {
	return State{
		Date:   StartDate,
		View:   ViewMenu,
		Market: []model.Player{},
	}
}

// SellPrice is what the club receives for a player.
func SellPrice(value int64) int64 {
	return value * SellNumerator / SellDenominator
}

// clone deep-copies everything a transition may mutate.
func (s State) clone() State {
	c := s
	c.Team = s.Team.Clone()
	c.NextOpponent = s.NextOpponent.Clone()
	c.Market = append([]model.Player{}, s.Market...)
	return c
}

// StartGame installs team and its first opponent and opens the dashboard.
func (s State) StartGame(team model.Team, opponent model.Team) State {
	c := s.clone()
	c.Team = team.Clone()
	c.NextOpponent = opponent.Clone()
	c.View = ViewDashboard
	c.Loading = false
	c.LoadingMessage = ""
	c.Match = nil
	c.Market = []model.Player{}
	return c
}

// SetView switches screens.
func (s State) SetView(v View) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	if !v.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	c := s.clone()
	c.View = v
	return c, nil
}

// ChangeTactic sets the team formation.
func (s State) ChangeTactic(tactic string) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	if !slices.Contains(Tactics, tactic) {
		return s, fmt.Errorf("%w: %q", ErrUnknownTactic, tactic)
	}
	c := s.clone()
	c.Team.Tactic = tactic
	return c, nil
}

// SetMarket replaces the transfer listings.
func (s State) SetMarket(players []model.Player) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	c := s.clone()
	c.Market = append([]model.Player{}, players...)
	return c, nil
}

// Buy moves a market listing into the squad.
func (s State) Buy(playerID string) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	idx := -1
	for i := range s.Market {
		if s.Market[i].ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	p := s.Market[idx]
	if s.Team.Budget < p.Value {
		return s, fmt.Errorf("%w: need %d, have %d", ErrInsufficientBudget, p.Value, s.Team.Budget)
	}

	c := s.clone()
	c.Team.Players = append(c.Team.Players, p)
	c.Team.Budget -= p.Value
	c.Market = append(c.Market[:idx], c.Market[idx+1:]...)
	return c, nil
}

// Sell releases a squad player for SellPrice of their value.
func (s State) Sell(playerID string) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	if len(s.Team.Players) <= MinSquadSize {
		return s, fmt.Errorf("%w: %d players", ErrSquadTooSmall, len(s.Team.Players))
	}
	idx := s.Team.PlayerIndex(playerID)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}

	c := s.clone()
	p := c.Team.Players[idx]
	c.Team.Players = append(c.Team.Players[:idx], c.Team.Players[idx+1:]...)
	c.Team.Budget += SellPrice(p.Value)
	return c, nil
}

// PrepareMatch rests the squad before kickoff and marks the state as
// waiting for a simulation.
func (s State) PrepareMatch() (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	if s.NextOpponent == nil {
		return s, ErrNoOpponent
	}
	if s.Match != nil {
		return s, ErrMatchPending
	}
	c := s.clone()
	for i := range c.Team.Players {
		c.Team.Players[i].Condition = min(MaxCondition, c.Team.Players[i].Condition+RecoveryPerMatch)
	}
	c.Loading = true
	c.LoadingMessage = LoadingMatch
	return c, nil
}

// AbortLoading clears the loading flag when a simulation could not start.
func (s State) AbortLoading() State {
	c := s.clone()
	c.Loading = false
	c.LoadingMessage = ""
	return c
}

// BeginMatch stores a simulated result and opens live playback.
func (s State) BeginMatch(result model.MatchResult) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	c := s.clone()
	c.Match = &result
	c.View = ViewMatchLive
	c.Loading = false
	c.LoadingMessage = ""
	return c, nil
}

// FinishMatch tires the starting eleven, pays match income, advances the
// calendar a week and schedules nextOpponent.
func (s State) FinishMatch(nextOpponent model.Team) (State, error) {
	if s.Team == nil {
		return s, ErrNoTeam
	}
	if s.Match == nil {
		return s, ErrNoMatch
	}
	c := s.clone()
	for i := range c.Team.Players {
		if i < Starters {
			c.Team.Players[i].Condition = max(0, c.Team.Players[i].Condition-FatiguePerMatch)
		}
	}
	c.Team.Budget += MatchIncome
	c.Date = c.Date.AddDate(0, 0, MatchweekDays)
	c.Match = nil
	c.NextOpponent = nextOpponent.Clone()
	c.Market = []model.Player{}
	c.View = ViewDashboard
	return c, nil
}

// Quit returns to the menu and drops the career.
func (State) Quit() State {
	return NewState()
}
