// Package model contains domain models passed between layers.
package model

import "sort"

// Position is a squad role. Values are the wire codes used by clients.
type Position string

// Squad roles.
const (
	GK  Position = "KL"
	DEF Position = "DF"
	MID Position = "OS"
	FWD Position = "FV"
)

// Role returns the short English role name (GK, DEF, MID, FWD).
func (p Position) Role() string {
	switch p {
	case GK:
		return "GK"
	case DEF:
		return "DEF"
	case MID:
		return "MID"
	case FWD:
		return "FWD"
	}
	return string(p)
}

// Stats holds the per-attribute skill ratings.
type Stats struct {
	Finishing int `json:"finishing"`
	Passing   int `json:"passing"`
	Tackling  int `json:"tackling"`
	Pace      int `json:"pace"`
}

// Player is a squad member or a transfer listing.
type Player struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Position    Position `json:"position"`
	Age         int      `json:"age"`
	Nationality string   `json:"nationality"`
	Overall     int      `json:"overall"`   // 1-20
	Condition   int      `json:"condition"` // 0-100
	Value       int64    `json:"value"`
	Image       string   `json:"image,omitempty"`
	Club        string   `json:"club,omitempty"`
	Stats       Stats    `json:"stats"`
}

// Team is a club with its ordered squad. The first eleven players start.
type Team struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ShortName      string   `json:"shortName"`
	PrimaryColor   string   `json:"primaryColor"`
	SecondaryColor string   `json:"secondaryColor"`
	Players        []Player `json:"players"`
	Tactic         string   `json:"tactic"`
	Budget         int64    `json:"budget"`
}

// Clone returns a copy whose player slice is not shared.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Players = append([]Player(nil), t.Players...)
	return &c
}

// PlayerIndex returns the index of the player with id, or -1.
func (t *Team) PlayerIndex(id string) int {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// EventType tags a match event.
type EventType string

// Match event types.
const (
	EventGoal    EventType = "GOAL"
	EventMiss    EventType = "MISS"
	EventCard    EventType = "CARD"
	EventSub     EventType = "SUB"
	EventAttack  EventType = "ATTACK"
	EventDefense EventType = "DEFENSE"
	EventComment EventType = "COMMENT"
	EventWhistle EventType = "WHISTLE"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventGoal, EventMiss, EventCard, EventSub, EventAttack, EventDefense, EventComment, EventWhistle:
		return true
	}
	return false
}

// Side identifies which team an event belongs to.
type Side string

// Sides.
const (
	Home    Side = "home"
	Away    Side = "away"
	Neutral Side = "neutral"
)

// Coordinate is a pitch position on a 0-100 scale; x grows towards the away goal.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is the kickoff spot.
var Center = Coordinate{X: 50, Y: 50}

// MatchEvent is one line of match commentary.
type MatchEvent struct {
	Minute      int         `json:"minute"`
	Type        EventType   `json:"type"`
	Description string      `json:"description"`
	Side        Side        `json:"side,omitempty"`
	TeamID      string      `json:"teamId,omitempty"`
	Coordinate  *Coordinate `json:"coordinate,omitempty"`
}

// MatchResult is a finished simulation ready for playback.
type MatchResult struct {
	HomeTeam  Team         `json:"homeTeam"`
	AwayTeam  Team         `json:"awayTeam"`
	HomeScore int          `json:"homeScore"`
	AwayScore int          `json:"awayScore"`
	Events    []MatchEvent `json:"events"`
	Played    bool         `json:"played"`
}

// SortEvents orders events by minute, keeping list order within a minute.
func SortEvents(events []MatchEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})
}

// CountGoals tallies GOAL events per side. Goals without a home/away side
// are not credited.
func CountGoals(events []MatchEvent) (home, away int) {
	for _, e := range events {
		if e.Type != EventGoal {
			continue
		}
		switch e.Side {
		case Home:
			home++
		case Away:
			away++
		}
	}
	return home, away
}
