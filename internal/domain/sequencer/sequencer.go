// Package sequencer reveals a match event list one step at a time, keeping
// score and ball position, and pauses after every goal.
package sequencer

import (
	"github.com/okian/kickoff/internal/domain/model"
)

// KickoffLine is shown before the first event is revealed.
const KickoffLine = "Maç başlıyor..."

// Frame is the presentation state derived from the cursor.
type Frame struct {
	Cursor      int                `json:"cursor"`
	Total       int                `json:"total"`
	HomeScore   int                `json:"homeScore"`
	AwayScore   int                `json:"awayScore"`
	Minute      int                `json:"minute"`
	Description string             `json:"description"`
	Highlight   bool               `json:"highlight"`
	Paused      bool               `json:"paused"`
	Finished    bool               `json:"finished"`
	Ball        model.Coordinate   `json:"ball"`
	Log         []model.MatchEvent `json:"log"`
}

// Sequencer is not safe for concurrent use; a single playback owns it.
type Sequencer struct {
	events    []model.MatchEvent
	cursor    int
	homeScore int
	awayScore int
	paused    bool
	ball      model.Coordinate
}

// New copies events and orders them by minute. The input is not modified.
func New(events []model.MatchEvent) *Sequencer {
	cp := make([]model.MatchEvent, len(events))
	copy(cp, events)
	model.SortEvents(cp)
	return &Sequencer{
		events: cp,
		cursor: -1,
		ball:   model.Center,
	}
}

// Step reveals the next event. It reports false, leaving state untouched,
// while paused or once every event is revealed.
func (s *Sequencer) Step() (Frame, bool) {
	if s.paused || s.Finished() {
		return s.Frame(), false
	}
	s.cursor++
	e := s.events[s.cursor]

	if e.Type == model.EventGoal {
		switch e.Side {
		case model.Home:
			s.homeScore++
		case model.Away:
			s.awayScore++
		}
		s.paused = true
	}
	if e.Coordinate != nil {
		s.ball = *e.Coordinate
	}
	return s.Frame(), true
}

// Resume lifts a goal pause.
func (s *Sequencer) Resume() {
	s.paused = false
}

// Paused reports whether a goal pause is in effect.
func (s *Sequencer) Paused() bool {
	return s.paused
}

// Finished reports whether the last event has been revealed. An empty list
// is finished from the start.
func (s *Sequencer) Finished() bool {
	return s.cursor >= len(s.events)-1
}

// Score returns the running score.
func (s *Sequencer) Score() (home, away int) {
	return s.homeScore, s.awayScore
}

// Frame snapshots the current state. Log shares storage with the
// sequencer and must not be modified.
func (s *Sequencer) Frame() Frame {
	f := Frame{
		Cursor:      s.cursor,
		Total:       len(s.events),
		HomeScore:   s.homeScore,
		AwayScore:   s.awayScore,
		Description: KickoffLine,
		Paused:      s.paused,
		Finished:    s.Finished(),
		Ball:        s.ball,
		Log:         s.events[:s.cursor+1 : s.cursor+1],
	}
	if s.cursor >= 0 {
		cur := s.events[s.cursor]
		f.Minute = cur.Minute
		f.Description = cur.Description
		f.Highlight = cur.Type == model.EventGoal
	}
	return f
}
