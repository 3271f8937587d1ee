package matchday

import "time"

// Defaults for the terminal client.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultTimeout  = 30 * time.Second
	DefaultWeeks    = 1
	DefaultPoll     = 200 * time.Millisecond
	DefaultTeamName = "Kickoff FC"
)

// Config holds a season run.
type Config struct {
	BaseURL string        // server base URL
	Timeout time.Duration // per-request timeout
	Team    string        // team to manage
	Weeks   int           // matchweeks to play
	Buy     bool          // sign the cheapest affordable free agent first
	Tactic  string        // formation to set before kickoff, empty keeps the default
	Poll    time.Duration // interval while waiting for a simulation
	Quiet   bool          // skip live commentary
	Keep    bool          // leave the career on the server afterwards
}

// Stats summarizes a season run.
type Stats struct {
	SessionID    string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Signed       int
	Budget       int64
	StartTime    time.Time
	Duration     time.Duration
}

// Points uses three for a win and one for a draw.
func (s Stats) Points() int {
	return s.Won*3 + s.Drawn
}
