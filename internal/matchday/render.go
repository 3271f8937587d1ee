package matchday

import (
	"fmt"
	"io"
	"strings"

	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/sequencer"
)

// Money formats an amount in millions, e.g. €4.25M.
func Money(v int64) string {
	if v < 1_000_000 && v > -1_000_000 {
		return fmt.Sprintf("€%dK", v/1000)
	}
	return fmt.Sprintf("€%.2fM", float64(v)/1_000_000)
}

// PrintState writes the dashboard summary.
func PrintState(w io.Writer, st game.State) {
	if st.Team == nil {
		fmt.Fprintf(w, "view: %s (no team)\n", st.View)
		return
	}
	t := st.Team
	fmt.Fprintf(w, "%s (%s)  %s  budget %s  squad %d\n", t.Name, t.Tactic, st.Date.Format("2006-01-02"), Money(t.Budget), len(t.Players))
	fmt.Fprintf(w, "view: %s\n", st.View)
	if st.NextOpponent != nil {
		fmt.Fprintf(w, "next: %s\n", st.NextOpponent.Name)
	}
	if st.Loading {
		fmt.Fprintf(w, "busy: %s\n", st.LoadingMessage)
	}
	if m := st.Match; m != nil {
		status := "ready"
		if m.Played {
			status = "played"
		}
		fmt.Fprintf(w, "match: %s %d-%d %s (%s)\n", m.HomeTeam.Name, m.HomeScore, m.AwayScore, m.AwayTeam.Name, status)
	}
}

// PrintSquad writes one line per player, starters first.
func PrintSquad(w io.Writer, t *model.Team) {
	if t == nil {
		return
	}
	for i, p := range t.Players {
		mark := " "
		if i < game.Starters {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-3s %-24s %2d  cond %3d  %s  %s\n", mark, p.Position.Role(), p.Name, p.Overall, p.Condition, Money(p.Value), p.ID)
	}
}

// PrintMarket writes the free-agent listing.
func PrintMarket(w io.Writer, players []model.Player) {
	if len(players) == 0 {
		fmt.Fprintln(w, "market is empty")
		return
	}
	for _, p := range players {
		fmt.Fprintf(w, "%-3s %-24s %2d  age %2d  %-10s %s  %s\n", p.Position.Role(), p.Name, p.Overall, p.Age, p.Nationality, Money(p.Value), p.ID)
	}
}

// PrintUpdate writes a commentary line for a live update. Jitter updates
// only move the markers and print nothing.
func PrintUpdate(w io.Writer, u sequencer.Update) {
	f := u.Frame
	switch u.Kind {
	case sequencer.UpdateStep:
		prefix := "   "
		if f.Highlight {
			prefix = ">>>"
		}
		fmt.Fprintf(w, "%s %3d' %-48s %d-%d\n", prefix, f.Minute, strings.TrimSpace(f.Description), f.HomeScore, f.AwayScore)
	case sequencer.UpdateEnd:
		fmt.Fprintf(w, "full time %d-%d\n", f.HomeScore, f.AwayScore)
	}
}
