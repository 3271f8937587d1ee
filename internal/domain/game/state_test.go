package game

import (
	"fmt"
	"testing"

	"github.com/okian/kickoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func squad(n int, value int64) model.Team {
	players := make([]model.Player, n)
	for i := range players {
		players[i] = model.Player{ID: fmt.Sprintf("p%d", i), Condition: 95, Value: value}
	}
	return model.Team{ID: "gs", Name: "Galatasaray", Players: players, Tactic: "4-4-2", Budget: 1_000_000}
}

func started(n int, value int64) State {
	return NewState().StartGame(squad(n, value), model.Team{ID: "opp-1", Name: "Sivasspor"})
}

func TestNewState(t *testing.T) {
	Convey("Given a fresh career", t, func() {
		s := NewState()
		So(s.View, ShouldEqual, ViewMenu)
		So(s.Date.Equal(StartDate), ShouldBeTrue)
		So(s.Market, ShouldBeEmpty)

		Convey("Then every team transition is rejected", func() {
			_, err := s.SetView(ViewSquad)
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.Buy("x")
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.Sell("x")
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.PrepareMatch()
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.FinishMatch(model.Team{})
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.ChangeTactic("4-4-2")
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.SetMarket(nil)
			So(err, ShouldEqual, ErrNoTeam)
			_, err = s.BeginMatch(model.MatchResult{})
			So(err, ShouldEqual, ErrNoTeam)
		})

		Convey("When the game starts", func() {
			s2 := s.StartGame(squad(15, 0), model.Team{Name: "Sivasspor"})

			Convey("Then the dashboard opens with an opponent", func() {
				So(s2.View, ShouldEqual, ViewDashboard)
				So(s2.NextOpponent.Name, ShouldEqual, "Sivasspor")
				So(s.Team, ShouldBeNil)
			})
		})
	})
}

func TestSell(t *testing.T) {
	Convey("Given a squad of exactly eleven", t, func() {
		s := started(11, 1_000_000)

		Convey("Then selling is rejected without change", func() {
			next, err := s.Sell("p0")
			So(err, ShouldWrap, ErrSquadTooSmall)
			So(next.Team.Players, ShouldHaveLength, 11)
			So(next.Team.Budget, ShouldEqual, 1_000_000)
		})
	})

	Convey("Given a squad of twelve", t, func() {
		s := started(12, 2_000_001)

		Convey("When a player is sold", func() {
			next, err := s.Sell("p3")

			Convey("Then the club banks 85 percent rounded down", func() {
				So(err, ShouldBeNil)
				So(next.Team.Players, ShouldHaveLength, 11)
				So(next.Team.PlayerIndex("p3"), ShouldEqual, -1)
				So(next.Team.Budget, ShouldEqual, 1_000_000+1_700_000)
			})

			Convey("Then the previous state is untouched", func() {
				So(s.Team.Players, ShouldHaveLength, 12)
				So(s.Team.Budget, ShouldEqual, 1_000_000)
			})
		})

		Convey("Then an unknown player is not found", func() {
			_, err := s.Sell("nobody")
			So(err, ShouldWrap, ErrPlayerNotFound)
		})
	})
}

func TestBuy(t *testing.T) {
	Convey("Given a career with a market", t, func() {
		s, err := started(11, 0).SetMarket([]model.Player{
			{ID: "cheap", Value: 500_000},
			{ID: "star", Value: 50_000_000},
		})
		So(err, ShouldBeNil)

		Convey("When buying an affordable player", func() {
			next, err := s.Buy("cheap")

			Convey("Then they join the squad and leave the market", func() {
				So(err, ShouldBeNil)
				So(next.Team.Players, ShouldHaveLength, 12)
				So(next.Team.Budget, ShouldEqual, 500_000)
				So(next.Market, ShouldHaveLength, 1)
				So(next.Market[0].ID, ShouldEqual, "star")
				So(s.Market, ShouldHaveLength, 2)
			})
		})

		Convey("When the budget is short", func() {
			next, err := s.Buy("star")

			Convey("Then the purchase is rejected", func() {
				So(err, ShouldWrap, ErrInsufficientBudget)
				So(next.Team.Players, ShouldHaveLength, 11)
				So(next.Team.Budget, ShouldEqual, 1_000_000)
			})
		})

		Convey("When buying exactly the budget", func() {
			s2, _ := s.SetMarket([]model.Player{{ID: "exact", Value: 1_000_000}})
			next, err := s2.Buy("exact")
			So(err, ShouldBeNil)
			So(next.Team.Budget, ShouldEqual, 0)
		})

		Convey("Then unknown listings are not found", func() {
			_, err := s.Buy("ghost")
			So(err, ShouldWrap, ErrPlayerNotFound)
		})
	})
}

func TestMatchCycle(t *testing.T) {
	Convey("Given a started career", t, func() {
		s := started(13, 0)
		s.Team.Players[0].Condition = 90
		s.Team.Players[12].Condition = 20

		Convey("When a match is prepared", func() {
			prepared, err := s.PrepareMatch()
			So(err, ShouldBeNil)

			Convey("Then the squad recovers up to full fitness", func() {
				So(prepared.Team.Players[0].Condition, ShouldEqual, 100)
				So(prepared.Team.Players[12].Condition, ShouldEqual, 35)
				So(prepared.Loading, ShouldBeTrue)
				So(prepared.LoadingMessage, ShouldEqual, LoadingMatch)
				So(s.Team.Players[0].Condition, ShouldEqual, 90)
			})

			Convey("Then aborting clears the loading flag", func() {
				So(prepared.AbortLoading().Loading, ShouldBeFalse)
			})

			Convey("When the match begins and finishes", func() {
				live, err := prepared.BeginMatch(model.MatchResult{HomeScore: 1})
				So(err, ShouldBeNil)
				So(live.View, ShouldEqual, ViewMatchLive)
				So(live.Loading, ShouldBeFalse)

				_, err = live.PrepareMatch()
				So(err, ShouldEqual, ErrMatchPending)

				done, err := live.FinishMatch(model.Team{ID: "opp-2", Name: "Göztepe"})
				So(err, ShouldBeNil)

				Convey("Then only the starters tire", func() {
					So(done.Team.Players[0].Condition, ShouldEqual, 90)
					So(done.Team.Players[10].Condition, ShouldEqual, 90)
					So(done.Team.Players[11].Condition, ShouldEqual, 100)
					So(done.Team.Players[12].Condition, ShouldEqual, 35)
				})

				Convey("Then income, calendar and opponent roll over", func() {
					So(done.Team.Budget, ShouldEqual, 1_000_000+MatchIncome)
					So(done.Date.Equal(StartDate.AddDate(0, 0, 7)), ShouldBeTrue)
					So(done.NextOpponent.Name, ShouldEqual, "Göztepe")
					So(done.Match, ShouldBeNil)
					So(done.Market, ShouldBeEmpty)
					So(done.View, ShouldEqual, ViewDashboard)
				})
			})
		})

		Convey("Then finishing without a match fails", func() {
			_, err := s.FinishMatch(model.Team{})
			So(err, ShouldEqual, ErrNoMatch)
		})
	})

	Convey("Given a tired squad", t, func() {
		s := started(11, 0)
		s.Team.Players[0].Condition = 0
		live, _ := s.BeginMatch(model.MatchResult{})
		done, _ := live.FinishMatch(model.Team{})
		So(done.Team.Players[0].Condition, ShouldEqual, 0)
	})
}

func TestViewsAndTactics(t *testing.T) {
	Convey("Given a started career", t, func() {
		s := started(11, 0)

		Convey("Then known views and tactics apply", func() {
			next, err := s.SetView(ViewTransfer)
			So(err, ShouldBeNil)
			So(next.View, ShouldEqual, ViewTransfer)

			next, err = s.ChangeTactic("5-4-1")
			So(err, ShouldBeNil)
			So(next.Team.Tactic, ShouldEqual, "5-4-1")
			So(s.Team.Tactic, ShouldEqual, "4-4-2")
		})

		Convey("Then unknown ones are rejected", func() {
			_, err := s.SetView("CUPS")
			So(err, ShouldWrap, ErrUnknownView)
			_, err = s.ChangeTactic("2-3-5")
			So(err, ShouldWrap, ErrUnknownTactic)
		})

		Convey("Then quitting returns to the menu", func() {
			q := s.Quit()
			So(q.Team, ShouldBeNil)
			So(q.View, ShouldEqual, ViewMenu)
		})
	})
}
