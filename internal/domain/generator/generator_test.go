package generator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/okian/kickoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValue(t *testing.T) {
	Convey("Given the value formula", t, func() {
		Convey("Then young stars get the premium", func() {
			So(Value(17, 21), ShouldEqual, 12_000_000)
			So(Value(19, 22), ShouldEqual, 75_000_000)
		})

		Convey("Then veterans are discounted", func() {
			So(Value(9, 35), ShouldEqual, 300_000)
			So(Value(15, 33), ShouldEqual, 4_800_000)
		})

		Convey("Then prime age pays the tier base", func() {
			So(Value(10, 25), ShouldEqual, 500_000)
			So(Value(11, 23), ShouldEqual, 2_000_000)
			So(Value(16, 32), ShouldEqual, 8_000_000)
			So(Value(18, 28), ShouldEqual, 20_000_000)
			So(Value(20, 30), ShouldEqual, 50_000_000)
		})
	})
}

func TestSquad(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := New(WithSeed(7))

		Convey("When an unknown club is requested", func() {
			team := g.Squad("Ankara Gücü")

			Convey("Then a fifteen player squad is built from the template", func() {
				So(team.Players, ShouldHaveLength, 15)
				counts := map[model.Position]int{}
				for _, p := range team.Players {
					counts[p.Position]++
					So(p.Condition, ShouldEqual, 100)
					So(p.Age, ShouldBeBetweenOrEqual, 18, 35)
					So(p.Overall, ShouldBeBetweenOrEqual, 10, 15)
					So(p.Value, ShouldEqual, Value(p.Overall, p.Age))
					So(p.Nationality, ShouldBeIn, "TR", "EU")
				}
				So(counts[model.GK], ShouldEqual, 2)
				So(counts[model.DEF], ShouldEqual, 5)
				So(counts[model.MID], ShouldEqual, 5)
				So(counts[model.FWD], ShouldEqual, 3)
			})

			Convey("Then the team metadata is derived from the name", func() {
				So(team.ID, ShouldEqual, "ankara-gücü")
				So(team.ShortName, ShouldEqual, "ANK")
				So(team.Tactic, ShouldEqual, "4-4-2")
				So(team.Budget, ShouldEqual, 5_000_000)
				So(team.Players[0].ID, ShouldEqual, "rnd-Ankara Gücü-0")
				So(team.Players[14].ID, ShouldEqual, "rnd-Ankara Gücü-14")
			})
		})

		Convey("When a preset alias is used", func() {
			team := g.Squad("cimbom")

			Convey("Then the preset roster is returned", func() {
				So(team.Name, ShouldEqual, "Galatasaray")
				So(team.ID, ShouldEqual, "gs")
				So(team.Tactic, ShouldEqual, "4-2-3-1")
				So(team.Budget, ShouldEqual, 20_000_000)
				So(team.Players[0].ID, ShouldEqual, "pre-GS-0")
				So(team.Players[0].Stats.Pace, ShouldEqual, team.Players[0].Overall)
			})
		})

		Convey("When a dotted capital i is typed", func() {
			team := g.Squad("Beşiktaş")

			Convey("Then the preset still matches", func() {
				So(team.ShortName, ShouldEqual, "BJK")
			})
		})

		Convey("When a name merely contains an alias", func() {
			team := g.Squad("FBI United")

			Convey("Then substring matching picks the preset", func() {
				So(team.ShortName, ShouldEqual, "FB")
			})
		})
	})
}

func TestMarket(t *testing.T) {
	Convey("Given a generator with a counting id source", t, func() {
		n := 0
		g := New(WithSeed(3), WithIDFunc(func() string {
			n++
			return fmt.Sprintf("%d", n)
		}))

		Convey("When the market is refreshed", func() {
			players := g.Market()

			Convey("Then eight free agents are listed", func() {
				So(players, ShouldHaveLength, MarketSize)
				seen := map[string]bool{}
				for _, p := range players {
					So(p.Club, ShouldEqual, MarketClub)
					So(p.Overall, ShouldBeBetweenOrEqual, 10, 18)
					So(p.Value, ShouldEqual, Value(p.Overall, p.Age))
					So(strings.HasPrefix(p.ID, "mkt-"), ShouldBeTrue)
					So(seen[p.ID], ShouldBeFalse)
					seen[p.ID] = true
				}
			})

			Convey("Then a second refresh never reuses ids", func() {
				again := g.Market()
				So(again[0].ID, ShouldNotEqual, players[0].ID)
			})
		})
	})
}

func TestOpponent(t *testing.T) {
	Convey("Given a generator", t, func() {
		g := New(WithSeed(11))

		Convey("Then the opponent never matches the excluded club", func() {
			for i := 0; i < 50; i++ {
				opp := g.Opponent("Beşiktaş")
				So(opp.Name, ShouldNotEqual, "Beşiktaş")
				So(opp.Players, ShouldBeEmpty)
				So(opp.Tactic, ShouldEqual, "4-4-2")
			}
		})
	})
}

func TestMatchEvents(t *testing.T) {
	Convey("Given two teams", t, func() {
		g := New(WithSeed(5))
		home := model.Team{ID: "gs", Name: "Galatasaray"}
		away := model.Team{ID: "ts", Name: "Trabzonspor"}

		Convey("When a procedural match is generated", func() {
			events := g.MatchEvents(home, away)

			Convey("Then the stream is bracketed and ordered", func() {
				So(events, ShouldHaveLength, 15)
				So(events[0].Type, ShouldEqual, model.EventComment)
				So(events[0].Minute, ShouldEqual, 1)
				So(events[len(events)-1].Type, ShouldEqual, model.EventWhistle)
				for i := 1; i < len(events); i++ {
					So(events[i].Minute, ShouldBeGreaterThanOrEqualTo, events[i-1].Minute)
				}
			})

			Convey("Then every event is placed on the pitch", func() {
				for _, e := range events {
					So(e.Coordinate, ShouldNotBeNil)
					So(e.Coordinate.X, ShouldBeBetweenOrEqual, 0, 100)
					So(e.Coordinate.Y, ShouldBeBetweenOrEqual, 0, 100)
					So(e.Type.Valid(), ShouldBeTrue)
				}
			})
		})
	})
}

func TestPlace(t *testing.T) {
	Convey("Given events from both sides", t, func() {
		g := New(WithSeed(1))

		Convey("Then goals sit in front of the target goal", func() {
			So(g.Place(model.MatchEvent{Type: model.EventGoal, Side: model.Home}), ShouldResemble, model.Coordinate{X: 95, Y: 50})
			So(g.Place(model.MatchEvent{Type: model.EventGoal, Side: model.Away}), ShouldResemble, model.Coordinate{X: 5, Y: 50})
		})

		Convey("Then misses land off-centre", func() {
			c := g.Place(model.MatchEvent{Type: model.EventMiss, Side: model.Home})
			So(c.X, ShouldEqual, 90)
			So(c.Y, ShouldBeIn, 40.0, 60.0)
		})

		Convey("Then attacks stay in the attacking third", func() {
			home := g.Place(model.MatchEvent{Type: model.EventAttack, Side: model.Home})
			away := g.Place(model.MatchEvent{Type: model.EventAttack, Side: model.Away})
			So(home.X, ShouldBeBetweenOrEqual, 70, 90)
			So(away.X, ShouldBeBetweenOrEqual, 10, 30)
		})

		Convey("Then commentary is placed at the centre", func() {
			So(g.Place(model.MatchEvent{Type: model.EventComment}), ShouldResemble, model.Center)
		})
	})
}

func TestParsePresets(t *testing.T) {
	Convey("Given malformed preset documents", t, func() {
		_, err := parsePresets([]byte("- key: X\n  aliases: []\n"))
		So(err, ShouldWrap, ErrPresets)

		_, err = parsePresets([]byte("{not a list"))
		So(err, ShouldWrap, ErrPresets)
	})
}
