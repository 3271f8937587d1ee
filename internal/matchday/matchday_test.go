package matchday_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/kickoff/internal/adapters/http/api"
	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/generator"
	"github.com/okian/kickoff/internal/domain/sequencer"
	"github.com/okian/kickoff/internal/matchday"
	"github.com/okian/kickoff/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// startServer runs the real service behind the API with a fast cadence.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithWorkerCount(2),
		service.WithGenerator(generator.New(generator.WithSeed(7))),
		service.WithPlaybackCadence(time.Millisecond, time.Millisecond, time.Hour),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r := mux.NewRouter()
	api.NewServer(svc, svc).Register(context.Background(), r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop(context.Background())
	})
	return srv
}

func TestReadEvents(t *testing.T) {
	Convey("Given an event stream", t, func() {
		stream := ": hello\n" +
			"event: step\n" +
			"data: {\"a\":1}\n\n" +
			"event: resume\n" +
			"data: line one\n" +
			"data: line two\n\n" +
			"\n" +
			"event: end\n" +
			"data: last"

		Convey("When every event is read", func() {
			var got []matchday.Event
			err := matchday.ReadEvents(strings.NewReader(stream), func(ev matchday.Event) error {
				got = append(got, ev)
				return nil
			})

			Convey("Then comments and blank runs are skipped", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0], ShouldResemble, matchday.Event{Name: "step", Data: `{"a":1}`})
				So(got[1].Data, ShouldEqual, "line one\nline two")
				So(got[2], ShouldResemble, matchday.Event{Name: "end", Data: "last"})
			})
		})

		Convey("When the callback fails", func() {
			boom := errors.New("boom")
			calls := 0
			err := matchday.ReadEvents(strings.NewReader(stream), func(matchday.Event) error {
				calls++
				return boom
			})

			Convey("Then reading stops with that error", func() {
				So(err, ShouldEqual, boom)
				So(calls, ShouldEqual, 1)
			})
		})
	})
}

func TestMoney(t *testing.T) {
	Convey("Given amounts in euros", t, func() {
		So(matchday.Money(5_000_000), ShouldEqual, "€5.00M")
		So(matchday.Money(4_250_000), ShouldEqual, "€4.25M")
		So(matchday.Money(750_000), ShouldEqual, "€750K")
	})
}

func TestClient(t *testing.T) {
	Convey("Given a client against a running server", t, func() {
		srv := startServer(t)
		ctx := context.Background()
		client := matchday.NewClient(srv.URL+"/", 5*time.Second)

		sess, err := client.Start(ctx, "Trabzonspor")
		So(err, ShouldBeNil)
		So(sess.ID, ShouldNotBeEmpty)
		So(sess.State.Team, ShouldNotBeNil)

		Convey("When the market is opened", func() {
			st, err := client.SetView(ctx, sess.ID, game.ViewTransfer)

			Convey("Then free agents are listed", func() {
				So(err, ShouldBeNil)
				So(st.View, ShouldEqual, game.ViewTransfer)
				So(st.Market, ShouldHaveLength, generator.MarketSize)
			})
		})

		Convey("When a request is rejected", func() {
			_, buyErr := client.Buy(ctx, sess.ID, "nobody")
			_, tacticErr := client.ChangeTactic(ctx, sess.ID, "1-1-8")
			_, finishErr := client.Finish(ctx, sess.ID)

			Convey("Then the API error carries status and code", func() {
				So(matchday.IsStatus(buyErr, http.StatusNotFound), ShouldBeTrue)
				So(matchday.IsStatus(tacticErr, http.StatusBadRequest), ShouldBeTrue)
				So(matchday.IsStatus(finishErr, http.StatusUnprocessableEntity), ShouldBeTrue)

				var apiErr *matchday.APIError
				So(errors.As(buyErr, &apiErr), ShouldBeTrue)
				So(apiErr.Code, ShouldEqual, "not_found")
			})
		})

		Convey("When nothing is queued", func() {
			_, err := client.WaitLive(ctx, sess.ID, time.Millisecond)

			Convey("Then waiting fails fast", func() {
				So(err, ShouldEqual, matchday.ErrNotQueued)
			})
		})

		Convey("When a match is played", func() {
			job, err := client.Advance(ctx, sess.ID)
			So(err, ShouldBeNil)
			So(job, ShouldNotBeEmpty)

			st, err := client.WaitLive(ctx, sess.ID, 5*time.Millisecond)
			So(err, ShouldBeNil)
			So(st.Match, ShouldNotBeNil)

			var updates []sequencer.Update
			watchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			err = client.Watch(watchCtx, sess.ID, func(u sequencer.Update) error {
				updates = append(updates, u)
				return nil
			})

			Convey("Then the stream runs to the end", func() {
				So(err, ShouldBeNil)
				So(len(updates), ShouldBeGreaterThan, 1)
				last := updates[len(updates)-1]
				So(last.Kind, ShouldEqual, sequencer.UpdateEnd)
				So(last.Frame.HomeScore, ShouldEqual, st.Match.HomeScore)
				So(last.Frame.AwayScore, ShouldEqual, st.Match.AwayScore)
			})

			Convey("Then finishing rolls the week over", func() {
				next, err := client.Finish(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(next.Match, ShouldBeNil)
				So(next.Team.Budget, ShouldEqual, st.Team.Budget+game.MatchIncome)
			})
		})

		Convey("When the career is quit", func() {
			So(client.Quit(ctx, sess.ID), ShouldBeNil)
			_, err := client.Session(ctx, sess.ID)

			Convey("Then it is gone", func() {
				So(matchday.IsStatus(err, http.StatusNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestSeason(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := startServer(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When two weeks are played", func() {
			var out bytes.Buffer
			stats, err := matchday.Season(ctx, &matchday.Config{
				BaseURL: srv.URL,
				Timeout: 5 * time.Second,
				Team:    "Galatasaray",
				Weeks:   2,
				Tactic:  "4-3-3",
				Poll:    5 * time.Millisecond,
			}, &out)

			Convey("Then both matches are tallied", func() {
				So(err, ShouldBeNil)
				So(stats.Played, ShouldEqual, 2)
				So(stats.Won+stats.Drawn+stats.Lost, ShouldEqual, 2)
				So(stats.Points(), ShouldEqual, stats.Won*3+stats.Drawn)
				So(strings.Count(out.String(), "full time"), ShouldEqual, 2)
				So(out.String(), ShouldContainSubstring, "4-3-3")
			})

			Convey("Then the career is removed afterwards", func() {
				_, err := matchday.NewClient(srv.URL, time.Second).Session(ctx, stats.SessionID)
				So(matchday.IsStatus(err, http.StatusNotFound), ShouldBeTrue)
			})
		})

		Convey("When a quiet season keeps the career", func() {
			var out bytes.Buffer
			stats, err := matchday.Season(ctx, &matchday.Config{
				BaseURL: srv.URL,
				Timeout: 5 * time.Second,
				Team:    "Altay",
				Weeks:   1,
				Buy:     true,
				Poll:    5 * time.Millisecond,
				Quiet:   true,
				Keep:    true,
			}, &out)

			Convey("Then no commentary is printed and the career survives", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldNotContainSubstring, "full time")
				sess, err := matchday.NewClient(srv.URL, time.Second).Session(ctx, stats.SessionID)
				So(err, ShouldBeNil)
				So(sess.State.Team.Players, ShouldHaveLength, 15+stats.Signed)
			})
		})

		Convey("When the server is unreachable", func() {
			_, err := matchday.Season(ctx, &matchday.Config{
				BaseURL: "http://127.0.0.1:1",
				Timeout: time.Second,
				Team:    "Altay",
				Weeks:   1,
			}, io.Discard)

			Convey("Then the health check fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
			})
		})
	})
}

func TestApp(t *testing.T) {
	Convey("Given the command line", t, func() {
		srv := startServer(t)
		ctx := context.Background()
		run := func(args ...string) (string, error) {
			var out bytes.Buffer
			err := matchday.App(&out).RunContext(ctx, append([]string{"matchday", "--url", srv.URL}, args...))
			return out.String(), err
		}

		Convey("When a career is started", func() {
			out, err := run("start", "Bursa", "Yıldızları")

			Convey("Then the session id and team are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "session: ")
				So(out, ShouldContainSubstring, "Bursa Yıldızları")
			})

			Convey("Then the market can be listed", func() {
				id := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(out, "session: "), "\n", 2)[0])
				listing, err := run("market", "--refresh", id)
				So(err, ShouldBeNil)
				So(listing, ShouldContainSubstring, "budget €5.00M")
			})
		})

		Convey("When arguments are missing", func() {
			_, err := run("buy", "only-session")

			Convey("Then a usage error is returned", func() {
				So(errors.Is(err, matchday.ErrUsage), ShouldBeTrue)
			})
		})

		Convey("When a quiet season is run", func() {
			out, err := run("season", "--team", "Sivasspor", "--weeks", "1", "--quiet", "--poll", "5ms")

			Convey("Then the tally is printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "points")
			})
		})
	})
}
