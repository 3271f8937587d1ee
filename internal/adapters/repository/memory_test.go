package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store", t, func() {
		s := NewMemoryStore(ctx)
		defer s.Close()

		So(s.Create(ctx, Session{ID: "s1", State: game.NewState()}), ShouldBeNil)

		Convey("Then sessions can be read back", func() {
			sess, err := s.Get(ctx, "s1")
			So(err, ShouldBeNil)
			So(sess.State.View, ShouldEqual, game.ViewMenu)
			So(sess.Created.IsZero(), ShouldBeFalse)
			So(s.Count(ctx), ShouldEqual, 1)
		})

		Convey("Then duplicate ids are rejected", func() {
			So(s.Create(ctx, Session{ID: "s1"}), ShouldEqual, ErrExists)
		})

		Convey("Then unknown ids are not found", func() {
			_, err := s.Get(ctx, "nope")
			So(err, ShouldEqual, ErrNotFound)
			_, err = s.Update(ctx, "nope", func(st game.State) (game.State, error) { return st, nil })
			So(err, ShouldEqual, ErrNotFound)
			So(s.Delete(ctx, "nope"), ShouldEqual, ErrNotFound)
		})

		Convey("When an update succeeds", func() {
			next, err := s.Update(ctx, "s1", func(st game.State) (game.State, error) {
				return st.StartGame(model.Team{ID: "gs"}, model.Team{ID: "ts"}), nil
			})

			Convey("Then the new state is stored", func() {
				So(err, ShouldBeNil)
				So(next.View, ShouldEqual, game.ViewDashboard)
				sess, _ := s.Get(ctx, "s1")
				So(sess.State.Team.ID, ShouldEqual, "gs")
			})
		})

		Convey("When an update fails", func() {
			boom := errors.New("rejected")
			_, err := s.Update(ctx, "s1", func(st game.State) (game.State, error) {
				return st.StartGame(model.Team{ID: "gs"}, model.Team{}), boom
			})

			Convey("Then the stored state is unchanged", func() {
				So(err, ShouldEqual, boom)
				sess, _ := s.Get(ctx, "s1")
				So(sess.State.Team, ShouldBeNil)
			})
		})

		Convey("When updates race on one session", func() {
			_, _ = s.Update(ctx, "s1", func(st game.State) (game.State, error) {
				return st.StartGame(model.Team{ID: "gs"}, model.Team{}), nil
			})
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = s.Update(ctx, "s1", func(st game.State) (game.State, error) {
						c, err := st.SetMarket(nil)
						c.Team = st.Team.Clone()
						c.Team.Budget++
						return c, err
					})
				}()
			}
			wg.Wait()

			Convey("Then none are lost", func() {
				sess, _ := s.Get(ctx, "s1")
				So(sess.State.Team.Budget, ShouldEqual, 50)
			})
		})

		Convey("When deleted", func() {
			So(s.Delete(ctx, "s1"), ShouldBeNil)
			So(s.Count(ctx), ShouldEqual, 0)
		})
	})

	Convey("Given a store with an idle ttl and a fake clock", t, func() {
		now := time.Date(2024, 8, 11, 12, 0, 0, 0, time.UTC)
		s := NewMemoryStore(ctx, WithIdleTTL(time.Hour), WithClock(func() time.Time { return now }))
		defer s.Close()

		for i := 0; i < 3; i++ {
			So(s.Create(ctx, Session{ID: fmt.Sprintf("s%d", i)}), ShouldBeNil)
		}
		now = now.Add(45 * time.Minute)
		_, _ = s.Update(ctx, "s0", func(st game.State) (game.State, error) { return st, nil })
		now = now.Add(30 * time.Minute)

		Convey("Then only idle sessions are swept", func() {
			So(s.Sweep(), ShouldEqual, 2)
			_, err := s.Get(ctx, "s0")
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a closed store", t, func() {
		s := NewMemoryStore(ctx, WithMetricsUpdateInterval(time.Millisecond))
		So(s.Close(), ShouldBeNil)
		So(s.Close(), ShouldBeNil)
		So(s.Create(ctx, Session{ID: "x"}), ShouldEqual, ErrClosed)
		_, err := s.Get(ctx, "x")
		So(err, ShouldEqual, ErrClosed)
	})
}
