package content

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/kickoff/internal/domain/generator"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeModel struct {
	text string
	err  error
	last Request
}

func (f *fakeModel) Generate(_ context.Context, req Request) (string, error) {
	f.last = req
	return f.text, f.err
}

var (
	home = model.Team{ID: "gs", Name: "Galatasaray"}
	away = model.Team{ID: "opp-1", Name: "Göztepe"}
)

func TestCleanJSON(t *testing.T) {
	Convey("Given model answers in various wrappings", t, func() {
		So(CleanJSON(""), ShouldEqual, "{}")
		So(CleanJSON("```json\n{\"events\":[]}\n```"), ShouldEqual, `{"events":[]}`)
		So(CleanJSON("Here you go: {\"a\":{\"b\":1}} hope it helps"), ShouldEqual, `{"a":{"b":1}}`)
		So(CleanJSON("  no braces  "), ShouldEqual, "no braces")
		So(CleanJSON("} backwards {"), ShouldEqual, "} backwards {")
	})
}

func TestSimulateMatch(t *testing.T) {
	gen := generator.New(generator.WithSeed(9))

	Convey("Given a model returning fenced match json", t, func() {
		fm := &fakeModel{text: "```json\n" + `{"events":[
			{"minute":70,"type":"GOAL","description":"Gol!","side":"away"},
			{"minute":12,"type":"GOAL","description":"Gol!","side":"home"},
			{"minute":30,"type":"PENALTY","description":"?","side":"home"},
			{"minute":44,"type":"GOAL","description":"Kim attı?","side":"referee"},
			{"minute":20,"type":"attack","description":"Atak","side":"HOME"}
		]}` + "\n```"}
		c := NewCommentator(gen, WithModel(fm))

		Convey("When a match is simulated", func() {
			res, src := c.SimulateMatch(context.Background(), home, away)

			Convey("Then the content source is used and normalised", func() {
				So(src, ShouldEqual, SourceContent)
				So(res.Played, ShouldBeTrue)
				So(res.Events, ShouldHaveLength, 5)
				So(res.Events[0].Minute, ShouldEqual, 12)
				So(res.Events[1].Type, ShouldEqual, model.EventAttack)
				So(res.Events[1].Side, ShouldEqual, model.Home)
				So(res.Events[2].Type, ShouldEqual, model.EventComment)
				So(res.Events[3].Side, ShouldEqual, model.Neutral)
				So(res.Events[4].TeamID, ShouldEqual, "opp-1")
			})

			Convey("Then goals are counted per side only", func() {
				So(res.HomeScore, ShouldEqual, 1)
				So(res.AwayScore, ShouldEqual, 1)
			})

			Convey("Then every event has a coordinate", func() {
				for _, e := range res.Events {
					So(e.Coordinate, ShouldNotBeNil)
				}
				So(*res.Events[0].Coordinate, ShouldResemble, model.Coordinate{X: 95, Y: 50})
				So(*res.Events[4].Coordinate, ShouldResemble, model.Coordinate{X: 5, Y: 50})
			})

			Convey("Then the prompt asked for a json schema", func() {
				So(fm.last.Schema, ShouldEqual, matchSchema)
				So(fm.last.Prompt, ShouldContainSubstring, "Galatasaray vs Göztepe")
			})
		})
	})

	Convey("Given a model that fails", t, func() {
		c := NewCommentator(gen, WithModel(&fakeModel{err: errors.New("unavailable")}))
		res, src := c.SimulateMatch(context.Background(), home, away)

		Convey("Then the fixed fallback match is returned", func() {
			So(src, ShouldEqual, SourceFallback)
			So(res.HomeScore, ShouldEqual, 0)
			So(res.AwayScore, ShouldEqual, 0)
			So(res.Events, ShouldResemble, FallbackEvents())
			So(res.Events[0].Description, ShouldEqual, "Maç başladı.")
			So(res.Events[1].Type, ShouldEqual, model.EventWhistle)
		})
	})

	Convey("Given a model answering prose", t, func() {
		c := NewCommentator(gen, WithModel(&fakeModel{text: "Maç çok heyecanlıydı!"}))
		_, src := c.SimulateMatch(context.Background(), home, away)
		So(src, ShouldEqual, SourceFallback)
	})

	Convey("Given no model", t, func() {
		c := NewCommentator(gen)
		res, src := c.SimulateMatch(context.Background(), home, away)

		Convey("Then a procedural match is played", func() {
			So(c.Online(), ShouldBeFalse)
			So(src, ShouldEqual, SourceProcedural)
			So(res.Events, ShouldHaveLength, 15)
			h, a := model.CountGoals(res.Events)
			So(res.HomeScore, ShouldEqual, h)
			So(res.AwayScore, ShouldEqual, a)
		})
	})
}

func TestTacticalAdvice(t *testing.T) {
	gen := generator.New(generator.WithSeed(1))
	squad := gen.Squad("Galatasaray").Players

	Convey("Given a model with an answer", t, func() {
		fm := &fakeModel{text: "4-2-3-1 ile kanatlardan oyna."}
		c := NewCommentator(gen, WithModel(fm))

		Convey("Then the answer is returned for the first eleven", func() {
			So(c.TacticalAdvice(context.Background(), squad), ShouldEqual, "4-2-3-1 ile kanatlardan oyna.")
			So(fm.last.Schema, ShouldBeNil)
			So(fm.last.Prompt, ShouldContainSubstring, "Fernando Muslera (KL)")
			So(fm.last.Prompt, ShouldNotContainSubstring, squad[11].Name)
		})
	})

	Convey("Given an empty answer", t, func() {
		c := NewCommentator(gen, WithModel(&fakeModel{text: "  "}))
		So(c.TacticalAdvice(context.Background(), squad), ShouldEqual, AdviceDefault)
	})

	Convey("Given a failing model", t, func() {
		c := NewCommentator(gen, WithModel(&fakeModel{err: errors.New("quota")}))
		So(c.TacticalAdvice(context.Background(), squad), ShouldEqual, AdviceBusy)
	})

	Convey("Given no model", t, func() {
		So(NewCommentator(gen).TacticalAdvice(context.Background(), nil), ShouldEqual, AdviceBusy)
	})
}

func TestGeminiClient(t *testing.T) {
	Convey("Given a fake generateContent endpoint", t, func() {
		var gotPath, gotKey string
		var gotBody generateRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get(apiKeyHeader)
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			if gotKey != "secret" {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"bad key"}`))
				return
			}
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"events\":"},{"text":"[]}"}]}}]}`))
		}))
		defer srv.Close()

		Convey("When a schema request is sent", func() {
			c := NewGeminiClient("secret", WithBaseURL(srv.URL+"/"), WithModelName("test-model"))
			text, err := c.Generate(context.Background(), Request{Prompt: "hi", Schema: matchSchema})

			Convey("Then parts are joined and the request is well formed", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, `{"events":[]}`)
				So(gotPath, ShouldEqual, "/v1beta/models/test-model:generateContent")
				So(gotBody.Contents[0].Parts[0].Text, ShouldEqual, "hi")
				So(gotBody.GenerationConfig.ResponseMimeType, ShouldEqual, "application/json")
				So(gotBody.GenerationConfig.ResponseSchema.Type, ShouldEqual, TypeObject)
			})
		})

		Convey("When a free text request is sent", func() {
			c := NewGeminiClient("secret", WithBaseURL(srv.URL))
			_, err := c.Generate(context.Background(), Request{Prompt: "hi"})
			So(err, ShouldBeNil)
			So(gotBody.GenerationConfig, ShouldBeNil)
			So(gotPath, ShouldEqual, "/v1beta/models/"+DefaultModel+":generateContent")
		})

		Convey("When the key is rejected", func() {
			c := NewGeminiClient("wrong", WithBaseURL(srv.URL))
			_, err := c.Generate(context.Background(), Request{Prompt: "hi"})

			Convey("Then a status error is returned", func() {
				So(err, ShouldWrap, ErrStatus)
				So(err.Error(), ShouldContainSubstring, "403")
			})
		})
	})

	Convey("Given an endpoint with no candidates", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		_, err := NewGeminiClient("k", WithBaseURL(srv.URL)).Generate(context.Background(), Request{Prompt: "x"})
		So(err, ShouldEqual, ErrEmptyResponse)
	})
}
