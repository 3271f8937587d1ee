package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okian/kickoff/internal/domain/generator"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// Source records where a match's events came from.
type Source string

// Event sources.
const (
	SourceContent    Source = "content"
	SourceProcedural Source = "procedural"
	SourceFallback   Source = "fallback"
)

// Advice texts used when the model cannot help.
const (
	AdviceBusy    = "Analiz servisi yoğun."
	AdviceDefault = "Dengeli oyna."
)

const (
	matchPrompt = `Simulate football match: %s vs %s.
Generate 15 events (JSON).
Events must have: minute, type (GOAL, MISS, CARD, SUB, ATTACK, DEFENSE), description (Turkish), side (home/away).
Make it exciting.`

	advicePrompt = "Futbol taktik analisti ol. Şu oyuncular için: %s. En iyi diziliş ve oyun planını Türkçe, 2 kısa cümlede özetle."

	adviceStarters = 11
)

// matchSchema constrains the simulated match answer.
var matchSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"events": {
			Type: TypeArray,
			Items: &Schema{
				Type: TypeObject,
				Properties: map[string]*Schema{
					"minute":      {Type: TypeInteger},
					"type":        {Type: TypeString, Enum: []string{"GOAL", "MISS", "CARD", "SUB", "ATTACK", "DEFENSE"}},
					"description": {Type: TypeString},
					"side":        {Type: TypeString, Enum: []string{"home", "away"}},
				},
			},
		},
	},
}

// CommentatorOption configures a Commentator.
type CommentatorOption func(*Commentator)

// WithModel sets the text model. Without one the commentator runs offline
// on procedural match streams.
func WithModel(m Model) CommentatorOption {
	return func(c *Commentator) {
		c.model = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) CommentatorOption {
	return func(c *Commentator) {
		if l != nil {
			c.log = l
		}
	}
}

// Commentator turns fixtures into playable matches and squads into advice.
// Neither operation fails; errors are logged and replaced by local data.
type Commentator struct {
	model Model
	gen   *generator.Generator
	log   logger.Logger
}

// NewCommentator creates a commentator placing events with gen.
func NewCommentator(gen *generator.Generator, opts ...CommentatorOption) *Commentator {
	c := &Commentator{
		gen: gen,
		log: logger.Get().Named("content"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Online reports whether a model is configured.
func (c *Commentator) Online() bool {
	return c.model != nil
}

// SimulateMatch produces a played match between home and away.
func (c *Commentator) SimulateMatch(ctx context.Context, home, away model.Team) (model.MatchResult, Source) {
	if c.model == nil {
		return result(home, away, c.gen.MatchEvents(home, away)), SourceProcedural
	}

	start := time.Now()
	text, err := c.model.Generate(ctx, Request{
		Prompt: fmt.Sprintf(matchPrompt, home.Name, away.Name),
		Schema: matchSchema,
	})
	latency := float64(time.Since(start).Milliseconds())
	if err == nil {
		var events []model.MatchEvent
		events, err = c.parseEvents(text, home, away)
		if err == nil {
			metrics.RecordContentRequest("match", "ok", latency)
			return result(home, away, events), SourceContent
		}
	}

	metrics.RecordContentRequest("match", "error", latency)
	c.log.Warn(ctx, "match simulation fell back",
		logger.String("home", home.Name),
		logger.String("away", away.Name),
		logger.Error(err))
	return result(home, away, FallbackEvents()), SourceFallback
}

// TacticalAdvice asks for a short game plan for the starting eleven.
func (c *Commentator) TacticalAdvice(ctx context.Context, players []model.Player) string {
	if c.model == nil {
		return AdviceBusy
	}
	n := min(len(players), adviceStarters)
	names := make([]string, 0, n)
	for _, p := range players[:n] {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Position))
	}

	start := time.Now()
	text, err := c.model.Generate(ctx, Request{Prompt: fmt.Sprintf(advicePrompt, strings.Join(names, ", "))})
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordContentRequest("advice", "error", latency)
		c.log.Warn(ctx, "tactical advice unavailable", logger.Error(err))
		return AdviceBusy
	}
	metrics.RecordContentRequest("advice", "ok", latency)
	if strings.TrimSpace(text) == "" {
		return AdviceDefault
	}
	return text
}

type rawEvent struct {
	Minute      int    `json:"minute"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Side        string `json:"side"`
}

// parseEvents decodes a model answer into placed, ordered events. Unknown
// types become commentary and unknown sides neutral.
func (c *Commentator) parseEvents(text string, home, away model.Team) ([]model.MatchEvent, error) {
	var payload struct {
		Events []rawEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	events := make([]model.MatchEvent, 0, len(payload.Events))
	for _, r := range payload.Events {
		e := model.MatchEvent{
			Minute:      r.Minute,
			Type:        model.EventType(strings.ToUpper(strings.TrimSpace(r.Type))),
			Description: r.Description,
			Side:        model.Side(strings.ToLower(strings.TrimSpace(r.Side))),
		}
		if !e.Type.Valid() {
			e.Type = model.EventComment
		}
		switch e.Side {
		case model.Home:
			e.TeamID = home.ID
		case model.Away:
			e.TeamID = away.ID
		default:
			e.Side = model.Neutral
		}
		coord := c.gen.Place(e)
		e.Coordinate = &coord
		events = append(events, e)
	}
	model.SortEvents(events)
	return events, nil
}

// CleanJSON strips markdown code fences and trims text to the outermost
// braces. Empty input yields "{}".
func CleanJSON(text string) string {
	if text == "" {
		return "{}"
	}
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}
	return strings.TrimSpace(cleaned)
}

// FallbackEvents is the fixed two-line match used when the content API
// cannot be reached or understood.
func FallbackEvents() []model.MatchEvent {
	return []model.MatchEvent{
		{Minute: 1, Type: model.EventComment, Description: "Maç başladı.", Side: model.Neutral, Coordinate: &model.Coordinate{X: 50, Y: 50}},
		{Minute: 90, Type: model.EventWhistle, Description: "Maç sona erdi (Bağlantı sorunu).", Side: model.Neutral, Coordinate: &model.Coordinate{X: 50, Y: 50}},
	}
}

func result(home, away model.Team, events []model.MatchEvent) model.MatchResult {
	h, a := model.CountGoals(events)
	return model.MatchResult{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: h,
		AwayScore: a,
		Events:    events,
		Played:    true,
	}
}
