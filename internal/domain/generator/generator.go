// Package generator builds squads, transfer listings, opponents and
// procedural match event streams.
//
// Every method is safe for concurrent use and never fails; callers treat
// generator output as always available.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/okian/kickoff/internal/domain/model"
)

// Squad and market shape.
const (
	MarketSize        = 8
	MarketClub        = "Serbest"
	marketPlaceholder = "Market"

	presetTactic      = "4-2-3-1"
	presetBudget      = 20_000_000
	proceduralTactic  = "4-4-2"
	proceduralBudget  = 5_000_000
	proceduralPrimary = "#334155"
	proceduralSecond  = "#ffffff"
	proceduralStat    = 10

	minAge       = 18
	ageSpan      = 18 // 18..35
	minOverall   = 10
	overallSpan  = 6 // 10..15
	marketBump   = 4 // +0..3
	foreignShare = 0.6
	fullFitness  = 100
)

// squadTemplate is the procedural slot layout: a 4-4-2 starting eleven
// followed by one bench player per role.
var squadTemplate = []model.Position{
	model.GK,
	model.DEF, model.DEF, model.DEF, model.DEF,
	model.MID, model.MID, model.MID, model.MID,
	model.FWD, model.FWD,
	model.GK, model.DEF, model.MID, model.FWD,
}

// Value prices a player from overall rating and age. The tier breakpoints
// are discontinuous at 10/14/16/18 on purpose.
func Value(overall, age int) int64 {
	var base int64 = 500_000
	if overall > 10 {
		base = 2_000_000
	}
	if overall > 14 {
		base = 8_000_000
	}
	if overall > 16 {
		base = 20_000_000
	}
	if overall > 18 {
		base = 50_000_000
	}
	switch {
	case age < 23:
		return base * 3 / 2
	case age > 32:
		return base * 6 / 10
	}
	return base
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generator reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // game randomness
	}
}

// WithIDFunc overrides the unique id source used for market and opponent ids.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// Generator produces teams and players.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	newID func() string
}

// New creates a Generator seeded from the clock unless WithSeed is given.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // game randomness
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Squad returns the preset roster matching name or a procedural squad.
func (g *Generator) Squad(name string) model.Team {
	if p, ok := LookupPreset(name); ok {
		return presetTeam(p)
	}

	g.mu.Lock()
	players := g.proceduralPlayers(name)
	g.mu.Unlock()

	return model.Team{
		ID:             slug(name),
		Name:           name,
		ShortName:      shortName(name),
		PrimaryColor:   proceduralPrimary,
		SecondaryColor: proceduralSecond,
		Players:        players,
		Tactic:         proceduralTactic,
		Budget:         proceduralBudget,
	}
}

// Market returns a fresh batch of unattached players, biased above average.
func (g *Generator) Market() []model.Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := g.proceduralPlayers(marketPlaceholder)[:MarketSize]
	for i := range players {
		p := &players[i]
		p.ID = "mkt-" + g.newID()
		p.Overall += g.rng.Intn(marketBump)
		p.Value = Value(p.Overall, p.Age)
		p.Club = MarketClub
	}
	return players
}

// Opponent picks a club from the fixed pool whose name is not part of exclude.
func (g *Generator) Opponent(exclude string) model.Team {
	g.mu.Lock()
	defer g.mu.Unlock()

	valid := make([]opponent, 0, len(opponentPool))
	for _, o := range opponentPool {
		if !strings.Contains(exclude, o.name) {
			valid = append(valid, o)
		}
	}
	if len(valid) == 0 {
		valid = opponentPool
	}
	pick := valid[g.rng.Intn(len(valid))]
	return model.Team{
		ID:             "opp-" + g.newID(),
		Name:           pick.name,
		ShortName:      pick.short,
		PrimaryColor:   pick.primary,
		SecondaryColor: pick.secondary,
		Players:        []model.Player{},
		Tactic:         proceduralTactic,
	}
}

// proceduralPlayers fills squadTemplate. Caller holds g.mu.
func (g *Generator) proceduralPlayers(teamName string) []model.Player {
	players := make([]model.Player, 0, len(squadTemplate))
	for i, pos := range squadTemplate {
		foreign := g.rng.Float64() > foreignShare
		var name, nat string
		if foreign {
			name = fmt.Sprintf("%s %c.", pickString(g.rng, foreignFirstNames), 'A'+rune(g.rng.Intn(26)))
			nat = "EU"
		} else {
			name = pickString(g.rng, domesticFirstNames) + " " + pickString(g.rng, domesticSurnames)
			nat = "TR"
		}
		age := minAge + g.rng.Intn(ageSpan)
		overall := minOverall + g.rng.Intn(overallSpan)
		players = append(players, model.Player{
			ID:          fmt.Sprintf("rnd-%s-%d", teamName, i),
			Name:        name,
			Position:    pos,
			Age:         age,
			Nationality: nat,
			Overall:     overall,
			Condition:   fullFitness,
			Value:       Value(overall, age), // priced at the drawn age, not a flat 25
			Stats:       model.Stats{Finishing: proceduralStat, Passing: proceduralStat, Tackling: proceduralStat, Pace: proceduralStat},
		})
	}
	return players
}

func presetTeam(p Preset) model.Team {
	players := make([]model.Player, len(p.Players))
	for i, pp := range p.Players {
		players[i] = model.Player{
			ID:          fmt.Sprintf("pre-%s-%d", p.Short, i),
			Name:        pp.Name,
			Position:    model.Position(pp.Position),
			Age:         pp.Age,
			Nationality: pp.Nat,
			Overall:     pp.Ovr,
			Condition:   fullFitness,
			Value:       Value(pp.Ovr, pp.Age),
			Image:       pp.Img,
			Stats:       model.Stats{Finishing: pp.Ovr, Passing: pp.Ovr, Tackling: pp.Ovr, Pace: pp.Ovr},
		}
	}
	return model.Team{
		ID:             strings.ToLower(p.Short),
		Name:           p.Name,
		ShortName:      p.Short,
		PrimaryColor:   p.Primary,
		SecondaryColor: p.Secondary,
		Players:        players,
		Tactic:         presetTactic,
		Budget:         presetBudget,
	}
}

func pickString(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

func slug(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, strings.ToLower(name))
}

func shortName(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}
