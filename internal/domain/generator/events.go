package generator

import (
	"fmt"
	"math/rand"

	"github.com/okian/kickoff/internal/domain/model"
)

const (
	proceduralEventCount = 15
	kickoffMinute        = 1
	finalMinute          = 90
)

type weightedType struct {
	t      model.EventType
	weight int
}

var eventMix = []weightedType{
	{model.EventAttack, 30},
	{model.EventDefense, 20},
	{model.EventMiss, 20},
	{model.EventGoal, 10},
	{model.EventCard, 10},
	{model.EventSub, 10},
}

var eventLines = map[model.EventType][]string{
	model.EventGoal: {
		"GOL! %s fileleri havalandırdı!",
		"%s ceza sahasında affetmedi, top ağlarda!",
	},
	model.EventMiss: {
		"%s çok net bir pozisyonu kaçırdı.",
		"%s şutu direğin yanından auta gitti.",
	},
	model.EventAttack: {
		"%s sağ kanattan tehlikeli geliyor.",
		"%s orta sahada topu çeviriyor, hücum organize ediliyor.",
	},
	model.EventDefense: {
		"%s savunması araya girdi.",
		"%s kalecisi kritik bir kurtarış yaptı.",
	},
	model.EventCard: {
		"%s oyuncusu sert müdahale sonrası sarı kart gördü.",
	},
	model.EventSub: {
		"%s oyuncu değişikliğine gidiyor.",
	},
}

// MatchEvents produces an offline event stream: kickoff, thirteen random
// moments and the final whistle, sorted by minute with coordinates.
func (g *Generator) MatchEvents(home, away model.Team) []model.MatchEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	events := make([]model.MatchEvent, 0, proceduralEventCount)
	events = append(events, model.MatchEvent{
		Minute:      kickoffMinute,
		Type:        model.EventComment,
		Description: fmt.Sprintf("%s - %s maçı başladı.", home.Name, away.Name),
		Side:        model.Neutral,
	})
	for i := 0; i < proceduralEventCount-2; i++ {
		t := g.pickType()
		side, team := model.Home, home
		if g.rng.Intn(2) == 1 {
			side, team = model.Away, away
		}
		events = append(events, model.MatchEvent{
			Minute:      kickoffMinute + 1 + g.rng.Intn(finalMinute-kickoffMinute-1),
			Type:        t,
			Description: fmt.Sprintf(pickString(g.rng, eventLines[t]), team.Name),
			Side:        side,
			TeamID:      team.ID,
		})
	}
	events = append(events, model.MatchEvent{
		Minute:      finalMinute,
		Type:        model.EventWhistle,
		Description: "Hakem maçı bitiren düdüğü çaldı.",
		Side:        model.Neutral,
	})

	for i := range events {
		c := place(g.rng, events[i])
		events[i].Coordinate = &c
	}
	model.SortEvents(events)
	return events
}

// Place returns the pitch coordinate for an event. Home attacks towards
// x=100; any non-home side is drawn mirrored.
func (g *Generator) Place(e model.MatchEvent) model.Coordinate {
	g.mu.Lock()
	defer g.mu.Unlock()
	return place(g.rng, e)
}

func place(rng *rand.Rand, e model.MatchEvent) model.Coordinate {
	missY := func() float64 {
		if rng.Float64() > 0.5 {
			return 40
		}
		return 60
	}
	wideY := func() float64 { return 20 + rng.Float64()*60 }

	if e.Side == model.Home {
		switch e.Type {
		case model.EventGoal:
			return model.Coordinate{X: 95, Y: 50}
		case model.EventMiss:
			return model.Coordinate{X: 90, Y: missY()}
		case model.EventAttack:
			return model.Coordinate{X: 70 + rng.Float64()*20, Y: wideY()}
		case model.EventDefense:
			return model.Coordinate{X: 20 + rng.Float64()*20, Y: wideY()}
		}
		return model.Center
	}
	switch e.Type {
	case model.EventGoal:
		return model.Coordinate{X: 5, Y: 50}
	case model.EventMiss:
		return model.Coordinate{X: 10, Y: missY()}
	case model.EventAttack:
		return model.Coordinate{X: 30 - rng.Float64()*20, Y: wideY()}
	case model.EventDefense:
		return model.Coordinate{X: 80 - rng.Float64()*20, Y: wideY()}
	}
	return model.Center
}

func (g *Generator) pickType() model.EventType {
	total := 0
	for _, w := range eventMix {
		total += w.weight
	}
	n := g.rng.Intn(total)
	for _, w := range eventMix {
		if n < w.weight {
			return w.t
		}
		n -= w.weight
	}
	return model.EventComment
}
