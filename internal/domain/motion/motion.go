// Package motion computes cosmetic marker positions that drift with the ball.
package motion

import (
	"math/rand"

	"github.com/okian/kickoff/internal/domain/model"
)

// Point is a marker position on the 0-100 pitch grid.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is a formation slot.
type Marker struct {
	Role model.Position
	Base Point
}

const (
	defaultXFactor = 0.5
	defaultYFactor = 0.2
	minY           = 5
	maxY           = 95
)

type zone struct {
	xFactor, yFactor float64
	minX, maxX       float64
}

var homeZones = map[model.Position]zone{
	model.GK:  {xFactor: 0.05, yFactor: 0.1, minX: 1, maxX: 10},
	model.DEF: {xFactor: 0.3, yFactor: defaultYFactor, minX: 10, maxX: 60},
	model.MID: {xFactor: 0.5, yFactor: defaultYFactor, minX: 30, maxX: 80},
	model.FWD: {xFactor: 0.7, yFactor: defaultYFactor, minX: 50, maxX: 95},
}

var awayZones = map[model.Position]zone{
	model.GK:  {xFactor: 0.05, yFactor: 0.1, minX: 90, maxX: 99},
	model.DEF: {xFactor: 0.3, yFactor: defaultYFactor, minX: 40, maxX: 90},
	model.MID: {xFactor: 0.5, yFactor: defaultYFactor, minX: 20, maxX: 70},
	model.FWD: {xFactor: 0.7, yFactor: defaultYFactor, minX: 5, maxX: 50},
}

// HomeFormation is a 4-4-2 attacking left to right.
var HomeFormation = []Marker{
	{model.GK, Point{5, 50}},
	{model.DEF, Point{20, 20}}, {model.DEF, Point{20, 40}}, {model.DEF, Point{20, 60}}, {model.DEF, Point{20, 80}},
	{model.MID, Point{45, 20}}, {model.MID, Point{45, 40}}, {model.MID, Point{45, 60}}, {model.MID, Point{45, 80}},
	{model.FWD, Point{70, 40}}, {model.FWD, Point{70, 60}},
}

// AwayFormation is a 4-4-2 attacking right to left.
var AwayFormation = []Marker{
	{model.GK, Point{95, 50}},
	{model.DEF, Point{80, 20}}, {model.DEF, Point{80, 40}}, {model.DEF, Point{80, 60}}, {model.DEF, Point{80, 80}},
	{model.MID, Point{55, 20}}, {model.MID, Point{55, 40}}, {model.MID, Point{55, 60}}, {model.MID, Point{55, 80}},
	{model.FWD, Point{30, 40}}, {model.FWD, Point{30, 60}},
}

// Position shifts base towards the ball by the role's follow factors, clamps
// the result into the role's zone and adds jitter. Unknown roles follow the
// ball freely across the pitch width.
func Position(base Point, ball model.Coordinate, role model.Position, side model.Side, jitter Point) Point {
	zones := homeZones
	if side != model.Home {
		zones = awayZones
	}
	z, ok := zones[role]
	if !ok {
		z = zone{xFactor: defaultXFactor, yFactor: defaultYFactor, minX: 0, maxX: 100}
	}

	x := clamp(base.X+(ball.X-50)*z.xFactor, z.minX, z.maxX)
	y := clamp(base.Y+(ball.Y-50)*z.yFactor, minY, maxY)
	return Point{X: x + jitter.X, Y: y + jitter.Y}
}

// Layout positions both formations, home first. jitter is indexed the same
// way; missing entries mean no jitter.
func Layout(ball model.Coordinate, jitter []Point) []Point {
	out := make([]Point, 0, len(HomeFormation)+len(AwayFormation))
	i := 0
	place := func(formation []Marker, side model.Side) {
		for _, m := range formation {
			var j Point
			if i < len(jitter) {
				j = jitter[i]
			}
			out = append(out, Position(m.Base, ball, m.Role, side, j))
			i++
		}
	}
	place(HomeFormation, model.Home)
	place(AwayFormation, model.Away)
	return out
}

// Markers is the number of entries Layout returns.
func Markers() int {
	return len(HomeFormation) + len(AwayFormation)
}

// SampleJitter draws n offsets uniformly from [-1, 1) on each axis.
func SampleJitter(rng *rand.Rand, n int) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = Point{X: (rng.Float64() - 0.5) * 2, Y: (rng.Float64() - 0.5) * 2}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
