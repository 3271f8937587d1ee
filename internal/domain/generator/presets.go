package generator

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

type presetPlayer struct {
	Name     string `yaml:"name"`
	Position string `yaml:"position"`
	Age      int    `yaml:"age"`
	Nat      string `yaml:"nat"`
	Ovr      int    `yaml:"ovr"`
	Img      string `yaml:"img"`
}

// Preset is a hand-authored club roster.
type Preset struct {
	Key       string         `yaml:"key"`
	Aliases   []string       `yaml:"aliases"`
	Name      string         `yaml:"name"`
	Short     string         `yaml:"short"`
	Primary   string         `yaml:"primary"`
	Secondary string         `yaml:"secondary"`
	Players   []presetPlayer `yaml:"players"`
}

var presets = mustLoadPresets(presetsYAML)

func mustLoadPresets(data []byte) []Preset {
	p, err := parsePresets(data)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePresets(data []byte) ([]Preset, error) {
	var out []Preset
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPresets, err)
	}
	for _, p := range out {
		if p.Short == "" || len(p.Aliases) == 0 || len(p.Players) == 0 {
			return nil, fmt.Errorf("%w: preset %q is incomplete", ErrPresets, p.Key)
		}
	}
	return out, nil
}

// LookupPreset matches name case-insensitively against preset aliases.
// Presets are tried in file order; the first alias contained in the
// upper-cased name wins.
func LookupPreset(name string) (Preset, bool) {
	upper := strings.ToUpper(name)
	for _, p := range presets {
		for _, alias := range p.Aliases {
			if strings.Contains(upper, alias) {
				return p, true
			}
		}
	}
	return Preset{}, false
}
