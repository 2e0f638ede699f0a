package mock

import (
	"fmt"
	"strings"

	"github.com/okian/sitescope/internal/domain/model"
)

// Scenario selects the value ranges used for generated cells.
type Scenario string

// Known scenarios.
const (
	ScenarioGood  Scenario = "good"
	ScenarioBad   Scenario = "bad"
	ScenarioMixed Scenario = "mixed"
)

// Style selects how many regions a generated answer covers.
type Style string

// Known styles.
const (
	// StyleAnalyze draws a random subset of the pool.
	StyleAnalyze Style = "analyze"
	// StyleResearch uses the curated research set.
	StyleResearch Style = "research"
)

// ParseScenario validates a scenario name.
func ParseScenario(name string) (Scenario, error) {
	switch s := Scenario(strings.ToLower(strings.TrimSpace(name))); s {
	case ScenarioGood, ScenarioBad, ScenarioMixed:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScenario, name)
}

// ParseStyle validates a style name. Blank selects StyleAnalyze.
func ParseStyle(name string) (Style, error) {
	switch s := Style(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return StyleAnalyze, nil
	case StyleAnalyze, StyleResearch:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStyle, name)
}

// Scenarios returns the known scenarios.
func Scenarios() []Scenario {
	return []Scenario{ScenarioGood, ScenarioBad, ScenarioMixed}
}

type span struct{ min, max float64 }

type intSpan struct{ min, max int }

type profile struct {
	score             span
	avgTemp           span
	gridDistance      span
	internetSpeed     span
	nbGridConnections intSpan
	// highlightAbove is the score a cell must exceed to be highlighted;
	// zero disables highlighting.
	highlightAbove float64
	opposition     func(r float64) model.Opposition
}

var profiles = map[Scenario]profile{
	ScenarioGood: {
		score:             span{0.6, 1.0},
		avgTemp:           span{8, 13},
		gridDistance:      span{0.5, 2.5},
		internetSpeed:     span{800, 1000},
		nbGridConnections: intSpan{3, 5},
		highlightAbove:    0.8,
		opposition: func(r float64) model.Opposition {
			if r < 0.7 {
				return model.OppositionLow
			}
			return model.OppositionMedium
		},
	},
	ScenarioBad: {
		score:             span{0.0, 0.4},
		avgTemp:           span{20, 30},
		gridDistance:      span{5, 13},
		internetSpeed:     span{100, 300},
		nbGridConnections: intSpan{1, 2},
		opposition: func(r float64) model.Opposition {
			if r < 0.3 {
				return model.OppositionMedium
			}
			return model.OppositionHigh
		},
	},
	ScenarioMixed: {
		score:             span{0.0, 1.0},
		avgTemp:           span{8, 23},
		gridDistance:      span{0, 10},
		internetSpeed:     span{200, 900},
		nbGridConnections: intSpan{1, 4},
		highlightAbove:    0.7,
		opposition: func(r float64) model.Opposition {
			switch {
			case r < 1.0/3:
				return model.OppositionLow
			case r < 2.0/3:
				return model.OppositionMedium
			}
			return model.OppositionHigh
		},
	},
}

// ScoreRange returns the bounds generated scores of scenario fall within.
func ScoreRange(scenario Scenario) (lo, hi float64) {
	p, ok := profiles[scenario]
	if !ok {
		p = profiles[ScenarioMixed]
	}
	return p.score.min, p.score.max
}
