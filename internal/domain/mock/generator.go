// Package mock generates plausible cell batches for demos and tests.
package mock

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/normalize"
	"github.com/okian/sitescope/pkg/metrics"
)

// Selection bounds for analyze-style answers.
const (
	minAnalyzeRegions = 6
	maxAnalyzeRegions = 12
	maxHighlighted    = 3
)

// Sub-score scales.
const (
	internetSpeedScale     = 1000.0
	gridDistanceScale      = 15.0
	nbGridConnectionsScale = 5.0
	avgTempBase            = 5.0
	avgTempScale           = 25.0
)

// Result is one generated answer.
type Result struct {
	Scenario Scenario
	Style    Style
	// Batch holds the generated cells, rounded like normalized input.
	Batch model.Batch
	// Order lists cell ids in generation order.
	Order       []string
	Highlighted model.Highlight
	// Raw is the wire form accepted by the map update entry point.
	Raw model.RawCells
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewSource(seed)) // #nosec G404 -- demo data
	}
}

// WithRand injects the random source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rnd = r
		}
	}
}

// WithCatalog replaces the embedded region pool.
func WithCatalog(c *Catalog) Option {
	return func(g *Generator) {
		if c != nil {
			g.catalog = c
		}
	}
}

// Generator produces mock batches. It is safe for concurrent use; calls are
// serialized around the random source.
type Generator struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	catalog *Catalog
	fields  map[string]int
}

// NewGenerator creates a Generator. Without WithSeed or WithRand the source is
// seeded from the clock.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{fields: normalize.DefaultFields()}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- demo data
	}
	if g.catalog == nil {
		g.catalog = DefaultCatalog()
	}
	return g
}

// Catalog returns the region pool used by the generator.
func (g *Generator) Catalog() *Catalog { return g.catalog }

// Run generates an answer in the given style.
func (g *Generator) Run(scenario Scenario, style Style) Result {
	if style == StyleResearch {
		return g.Research(scenario)
	}
	return g.Generate(scenario)
}

// Generate draws 6 to 12 random regions and fills them for scenario.
func (g *Generator) Generate(scenario Scenario) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	pool := g.catalog.regions
	n := minAnalyzeRegions + g.rnd.Intn(maxAnalyzeRegions-minAnalyzeRegions+1)
	if n > len(pool) {
		n = len(pool)
	}
	perm := g.rnd.Perm(len(pool))
	picked := make([]Region, n)
	for i := 0; i < n; i++ {
		picked[i] = pool[perm[i]]
	}
	return g.fill(scenario, StyleAnalyze, picked)
}

// Research fills the curated research set for scenario.
func (g *Generator) Research(scenario Scenario) Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fill(scenario, StyleResearch, g.catalog.research)
}

func (g *Generator) fill(scenario Scenario, style Style, regions []Region) Result {
	p, ok := profiles[scenario]
	if !ok {
		p = profiles[ScenarioMixed]
		scenario = ScenarioMixed
	}
	metrics.RecordMockScenario(string(scenario), string(style))

	res := Result{
		Scenario:    scenario,
		Style:       style,
		Batch:       make(model.Batch, len(regions)),
		Order:       make([]string, 0, len(regions)),
		Highlighted: model.Highlight{},
	}
	for _, r := range regions {
		cell := g.cell(r.ID, p)
		res.Batch[cell.ID] = cell
		res.Order = append(res.Order, cell.ID)
		if p.highlightAbove > 0 && cell.Score > p.highlightAbove && len(res.Highlighted) < maxHighlighted {
			res.Highlighted = append(res.Highlighted, cell.ID)
		}
	}
	res.Raw = res.Batch.Raw()
	return res
}

func (g *Generator) cell(id string, p profile) model.Cell {
	avgTemp := g.round("avgTemp", g.uniform(p.avgTemp))
	gridDistance := g.round("gridDistance", g.uniform(p.gridDistance))
	internetSpeed := g.round("internetSpeed", g.uniform(p.internetSpeed))
	connections := float64(p.nbGridConnections.min + g.rnd.Intn(p.nbGridConnections.max-p.nbGridConnections.min+1))

	return model.Cell{
		ID:    id,
		Score: normalize.Round(g.uniform(p.score), 2),
		Aux: map[string]float64{
			"avgTemp":               avgTemp,
			"gridDistance":          gridDistance,
			"internetSpeed":         internetSpeed,
			"nbGridConnections":     connections,
			"internetSpeedNorm":     g.round("internetSpeedNorm", math.Min(internetSpeed/internetSpeedScale, 1)),
			"gridDistanceNorm":      g.round("gridDistanceNorm", math.Max(0, 1-gridDistance/gridDistanceScale)),
			"nbGridConnectionsNorm": g.round("nbGridConnectionsNorm", math.Min(connections/nbGridConnectionsScale, 1)),
			"avgTempNorm":           g.round("avgTempNorm", math.Max(0, 1-(avgTemp-avgTempBase)/avgTempScale)),
		},
		Opposition: p.opposition(g.rnd.Float64()),
	}
}

func (g *Generator) uniform(s span) float64 {
	return s.min + g.rnd.Float64()*(s.max-s.min)
}

func (g *Generator) round(field string, v float64) float64 {
	return normalize.Round(v, g.fields[field])
}
