package backend

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

const (
	defaultMockDelayMin = 800 * time.Millisecond
	defaultMockDelayMax = 2000 * time.Millisecond
	backendLabelMock    = "mock"
)

var (
	goodKeywords     = []string{"good", "best", "ideal", "optimal", "recommend"}
	badKeywords      = []string{"bad", "worst", "avoid", "poor", "risky"}
	researchKeywords = []string{"research", "study", "compare", "overview"}
)

// MockOption applies a configuration option to the MockResponder.
type MockOption func(*MockResponder)

// WithDelay sets the simulated processing delay range.
func WithDelay(minDelay, maxDelay time.Duration) MockOption {
	return func(m *MockResponder) {
		if minDelay >= 0 && maxDelay >= minDelay {
			m.minDelay = minDelay
			m.maxDelay = maxDelay
		}
	}
}

// WithGenerator sets the cell generator.
func WithGenerator(g *mock.Generator) MockOption {
	return func(m *MockResponder) {
		if g != nil {
			m.gen = g
		}
	}
}

// WithDelaySource sets the random source used for delays.
func WithDelaySource(r *rand.Rand) MockOption {
	return func(m *MockResponder) {
		if r != nil {
			m.rnd = r
		}
	}
}

// WithMockLogger sets the logger.
func WithMockLogger(l logger.Logger) MockOption {
	return func(m *MockResponder) {
		if l != nil {
			m.logger = l
		}
	}
}

// MockResponder answers locally with generated data after a simulated delay.
type MockResponder struct {
	gen      *mock.Generator
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand

	logger logger.Logger
}

// NewMockResponder creates a MockResponder.
func NewMockResponder(opts ...MockOption) *MockResponder {
	m := &MockResponder{
		minDelay: defaultMockDelayMin,
		maxDelay: defaultMockDelayMax,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.gen == nil {
		m.gen = mock.NewGenerator()
	}
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- simulated latency
	}
	if m.logger == nil {
		m.logger = logger.Named("backend-mock")
	}
	return m
}

// Respond waits for the simulated delay, then answers from the generator.
// It returns ctx.Err() when ctx ends first.
func (m *MockResponder) Respond(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	start := time.Now()
	timer := time.NewTimer(m.delay())
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		metrics.RecordBackendRequest(backendLabelMock, "cancelled")
		return model.ChatResponse{}, ctx.Err()
	}

	scenario := DetectScenario(req.Message)
	style := DetectStyle(req.Message)
	res := m.gen.Run(scenario, style)

	resp := model.ChatResponse{
		Response:    m.markdown(res),
		HexagonData: map[string]any(res.Raw),
		Highlighted: highlightWire(res),
	}
	metrics.RecordBackendRequest(backendLabelMock, "ok")
	metrics.RecordBackendLatency(backendLabelMock, float64(time.Since(start).Milliseconds()))
	m.logger.Debug(ctx, "mock answer generated",
		logger.String("scenario", string(scenario)),
		logger.String("style", string(style)),
		logger.Int("cells", res.Batch.Len()),
	)
	return resp, nil
}

func (m *MockResponder) delay() time.Duration {
	if m.maxDelay <= m.minDelay {
		return m.minDelay
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minDelay + time.Duration(m.rnd.Int63n(int64(m.maxDelay-m.minDelay)+1))
}

// DetectScenario picks a scenario from keywords in message. Messages without
// a keyword get the mixed scenario.
func DetectScenario(message string) mock.Scenario {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, badKeywords):
		return mock.ScenarioBad
	case containsAny(msg, goodKeywords):
		return mock.ScenarioGood
	}
	return mock.ScenarioMixed
}

// DetectStyle returns StyleResearch when the message asks for research.
func DetectStyle(message string) mock.Style {
	if containsAny(strings.ToLower(message), researchKeywords) {
		return mock.StyleResearch
	}
	return mock.StyleAnalyze
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// highlightWire encodes highlights as an id list for analyze answers and as
// an id -> score map for research answers.
func highlightWire(res mock.Result) any {
	if res.Style == mock.StyleResearch {
		weights := make(map[string]any, len(res.Highlighted))
		for _, id := range res.Highlighted {
			weights[id] = res.Batch[id].Score
		}
		return weights
	}
	ids := make([]any, len(res.Highlighted))
	for i, id := range res.Highlighted {
		ids[i] = id
	}
	return ids
}

var scenarioIntro = map[mock.Scenario]string{
	mock.ScenarioGood:  "These areas combine a cool climate, short grid connections and fast fiber.",
	mock.ScenarioBad:   "These areas are hard to recommend: hot summers, distant substations and slow links.",
	mock.ScenarioMixed: "The picture is mixed; some areas stand out while others have clear drawbacks.",
}

func (m *MockResponder) markdown(res mock.Result) string {
	var b strings.Builder
	if res.Style == mock.StyleResearch {
		b.WriteString("## Research summary\n\n")
	} else {
		b.WriteString("## Site analysis\n\n")
	}
	b.WriteString(scenarioIntro[res.Scenario])
	b.WriteString("\n\n| Region | Score | Temp (°C) | Grid (km) | Fiber (Mbps) |\n|---|---|---|---|---|\n")
	for _, id := range res.Order {
		c := res.Batch[id]
		name, ok := m.gen.Catalog().Name(id)
		if !ok {
			name = id
		}
		fmt.Fprintf(&b, "| %s | %.2f | %.1f | %.1f | %.0f |\n",
			name, c.Score, c.Aux["avgTemp"], c.Aux["gridDistance"], c.Aux["internetSpeed"])
	}
	if len(res.Highlighted) > 0 {
		b.WriteString("\n**Highlighted:** ")
		names := make([]string, len(res.Highlighted))
		for i, id := range res.Highlighted {
			if n, ok := m.gen.Catalog().Name(id); ok {
				names[i] = n
			} else {
				names[i] = id
			}
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
