// Package scenariorun drives a running server with generated map updates and
// checks what it ends up displaying.
package scenariorun

import (
	"time"

	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/domain/model"
)

// Config holds configuration for a scenario run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Scenario   mock.Scenario // Scenario to generate
	Style      mock.Style    // Selection style
	Seed       int64         // Generator seed, zero for time-based
	Rounds     int           // Number of updates to submit
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where to save the submitted payloads, empty to skip
	Verbose    bool          // Enable verbose logging
}

// Payload is the body of POST /api/map.
type Payload struct {
	HexagonData model.RawCells `json:"hexagonData"`
	Highlighted []string       `json:"highlighted"`
}

// UpdateResult is the answer to POST /api/map.
type UpdateResult struct {
	ID          string   `json:"id"`
	Applied     bool     `json:"applied"`
	Cells       int      `json:"cells"`
	Highlighted []string `json:"highlighted"`
	Version     uint64   `json:"version"`
}

// Snapshot is the answer to GET /api/map.
type Snapshot struct {
	Version   uint64   `json:"version"`
	Layer     string   `json:"layer"`
	Highlight []string `json:"highlighted"`
	Total     int      `json:"total"`
	Cells     []Cell   `json:"cells"`
}

// Cell is one rendered cell of a Snapshot.
type Cell struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Score     float64  `json:"score"`
	Value     float64  `json:"value"`
	Fill      [4]int   `json:"fill"`
	Elevation float64  `json:"elevation"`
	Tooltip   []string `json:"tooltip"`
}

// submission pairs a payload with the server's answer.
type submission struct {
	payload Payload
	result  UpdateResult
	err     error
}

// Stats holds run statistics.
type Stats struct {
	Submitted int
	Applied   int
	Rejected  int
	Failed    int
	Cells     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
