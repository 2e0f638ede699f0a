package model

import "time"

// Update sources.
const (
	SourceAPI      = "api"
	SourceChat     = "chat"
	SourceScenario = "scenario"
)

// MapUpdate is one request to replace the displayed batch.
// Payload is the wire shape {hexagonData, highlighted}; anything else is an
// empty update.
type MapUpdate struct {
	ID      string
	Source  string
	Payload any
}

// UpdateResult reports the outcome of a map update.
type UpdateResult struct {
	ID          string    `json:"id"`
	Applied     bool      `json:"applied"`
	Cells       int       `json:"cells"`
	Highlighted Highlight `json:"highlighted"`
	Version     uint64    `json:"version"`
	AppliedAt   time.Time `json:"appliedAt"`
}
