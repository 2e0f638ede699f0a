// Package model contains domain models passed between layers.
package model

import "sort"

// RawCells is a decoded hexagonData payload: cell id -> loosely typed fields.
type RawCells = map[string]any

// Opposition is the local opposition level attached to a cell.
type Opposition string

// Known opposition levels.
const (
	OppositionLow    Opposition = "low"
	OppositionMedium Opposition = "medium"
	OppositionHigh   Opposition = "high"
)

// Valid reports whether o is one of the known levels.
func (o Opposition) Valid() bool {
	switch o {
	case OppositionLow, OppositionMedium, OppositionHigh:
		return true
	}
	return false
}

// Cell is a validated, rounded cell record.
// Score is always within [0, 1]. Aux only holds fields whose source value was a
// finite number; a missing key and a zero value mean different things.
type Cell struct {
	ID         string             `json:"id"`
	Score      float64            `json:"score"`
	Aux        map[string]float64 `json:"aux,omitempty"`
	Opposition Opposition         `json:"opposition,omitempty"`
}

// Value returns the named field. "score" resolves to Score.
func (c Cell) Value(field string) (float64, bool) {
	if field == "score" {
		return c.Score, true
	}
	v, ok := c.Aux[field]
	return v, ok
}

// Batch is the full set of normalized cells, keyed by id.
type Batch map[string]Cell

// NewBatch builds a batch from cells. Later duplicates replace earlier ones.
func NewBatch(cells ...Cell) Batch {
	b := make(Batch, len(cells))
	for _, c := range cells {
		b[c.ID] = c
	}
	return b
}

// Len returns the number of cells.
func (b Batch) Len() int { return len(b) }

// Get returns the cell with the given id.
func (b Batch) Get(id string) (Cell, bool) {
	c, ok := b[id]
	return c, ok
}

// IDs returns the cell ids in ascending order.
func (b Batch) IDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cells returns the cells ordered by id.
func (b Batch) Cells() []Cell {
	out := make([]Cell, 0, len(b))
	for _, id := range b.IDs() {
		out = append(out, b[id])
	}
	return out
}

// Raw converts the batch back to the wire shape accepted by the map update
// entry point.
func (b Batch) Raw() RawCells {
	raw := make(RawCells, len(b))
	for id, c := range b {
		fields := make(map[string]any, len(c.Aux)+2)
		fields["score"] = c.Score
		for k, v := range c.Aux {
			fields[k] = v
		}
		if c.Opposition != "" {
			fields["opposition"] = string(c.Opposition)
		}
		raw[id] = fields
	}
	return raw
}

// Highlight is an ordered set of cell ids drawn with emphasis.
type Highlight []string

// Contains reports whether id is highlighted.
func (h Highlight) Contains(id string) bool {
	for _, v := range h {
		if v == id {
			return true
		}
	}
	return false
}
