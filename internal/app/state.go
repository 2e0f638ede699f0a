package service

import (
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/visual"
)

// State is what the map currently displays. It only changes through
// Transition and SetLayer.
type State struct {
	Batch     model.Batch
	Layer     visual.Layer
	Highlight model.Highlight
	Version   uint64
}

// InitialState is the empty map on layer.
func InitialState(layer visual.Layer) State {
	if layer == "" {
		layer = visual.DefaultLayer
	}
	return State{Batch: model.Batch{}, Layer: layer, Highlight: model.Highlight{}}
}

// Transition returns the state that displays batch after prev. The batch
// replaces the previous one whole; highlighted ids missing from batch are
// dropped and the layer is carried over.
func Transition(prev State, batch model.Batch, highlight model.Highlight) State {
	if batch == nil {
		batch = model.Batch{}
	}
	hl := make(model.Highlight, 0, len(highlight))
	for _, id := range highlight {
		if _, ok := batch[id]; ok && !hl.Contains(id) {
			hl = append(hl, id)
		}
	}
	return State{
		Batch:     batch,
		Layer:     prev.Layer,
		Highlight: hl,
		Version:   prev.Version + 1,
	}
}
