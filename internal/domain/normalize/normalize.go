// Package normalize turns loosely typed cell payloads into validated batches.
package normalize

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithPrecision overrides or adds auxiliary fields and their decimals.
func WithPrecision(fields map[string]int) Option {
	return func(n *Normalizer) {
		for name, digits := range fields {
			if name == "" || name == "score" || name == "opposition" || digits < 0 {
				continue
			}
			n.fields[name] = digits
		}
	}
}

// WithLogger sets the logger used to report dropped entries.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// Normalizer validates and rounds raw cell records. It holds no mutable state
// after construction and is safe for concurrent use.
type Normalizer struct {
	fields map[string]int
	logger logger.Logger
}

// New creates a Normalizer with the default field table.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{fields: DefaultFields()}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logger.Named("normalize")
	}
	return n
}

// Fields returns a copy of the recognized auxiliary fields.
func (n *Normalizer) Fields() map[string]int {
	out := make(map[string]int, len(n.fields))
	for k, v := range n.fields {
		out[k] = v
	}
	return out
}

// Normalize validates raw and returns the surviving cells. Nil, empty and
// non-object input all yield an empty batch. Invalid entries are dropped
// individually and never reject the whole payload.
func (n *Normalizer) Normalize(ctx context.Context, raw any) model.Batch {
	entries, ok := raw.(map[string]any)
	if !ok {
		if raw != nil {
			n.logger.Warn(ctx, "cell payload is not an object; treating as empty")
		}
		return model.Batch{}
	}

	batch := make(model.Batch, len(entries))
	for id, value := range entries {
		cell, reason := n.cell(id, value)
		if reason != "" {
			metrics.RecordCellDropped(reason)
			n.logger.Warn(ctx, "dropping invalid cell",
				logger.String("id", id),
				logger.String("reason", reason),
			)
			continue
		}
		metrics.RecordCellNormalized()
		batch[cell.ID] = cell
	}
	return batch
}

// NormalizeJSON decodes data and normalizes it. Undecodable input yields an
// empty batch.
func (n *Normalizer) NormalizeJSON(ctx context.Context, data []byte) model.Batch {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		n.logger.Warn(ctx, "cell payload is not valid JSON; treating as empty", logger.Error(err))
		return model.Batch{}
	}
	return n.Normalize(ctx, raw)
}

func (n *Normalizer) cell(id string, value any) (model.Cell, string) {
	if strings.TrimSpace(id) == "" {
		return model.Cell{}, reasonEmptyID
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return model.Cell{}, reasonNotObject
	}
	rawScore, ok := fields["score"]
	if !ok || rawScore == nil {
		return model.Cell{}, reasonMissingScore
	}
	score, ok := Number(rawScore)
	if !ok {
		return model.Cell{}, reasonBadScore
	}

	cell := model.Cell{
		ID:    id,
		Score: Round(Clamp(score, 0, 1), scorePrecision),
	}
	for name, digits := range n.fields {
		v, ok := Number(fields[name])
		if !ok {
			continue
		}
		if cell.Aux == nil {
			cell.Aux = make(map[string]float64)
		}
		cell.Aux[name] = Round(v, digits)
	}
	if s, ok := fields["opposition"].(string); ok {
		if o := model.Opposition(s); o.Valid() {
			cell.Opposition = o
		}
	}
	return cell, ""
}
