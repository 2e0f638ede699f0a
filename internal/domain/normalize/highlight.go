package normalize

import (
	"sort"
	"strings"

	"github.com/okian/sitescope/internal/domain/model"
)

// Highlighted converts the highlighted field of a response into an ordered
// list of cell ids.
//
// An array keeps its order, dropping blanks, non-strings and repeats. An
// object of id -> weight is ordered by weight descending, then id ascending;
// entries without a finite numeric weight are dropped. Anything else yields
// an empty list.
func Highlighted(raw any) model.Highlight {
	switch v := raw.(type) {
	case []any:
		return fromList(v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return fromList(items)
	case map[string]any:
		return fromWeights(v)
	default:
		return model.Highlight{}
	}
}

func fromList(items []any) model.Highlight {
	out := make(model.Highlight, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id, ok := item.(string)
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type weighted struct {
	id     string
	weight float64
}

func fromWeights(m map[string]any) model.Highlight {
	entries := make([]weighted, 0, len(m))
	for id, raw := range m {
		if strings.TrimSpace(id) == "" {
			continue
		}
		w, ok := Number(raw)
		if !ok {
			continue
		}
		entries = append(entries, weighted{id: id, weight: w})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].id < entries[j].id
	})
	out := make(model.Highlight, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}
