package visual

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"github.com/okian/sitescope/internal/domain/model"
)

// CellStyle is the derived presentation of one cell on one layer.
type CellStyle struct {
	ID        string
	Value     float64
	Fill      color.RGBA
	Outline   color.RGBA
	Elevation float64
	Tooltip   []string
}

// Style derives the presentation of cell on layer. It reports false when the
// cell has no value for the layer's field.
func Style(cell model.Cell, layer Layer) (CellStyle, bool) {
	v, ok := cell.Value(layer.Field())
	if !ok {
		return CellStyle{}, false
	}
	return CellStyle{
		ID:        cell.ID,
		Value:     v,
		Fill:      ColorFor(v),
		Outline:   OutlineFor(v),
		Elevation: ElevationFor(v),
		Tooltip:   Tooltip(cell, ""),
	}, true
}

type auxLabel struct {
	field string
	label string
	unit  string
}

// tooltip order for known fields; unknown fields follow sorted by name
var auxLabels = []auxLabel{
	{"avgTemp", "Avg temperature", "°C"},
	{"avg_temperature", "Avg temperature", "°C"},
	{"gridDistance", "Grid distance", "km"},
	{"internetSpeed", "Internet speed", "Mbps"},
	{"latency_ms", "Latency", "ms"},
	{"nbGridConnections", "Grid connections", ""},
	{"connection_points", "Connection points", ""},
	{"avgTempNorm", "Temperature score", ""},
	{"gridDistanceNorm", "Grid distance score", ""},
	{"internetSpeedNorm", "Internet speed score", ""},
	{"nbGridConnectionsNorm", "Grid connections score", ""},
}

// Tooltip returns the hover lines for a cell. name, when not blank, is shown
// after the id.
func Tooltip(cell model.Cell, name string) []string {
	lines := make([]string, 0, len(cell.Aux)+4)
	lines = append(lines, "Cell: "+cell.ID)
	if name != "" {
		lines = append(lines, "Region: "+name)
	}
	lines = append(lines, "Score: "+strconv.FormatFloat(cell.Score, 'f', 2, 64))

	seen := make(map[string]struct{}, len(auxLabels))
	for _, l := range auxLabels {
		seen[l.field] = struct{}{}
		v, ok := cell.Aux[l.field]
		if !ok {
			continue
		}
		lines = append(lines, line(l.label, v, l.unit))
	}
	var rest []string
	for field := range cell.Aux {
		if _, ok := seen[field]; !ok {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range rest {
		lines = append(lines, line(field, cell.Aux[field], ""))
	}

	if cell.Opposition != "" {
		lines = append(lines, "Opposition: "+string(cell.Opposition))
	}
	return lines
}

func line(label string, v float64, unit string) string {
	s := fmt.Sprintf("%s: %s", label, strconv.FormatFloat(v, 'f', -1, 64))
	if unit != "" {
		s += " " + unit
	}
	return s
}
