package visual

import (
	"fmt"
	"strings"
)

// Layer names the cell field fed into the color and elevation mapping.
type Layer string

// Supported layers.
const (
	LayerScore                 Layer = "score"
	LayerAvgTempNorm           Layer = "avgTempNorm"
	LayerGridDistanceNorm      Layer = "gridDistanceNorm"
	LayerInternetSpeedNorm     Layer = "internetSpeedNorm"
	LayerNbGridConnectionsNorm Layer = "nbGridConnectionsNorm"

	DefaultLayer = LayerScore
)

var layers = []Layer{
	LayerScore,
	LayerAvgTempNorm,
	LayerGridDistanceNorm,
	LayerInternetSpeedNorm,
	LayerNbGridConnectionsNorm,
}

// Layers returns the supported layers, default first.
func Layers() []Layer {
	out := make([]Layer, len(layers))
	copy(out, layers)
	return out
}

// ParseLayer resolves a layer name. Blank selects the default layer.
func ParseLayer(name string) (Layer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultLayer, nil
	}
	for _, l := range layers {
		if string(l) == name {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLayer, name)
}

// Field returns the cell field read by the layer.
func (l Layer) Field() string { return string(l) }
