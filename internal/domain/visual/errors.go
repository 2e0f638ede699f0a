package visual

import "errors"

// ErrInvalidLayer is returned when a layer name is not recognized.
var ErrInvalidLayer = errors.New("invalid layer")
