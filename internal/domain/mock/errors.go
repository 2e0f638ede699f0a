package mock

import "errors"

var (
	// ErrInvalidScenario is returned for unknown scenario names.
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrInvalidStyle is returned for unknown generation styles.
	ErrInvalidStyle = errors.New("invalid style")
	// ErrInvalidCatalog is returned when a region pool cannot be used.
	ErrInvalidCatalog = errors.New("invalid region catalog")
)
