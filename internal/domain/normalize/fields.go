package normalize

// Precision classes for auxiliary fields.
const (
	PrecisionCount    = 0 // counts and speeds
	PrecisionPhysical = 1 // temperatures and distances
	PrecisionSubScore = 2 // normalized sub-scores in [0, 1]

	scorePrecision = 2
)

// DefaultFields lists the auxiliary fields recognized across schema versions
// and the number of decimals each one keeps.
func DefaultFields() map[string]int {
	return map[string]int{
		// score / avgTemp / gridDistance schema
		"avgTemp":               PrecisionPhysical,
		"gridDistance":          PrecisionPhysical,
		"internetSpeed":         PrecisionCount,
		"nbGridConnections":     PrecisionCount,
		"avgTempNorm":           PrecisionSubScore,
		"gridDistanceNorm":      PrecisionSubScore,
		"internetSpeedNorm":     PrecisionSubScore,
		"nbGridConnectionsNorm": PrecisionSubScore,

		// connection_points / latency_ms / avg_temperature schema
		"connection_points": PrecisionCount,
		"latency_ms":        PrecisionCount,
		"avg_temperature":   PrecisionPhysical,
	}
}
