package scenariorun

import "time"

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
	defaultWorkers          = 4
	defaultRounds           = 1
	defaultTimeout          = 30 * time.Second
)

const directoryPermission = 0o750
