package scenariorun

import "errors"

var (
	// ErrUnhealthy reports a failed health check.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrStatus reports an unexpected HTTP status.
	ErrStatus = errors.New("unexpected status")
	// ErrVerify reports a displayed map that does not match what was sent.
	ErrVerify = errors.New("verification failed")
)
