package loadtest

import "errors"

// Sentinel errors of the load tool.
var (
	ErrInvalidConfig = errors.New("invalid load test config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrViolation     = errors.New("match response violates ranking invariants")
	ErrFailures      = errors.New("load run had failures")
)
