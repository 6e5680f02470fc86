package scheduler

import "errors"

var (
	// ErrInvalidConfig wraps every Config and cron parsing failure.
	ErrInvalidConfig = errors.New("scheduler: invalid configuration")

	// ErrAlreadyRunning is returned by RunNow while another run is in flight.
	ErrAlreadyRunning = errors.New("scheduler: run already in progress")
)
