package types

import "time"

// WaitResult reports the outcome of a poll-until-state wait. Reached is
// false when the timeout elapsed first; callers must check it rather
// than assume the target state holds.
type WaitResult struct {
	Reached   bool
	LastState string
	Polls     int
	Elapsed   time.Duration
}
