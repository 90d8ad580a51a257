package cartrecovery

import (
	"fmt"
	"time"
)

// Stage is one of the fixed time-windowed recovery-email triggers in the
// cart lifecycle. Stage k is only eligible once notification_count == k-1
// and the cart is old enough for stage k's threshold.
type Stage int

const (
	Stage1 Stage = iota + 1
	Stage2
	Stage3
)

// ExpiryThreshold: a cart that reaches this age without recovering is
// expired and no longer eligible for any stage.
const ExpiryThreshold = 7 * 24 * time.Hour

var stageThresholds = map[Stage]time.Duration{
	Stage1: 30 * time.Minute,
	Stage2: 24 * time.Hour,
	Stage3: 48 * time.Hour,
}

// Threshold returns the minimum cart age for this stage.
func (s Stage) Threshold() time.Duration {
	return stageThresholds[s]
}

func (s Stage) String() string {
	return fmt.Sprintf("stage_%d", int(s))
}

// IsExpired reports whether the cart has aged out of recovery entirely.
func IsExpired(createdAt, now time.Time) bool {
	return now.Sub(createdAt) >= ExpiryThreshold
}

// EligibleStage returns the stage due for a cart, if any. A stage never
// re-triggers: eligibility requires the notification count to sit exactly
// one below the stage index, so advancing the count retires the stage.
func EligibleStage(createdAt time.Time, notificationCount int, now time.Time) (Stage, bool) {
	if IsExpired(createdAt, now) {
		return 0, false
	}
	next := Stage(notificationCount + 1)
	if next > Stage3 {
		return 0, false
	}
	if now.Sub(createdAt) < next.Threshold() {
		return 0, false
	}
	return next, true
}
