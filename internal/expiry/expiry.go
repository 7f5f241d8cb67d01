// Package expiry decides whether a record's password-change period has
// elapsed. Pure functions; the period is validated by the configuration
// boundary before it gets here.
package expiry

import "time"

const dayDuration = 24 * time.Hour

// ElapsedDays returns the whole days between lastChange and now,
// or -1 when lastChange is nil.
func ElapsedDays(lastChange *time.Time, now time.Time) int {
	if lastChange == nil {
		return -1
	}
	return int(now.Sub(*lastChange) / dayDuration)
}

// ShouldWarn reports whether the warning flag should be on. A record with no
// password-change history never warns: there is no basis to measure from.
// The boundary is inclusive: exactly periodDays elapsed warns.
func ShouldWarn(lastChange *time.Time, now time.Time, periodDays int) bool {
	if lastChange == nil {
		return false
	}
	return ElapsedDays(lastChange, now) >= periodDays
}
