package domain

import (
	"fmt"
	"time"
)

// UnlockedLabel is returned by TimeUntilUnlock once funds are withdrawable.
const UnlockedLabel = "Unlocked"

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Clock returns the current wall-clock time. Pure functions take "now" as an argument;
// callers obtain it from an injected Clock.
type Clock func() time.Time

// SystemClock is the Clock backed by time.Now.
func SystemClock() time.Time { return time.Now() }

// IsUnlocked reports whether a timelock has expired. Zero or negative timelocks mean no lock.
func IsUnlocked(unlockUnix, nowUnix int64) bool {
	return unlockUnix <= 0 || unlockUnix <= nowUnix
}

// TimeUntilUnlock renders the remaining lock time using the two coarsest units:
// "1d 1h", "2h 0m" or "10m". Expired or absent timelocks render as UnlockedLabel.
func TimeUntilUnlock(unlockUnix, nowUnix int64) string {
	if IsUnlocked(unlockUnix, nowUnix) {
		return UnlockedLabel
	}
	delta := unlockUnix - nowUnix

	switch {
	case delta >= secondsPerDay:
		return fmt.Sprintf("%dd %dh", delta/secondsPerDay, delta%secondsPerDay/secondsPerHour)
	case delta >= secondsPerHour:
		return fmt.Sprintf("%dh %dm", delta/secondsPerHour, delta%secondsPerHour/secondsPerMinute)
	default:
		return fmt.Sprintf("%dm", delta/secondsPerMinute)
	}
}

// UserVault is a depositor's position in the vault contract.
type UserVault struct {
	Balance  int64 `json:"balance"`
	Timelock int64 `json:"timelock"` // UNIX seconds, 0 = no lock
}

// CheckWithdraw validates a withdrawal of amount atomic units at nowUnix.
// It returns a FUNDS_TIMELOCKED or INSUFFICIENT_BALANCE AppError, or nil.
func (v UserVault) CheckWithdraw(amount, nowUnix int64) error {
	if !IsUnlocked(v.Timelock, nowUnix) {
		return NewAppErrorWithDetails(KindFundsTimelocked, "funds are timelocked",
			"unlocks in "+TimeUntilUnlock(v.Timelock, nowUnix))
	}
	if amount <= 0 || amount > v.Balance {
		return NewAppErrorWithDetails(KindInsufficientBalance, "insufficient vault balance",
			fmt.Sprintf("requested %s, available %s", FormatAmount(amount), FormatAmount(v.Balance)))
	}
	return nil
}
