package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// StellarDecimals is the number of fractional digits of a Stellar amount (1 unit = 10^7 stroops).
const StellarDecimals = 7

// AtomicPerUnit is the number of atomic units (stroops) in one display unit.
const AtomicPerUnit int64 = 10_000_000

// BPSDenominator is the basis-point value that represents 100%.
const BPSDenominator int64 = 10_000

const displayPlaces = 2

// maxInt64Digits is the number of decimal digits of math.MaxInt64.
const maxInt64Digits = 19

var (
	bpsDenominator = decimal.NewFromInt(BPSDenominator)
	maxInt64       = decimal.NewFromInt(math.MaxInt64)
)

// FormatAmount renders atomic units as a display amount with exactly two fractional digits.
// The third fractional digit is truncated, never rounded. Negative input renders as "0.00".
func FormatAmount(atomic int64) string {
	if atomic <= 0 {
		return "0.00"
	}
	whole := atomic / AtomicPerUnit
	frac := (atomic % AtomicPerUnit) / (AtomicPerUnit / 100)
	return fmt.Sprintf("%d.%02d", whole, frac)
}

// FormatUnits renders atomic units of a token with the given number of decimals,
// truncated to places fractional digits. Negative input renders as zero.
func FormatUnits(atomic int64, decimals, places int32) string {
	decimals = max(decimals, 0)
	places = max(places, 0)
	if atomic <= 0 {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.New(atomic, -decimals).Truncate(places).StringFixed(places)
}

// IsValidPositiveAmount reports whether input is a finite number strictly greater than zero.
// Empty strings, trailing garbage ("12abc") and non-finite tokens ("Infinity", "NaN") are rejected.
func IsValidPositiveAmount(input string) bool {
	if input == "" {
		return false
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// CalculateReward returns floor(deposit * rateBPS / 10000) in atomic units.
// The product is computed before the division with arbitrary precision, so small deposits at low
// rates keep their precision and large deposits never overflow. Returns 0 when either input is not positive.
func CalculateReward(depositAtomic, rateBPS int64) int64 {
	if depositAtomic <= 0 || rateBPS <= 0 {
		return 0
	}
	reward := decimal.NewFromInt(depositAtomic).
		Mul(decimal.NewFromInt(rateBPS)).
		Div(bpsDenominator).
		Floor()
	if reward.GreaterThan(maxInt64) {
		return math.MaxInt64
	}
	return reward.IntPart()
}

// BPSToPercent converts basis points into a percentage string with one fractional digit (500 -> "5.0").
// Values outside [0, 10000] are passed through unchanged; a second fractional digit rounds half away from zero.
func BPSToPercent(bps int64) string {
	return decimal.New(bps, -2).StringFixed(1)
}

// DisplayToAtomic converts a decimal display string (e.g. a Horizon balance "12.3400000")
// into atomic units of a token with the given decimals. Digits beyond the token precision are truncated.
func DisplayToAtomic(display string, decimals int32) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(display))
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", display, err)
	}
	decimals = max(decimals, 0)

	// Bound the magnitude before rescaling: rescaling an extreme exponent allocates 10^|exp|.
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return 0, nil
	}
	intDigits := int64(d.Exponent()) + int64(decimals) + int64(len(coef.Abs(coef).String()))
	if intDigits > maxInt64Digits {
		return 0, fmt.Errorf("amount %q out of range", display)
	}
	if intDigits <= 0 {
		return 0, nil
	}

	atomic := d.Shift(decimals).Truncate(0)
	if atomic.GreaterThan(maxInt64) || atomic.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("amount %q out of range", display)
	}
	return atomic.IntPart(), nil
}

// ToAtomicUnits converts a user-entered display amount into stroops.
// Returns 0 for anything IsValidPositiveAmount rejects.
func ToAtomicUnits(input string) int64 {
	if !IsValidPositiveAmount(input) {
		return 0
	}
	atomic, err := DisplayToAtomic(input, StellarDecimals)
	if err != nil {
		return 0
	}
	return atomic
}
