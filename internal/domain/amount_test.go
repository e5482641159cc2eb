package domain

import (
	"math"
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		atomic int64
		want   string
	}{
		{"one unit", 10_000_000, "1.00"},
		{"five units", 50_000_000, "5.00"},
		{"truncates third digit", 12_345_678, "1.23"},
		{"truncates not rounds", 19_999_999, "1.99"},
		{"zero", 0, "0.00"},
		{"single stroop", 1, "0.00"},
		{"one cent", 100_000, "0.01"},
		{"just below one cent", 99_999, "0.00"},
		{"large", 1_000_000_000_000, "100000.00"},
		{"ten trillion stroops", 10_000_000_000_000, "1000000.00"},
		{"max int64", math.MaxInt64, "922337203685.47"},
		{"negative", -10_000_000, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.atomic); got != tt.want {
				t.Errorf("FormatAmount(%d) = %q, want %q", tt.atomic, got, tt.want)
			}
		})
	}
}

func TestFormatUnitsMatchesFormatAmount(t *testing.T) {
	for _, atomic := range []int64{0, 1, 99_999, 100_000, 12_345_678, 1_000_000_000_000, math.MaxInt64} {
		if got, want := FormatUnits(atomic, StellarDecimals, 2), FormatAmount(atomic); got != want {
			t.Errorf("FormatUnits(%d, 7, 2) = %q, FormatAmount = %q", atomic, got, want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		atomic   int64
		decimals int32
		places   int32
		want     string
	}{
		{"eighteen decimals", 1_500_000_000_000_000_000, 18, 2, "1.50"},
		{"zero decimals", 42, 0, 2, "42.00"},
		{"four places truncated", 12_345_678, 7, 4, "1.2345"},
		{"zero places", 19_999_999, 7, 0, "1"},
		{"negative amount", -5, 7, 2, "0.00"},
		{"negative decimals treated as zero", 7, -3, 1, "7.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUnits(tt.atomic, tt.decimals, tt.places); got != tt.want {
				t.Errorf("FormatUnits(%d, %d, %d) = %q, want %q", tt.atomic, tt.decimals, tt.places, got, tt.want)
			}
		})
	}
}

func TestIsValidPositiveAmount(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"0.5", true},
		{"100.25", true},
		{"0.0000001", true},
		{"0", false},
		{"0.000", false},
		{"-1", false},
		{"-0.5", false},
		{"", false},
		{"abc", false},
		{"12abc", false},
		{"Infinity", false},
		{"-Infinity", false},
		{"NaN", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidPositiveAmount(tt.input); got != tt.want {
				t.Errorf("IsValidPositiveAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalculateReward(t *testing.T) {
	tests := []struct {
		name    string
		deposit int64
		rate    int64
		want    int64
	}{
		{"5% of 100 units", 1_000_000_000, 500, 50_000_000},
		{"10% of 100 units", 1_000_000_000, 1000, 100_000_000},
		{"small amount keeps precision", 10_000_000, 500, 500_000},
		{"floors fractional stroops", 199, 500, 9},
		{"below one stroop", 1, 500, 0},
		{"zero amount", 0, 500, 0},
		{"zero rate", 1_000_000_000, 0, 0},
		{"negative amount", -100, 500, 0},
		{"negative rate", 100, -500, 0},
		{"both negative", -100, -500, 0},
		{"full rate", 1_000_000_000, 10_000, 1_000_000_000},
		{"quadrillion stroops", 1_000_000_000_000_000, 500, 50_000_000_000_000},
		{"max deposit at full rate", math.MaxInt64, 10_000, math.MaxInt64},
		{"overflow saturates", math.MaxInt64, 20_000, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateReward(tt.deposit, tt.rate)
			if got != tt.want {
				t.Errorf("CalculateReward(%d, %d) = %d, want %d", tt.deposit, tt.rate, got, tt.want)
			}
			if got < 0 {
				t.Errorf("CalculateReward(%d, %d) is negative", tt.deposit, tt.rate)
			}
		})
	}
}

func TestBPSToPercent(t *testing.T) {
	tests := []struct {
		bps  int64
		want string
	}{
		{500, "5.0"},
		{100, "1.0"},
		{250, "2.5"},
		{10000, "100.0"},
		{0, "0.0"},
		{1, "0.0"},
		{255, "2.6"},
		{12000, "120.0"},
		{-500, "-5.0"},
	}

	for _, tt := range tests {
		if got := BPSToPercent(tt.bps); got != tt.want {
			t.Errorf("BPSToPercent(%d) = %q, want %q", tt.bps, got, tt.want)
		}
	}
}

func TestDisplayToAtomic(t *testing.T) {
	tests := []struct {
		name     string
		display  string
		decimals int32
		want     int64
		wantErr  bool
	}{
		{"horizon balance", "12.3400000", 7, 123_400_000, false},
		{"integer", "5", 7, 50_000_000, false},
		{"truncates extra digits", "0.00000019", 7, 1, false},
		{"surrounding spaces", " 1.5 ", 7, 15_000_000, false},
		{"zero decimals", "42.9", 0, 42, false},
		{"invalid", "abc", 7, 0, true},
		{"out of range", "99999999999999999999", 7, 0, true},
		{"max int64 stroops", "922337203685.4775807", 7, math.MaxInt64, false},
		{"one past max int64", "922337203685.4775808", 7, 0, true},
		{"huge exponent", "1e20000000", 7, 0, true},
		{"tiny exponent", "1e-20000000", 7, 0, false},
		{"below one stroop", "0.00000001", 7, 0, false},
		{"zero", "0", 7, 0, false},
		{"negative", "-1.5", 7, -15_000_000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DisplayToAtomic(tt.display, tt.decimals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DisplayToAtomic(%q) error = %v, wantErr %v", tt.display, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DisplayToAtomic(%q, %d) = %d, want %d", tt.display, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestToAtomicUnits(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1", 10_000_000},
		{"0.5", 5_000_000},
		{"100.25", 1_002_500_000},
		{"0", 0},
		{"-1", 0},
		{"12abc", 0},
		{"", 0},
		{"1e20000000", 0},
		{"1e-20000000", 0},
		{"922337203685.4775808", 0},
	}

	for _, tt := range tests {
		if got := ToAtomicUnits(tt.input); got != tt.want {
			t.Errorf("ToAtomicUnits(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestToAtomicUnitsExtremeExponentsAreCheap(t *testing.T) {
	for _, input := range []string{"1e20000000", "9.99e2147483647", "1e-20000000", "-1e20000000"} {
		start := time.Now()
		if got := ToAtomicUnits(input); got != 0 {
			t.Errorf("ToAtomicUnits(%q) = %d, want 0", input, got)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("ToAtomicUnits(%q) took %v", input, elapsed)
		}
	}
}
