package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count as a human-readable string, e.g. "1.50 KB".
// Bytes below 1 KB are printed without a fractional part.
func FormatSize(bytes int64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", bytes, sizeUnits[unit])
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// ParseSize parses a human-readable size into bytes.
// Accepts bare byte counts ("1024") and unit suffixes with an optional
// space ("10KB", "10 KB", "1.5GB"). Units are binary multiples.
func ParseSize(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("size is empty")
	}

	split := len(input)
	for i, ch := range input {
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
			split = i
			break
		}
	}

	numberStr := strings.TrimSpace(input[:split])
	unitStr := strings.TrimSpace(input[split:])

	number, err := strconv.ParseFloat(numberStr, 64)
	if err != nil || math.IsInf(number, 0) || math.IsNaN(number) || number < 0 {
		return 0, fmt.Errorf("invalid size number: %q", numberStr)
	}

	unit := strings.ToUpper(unitStr)
	unit = strings.TrimSuffix(unit, "B")

	var multiplier float64
	switch unit {
	case "":
		multiplier = 1
	case "K", "KI":
		multiplier = 1 << 10
	case "M", "MI":
		multiplier = 1 << 20
	case "G", "GI":
		multiplier = 1 << 30
	case "T", "TI":
		multiplier = 1 << 40
	default:
		return 0, fmt.Errorf("unknown size unit: %q", unitStr)
	}

	bytes := number * multiplier
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("size is too large")
	}
	return int64(math.Round(bytes)), nil
}
