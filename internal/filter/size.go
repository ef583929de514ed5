package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 512K, 10M, 1.5G, 2T, with an optional trailing "B"
// (512KB == 512K), case-insensitive. Uses powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)
	upper = strings.TrimSuffix(upper, "B")

	multiplier := int64(1)
	numStr := upper
	if len(upper) > 0 {
		switch upper[len(upper)-1] {
		case 'K':
			multiplier = 1 << 10
			numStr = upper[:len(upper)-1]
		case 'M':
			multiplier = 1 << 20
			numStr = upper[:len(upper)-1]
		case 'G':
			multiplier = 1 << 30
			numStr = upper[:len(upper)-1]
		case 'T':
			multiplier = 1 << 40
			numStr = upper[:len(upper)-1]
		}
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(multiplier)), nil
}
