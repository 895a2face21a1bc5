package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseShares parses a share count submitted as form text. Anything that is
// not a positive whole number is rejected: "abc", "4.5", "0", "-3". A value
// like "4.0" is accepted as 4.
func ParseShares(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: missing share count", ErrInvalidShares)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidShares, s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidShares, s)
	}
	// math.MaxInt64 rounds up to 2^63 as a float64, so >= is required to
	// keep the int64 conversion below from overflowing.
	if f <= 0 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidShares, s)
	}

	return int64(f), nil
}
