package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinYear = 1900
	MaxYear = 2100
)

var ErrInvalidYear = errors.New("invalid year")

// ValidateYear rejects years outside [MinYear, MaxYear].
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidYear, year, MinYear, MaxYear)
	}
	return nil
}

// ParseYear parses and validates a year coming from a query string or flag.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidYear, s)
	}
	if err := ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}
