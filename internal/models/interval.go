package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// RefreshInterval is the polling cadence in minutes. Zero disables polling.
type RefreshInterval float64

// Intervals is the fixed set of cadences a user can pick from.
var Intervals = []RefreshInterval{0, 0.5, 1, 2, 5, 10, 15, 30, 60}

// ParseInterval parses minutes ("0.5", "5") or "off" and checks it against [Intervals].
func ParseInterval(s string) (RefreshInterval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "off" || s == "disabled" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}

	interval := RefreshInterval(v)
	if err := interval.Validate(); err != nil {
		return 0, err
	}
	return interval, nil
}

// Validate checks the interval is one of [Intervals].
func (r RefreshInterval) Validate() error {
	if !slices.Contains(Intervals, r) {
		return fmt.Errorf("interval %v not one of %v", float64(r), Intervals)
	}
	return nil
}

// Enabled reports whether polling should run at all.
func (r RefreshInterval) Enabled() bool {
	return r > 0
}

// Duration converts minutes to a [time.Duration].
func (r RefreshInterval) Duration() time.Duration {
	return time.Duration(float64(r) * float64(time.Minute))
}

func (r RefreshInterval) String() string {
	if !r.Enabled() {
		return "off"
	}
	return r.Duration().String()
}
