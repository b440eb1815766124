package entities

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
)

// TimeCode is a non-negative duration with millisecond resolution. The
// integral field form and the fractional-second form round-trip losslessly
// at millisecond granularity.
type TimeCode struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Secs         int `json:"seconds"`
	Milliseconds int `json:"milliseconds"`
}

// NewTimeCode builds a TimeCode from components. Components may carry over
// (e.g. 90 seconds) and are normalized; negative totals are rejected.
func NewTimeCode(hours, minutes, seconds, milliseconds int) (TimeCode, error) {
	totalMs := int64(hours)*3600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + int64(milliseconds)
	if totalMs < 0 {
		return TimeCode{}, apperrors.ErrInvalidSegment("negative timecode")
	}
	return fromMilliseconds(totalMs), nil
}

// TimeCodeFromSeconds builds a TimeCode from a fractional-second value,
// rounded to the nearest millisecond and clamped at zero.
func TimeCodeFromSeconds(seconds float64) TimeCode {
	if seconds <= 0 || math.IsNaN(seconds) {
		return TimeCode{}
	}
	return fromMilliseconds(int64(math.Round(seconds * 1000)))
}

// ParseTimecode parses the textual form "HH:MM:SS,mmm". A '.' millisecond
// separator is accepted as well. Malformed input fails with
// MALFORMED_TIMECODE naming the offending field.
func ParseTimecode(raw string) (TimeCode, error) {
	s := strings.TrimSpace(raw)
	normalized := strings.ReplaceAll(strings.ReplaceAll(s, ",", ":"), ".", ":")
	parts := strings.Split(normalized, ":")
	if len(parts) != 4 {
		return TimeCode{}, apperrors.ErrMalformedTimecode(raw, "format")
	}

	fields := []string{"hours", "minutes", "seconds", "milliseconds"}
	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return TimeCode{}, apperrors.ErrMalformedTimecode(raw, fields[i])
		}
		values[i] = v
	}
	if values[1] > 59 {
		return TimeCode{}, apperrors.ErrMalformedTimecode(raw, "minutes")
	}
	if values[2] > 59 {
		return TimeCode{}, apperrors.ErrMalformedTimecode(raw, "seconds")
	}
	if values[3] > 999 {
		return TimeCode{}, apperrors.ErrMalformedTimecode(raw, "milliseconds")
	}
	return TimeCode{Hours: values[0], Minutes: values[1], Secs: values[2], Milliseconds: values[3]}, nil
}

// Seconds returns the total duration as fractional seconds.
func (t TimeCode) Seconds() float64 {
	return float64(t.totalMilliseconds()) / 1000.0
}

// String renders the SRT textual form "HH:MM:SS,mmm".
func (t TimeCode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", t.Hours, t.Minutes, t.Secs, t.Milliseconds)
}

// Add returns the timecode shifted forward by the given number of seconds.
// Negative amounts shift backward, clamped at zero.
func (t TimeCode) Add(seconds float64) TimeCode {
	return TimeCodeFromSeconds(t.Seconds() + seconds)
}

// Sub returns the timecode shifted backward, clamped at zero.
func (t TimeCode) Sub(seconds float64) TimeCode {
	return TimeCodeFromSeconds(t.Seconds() - seconds)
}

// Before reports whether t is strictly earlier than other.
func (t TimeCode) Before(other TimeCode) bool {
	return t.totalMilliseconds() < other.totalMilliseconds()
}

// After reports whether t is strictly later than other.
func (t TimeCode) After(other TimeCode) bool {
	return t.totalMilliseconds() > other.totalMilliseconds()
}

// Equal reports millisecond-exact equality.
func (t TimeCode) Equal(other TimeCode) bool {
	return t.totalMilliseconds() == other.totalMilliseconds()
}

// Compare orders two timecodes: -1, 0 or +1.
func (t TimeCode) Compare(other TimeCode) int {
	a, b := t.totalMilliseconds(), other.totalMilliseconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (t TimeCode) totalMilliseconds() int64 {
	return int64(t.Hours)*3600_000 + int64(t.Minutes)*60_000 + int64(t.Secs)*1000 + int64(t.Milliseconds)
}

func fromMilliseconds(totalMs int64) TimeCode {
	if totalMs < 0 {
		totalMs = 0
	}
	ms := totalMs % 1000
	totalSecs := totalMs / 1000
	s := totalSecs % 60
	totalMins := totalSecs / 60
	m := totalMins % 60
	h := totalMins / 60
	return TimeCode{Hours: int(h), Minutes: int(m), Secs: int(s), Milliseconds: int(ms)}
}
