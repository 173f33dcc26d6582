package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrMalformedTimestamp is returned when a timestamp matches neither
// recognized ISO-8601 shape.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

const (
	// eventTimeLayout parses ISO-8601 timestamps with a trailing Z.
	// The .999999999 fraction is optional, so both "2024-01-02T03:04:05.123Z"
	// and "2024-01-02T03:04:05Z" parse with this single layout.
	eventTimeLayout = "2006-01-02T15:04:05.999999999Z"

	// dayKeyLayout parses day keys circulating inside the pipeline,
	// with or without fractional seconds, no zone marker.
	dayKeyLayout = "2006-01-02T15:04:05.999999999"
)

// NormalizeDay snaps a raw event timestamp to its canonical day key,
// midnight UTC in the form YYYY-MM-DDT00:00:00.00. Day keys sort
// chronologically as plain strings.
func NormalizeDay(ts string) (string, error) {
	t, err := time.Parse(eventTimeLayout, ts)
	if err != nil {
		return "", errors.Wrapf(ErrMalformedTimestamp, "%q", ts)
	}
	return dayKey(t), nil
}

// PreviousDay returns the canonical day key one calendar day before the
// given key. The key may carry fractional seconds or not.
func PreviousDay(day string) (string, error) {
	t, err := ParseDayKey(day)
	if err != nil {
		return "", err
	}
	return dayKey(t.AddDate(0, 0, -1)), nil
}

// NextDay returns the canonical day key one calendar day after the given key.
func NextDay(day string) (string, error) {
	t, err := ParseDayKey(day)
	if err != nil {
		return "", err
	}
	return dayKey(t.AddDate(0, 0, 1)), nil
}

// ParseDayKey parses a pipeline day key into a time.Time.
func ParseDayKey(day string) (time.Time, error) {
	t, err := time.Parse(dayKeyLayout, day)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrMalformedTimestamp, "%q", day)
	}
	return t, nil
}

// DayKeyFor returns the canonical day key for the UTC calendar day of t.
func DayKeyFor(t time.Time) string {
	return dayKey(t)
}

func dayKey(t time.Time) string {
	return fmt.Sprintf("%sT00:00:00.00", t.UTC().Format("2006-01-02"))
}
