package utils

import (
	"cbe/src/config"
	"errors"
	"time"
)

var ErrInvalidDateRange = errors.New("check-out must be after check-in")

func ParseISODate(value string) (time.Time, error) {
	return time.Parse(config.DATE_FORMAT, value)
}

// ValidateDateRange rejects zero-night and inverted ranges before any pricing
// or availability work happens.
func ValidateDateRange(checkIn, checkOut string) error {
	start, err := ParseISODate(checkIn)
	if err != nil {
		return err
	}
	end, err := ParseISODate(checkOut)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	return nil
}

func NightsBetween(checkIn, checkOut string) (int, error) {
	start, err := ParseISODate(checkIn)
	if err != nil {
		return 0, err
	}
	end, err := ParseISODate(checkOut)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Hours() / 24), nil
}

// EnumerateDates expands [start, end) into individual calendar-date strings,
// matching iCal all-day semantics where the end date is exclusive.
func EnumerateDates(start, end time.Time) []string {
	dates := make([]string, 0)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(config.DATE_FORMAT))
	}
	return dates
}
