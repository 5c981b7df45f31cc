package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/HKazz/project-3-back-end/models"
)

func requireText(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required: %w", field, models.ErrInvalidInput)
	}
	return value, nil
}

func checkDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return fmt.Errorf("end date %s precedes start date %s: %w",
			end.Format(time.DateOnly), start.Format(time.DateOnly), models.ErrInvalidInput)
	}
	return nil
}

// mergeDates returns the start and end that will hold once a patch is applied.
func mergeDates(start time.Time, end *time.Time, newStart *models.Date, newEnd models.OptionalDate) (time.Time, *time.Time) {
	if newStart != nil {
		start = newStart.Time
	}
	if newEnd.Set {
		end = newEnd.Value
	}
	return start, end
}
