package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var dateLayouts = []string{time.RFC3339, time.DateOnly}

// Date is a request date. It accepts RFC 3339 timestamps and bare
// YYYY-MM-DD days, the latter read as midnight UTC.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", ErrInvalidInput)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("date %q is neither RFC 3339 nor YYYY-MM-DD: %w", raw, ErrInvalidInput)
}

// Ptr returns the wrapped time, or nil for a nil Date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// OptionalDate tells an absent patch field apart from an explicit null.
// Set is true whenever the field appeared in the payload; a nil Value with
// Set means the date is cleared.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// SetDate returns an OptionalDate that replaces the stored date with t.
func SetDate(t time.Time) OptionalDate {
	return OptionalDate{Set: true, Value: &t}
}

// ClearDate returns an OptionalDate that removes the stored date.
func ClearDate() OptionalDate {
	return OptionalDate{Set: true}
}

// Cleared reports whether the patch removes the date.
func (o OptionalDate) Cleared() bool {
	return o.Set && o.Value == nil
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value = d.Ptr()
	return nil
}
