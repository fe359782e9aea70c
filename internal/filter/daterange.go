// Package filter parses query bounds and turns them into GORM scopes.
package filter

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/models"
)

// timestampLayouts carry a time of day. dateLayouts do not.
var (
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
	}
	dateLayouts = []string{
		"2006-01-02",
		"02/01/2006",
	}
)

// endOfDay is the offset from midnight to the last representable instant of a day.
const endOfDay = 24*time.Hour - time.Microsecond

// Range is an inclusive time interval; nil bounds are open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// ParseRange parses optional start and end bounds. Timestamps without a zone
// are read as UTC. A date-only end bound covers the whole day. Malformed
// bounds and start after end are validation errors naming the offending bound.
func ParseRange(start, end string) (Range, error) {
	var r Range

	if s := strings.TrimSpace(start); s != "" {
		t, _, err := parseBound(s)
		if err != nil {
			return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange,
				fmt.Sprintf("invalid start date %q", s))
		}
		r.Start = &t
	}

	if e := strings.TrimSpace(end); e != "" {
		t, dateOnly, err := parseBound(e)
		if err != nil {
			return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange,
				fmt.Sprintf("invalid end date %q", e))
		}
		if dateOnly {
			t = t.Add(endOfDay)
		}
		r.End = &t
	}

	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange,
			"start date must not be after end date")
	}
	return r, nil
}

// NewRange builds a Range from already-parsed bounds, applying the same rules.
func NewRange(start, end *time.Time) (Range, error) {
	r := Range{Start: start, End: end}
	if start != nil {
		s := start.UTC()
		r.Start = &s
	}
	if end != nil {
		e := end.UTC()
		r.End = &e
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return Range{}, apperrors.WithMessage(apperrors.ErrInvalidDateRange,
			"start date must not be after end date")
	}
	return r, nil
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.Start == nil && r.End == nil
}

// Scope filters column inclusively on both bounds.
func (r Range) Scope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Start != nil {
			db = db.Where(column+" >= ?", *r.Start)
		}
		if r.End != nil {
			db = db.Where(column+" <= ?", *r.End)
		}
		return db
	}
}

// DateScope filters a date-only column. The start bound is truncated to its
// day so records dated that day are included.
func (r Range) DateScope(column string) func(*gorm.DB) *gorm.DB {
	dr := r
	if r.Start != nil {
		s := models.DateOnly(*r.Start)
		dr.Start = &s
	}
	return dr.Scope(column)
}

func parseBound(s string) (time.Time, bool, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), false, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognised date %q", s)
}

// ParseDate parses a single calendar date (YYYY-MM-DD or DD/MM/YYYY).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid date %q", s))
}
