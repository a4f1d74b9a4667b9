// ABOUTME: TimeRangeResolver turns a TimeExpression into concrete inclusive dates.
// ABOUTME: Malformed ranges fail with RangeError instead of being corrected.
package query

import (
	"fmt"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

// Range is an inclusive span of calendar dates with Start <= End.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange validates and builds a Range.
func NewRange(start, end time.Time) (Range, error) {
	start, end = models.DateOf(start), models.DateOf(end)
	if start.After(end) {
		return Range{}, &RangeError{Start: start, End: end, Reason: "start date is after end date"}
	}
	return Range{Start: start, End: end}, nil
}

// Days returns the number of calendar days covered.
func (r Range) Days() int {
	return models.DaysBetween(r.Start, r.End) + 1
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d time.Time) bool {
	d = models.DateOf(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("%s to %s", models.FormatDate(r.Start), models.FormatDate(r.End))
}

// RangeError reports a time expression that cannot form a valid range.
type RangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *RangeError) Error() string {
	if e.Start.IsZero() && e.End.IsZero() {
		return e.Reason
	}
	return fmt.Sprintf("%s (%s > %s)", e.Reason, models.FormatDate(e.Start), models.FormatDate(e.End))
}

// Resolve converts an expression into a Range anchored at today.
// Trailing windows end yesterday because today's data is usually incomplete.
func Resolve(expr TimeExpression, today time.Time) (Range, error) {
	today = models.DateOf(today)

	switch expr.Kind {
	case ExprSingleDate:
		return NewRange(expr.Date, expr.Date)
	case ExprLastNDays:
		if expr.Days < 1 {
			return Range{}, &RangeError{Reason: fmt.Sprintf("day count must be positive, got %d", expr.Days)}
		}
		end := models.AddDays(today, -1)
		return NewRange(models.AddDays(end, -(expr.Days - 1)), end)
	case ExprExplicitRange:
		return NewRange(expr.Start, expr.End)
	case ExprInvalidDate:
		return Range{}, &RangeError{Reason: fmt.Sprintf("%q is not a valid date", expr.Raw)}
	}
	return Range{}, &RangeError{Reason: fmt.Sprintf("unknown time expression kind %d", expr.Kind)}
}
