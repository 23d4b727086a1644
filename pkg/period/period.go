// Package period provides the half-open time interval used for supplies,
// price validity and settlements. Start is inclusive, End exclusive; a nil
// End means open-ended. All values are kept in UTC.
package period

import (
	"fmt"
	"time"

	"github.com/nordlux/elcore/pkg/apperr"
)

// Period is a half-open interval [Start, End).
type Period struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// New validates End > Start when End is set.
func New(start time.Time, end *time.Time) (Period, error) {
	if start.IsZero() {
		return Period{}, apperr.New(apperr.ErrValidation, "period start is required")
	}
	if end != nil && !end.After(start) {
		return Period{}, apperr.New(apperr.ErrValidation, "period end must be after start")
	}
	var e *time.Time
	if end != nil {
		u := end.UTC()
		e = &u
	}
	return Period{Start: start.UTC(), End: e}, nil
}

// Closed builds a bounded period.
func Closed(start, end time.Time) (Period, error) {
	return New(start, &end)
}

// Open builds an open-ended period.
func Open(start time.Time) Period {
	return Period{Start: start.UTC()}
}

// Contains reports Start <= t < End (open-ended: Start <= t).
func (p Period) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}
	return p.End == nil || t.Before(*p.End)
}

// Overlaps is symmetric; open ends extend to infinity.
func (p Period) Overlaps(other Period) bool {
	if p.End != nil && !other.Start.Before(*p.End) {
		return false
	}
	if other.End != nil && !p.Start.Before(*other.End) {
		return false
	}
	return true
}

// ClosedAt returns a copy of the period closed at t.
func (p Period) ClosedAt(t time.Time) (Period, error) {
	return Closed(p.Start, t)
}

// IsOpen reports whether the period has no end.
func (p Period) IsOpen() bool { return p.End == nil }

// Duration is zero for open-ended periods.
func (p Period) Duration() time.Duration {
	if p.End == nil {
		return 0
	}
	return p.End.Sub(p.Start)
}

// Days returns the number of whole days covered. Open-ended periods fall
// back to 30 (legacy subscription semantics).
func (p Period) Days() int {
	if p.End == nil {
		return 30
	}
	return int(p.End.Sub(p.Start).Hours() / 24)
}

func (p Period) String() string {
	if p.End == nil {
		return fmt.Sprintf("[%s, ...)", p.Start.Format(time.RFC3339))
	}
	return fmt.Sprintf("[%s, %s)", p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
}
