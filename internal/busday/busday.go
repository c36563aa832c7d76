// Package busday provides the business-day clock used to age orders.
package busday

import "time"

// Status is an order's derived lifecycle bucket. It is never stored; it is
// recomputed from created_at and response linkage against a reference instant.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPastDue   Status = "past_due"
	StatusResponded Status = "responded"
)

// Calendar walks business days, skipping weekends and configured holidays.
type Calendar struct {
	pastDueDays int
	holidays    map[string]struct{}
}

const dateLayout = "2006-01-02"

// NewCalendar builds a calendar that considers an unresponded order past due
// once it is strictly older than pastDueDays business days.
func NewCalendar(pastDueDays int, holidays []time.Time) *Calendar {
	if pastDueDays <= 0 {
		pastDueDays = 3
	}
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.Format(dateLayout)] = struct{}{}
	}
	return &Calendar{pastDueDays: pastDueDays, holidays: set}
}

// IsBusinessDay reports whether t falls on a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[t.Format(dateLayout)]
	return !holiday
}

// Ago returns the instant n business days before ref, preserving the clock
// time of ref. Non-business days are skipped without being counted.
func (c *Calendar) Ago(n int, ref time.Time) time.Time {
	t := ref
	for remaining := n; remaining > 0; {
		t = t.AddDate(0, 0, -1)
		if c.IsBusinessDay(t) {
			remaining--
		}
	}
	return t
}

// Cutoff is the past-due boundary for the reference instant. Both the
// single-order classifier and the bulk repository filters use this value, so
// the two can never disagree.
func (c *Calendar) Cutoff(ref time.Time) time.Time {
	return c.Ago(c.pastDueDays, ref)
}

// Classify derives the lifecycle bucket of an order created at createdAt.
// respondedAt is non-nil when a response is linked. The reference instant is
// injected rather than read from the wall clock.
func (c *Calendar) Classify(createdAt time.Time, respondedAt *time.Time, ref time.Time) Status {
	if respondedAt != nil {
		return StatusResponded
	}
	if createdAt.Before(c.Cutoff(ref)) {
		return StatusPastDue
	}
	return StatusPending
}
