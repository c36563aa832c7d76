package busday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday 2024-06-13 12:00 UTC; Mon-Fri of that week are business days.
var ref = time.Date(2024, 6, 13, 12, 0, 0, 0, time.UTC)

func TestAgoSkipsWeekends(t *testing.T) {
	cal := NewCalendar(3, nil)

	// Three business days before Thursday is Monday.
	got := cal.Ago(3, ref)
	assert.Equal(t, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), got)

	// Three business days before Monday crosses a weekend back to Wednesday.
	monday := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
	got = cal.Ago(3, monday)
	assert.Equal(t, time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC), got)
}

func TestAgoSkipsHolidays(t *testing.T) {
	holiday := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC) // Tuesday
	cal := NewCalendar(3, []time.Time{holiday})

	// With Tuesday removed, three business days before Thursday is Friday.
	got := cal.Ago(3, ref)
	assert.Equal(t, time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC), got)
}

func TestClassifyBoundary(t *testing.T) {
	cal := NewCalendar(3, nil)
	cutoff := cal.Cutoff(ref)
	require.Equal(t, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), cutoff)

	// Exactly three business days old stays pending; strictly older is past due.
	assert.Equal(t, StatusPending, cal.Classify(cutoff, nil, ref))
	assert.Equal(t, StatusPending, cal.Classify(cutoff.Add(time.Minute), nil, ref))
	assert.Equal(t, StatusPastDue, cal.Classify(cutoff.Add(-time.Second), nil, ref))
	assert.Equal(t, StatusPastDue, cal.Classify(cal.Ago(4, ref), nil, ref))
}

func TestClassifyResponded(t *testing.T) {
	cal := NewCalendar(3, nil)
	respondedAt := ref.Add(-time.Hour)

	// Response linkage wins regardless of age.
	old := cal.Ago(10, ref)
	assert.Equal(t, StatusResponded, cal.Classify(old, &respondedAt, ref))
}

func TestClassifyIdempotent(t *testing.T) {
	cal := NewCalendar(3, nil)
	createdAt := cal.Ago(5, ref)

	first := cal.Classify(createdAt, nil, ref)
	second := cal.Classify(createdAt, nil, ref)
	assert.Equal(t, first, second)
}
