package period

import (
	"testing"
	"time"

	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/stretchr/testify/assert"
)

var (
	jan1 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb1 = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mar1 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func TestNewRejectsInvertedPeriod(t *testing.T) {
	_, err := Closed(feb1, jan1)
	assert.True(t, apperr.IsValidation(err))

	_, err = Closed(jan1, jan1)
	assert.True(t, apperr.IsValidation(err), "zero-length period must fail")
}

func TestContainsIsHalfOpen(t *testing.T) {
	p, err := Closed(jan1, feb1)
	assert.NoError(t, err)

	assert.True(t, p.Contains(jan1))
	assert.True(t, p.Contains(feb1.Add(-time.Second)))
	assert.False(t, p.Contains(feb1))
	assert.False(t, p.Contains(jan1.Add(-time.Second)))

	open := Open(jan1)
	assert.True(t, open.Contains(mar1))
	assert.False(t, open.Contains(jan1.Add(-time.Hour)))
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a, _ := Closed(jan1, feb1)
	b, _ := Closed(jan1.AddDate(0, 0, 15), mar1)
	c, _ := Closed(feb1, mar1)

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	// Half-open: [jan, feb) does not overlap [feb, mar).
	assert.False(t, a.Overlaps(c))
	assert.False(t, c.Overlaps(a))

	open := Open(feb1)
	assert.True(t, open.Overlaps(b))
	assert.False(t, open.Overlaps(a))
}

func TestDays(t *testing.T) {
	p, _ := Closed(jan1, feb1)
	assert.Equal(t, 31, p.Days())
	assert.Equal(t, 30, Open(jan1).Days())
}

func TestClosedAt(t *testing.T) {
	open := Open(jan1)
	closed, err := open.ClosedAt(feb1)
	assert.NoError(t, err)
	assert.False(t, closed.IsOpen())
	assert.Equal(t, feb1, *closed.End)
}
