// Package ordernumber issues the daily "#N" order numbers. Numbering restarts
// at UTC midnight.
package ordernumber

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"dserve-api/models"
)

const prefix = "#"

func Format(n int64) string {
	return prefix + strconv.FormatInt(n, 10)
}

// Parse reads the digits following a leading "#". Trailing characters after
// the digits are ignored.
func Parse(s string) (int64, bool) {
	if len(s) < 2 || s[:1] != prefix {
		return 0, false
	}
	end := 1
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 1 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[1:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// DayBounds returns the UTC day containing t as [start, end).
func DayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// ScanMax returns the highest "#N" among orders created on the UTC day of
// day, or 0 when there is none.
func ScanMax(orders []models.Order, day time.Time) int64 {
	start, end := DayBounds(day)
	var highest int64
	for _, o := range orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		if n, ok := Parse(o.OrderNumber); ok && n > highest {
			highest = n
		}
	}
	return highest
}

// Counter is a per-day monotonic sequence.
type Counter interface {
	IncrementCounter(ctx context.Context, day string) (int64, error)
	RaiseCounter(ctx context.Context, day string, atLeast int64) error
	CurrentCounter(ctx context.Context, day string) (int64, error)
}

type Number struct {
	Value int64
	Day   string
}

func (n Number) String() string {
	return Format(n.Value)
}

type Sequencer struct {
	counter Counter
	now     func() time.Time
}

func NewSequencer(c Counter, now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{counter: c, now: now}
}

// Next allocates the next number of the UTC day containing at. Callers pass
// the order's own creation time so its number and timestamp share a day.
func (s *Sequencer) Next(ctx context.Context, at time.Time) (Number, error) {
	day := DayKey(at)
	v, err := s.counter.IncrementCounter(ctx, day)
	if err != nil {
		return Number{}, fmt.Errorf("next order number: %w", err)
	}
	return Number{Value: v, Day: day}, nil
}

// MaxForToday is the highest number issued today, 0 when none was.
func (s *Sequencer) MaxForToday(ctx context.Context) (int64, error) {
	return s.counter.CurrentCounter(ctx, DayKey(s.now()))
}

// PeekNext returns today's highest number and formats the one the next order
// would get, without reserving it.
func (s *Sequencer) PeekNext(ctx context.Context) (int64, string, error) {
	highest, err := s.MaxForToday(ctx)
	if err != nil {
		return 0, "", err
	}
	return highest, Format(highest + 1), nil
}

// Seed raises today's counter to the highest number already present in
// orders, so numbering continues after data written by older versions.
func (s *Sequencer) Seed(ctx context.Context, orders []models.Order) (int64, error) {
	now := s.now()
	highest := ScanMax(orders, now)
	if highest == 0 {
		return 0, nil
	}
	if err := s.counter.RaiseCounter(ctx, DayKey(now), highest); err != nil {
		return 0, fmt.Errorf("seed order numbers: %w", err)
	}
	return highest, nil
}
