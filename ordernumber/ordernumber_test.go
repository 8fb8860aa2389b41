package ordernumber

import (
	"context"
	"testing"
	"time"

	"dserve-api/models"
	"dserve-api/store/gormstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParse(t *testing.T) {
	assert.Equal(t, "#7", Format(7))

	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"#1", 1, true},
		{"#042", 42, true},
		{"#12abc", 12, true},
		{"#", 0, false},
		{"12", 0, false},
		{"#x1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDayKeyUsesUTC(t *testing.T) {
	manila := time.FixedZone("PHT", 8*3600)
	local := time.Date(2024, 6, 2, 7, 0, 0, 0, manila)
	assert.Equal(t, "2024-06-01", DayKey(local))

	start, end := DayBounds(local)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestScanMax(t *testing.T) {
	day := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	assert.Zero(t, ScanMax(nil, day))

	orders := []models.Order{
		{OrderNumber: "#3", CreatedAt: day.Add(-2 * time.Hour)},
		{OrderNumber: "#11", CreatedAt: day.Add(-time.Hour)},
		{OrderNumber: "#99", CreatedAt: day.Add(-24 * time.Hour)},
		{OrderNumber: "ORD-50", CreatedAt: day},
		{OrderNumber: "#8", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{OrderNumber: "#70", CreatedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	assert.Equal(t, int64(11), ScanMax(orders, day))
	assert.Zero(t, ScanMax(orders[2:3], day), "yesterday's orders do not count")
}

func newSequencer(t *testing.T, clock *time.Time) *Sequencer {
	t.Helper()
	s, err := gormstore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewSequencer(s, func() time.Time { return *clock })
}

func TestSequencerDailyReset(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 6, 1, 23, 58, 0, 0, time.UTC)
	seq := newSequencer(t, &clock)

	highest, err := seq.MaxForToday(ctx)
	require.NoError(t, err)
	assert.Zero(t, highest)

	_, next, err := seq.PeekNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#1", next)

	n1, err := seq.Next(ctx, clock)
	require.NoError(t, err)
	n2, err := seq.Next(ctx, clock)
	require.NoError(t, err)
	assert.Equal(t, "#1", n1.String())
	assert.Equal(t, "#2", n2.String())
	assert.Equal(t, "2024-06-01", n2.Day)

	highest, err = seq.MaxForToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), highest)

	clock = clock.Add(5 * time.Minute)
	n3, err := seq.Next(ctx, clock)
	require.NoError(t, err)
	assert.Equal(t, "#1", n3.String())
	assert.Equal(t, "2024-06-02", n3.Day)
}

func TestSequencerSeed(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seq := newSequencer(t, &clock)

	seeded, err := seq.Seed(ctx, []models.Order{
		{OrderNumber: "#14", CreatedAt: clock.Add(-time.Hour)},
		{OrderNumber: "#40", CreatedAt: clock.Add(-48 * time.Hour)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(14), seeded)

	n, err := seq.Next(ctx, clock)
	require.NoError(t, err)
	assert.Equal(t, "#15", n.String())

	seeded, err = seq.Seed(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, seeded)
}
