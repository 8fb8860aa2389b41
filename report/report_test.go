package report

import (
	"bytes"
	"testing"
	"time"

	"dserve-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewRange(t *testing.T) {
	// Thursday
	anchor := time.Date(2024, 6, 13, 15, 30, 0, 0, time.UTC)

	d := NewRange(Daily, anchor)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), d.From)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), d.To)

	w := NewRange(Weekly, anchor)
	assert.Equal(t, time.Monday, w.From.Weekday())
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC), w.To)

	sunday := NewRange(Weekly, time.Date(2024, 6, 16, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, w.From, sunday.From)

	m := NewRange(Monthly, anchor)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), m.From)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), m.To)

	_, err := ParsePeriod("yearly")
	assert.Error(t, err)
}

func line(name string, qty int, price int64) models.OrderItem {
	return models.OrderItem{
		Name: name, Quantity: qty,
		UnitPrice:  decimal.NewFromInt(price),
		TotalPrice: decimal.NewFromInt(price * int64(qty)),
	}
}

func sampleOrders(day time.Time) []models.Order {
	return []models.Order{
		{OrderType: models.OrderDineIn, CreatedAt: day.Add(9 * time.Hour), TotalAmount: decimal.NewFromInt(340),
			Items: []models.OrderItem{line("Latte", 2, 120), line("Cookie", 2, 50)}},
		{OrderType: models.OrderTakeOut, CreatedAt: day.Add(11 * time.Hour), TotalAmount: decimal.NewFromInt(120),
			Items: []models.OrderItem{line("Latte", 1, 120)}},
		{OrderType: models.OrderDineIn, CreatedAt: day.Add(13 * time.Hour), TotalAmount: decimal.NewFromInt(101),
			Items: []models.OrderItem{line("Mocha", 1, 101)}},
		{OrderType: models.OrderDineIn, CreatedAt: day.Add(-time.Hour), TotalAmount: decimal.NewFromInt(999),
			Items: []models.OrderItem{line("Latte", 9, 111)}},
	}
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	s := Summarize(sampleOrders(day), NewRange(Daily, day))

	assert.Equal(t, 3, s.TotalOrders)
	assert.True(t, s.TotalSales.Equal(decimal.NewFromInt(561)))
	assert.Equal(t, "187.00", s.AverageSale.StringFixed(2))
	assert.Equal(t, 2, s.ByOrderType[models.OrderDineIn])
	assert.Equal(t, 1, s.ByOrderType[models.OrderTakeOut])

	require.Len(t, s.TopItems, 3)
	assert.Equal(t, "Latte", s.TopItems[0].Name)
	assert.Equal(t, 3, s.TopItems[0].Quantity)
	assert.True(t, s.TopItems[0].Revenue.Equal(decimal.NewFromInt(360)))
	assert.Equal(t, "Cookie", s.TopItems[1].Name)
	assert.Equal(t, "Mocha", s.TopItems[2].Name)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, NewRange(Monthly, time.Now()))
	assert.Zero(t, s.TotalOrders)
	assert.True(t, s.AverageSale.IsZero())
	assert.NotNil(t, s.TopItems)
}

func TestWriteSalesXLSX(t *testing.T) {
	day := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteSalesXLSX(&buf, Summarize(sampleOrders(day), NewRange(Daily, day))))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SalesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-13", v)
	v, err = f.GetCellValue(SalesSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "561.00", v)

	rows, err := f.GetRows(TopItemsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Item", "Quantity", "Revenue"}, rows[0])
	assert.Equal(t, "Latte", rows[1][0])
	assert.Equal(t, "3", rows[1][1])
}

func TestWriteInventoryXLSX(t *testing.T) {
	exp := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	items := []models.InventoryItem{
		{Name: "Milk", Kind: models.KindStock, Stock: 4, Unit: "liters", MinStockLevel: 10, ExpiryDate: &exp},
		{Name: "Beans", Kind: models.KindStock, Stock: 40, Unit: "kg", MinStockLevel: 10},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteInventoryXLSX(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(InventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Milk", rows[1][0])
	assert.Equal(t, "yes", rows[1][6])
	assert.Equal(t, "2024-07-01", rows[1][7])
	assert.Equal(t, "no", rows[2][6])
}
