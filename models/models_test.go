package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Iced Americano":       "iced americano",
		"  iced americano ":    "iced americano",
		"ICED\t  AMERICANO":    "iced americano",
		"":                     "",
		"   ":                  "",
		"Caramel  Macchiato\n": "caramel macchiato",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestParseSize(t *testing.T) {
	for in, want := range map[string]Size{"": SizeMedium, "M": SizeMedium, "small": SizeSmall, " L ": SizeLarge, "Large": SizeLarge} {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSize("venti")
	assert.Error(t, err)
}

func TestParseOrderType(t *testing.T) {
	got, err := ParseOrderType("")
	require.NoError(t, err)
	assert.Equal(t, OrderDineIn, got)

	got, err = ParseOrderType("Take-Out")
	require.NoError(t, err)
	assert.Equal(t, OrderTakeOut, got)

	_, err = ParseOrderType("drive-thru")
	assert.Error(t, err)
}

func TestMenuItemPriceFor(t *testing.T) {
	item := MenuItem{
		BasePrice:  decimal.NewFromInt(120),
		PriceLarge: decimal.NewFromInt(150),
	}
	assert.True(t, item.PriceFor(SizeLarge).Equal(decimal.NewFromInt(150)))
	assert.True(t, item.PriceFor(SizeMedium).Equal(decimal.NewFromInt(120)))
	assert.True(t, item.PriceFor(SizeSmall).Equal(decimal.NewFromInt(120)))
}

func TestInventoryItemPrepare(t *testing.T) {
	item := InventoryItem{Name: "  Oat Milk "}
	item.Prepare()
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "oat milk", item.NameKey)
	assert.Equal(t, KindStock, item.Kind)
	assert.Equal(t, DefaultUnit, item.Unit)

	item.Stock, item.MinStockLevel = 9, 10
	assert.True(t, item.IsLowStock())
	item.Stock = 10
	assert.False(t, item.IsLowStock())
}

func TestUserRoleValid(t *testing.T) {
	assert.True(t, RoleCashier.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("driver").Valid())
}
