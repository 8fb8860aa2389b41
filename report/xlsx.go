package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"dserve-api/models"

	"github.com/xuri/excelize/v2"
)

const (
	SalesSheet     = "Sales"
	TopItemsSheet  = "Top Items"
	InventorySheet = "Inventory"
)

// WriteSalesXLSX writes a summary sheet and a top items sheet.
func WriteSalesXLSX(w io.Writer, s Sales) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Period", string(s.Period)},
		{"From", s.From.Format(time.DateOnly)},
		{"To (exclusive)", s.To.Format(time.DateOnly)},
		{"Total orders", s.TotalOrders},
		{"Total sales", s.TotalSales.StringFixed(2)},
		{"Average sale", s.AverageSale.StringFixed(2)},
	}
	types := make([]string, 0, len(s.ByOrderType))
	for t := range s.ByOrderType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		rows = append(rows, []any{"Orders: " + t, s.ByOrderType[models.OrderType(t)]})
	}
	if err := writeRows(f, SalesSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(TopItemsSheet); err != nil {
		return err
	}
	top := [][]any{{"Item", "Quantity", "Revenue"}}
	for _, it := range s.TopItems {
		top = append(top, []any{it.Name, it.Quantity, it.Revenue.StringFixed(2)})
	}
	if err := writeRows(f, TopItemsSheet, top); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteInventoryXLSX writes one row per item with its low stock flag.
func WriteInventoryXLSX(w io.Writer, items []models.InventoryItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InventorySheet); err != nil {
		return err
	}
	rows := [][]any{{"Name", "Category", "Kind", "Stock", "Unit", "Min level", "Low stock", "Expiry"}}
	for _, it := range items {
		expiry := ""
		if it.ExpiryDate != nil {
			expiry = it.ExpiryDate.UTC().Format(time.DateOnly)
		}
		low := "no"
		if it.IsLowStock() {
			low = "yes"
		}
		rows = append(rows, []any{it.Name, it.Category, string(it.Kind), it.Stock, it.Unit, it.MinStockLevel, low, expiry})
	}
	if err := writeRows(f, InventorySheet, rows); err != nil {
		return err
	}
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
