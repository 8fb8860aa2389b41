package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"dserve-api/report"
	"dserve-api/store"

	"github.com/gin-gonic/gin"
)

// salesRange reads ?range= and ?date= (default today).
func (h *Handler) salesRange(c *gin.Context) (report.Range, bool) {
	p, err := report.ParsePeriod(c.Query("range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return report.Range{}, false
	}
	anchor := h.now()
	if s := c.Query("date"); s != "" {
		anchor, err = parseDate(s, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return report.Range{}, false
		}
	}
	return report.NewRange(p, anchor), true
}

func (h *Handler) sales(c *gin.Context) (report.Sales, bool) {
	r, ok := h.salesRange(c)
	if !ok {
		return report.Sales{}, false
	}
	list, err := h.orders.List(c.Request.Context(), store.OrderFilter{From: r.From, To: r.To})
	if err != nil {
		h.respondError(c, err)
		return report.Sales{}, false
	}
	return report.Summarize(list, r), true
}

func (h *Handler) SalesReport(c *gin.Context) {
	s, ok := h.sales(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": s})
}

func (h *Handler) ExportSales(c *gin.Context) {
	s, ok := h.sales(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteSalesXLSX(&buf, s); err != nil {
		h.respondError(c, err)
		return
	}
	name := fmt.Sprintf("sales-%s-%s.xlsx", s.Period, s.From.Format(time.DateOnly))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
