package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"monex/internal/report"
	"monex/internal/services"
)

// SummaryHandler serves the dashboard totals and the markdown report.
type SummaryHandler struct {
	finance  services.FinanceServicer
	currency string
}

// NewSummaryHandler creates a new SummaryHandler. currency is the default
// display currency for reports.
func NewSummaryHandler(finance services.FinanceServicer, currency string) *SummaryHandler {
	return &SummaryHandler{finance: finance, currency: currency}
}

// ReportQuery holds the report query parameters.
type ReportQuery struct {
	Currency string `form:"currency" binding:"omitempty,iso4217"`
}

// GetSummary handles retrieving the dashboard totals.
// @Summary     Get summary
// @Description Balance, budget totals, asset totals and net worth, computed fresh
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": h.finance.Summary()})
}

// GetReport handles rendering the markdown report.
// @Summary     Get report
// @Description Markdown report of balance, budgets, expenses and assets
// @Tags        summary
// @Produce     text/markdown
// @Security    BearerAuth
// @Param       currency query string false "ISO 4217 display currency"
// @Success     200 {string} string "Markdown report"
// @Failure     400 {object} ErrorResponse "Invalid currency"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /report [get]
func (h *SummaryHandler) GetReport(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	currency := q.Currency
	if currency == "" {
		currency = h.currency
	}

	snap, err := report.Collect(h.finance, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Build(snap, currency)))
}
