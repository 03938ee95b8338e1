package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
)

// Expense is a single spend entry. It always belongs to exactly one Budget.
type Expense struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Note   string          `json:"note"`
}

// Validate checks user-supplied fields.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "expense title is required")
	}
	if !e.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "expense amount must be greater than zero")
	}
	return nil
}
