package models

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
)

// Default presentation tokens for the miscellaneous budget.
const (
	MiscBudgetName  = "Miscellaneous"
	MiscBudgetIcon  = "tray.fill"
	MiscBudgetColor = "gray"
)

// Budget is a named spending envelope with a target amount and the expenses
// logged against it. Totals are derived from Expenses on every read.
type Budget struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Icon            string          `json:"icon"`
	Color           string          `json:"color"`
	Expenses        []Expense       `json:"expenses"`
	IsMiscellaneous bool            `json:"is_miscellaneous"`
}

// NewMiscellaneousBudget returns a fresh, empty miscellaneous budget.
func NewMiscellaneousBudget(id string) Budget {
	return Budget{
		ID:              id,
		Name:            MiscBudgetName,
		Amount:          decimal.Zero,
		Icon:            MiscBudgetIcon,
		Color:           MiscBudgetColor,
		Expenses:        []Expense{},
		IsMiscellaneous: true,
	}
}

// TotalSpent is the sum of all expense amounts.
func (b Budget) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// RemainingAmount is the target amount minus everything spent.
func (b Budget) RemainingAmount() decimal.Decimal {
	return b.Amount.Sub(b.TotalSpent())
}

// SpentPercentage is TotalSpent / Amount as a fraction, or zero when the
// budget has no positive amount.
func (b Budget) SpentPercentage() decimal.Decimal {
	if !b.Amount.IsPositive() {
		return decimal.Zero
	}
	return b.TotalSpent().Div(b.Amount)
}

// IsOverBudget reports whether a named budget has been overspent.
func (b Budget) IsOverBudget() bool {
	return !b.IsMiscellaneous && b.RemainingAmount().IsNegative()
}

// ExpenseIndex returns the position of the expense with the given id, or -1.
func (b Budget) ExpenseIndex(id string) int {
	for i := range b.Expenses {
		if b.Expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks user-supplied fields. The miscellaneous budget is
// unbounded, so only named budgets need a positive amount.
func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if !b.IsMiscellaneous && !b.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be greater than zero")
	}
	return nil
}

// Clone returns a deep copy that shares no slices with b.
func (b Budget) Clone() Budget {
	out := b
	out.Expenses = make([]Expense, len(b.Expenses))
	copy(out.Expenses, b.Expenses)
	return out
}

// CloneBudgets deep-copies a slice of budgets.
func CloneBudgets(in []Budget) []Budget {
	out := make([]Budget, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
