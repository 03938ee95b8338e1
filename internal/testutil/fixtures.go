package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"monex/internal/models"

	"github.com/shopspring/decimal"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// FixedTime is a stable timestamp for fixtures.
var FixedTime = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

// NewTestBudget returns a named budget with a unique name.
func NewTestBudget(amount string) models.Budget {
	return models.Budget{
		Name:   fmt.Sprintf("Budget %d", nextID()),
		Amount: Dec(amount),
		Icon:   "cart.fill",
		Color:  "blue",
	}
}

// NewTestExpense returns an expense dated FixedTime.
func NewTestExpense(amount string) models.Expense {
	return models.Expense{
		Title:  fmt.Sprintf("Expense %d", nextID()),
		Amount: Dec(amount),
		Date:   FixedTime,
	}
}

// NewTestStock returns a stock asset with shares × price details.
func NewTestStock(shares int, price string) models.Asset {
	return models.Asset{
		Name:      fmt.Sprintf("Stock %d", nextID()),
		Type:      models.AssetTypeStocks,
		Category:  models.AssetCategoryInvestments,
		DateAdded: FixedTime,
		Details: &models.StockDetails{
			CompanyName:    "Acme Corp",
			NumberOfShares: shares,
			PricePerShare:  Dec(price),
			PurchaseDate:   FixedTime,
		},
	}
}

// NewTestLoan returns a home loan with nothing repaid yet.
func NewTestLoan(total, emi string) models.Asset {
	return models.Asset{
		Name:      fmt.Sprintf("Loan %d", nextID()),
		Type:      models.AssetTypeHomeLoan,
		Category:  models.AssetCategoryLoans,
		DateAdded: FixedTime,
		Details: &models.LoanDetails{
			TotalLoanAmount: Dec(total),
			MonthlyEMI:      Dec(emi),
			RemainingAmount: Dec(total),
			StartDate:       FixedTime,
			InterestRate:    Dec("8.5"),
			Tenure:          240,
		},
	}
}

// NewTestInsurance returns a health policy.
func NewTestInsurance(coverage string) models.Asset {
	return models.Asset{
		Name:      fmt.Sprintf("Policy %d", nextID()),
		Type:      models.AssetTypeHealthInsurance,
		Category:  models.AssetCategoryInsurance,
		DateAdded: FixedTime,
		Details: &models.InsuranceDetails{
			MonthlyPremium: Dec("1200"),
			CoverageAmount: Dec(coverage),
			StartDate:      FixedTime,
			PolicyNumber:   fmt.Sprintf("POL-%d", nextID()),
		},
	}
}
