package services

import (
	"time"

	"github.com/shopspring/decimal"

	"monex/internal/models"
)

// Summary is the dashboard view of the active user's finances, computed fresh
// from the current collections.
type Summary struct {
	MonthlyStartBalance decimal.Decimal `json:"monthly_start_balance"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	TotalBudget         decimal.Decimal `json:"total_budget"`
	TotalSpent          decimal.Decimal `json:"total_spent"`
	TotalRemaining      decimal.Decimal `json:"total_remaining"`
	MiscSpent           decimal.Decimal `json:"misc_spent"`
	TotalInvestments    decimal.Decimal `json:"total_investments"`
	TotalLiabilities    decimal.Decimal `json:"total_liabilities"`
	TotalInsurance      decimal.Decimal `json:"total_insurance"`
	NetWorth            decimal.Decimal `json:"net_worth"`
	BudgetCount         int             `json:"budget_count"`
	AssetCount          int             `json:"asset_count"`
}

// FinanceServicer defines the contract for the active user's financial state.
type FinanceServicer interface {
	AddBudget(budget models.Budget) (*models.Budget, error)
	UpdateBudget(budget models.Budget) (*models.Budget, error)
	DeleteBudget(budgetID string) error

	AddExpense(expense models.Expense, budgetID string) (*models.Expense, error)
	UpdateExpense(expense models.Expense, budgetID string) (*models.Expense, error)
	DeleteExpense(expenseID, budgetID string) error

	AddAsset(asset models.Asset) (*models.Asset, error)
	UpdateAsset(asset models.Asset) (*models.Asset, error)
	DeleteAsset(assetID string) error
	RecordEMIPayment(assetID string, amount decimal.Decimal, date time.Time, notes string) (*models.Asset, error)

	Budgets() []models.Budget
	Budget(budgetID string) (*models.Budget, error)
	MiscBudget() models.Budget
	Assets() models.Portfolio
	AssetsByCategory(category models.AssetCategory) models.Portfolio
	Asset(assetID string) (*models.Asset, error)
	CurrentUser() (*models.User, error)
	Summary() Summary

	TotalBudget() decimal.Decimal
	TotalSpent() decimal.Decimal
	TotalRemaining() decimal.Decimal
	TotalInvestments() decimal.Decimal
	TotalLiabilities() decimal.Decimal
	TotalInsurance() decimal.Decimal
	NetWorth() decimal.Decimal

	RecalculateCurrentBalance() (*models.User, error)
	UpdateMonthlyBalance(amount decimal.Decimal, startDate time.Time) (*models.User, error)
	CheckInvariants() error
}

// SignupInput carries the fields collected when creating an account.
type SignupInput struct {
	FirstName           string
	LastName            string
	Email               string
	Password            string
	MonthlyStartBalance decimal.Decimal
	BalanceStartDate    time.Time
}

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// SessionServicer defines the contract for signing users in and out.
type SessionServicer interface {
	Signup(input SignupInput) (*Session, error)
	Login(input LoginInput) (*Session, error)
	Logout() error
	Restore() (*Session, error)
	Current() (*Session, bool)
}

// CredentialVerifier decides whether presented credentials unlock the
// stored user record.
type CredentialVerifier interface {
	// Enroll prepares a new user's stored credentials.
	Enroll(user *models.User, password string) error
	// Verify reports whether input matches user.
	Verify(user models.User, input LoginInput) bool
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID string, changes map[string]any)
}
