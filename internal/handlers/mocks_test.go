package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"monex/internal/models"
	"monex/internal/services"
)

// --- mock finance service ---

type mockFinanceService struct {
	addBudgetFn        func(budget models.Budget) (*models.Budget, error)
	updateBudgetFn     func(budget models.Budget) (*models.Budget, error)
	deleteBudgetFn     func(budgetID string) error
	addExpenseFn       func(expense models.Expense, budgetID string) (*models.Expense, error)
	updateExpenseFn    func(expense models.Expense, budgetID string) (*models.Expense, error)
	deleteExpenseFn    func(expenseID, budgetID string) error
	addAssetFn         func(asset models.Asset) (*models.Asset, error)
	updateAssetFn      func(asset models.Asset) (*models.Asset, error)
	deleteAssetFn      func(assetID string) error
	recordEMIPaymentFn func(assetID string, amount decimal.Decimal, date time.Time, notes string) (*models.Asset, error)
	budgetsFn          func() []models.Budget
	budgetFn           func(budgetID string) (*models.Budget, error)
	miscBudgetFn       func() models.Budget
	assetsFn           func() models.Portfolio
	assetsByCategoryFn func(category models.AssetCategory) models.Portfolio
	assetFn            func(assetID string) (*models.Asset, error)
	currentUserFn      func() (*models.User, error)
	summaryFn          func() services.Summary
	updateBalanceFn    func(amount decimal.Decimal, startDate time.Time) (*models.User, error)
}

func (m *mockFinanceService) AddBudget(budget models.Budget) (*models.Budget, error) {
	if m.addBudgetFn != nil {
		return m.addBudgetFn(budget)
	}
	return &budget, nil
}

func (m *mockFinanceService) UpdateBudget(budget models.Budget) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(budget)
	}
	return &budget, nil
}

func (m *mockFinanceService) DeleteBudget(budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(budgetID)
	}
	return nil
}

func (m *mockFinanceService) AddExpense(expense models.Expense, budgetID string) (*models.Expense, error) {
	if m.addExpenseFn != nil {
		return m.addExpenseFn(expense, budgetID)
	}
	return &expense, nil
}

func (m *mockFinanceService) UpdateExpense(expense models.Expense, budgetID string) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(expense, budgetID)
	}
	return &expense, nil
}

func (m *mockFinanceService) DeleteExpense(expenseID, budgetID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(expenseID, budgetID)
	}
	return nil
}

func (m *mockFinanceService) AddAsset(asset models.Asset) (*models.Asset, error) {
	if m.addAssetFn != nil {
		return m.addAssetFn(asset)
	}
	return &asset, nil
}

func (m *mockFinanceService) UpdateAsset(asset models.Asset) (*models.Asset, error) {
	if m.updateAssetFn != nil {
		return m.updateAssetFn(asset)
	}
	return &asset, nil
}

func (m *mockFinanceService) DeleteAsset(assetID string) error {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(assetID)
	}
	return nil
}

func (m *mockFinanceService) RecordEMIPayment(assetID string, amount decimal.Decimal, date time.Time, notes string) (*models.Asset, error) {
	if m.recordEMIPaymentFn != nil {
		return m.recordEMIPaymentFn(assetID, amount, date, notes)
	}
	return &models.Asset{ID: assetID}, nil
}

func (m *mockFinanceService) Budgets() []models.Budget {
	if m.budgetsFn != nil {
		return m.budgetsFn()
	}
	return []models.Budget{}
}

func (m *mockFinanceService) Budget(budgetID string) (*models.Budget, error) {
	if m.budgetFn != nil {
		return m.budgetFn(budgetID)
	}
	return &models.Budget{ID: budgetID}, nil
}

func (m *mockFinanceService) MiscBudget() models.Budget {
	if m.miscBudgetFn != nil {
		return m.miscBudgetFn()
	}
	return models.NewMiscellaneousBudget(testMiscID)
}

func (m *mockFinanceService) Assets() models.Portfolio {
	if m.assetsFn != nil {
		return m.assetsFn()
	}
	return models.Portfolio{}
}

func (m *mockFinanceService) AssetsByCategory(category models.AssetCategory) models.Portfolio {
	if m.assetsByCategoryFn != nil {
		return m.assetsByCategoryFn(category)
	}
	return nil
}

func (m *mockFinanceService) Asset(assetID string) (*models.Asset, error) {
	if m.assetFn != nil {
		return m.assetFn(assetID)
	}
	return &models.Asset{ID: assetID}, nil
}

func (m *mockFinanceService) CurrentUser() (*models.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn()
	}
	return &models.User{ID: testUserID, FirstName: "Asha", Email: "asha@example.com"}, nil
}

func (m *mockFinanceService) Summary() services.Summary {
	if m.summaryFn != nil {
		return m.summaryFn()
	}
	return services.Summary{}
}

func (m *mockFinanceService) TotalBudget() decimal.Decimal      { return decimal.Zero }
func (m *mockFinanceService) TotalSpent() decimal.Decimal       { return decimal.Zero }
func (m *mockFinanceService) TotalRemaining() decimal.Decimal   { return decimal.Zero }
func (m *mockFinanceService) TotalInvestments() decimal.Decimal { return decimal.Zero }
func (m *mockFinanceService) TotalLiabilities() decimal.Decimal { return decimal.Zero }
func (m *mockFinanceService) TotalInsurance() decimal.Decimal   { return decimal.Zero }
func (m *mockFinanceService) NetWorth() decimal.Decimal         { return decimal.Zero }

func (m *mockFinanceService) RecalculateCurrentBalance() (*models.User, error) {
	return m.CurrentUser()
}

func (m *mockFinanceService) UpdateMonthlyBalance(amount decimal.Decimal, startDate time.Time) (*models.User, error) {
	if m.updateBalanceFn != nil {
		return m.updateBalanceFn(amount, startDate)
	}
	return &models.User{ID: testUserID, MonthlyStartBalance: amount}, nil
}

func (m *mockFinanceService) CheckInvariants() error { return nil }

var _ services.FinanceServicer = (*mockFinanceService)(nil)

// --- mock session service ---

type mockSessionService struct {
	signupFn  func(input services.SignupInput) (*services.Session, error)
	loginFn   func(input services.LoginInput) (*services.Session, error)
	logoutFn  func() error
	restoreFn func() (*services.Session, error)
	current   *services.Session
}

func (m *mockSessionService) Signup(input services.SignupInput) (*services.Session, error) {
	if m.signupFn != nil {
		return m.signupFn(input)
	}
	return testSession(), nil
}

func (m *mockSessionService) Login(input services.LoginInput) (*services.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(input)
	}
	return testSession(), nil
}

func (m *mockSessionService) Logout() error {
	if m.logoutFn != nil {
		return m.logoutFn()
	}
	return nil
}

func (m *mockSessionService) Restore() (*services.Session, error) {
	if m.restoreFn != nil {
		return m.restoreFn()
	}
	return testSession(), nil
}

func (m *mockSessionService) Current() (*services.Session, bool) {
	return m.current, m.current != nil
}

var _ services.SessionServicer = (*mockSessionService)(nil)
