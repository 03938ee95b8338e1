package services

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
	"monex/internal/models"
	"monex/internal/uuid"
)

// financeService handles budgets, expenses, assets and the running balance
// of the signed-in user.
type financeService struct {
	ledger *Ledger
	audit  AuditServicer
}

// NewFinanceService creates a new FinanceServicer.
func NewFinanceService(ledger *Ledger, audit AuditServicer) FinanceServicer {
	return &financeService{ledger: ledger, audit: audit}
}

// --- Budgets ---

// AddBudget appends a named budget. The miscellaneous budget always exists,
// so a second one is rejected.
func (s *financeService) AddBudget(budget models.Budget) (*models.Budget, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	if budget.IsMiscellaneous {
		return nil, apperrors.ErrDuplicateMiscBudget
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	if budget.ID == "" {
		budget.ID = uuid.New()
	}
	if _, _, err := l.findBudget(budget.ID); err == nil {
		return nil, apperrors.ErrDuplicateBudget
	}
	budget = budget.Clone()
	if err := assignExpenseIDs(budget.Expenses); err != nil {
		return nil, err
	}

	l.budgets = append(l.budgets, budget)
	l.settle(partBudgets)

	s.audit.Log(l.userID(), AuditCreate, "budget", budget.ID, map[string]any{
		"name": budget.Name, "amount": budget.Amount.String(),
	})
	out := budget.Clone()
	return &out, nil
}

// UpdateBudget replaces the budget with the same id. The miscellaneous
// budget may be renamed or restyled but its amount is fixed.
func (s *financeService) UpdateBudget(budget models.Budget) (*models.Budget, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	target, part, err := l.findBudget(budget.ID)
	if err != nil {
		return nil, err
	}

	budget = budget.Clone()
	budget.IsMiscellaneous = part == partMisc
	if budget.IsMiscellaneous && !budget.Amount.Equal(target.Amount) {
		return nil, apperrors.WithMessage(apperrors.ErrMiscBudgetLocked, "the miscellaneous budget amount cannot be changed")
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	if err := assignExpenseIDs(budget.Expenses); err != nil {
		return nil, err
	}

	*target = budget
	l.settle(part)

	s.audit.Log(l.userID(), AuditUpdate, "budget", budget.ID, map[string]any{
		"name": budget.Name, "amount": budget.Amount.String(),
	})
	out := budget.Clone()
	return &out, nil
}

// DeleteBudget removes a named budget together with its expenses.
func (s *financeService) DeleteBudget(budgetID string) error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return err
	}
	if budgetID == l.misc.ID {
		return apperrors.ErrMiscBudgetLocked
	}
	idx := -1
	for i := range l.budgets {
		if l.budgets[i].ID == budgetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperrors.ErrBudgetNotFound
	}

	removed := l.budgets[idx]
	l.budgets = append(l.budgets[:idx:idx], l.budgets[idx+1:]...)
	l.settle(partBudgets)

	s.audit.Log(l.userID(), AuditDelete, "budget", budgetID, map[string]any{
		"expenses_removed": len(removed.Expenses),
	})
	return nil
}

// --- Expenses ---

// AddExpense logs an expense against budgetID, which may be the
// miscellaneous budget.
func (s *financeService) AddExpense(expense models.Expense, budgetID string) (*models.Expense, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	target, part, err := l.findBudget(budgetID)
	if err != nil {
		return nil, err
	}
	if expense.ID == "" {
		expense.ID = uuid.New()
	} else if target.ExpenseIndex(expense.ID) >= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense id already exists in this budget")
	}
	if expense.Date.IsZero() {
		expense.Date = l.now()
	}

	target.Expenses = append(target.Expenses, expense)
	l.settle(part | partUser)

	s.audit.Log(l.userID(), AuditCreate, "expense", expense.ID, map[string]any{
		"budget_id": budgetID, "amount": expense.Amount.String(),
	})
	return &expense, nil
}

// UpdateExpense replaces an expense in place within its budget.
func (s *financeService) UpdateExpense(expense models.Expense, budgetID string) (*models.Expense, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	target, part, err := l.findBudget(budgetID)
	if err != nil {
		return nil, err
	}
	idx := target.ExpenseIndex(expense.ID)
	if idx < 0 {
		return nil, apperrors.ErrExpenseNotFound
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if expense.Date.IsZero() {
		expense.Date = target.Expenses[idx].Date
	}

	target.Expenses[idx] = expense
	l.settle(part | partUser)

	s.audit.Log(l.userID(), AuditUpdate, "expense", expense.ID, map[string]any{
		"budget_id": budgetID, "amount": expense.Amount.String(),
	})
	return &expense, nil
}

// DeleteExpense removes an expense from its budget.
func (s *financeService) DeleteExpense(expenseID, budgetID string) error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return err
	}
	target, part, err := l.findBudget(budgetID)
	if err != nil {
		return err
	}
	idx := target.ExpenseIndex(expenseID)
	if idx < 0 {
		return apperrors.ErrExpenseNotFound
	}

	target.Expenses = append(target.Expenses[:idx:idx], target.Expenses[idx+1:]...)
	l.settle(part | partUser)

	s.audit.Log(l.userID(), AuditDelete, "expense", expenseID, map[string]any{"budget_id": budgetID})
	return nil
}

// --- Assets ---

// AddAsset validates the asset against its type, derives its amount from the
// detail payload and appends it.
func (s *financeService) AddAsset(asset models.Asset) (*models.Asset, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	asset = asset.Clone()
	asset.Normalize()
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if asset.ID == "" {
		asset.ID = uuid.New()
	} else if l.assetIndex(asset.ID) >= 0 {
		return nil, apperrors.ErrDuplicateAsset
	}
	if asset.DateAdded.IsZero() {
		asset.DateAdded = l.now()
	}

	l.assets = append(l.assets, asset)
	l.settle(partAssets)

	s.audit.Log(l.userID(), AuditCreate, "asset", asset.ID, map[string]any{
		"type": asset.Type, "amount": asset.Amount.String(),
	})
	out := asset.Clone()
	return &out, nil
}

// UpdateAsset replaces the asset with the same id.
func (s *financeService) UpdateAsset(asset models.Asset) (*models.Asset, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	idx := l.assetIndex(asset.ID)
	if idx < 0 {
		return nil, apperrors.ErrAssetNotFound
	}
	asset = asset.Clone()
	asset.Normalize()
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if asset.DateAdded.IsZero() {
		asset.DateAdded = l.assets[idx].DateAdded
	}

	l.assets[idx] = asset
	l.settle(partAssets)

	s.audit.Log(l.userID(), AuditUpdate, "asset", asset.ID, map[string]any{
		"type": asset.Type, "amount": asset.Amount.String(),
	})
	out := asset.Clone()
	return &out, nil
}

// DeleteAsset removes an asset and, for loans, its payment history.
func (s *financeService) DeleteAsset(assetID string) error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return err
	}
	idx := l.assetIndex(assetID)
	if idx < 0 {
		return apperrors.ErrAssetNotFound
	}

	l.assets = append(l.assets[:idx:idx], l.assets[idx+1:]...)
	l.settle(partAssets)

	s.audit.Log(l.userID(), AuditDelete, "asset", assetID, nil)
	return nil
}

// RecordEMIPayment appends an installment to a loan, lowering its remaining
// balance (never below zero) and the mirrored asset amount.
func (s *financeService) RecordEMIPayment(assetID string, amount decimal.Decimal, date time.Time, notes string) (*models.Asset, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	idx := l.assetIndex(assetID)
	if idx < 0 {
		return nil, apperrors.ErrAssetNotFound
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment amount must be greater than zero")
	}

	asset := l.assets[idx].Clone()
	loan := asset.Loan()
	if loan == nil {
		return nil, apperrors.ErrNotALoan
	}
	if date.IsZero() {
		date = l.now()
	}
	loan.RecordPayment(amount, date, notes)
	asset.DeriveAmount()

	l.assets[idx] = asset
	l.settle(partAssets)

	s.audit.Log(l.userID(), AuditCreate, "emi_payment", assetID, map[string]any{
		"amount": amount.String(), "remaining": loan.RemainingAmount.String(),
	})
	out := asset.Clone()
	return &out, nil
}

// --- Queries ---

// Budgets returns copies of the named budgets, in order.
func (s *financeService) Budgets() []models.Budget {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return models.CloneBudgets(l.budgets)
}

// Budget returns a copy of the budget with the given id, including the
// miscellaneous budget.
func (s *financeService) Budget(budgetID string) (*models.Budget, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	b, _, err := l.findBudget(budgetID)
	if err != nil {
		return nil, err
	}
	out := b.Clone()
	return &out, nil
}

func (s *financeService) MiscBudget() models.Budget {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.misc.Clone()
}

func (s *financeService) Assets() models.Portfolio {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.Clone()
}

func (s *financeService) AssetsByCategory(category models.AssetCategory) models.Portfolio {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.ByCategory(category)
}

func (s *financeService) Asset(assetID string) (*models.Asset, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.assetIndex(assetID)
	if idx < 0 {
		return nil, apperrors.ErrAssetNotFound
	}
	out := l.assets[idx].Clone()
	return &out, nil
}

func (s *financeService) CurrentUser() (*models.User, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	u := *l.user
	return &u, nil
}

// Summary computes every dashboard total under one lock.
func (s *financeService) Summary() Summary {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := Summary{
		TotalBudget:      l.totalBudget(),
		TotalSpent:       l.totalSpent(),
		TotalRemaining:   l.totalRemaining(),
		MiscSpent:        l.misc.TotalSpent(),
		TotalInvestments: l.assets.TotalInvestments(),
		TotalLiabilities: l.assets.TotalLiabilities(),
		TotalInsurance:   l.assets.TotalInsurance(),
		NetWorth:         l.assets.NetWorth(),
		BudgetCount:      len(l.budgets),
		AssetCount:       len(l.assets),
	}
	if l.user != nil {
		sum.MonthlyStartBalance = l.user.MonthlyStartBalance
		sum.CurrentBalance = l.user.CurrentBalance
	}
	return sum
}

// TotalBudget is the sum of named budget amounts.
func (s *financeService) TotalBudget() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.totalBudget()
}

// TotalSpent includes miscellaneous spend.
func (s *financeService) TotalSpent() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.totalSpent()
}

// TotalRemaining is the sum of what is left in the named budgets.
func (s *financeService) TotalRemaining() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.totalRemaining()
}

func (s *financeService) TotalInvestments() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.TotalInvestments()
}

func (s *financeService) TotalLiabilities() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.TotalLiabilities()
}

func (s *financeService) TotalInsurance() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.TotalInsurance()
}

func (s *financeService) NetWorth() decimal.Decimal {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.assets.NetWorth()
}

// --- Balance ---

// RecalculateCurrentBalance re-applies the balance identity and persists
// the user.
func (s *financeService) RecalculateCurrentBalance() (*models.User, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	l.settle(partUser)
	u := *l.user
	return &u, nil
}

// UpdateMonthlyBalance sets a new starting balance from the start of
// startDate's day and recalculates the current balance.
func (s *financeService) UpdateMonthlyBalance(amount decimal.Decimal, startDate time.Time) (*models.User, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireUser(); err != nil {
		return nil, err
	}
	if startDate.IsZero() {
		startDate = l.now()
	}
	l.user.SetStartingBalance(amount, startDate)
	l.settle(partUser)

	s.audit.Log(l.userID(), AuditUpdate, "balance", l.user.ID, map[string]any{
		"monthly_start_balance": amount.String(),
		"balance_start_date":    l.user.BalanceStartDate,
	})
	u := *l.user
	return &u, nil
}

// CheckInvariants reports every violated invariant of the current state.
func (s *financeService) CheckInvariants() error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.checkInvariants()
}

func (l *Ledger) totalBudget() decimal.Decimal {
	total := decimal.Zero
	for _, b := range l.budgets {
		total = total.Add(b.Amount)
	}
	return total
}

func (l *Ledger) totalRemaining() decimal.Decimal {
	total := decimal.Zero
	for _, b := range l.budgets {
		total = total.Add(b.RemainingAmount())
	}
	return total
}

// assignExpenseIDs gives new expenses an id and rejects duplicates.
func assignExpenseIDs(expenses []models.Expense) error {
	seen := make(map[string]bool, len(expenses))
	for i := range expenses {
		if expenses[i].ID == "" {
			expenses[i].ID = uuid.New()
		}
		if seen[expenses[i].ID] {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "duplicate expense id "+expenses[i].ID)
		}
		seen[expenses[i].ID] = true
		if err := expenses[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
