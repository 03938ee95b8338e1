package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"monex/internal/models"
	"monex/internal/pagination"
	"monex/internal/services"
)

// BudgetHandler handles budget and expense requests.
type BudgetHandler struct {
	finance services.FinanceServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(finance services.FinanceServicer) *BudgetHandler {
	return &BudgetHandler{finance: finance}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name   string           `json:"name" binding:"required,min=1,max=100"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Icon   string           `json:"icon" binding:"omitempty,max=100"`
	Color  string           `json:"color" binding:"omitempty,color_token"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name   string           `json:"name" binding:"omitempty,min=1,max=100"`
	Amount *decimal.Decimal `json:"amount"`
	Icon   *string          `json:"icon" binding:"omitempty,max=100"`
	Color  *string          `json:"color" binding:"omitempty,color_token"`
}

// ExpenseRequest represents the request payload for creating or replacing an
// expense.
type ExpenseRequest struct {
	Title  string           `json:"title" binding:"required,min=1,max=200"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Date   *time.Time       `json:"date"`
	Note   string           `json:"note" binding:"omitempty,max=1000"`
}

// BudgetView is a budget with its derived totals.
type BudgetView struct {
	models.Budget
	TotalSpent      decimal.Decimal `json:"total_spent"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	SpentPercentage decimal.Decimal `json:"spent_percentage"`
	IsOverBudget    bool            `json:"is_over_budget"`
}

func newBudgetView(b models.Budget) BudgetView {
	return BudgetView{
		Budget:          b,
		TotalSpent:      b.TotalSpent(),
		RemainingAmount: b.RemainingAmount(),
		SpentPercentage: b.SpentPercentage(),
		IsOverBudget:    b.IsOverBudget(),
	}
}

func (r ExpenseRequest) toExpense(id string) models.Expense {
	e := models.Expense{ID: id, Title: r.Title, Amount: *r.Amount, Note: r.Note}
	if r.Date != nil {
		e.Date = *r.Date
	}
	return e
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a named budget with a target amount
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} BudgetView "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.finance.AddBudget(models.Budget{
		Name:     req.Name,
		Amount:   *req.Amount,
		Icon:     req.Icon,
		Color:    req.Color,
		Expenses: []models.Expense{},
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": newBudgetView(*budget)})
}

// GetBudgets handles listing the named budgets.
// @Summary     Get budgets
// @Description Get a paginated list of named budgets in creation order
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[BudgetView] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budgets := h.finance.Budgets()
	views := make([]BudgetView, len(budgets))
	for i := range budgets {
		views[i] = newBudgetView(budgets[i])
	}
	c.JSON(http.StatusOK, pagination.Paginate(views, page))
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a budget, including the miscellaneous one, with its expenses
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} BudgetView "Budget"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.finance.Budget(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": newBudgetView(*budget)})
}

// UpdateBudget handles updating a budget.
// @Summary     Update budget
// @Description Rename, restyle or re-target a budget. The miscellaneous budget's amount is fixed.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} BudgetView "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Miscellaneous budget locked"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.finance.Budget(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if req.Name != "" {
		budget.Name = req.Name
	}
	if req.Amount != nil {
		budget.Amount = *req.Amount
	}
	if req.Icon != nil {
		budget.Icon = *req.Icon
	}
	if req.Color != nil {
		budget.Color = *req.Color
	}

	updated, err := h.finance.UpdateBudget(*budget)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": newBudgetView(*updated)})
}

// DeleteBudget handles deleting a budget and its expenses.
// @Summary     Delete budget
// @Description Delete a named budget together with its expenses
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Miscellaneous budget locked"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.finance.DeleteBudget(budgetID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetMiscBudget handles retrieving the miscellaneous budget.
// @Summary     Get miscellaneous budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} BudgetView "Miscellaneous budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /misc [get]
func (h *BudgetHandler) GetMiscBudget(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": newBudgetView(h.finance.MiscBudget())})
}

// ListExpenses handles listing a budget's expenses.
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array}  models.Expense "Expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/expenses [get]
func (h *BudgetHandler) ListExpenses(c *gin.Context) {
	budgetID, ok := h.expenseBudgetID(c)
	if !ok {
		return
	}
	budget, err := h.finance.Budget(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": budget.Expenses})
}

// CreateExpense handles logging an expense against a budget.
// @Summary     Add expense
// @Description Log an expense; the current balance is reduced by its amount
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Budget ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/expenses [post]
func (h *BudgetHandler) CreateExpense(c *gin.Context) {
	budgetID, ok := h.expenseBudgetID(c)
	if !ok {
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.finance.AddExpense(req.toExpense(""), budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// UpdateExpense handles replacing an expense.
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id         path string         true "Budget ID"
// @Param       expense_id path string         true "Expense ID"
// @Param       request    body ExpenseRequest true "Expense details"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or expense not found"
// @Router      /budgets/{id}/expenses/{expense_id} [put]
func (h *BudgetHandler) UpdateExpense(c *gin.Context) {
	budgetID, ok := h.expenseBudgetID(c)
	if !ok {
		return
	}
	expenseID, err := parsePathID(c, "expense_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.finance.UpdateExpense(req.toExpense(expenseID), budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles removing an expense.
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id         path string true "Budget ID"
// @Param       expense_id path string true "Expense ID"
// @Success     200 {object} map[string]string "Expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or expense not found"
// @Router      /budgets/{id}/expenses/{expense_id} [delete]
func (h *BudgetHandler) DeleteExpense(c *gin.Context) {
	budgetID, ok := h.expenseBudgetID(c)
	if !ok {
		return
	}
	expenseID, err := parsePathID(c, "expense_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.finance.DeleteExpense(expenseID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// expenseBudgetID resolves the budget an expense route addresses: the :id
// path parameter, or the miscellaneous budget on /misc routes. It writes the
// error response itself and reports false on failure.
func (h *BudgetHandler) expenseBudgetID(c *gin.Context) (string, bool) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return "", false
	}
	if c.Param("id") == "" {
		return h.finance.MiscBudget().ID, true
	}
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return "", false
	}
	return budgetID, true
}
