package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is the locally stored account. CurrentBalance is derived: it always
// equals MonthlyStartBalance minus everything spent.
type User struct {
	ID                  string          `json:"id"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	Email               string          `json:"email"`
	MonthlyStartBalance decimal.Decimal `json:"monthly_start_balance"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	BalanceStartDate    time.Time       `json:"balance_start_date"`
	PasswordHash        string          `json:"password_hash,omitempty"`
}

// Name is the display name.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EmailMatches compares emails case-insensitively, ignoring surrounding space.
func (u User) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// ApplySpend sets CurrentBalance from the starting balance and total spend.
func (u *User) ApplySpend(totalSpent decimal.Decimal) {
	u.CurrentBalance = u.MonthlyStartBalance.Sub(totalSpent)
}

// SetStartingBalance sets a new starting balance, anchored to the start of
// the given day.
func (u *User) SetStartingBalance(amount decimal.Decimal, start time.Time) {
	u.MonthlyStartBalance = amount
	u.BalanceStartDate = StartOfDay(start)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
