package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EMIPayment is one recorded installment against a loan.
type EMIPayment struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Notes       string          `json:"notes"`
}

// LoanDetails tracks a liability and its append-only payment history.
// The owning asset's Amount mirrors RemainingAmount.
type LoanDetails struct {
	TotalLoanAmount decimal.Decimal `json:"total_loan_amount"`
	MonthlyEMI      decimal.Decimal `json:"monthly_emi"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	StartDate       time.Time       `json:"start_date"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	Tenure          int             `json:"tenure"` // months
	EMIPayments     []EMIPayment    `json:"emi_payments"`
}

func (d *LoanDetails) Kind() DetailsKind          { return DetailsLoan }
func (d *LoanDetails) Valuation() decimal.Decimal { return d.RemainingAmount }

// RecordPayment appends a payment and lowers RemainingAmount by its amount,
// never below zero. It returns the new remaining balance.
func (d *LoanDetails) RecordPayment(amount decimal.Decimal, date time.Time, notes string) decimal.Decimal {
	d.EMIPayments = append(d.EMIPayments, EMIPayment{Amount: amount, PaymentDate: date, Notes: notes})
	remaining := d.RemainingAmount.Sub(amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	d.RemainingAmount = remaining
	return remaining
}

// PaymentsMade is the number of recorded installments.
func (d *LoanDetails) PaymentsMade() int { return len(d.EMIPayments) }

// TotalPaid sums all recorded installments.
func (d *LoanDetails) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.EMIPayments {
		total = total.Add(p.Amount)
	}
	return total
}

// PaidOff is the repaid fraction of the loan, 0 when the total is unknown.
func (d *LoanDetails) PaidOff() decimal.Decimal {
	if !d.TotalLoanAmount.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(d.RemainingAmount.Div(d.TotalLoanAmount))
}

func (d *LoanDetails) cloneDetails() AssetDetails {
	c := *d
	if d.EMIPayments != nil {
		c.EMIPayments = make([]EMIPayment, len(d.EMIPayments))
		copy(c.EMIPayments, d.EMIPayments)
	}
	return &c
}

func (d *LoanDetails) validate() error {
	return nonNegative(
		amountField{"total_loan_amount", d.TotalLoanAmount},
		amountField{"monthly_emi", d.MonthlyEMI},
		amountField{"remaining_amount", d.RemainingAmount},
		amountField{"interest_rate", d.InterestRate},
	)
}
