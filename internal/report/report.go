// Package report renders the active user's finances as a markdown document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"monex/internal/models"
	"monex/internal/services"
)

const dateLayout = "2006-01-02"

// Snapshot is a consistent copy of everything a report shows.
type Snapshot struct {
	User        models.User
	Budgets     []models.Budget
	Misc        models.Budget
	Assets      models.Portfolio
	Summary     services.Summary
	GeneratedAt time.Time
}

// Collect reads a snapshot from the finance service. It fails with
// NOT_SIGNED_IN when no session is active.
func Collect(finance services.FinanceServicer, now time.Time) (Snapshot, error) {
	user, err := finance.CurrentUser()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		User:        *user,
		Budgets:     finance.Budgets(),
		Misc:        finance.MiscBudget(),
		Assets:      finance.Assets(),
		Summary:     finance.Summary(),
		GeneratedAt: now,
	}, nil
}

// FormatAmount renders d in the given ISO 4217 currency, e.g. "₹1,234.50".
// Unknown currency codes fall back to a plain two-decimal number.
func FormatAmount(d decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return d.StringFixed(2) + " " + currency
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// Percent renders a fraction such as 0.25 as "25.0%".
func Percent(fraction decimal.Decimal) string {
	return fraction.Shift(2).StringFixed(1) + "%"
}

// Build returns the markdown report for snap, with amounts in currency.
func Build(snap Snapshot, currency string) string {
	fm := func(d decimal.Decimal) string { return FormatAmount(d, currency) }
	var b strings.Builder

	fmt.Fprintf(&b, "# Financial report for %s\n\n", displayName(snap.User))
	fmt.Fprintf(&b, "_Generated %s_\n\n", snap.GeneratedAt.Format("2006-01-02 15:04"))

	b.WriteString("## Balance\n\n")
	fmt.Fprintf(&b, "- Monthly starting balance: %s (since %s)\n",
		fm(snap.User.MonthlyStartBalance), snap.User.BalanceStartDate.Format(dateLayout))
	fmt.Fprintf(&b, "- Current balance: %s\n\n", fm(snap.User.CurrentBalance))

	s := snap.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total budget | %s |\n", fm(s.TotalBudget))
	fmt.Fprintf(&b, "| Total spent | %s |\n", fm(s.TotalSpent))
	fmt.Fprintf(&b, "| Remaining in budgets | %s |\n", fm(s.TotalRemaining))
	fmt.Fprintf(&b, "| Miscellaneous spend | %s |\n", fm(s.MiscSpent))
	fmt.Fprintf(&b, "| Investments | %s |\n", fm(s.TotalInvestments))
	fmt.Fprintf(&b, "| Liabilities | %s |\n", fm(s.TotalLiabilities))
	fmt.Fprintf(&b, "| Insurance cover | %s |\n\n", fm(s.TotalInsurance))

	b.WriteString("## Budgets\n\n")
	if len(snap.Budgets) == 0 {
		b.WriteString("No budgets yet.\n\n")
	}
	for _, budget := range snap.Budgets {
		fmt.Fprintf(&b, "### %s\n\n", budget.Name)
		fmt.Fprintf(&b, "%s of %s spent (%s), %s remaining",
			fm(budget.TotalSpent()), fm(budget.Amount), Percent(budget.SpentPercentage()), fm(budget.RemainingAmount()))
		if budget.IsOverBudget() {
			b.WriteString(" **over budget**")
		}
		b.WriteString("\n\n")
		writeExpenses(&b, budget.Expenses, fm)
	}

	b.WriteString("## Miscellaneous expenses\n\n")
	if len(snap.Misc.Expenses) == 0 {
		b.WriteString("None.\n\n")
	} else {
		writeExpenses(&b, snap.Misc.Expenses, fm)
	}

	b.WriteString("## Assets\n\n")
	if len(snap.Assets) == 0 {
		b.WriteString("No assets tracked.\n\n")
	}
	for _, category := range models.AllAssetCategories() {
		group := snap.Assets.ByCategory(category)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%s)\n\n", category.Label(), fm(group.TotalByCategory(category)))
		for _, a := range group {
			fmt.Fprintf(&b, "- **%s** (%s): %s", a.Name, a.Type.Label(), fm(a.Amount))
			if line := detailLine(a, fm); line != "" {
				b.WriteString(". " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Net worth\n\n")
	fmt.Fprintf(&b, "**%s** (investments minus liabilities)\n", fm(s.NetWorth))
	return b.String()
}

func displayName(u models.User) string {
	if name := u.Name(); name != "" {
		return name
	}
	return u.Email
}

func writeExpenses(b *strings.Builder, expenses []models.Expense, fm func(decimal.Decimal) string) {
	if len(expenses) == 0 {
		b.WriteString("No expenses.\n\n")
		return
	}
	for _, e := range expenses {
		fmt.Fprintf(b, "- %s %s: %s", e.Date.Format(dateLayout), e.Title, fm(e.Amount))
		if e.Note != "" {
			fmt.Fprintf(b, " (%s)", e.Note)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func detailLine(a models.Asset, fm func(decimal.Decimal) string) string {
	switch d := a.Details.(type) {
	case *models.MutualFundDetails:
		line := fmt.Sprintf("Invested %s, SIP %s/month", fm(d.Invested()), fm(d.SIPMonthly))
		if d.SIPStartDate != nil {
			line += " since " + d.SIPStartDate.Format(dateLayout)
		}
		return line
	case *models.StockDetails:
		return fmt.Sprintf("%d shares of %s at %s", d.NumberOfShares, d.CompanyName, fm(d.PricePerShare))
	case *models.GoldDetails:
		metal := d.MetalType
		if metal == "" {
			metal = models.MetalGold
		}
		return fmt.Sprintf("%sg of %s at %s/g", d.WeightInGrams.String(), metal, fm(d.PricePerGram))
	case *models.FixedDepositDetails:
		return fmt.Sprintf("%s, principal %s at %s%%, matures %s (%d months)",
			d.BankName, fm(d.PrincipalAmount), d.InterestRate.String(), d.MaturityDate.Format(dateLayout), d.TermMonths())
	case *models.LoanDetails:
		return fmt.Sprintf("EMI %s, %d of %d payments made, %s paid off, %s outstanding of %s",
			fm(d.MonthlyEMI), d.PaymentsMade(), d.Tenure, Percent(d.PaidOff()), fm(d.RemainingAmount), fm(d.TotalLoanAmount))
	case *models.InsuranceDetails:
		line := fmt.Sprintf("Premium %s/month, cover %s", fm(d.MonthlyPremium), fm(d.CoverageAmount))
		if d.PolicyNumber != "" {
			line += ", policy " + d.PolicyNumber
		}
		return line
	}
	return ""
}
