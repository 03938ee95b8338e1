package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
	"monex/internal/models"
	"monex/internal/report"
)

type summaryCmd struct {
	env *Env

	currency string
	raw      bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the full financial report" }
func (*summaryCmd) Usage() string {
	return `monex summary [-currency <ISO 4217>] [-raw]

  Prints balances, budgets, expenses, assets and net worth as a markdown
  report.
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.currency, "currency", "", "Display currency (defaults to CURRENCY).")
	f.BoolVar(&p.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (p *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := p.env.signedIn()
	if err != nil {
		return p.env.fail(err)
	}
	code, err := currency(p.currency, a)
	if err != nil {
		return p.env.fail(err)
	}
	snap, err := report.Collect(a.Finance, time.Now())
	if err != nil {
		return p.env.fail(err)
	}

	p.env.printMarkdown(report.Build(snap, code), p.raw)
	return subcommands.ExitSuccess
}

type budgetsCmd struct {
	env *Env

	currency string
	expenses bool
	raw      bool
}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "list budgets and what has been spent" }
func (*budgetsCmd) Usage() string {
	return `monex budgets [-expenses] [-currency <ISO 4217>] [-raw]
`
}

func (p *budgetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.currency, "currency", "", "Display currency (defaults to CURRENCY).")
	f.BoolVar(&p.expenses, "expenses", false, "List the expenses of every budget.")
	f.BoolVar(&p.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (p *budgetsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := p.env.signedIn()
	if err != nil {
		return p.env.fail(err)
	}
	code, err := currency(p.currency, a)
	if err != nil {
		return p.env.fail(err)
	}

	budgets := append(a.Finance.Budgets(), a.Finance.MiscBudget())
	p.env.printMarkdown(budgetsMarkdown(budgets, code, p.expenses), p.raw)
	return subcommands.ExitSuccess
}

func budgetsMarkdown(budgets []models.Budget, code string, withExpenses bool) string {
	fm := func(d decimal.Decimal) string { return report.FormatAmount(d, code) }
	var b strings.Builder

	b.WriteString("# Budgets\n\n")
	b.WriteString("| Budget | Amount | Spent | Remaining | Used |\n|---|---:|---:|---:|---:|\n")
	for _, budget := range budgets {
		if budget.IsMiscellaneous {
			fmt.Fprintf(&b, "| %s | - | %s | - | - |\n", budget.Name, fm(budget.TotalSpent()))
			continue
		}
		used := report.Percent(budget.SpentPercentage())
		if budget.IsOverBudget() {
			used += " (over)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			budget.Name, fm(budget.Amount), fm(budget.TotalSpent()), fm(budget.RemainingAmount()), used)
	}

	if withExpenses {
		for _, budget := range budgets {
			if len(budget.Expenses) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n## %s\n\n", budget.Name)
			for _, e := range budget.Expenses {
				fmt.Fprintf(&b, "- %s %s: %s\n", e.Date.Format("2006-01-02"), e.Title, fm(e.Amount))
			}
		}
	}
	return b.String()
}

type assetsCmd struct {
	env *Env

	category string
	currency string
	raw      bool
}

func (*assetsCmd) Name() string     { return "assets" }
func (*assetsCmd) Synopsis() string { return "list investments, loans and insurance" }
func (*assetsCmd) Usage() string {
	return `monex assets [-category investments|loans|insurance] [-currency <ISO 4217>] [-raw]
`
}

func (p *assetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.category, "category", "", "Only list assets in this category.")
	f.StringVar(&p.currency, "currency", "", "Display currency (defaults to CURRENCY).")
	f.BoolVar(&p.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (p *assetsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	categories := models.AllAssetCategories()
	if p.category != "" {
		c, ok := models.ParseAssetCategory(p.category)
		if !ok {
			fmt.Fprintf(p.env.Err, "Error: unknown category %q\n", p.category)
			return subcommands.ExitUsageError
		}
		categories = []models.AssetCategory{c}
	}

	a, err := p.env.signedIn()
	if err != nil {
		return p.env.fail(err)
	}
	code, err := currency(p.currency, a)
	if err != nil {
		return p.env.fail(err)
	}

	p.env.printMarkdown(assetsMarkdown(a.Finance.Assets(), categories, code, a.Finance.NetWorth()), p.raw)
	return subcommands.ExitSuccess
}

func assetsMarkdown(assets models.Portfolio, categories []models.AssetCategory, code string, netWorth decimal.Decimal) string {
	fm := func(d decimal.Decimal) string { return report.FormatAmount(d, code) }
	var b strings.Builder

	b.WriteString("# Assets\n")
	for _, c := range categories {
		group := assets.ByCategory(c)
		fmt.Fprintf(&b, "\n## %s (%s)\n\n", c.Label(), fm(group.TotalByCategory(c)))
		if len(group) == 0 {
			b.WriteString("None.\n")
			continue
		}
		b.WriteString("| Name | Type | Value | Added |\n|---|---|---:|---|\n")
		for _, asset := range group {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				asset.Name, asset.Type.Label(), fm(asset.Amount), asset.DateAdded.Format("2006-01-02"))
		}
	}
	if len(categories) > 1 {
		fmt.Fprintf(&b, "\n**Net worth: %s**\n", fm(netWorth))
	}
	return b.String()
}

type auditCmd struct {
	env *Env

	limit int
	raw   bool
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "show the most recent changes" }
func (*auditCmd) Usage() string {
	return `monex audit [-n <count>] [-raw]
`
}

func (p *auditCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.limit, "n", 20, "Number of entries to show, newest last.")
	f.BoolVar(&p.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (p *auditCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := p.env.signedIn()
	if err != nil {
		return p.env.fail(err)
	}
	sess, ok := a.Sessions.Current()
	if !ok {
		return p.env.fail(apperrors.ErrNotSignedIn)
	}
	entries, err := a.Repo.AuditEntries(sess.UserID)
	if err != nil {
		return p.env.fail(err)
	}
	if p.limit > 0 && len(entries) > p.limit {
		entries = entries[len(entries)-p.limit:]
	}

	var b strings.Builder
	b.WriteString("# Recent changes\n\n")
	if len(entries) == 0 {
		b.WriteString("Nothing recorded yet.\n")
	} else {
		b.WriteString("| When | Action | Resource | ID |\n|---|---|---|---|\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Action, e.ResourceType, e.ResourceID)
		}
	}
	p.env.printMarkdown(b.String(), p.raw)
	return subcommands.ExitSuccess
}
