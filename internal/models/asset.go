package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
)

// Asset is a tracked investment, loan or insurance policy. Amount means the
// current valuation for investments, the outstanding balance for loans and
// the coverage for insurance; when Details is set it is derived from it.
type Asset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Type      AssetType       `json:"type"`
	Category  AssetCategory   `json:"category"`
	Notes     string          `json:"notes"`
	DateAdded time.Time       `json:"date_added"`
	Details   AssetDetails    `json:"-"`
}

type assetJSON struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Amount    decimal.Decimal  `json:"amount"`
	Type      AssetType        `json:"type"`
	Category  AssetCategory    `json:"category"`
	Notes     string           `json:"notes"`
	DateAdded time.Time        `json:"date_added"`
	Details   *detailsEnvelope `json:"details,omitempty"`
}

// MarshalJSON writes Details as a {"kind", "data"} envelope.
func (a Asset) MarshalJSON() ([]byte, error) {
	env, err := encodeDetails(a.Details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(assetJSON{
		ID:        a.ID,
		Name:      a.Name,
		Amount:    a.Amount,
		Type:      a.Type,
		Category:  a.Category,
		Notes:     a.Notes,
		DateAdded: a.DateAdded,
		Details:   env,
	})
}

// UnmarshalJSON restores the concrete Details type from its envelope kind.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw assetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	details, err := decodeDetails(raw.Details)
	if err != nil {
		return err
	}
	*a = Asset{
		ID:        raw.ID,
		Name:      raw.Name,
		Amount:    raw.Amount,
		Type:      raw.Type,
		Category:  raw.Category,
		Notes:     raw.Notes,
		DateAdded: raw.DateAdded,
		Details:   details,
	}
	return nil
}

// Loan returns the loan payload, or nil for assets without one.
func (a *Asset) Loan() *LoanDetails {
	if loan, ok := a.Details.(*LoanDetails); ok {
		return loan
	}
	return nil
}

// Normalize fills the category from the type when it is missing and derives
// Amount from the detail payload.
func (a *Asset) Normalize() {
	if a.Category == "" {
		a.Category = a.Type.Category()
	}
	a.DeriveAmount()
}

// DeriveAmount recomputes Amount from Details. Assets without a payload keep
// the amount entered by the user.
func (a *Asset) DeriveAmount() {
	if a.Details != nil {
		a.Amount = a.Details.Valuation()
	}
}

// Validate enforces the type/category table and the payload schema.
func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name is required")
	}
	if !a.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidAssetType, "unsupported asset type "+string(a.Type))
	}
	if a.Category != a.Type.Category() {
		return apperrors.WithMessage(apperrors.ErrCategoryMismatch,
			string(a.Type)+" belongs to "+string(a.Type.Category())+", not "+string(a.Category))
	}
	if a.Details != nil {
		if a.Details.Kind() != a.Type.DetailsKind() {
			return apperrors.WithMessage(apperrors.ErrDetailsMismatch,
				string(a.Type)+" requires "+string(a.Type.DetailsKind())+" details, got "+string(a.Details.Kind()))
		}
		if err := a.Details.validate(); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}
	if a.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset amount must not be negative")
	}
	return nil
}

// Clone returns a deep copy, including the detail payload.
func (a Asset) Clone() Asset {
	out := a
	if a.Details != nil {
		out.Details = a.Details.cloneDetails()
	}
	return out
}

// Portfolio is a set of assets with category totals.
type Portfolio []Asset

// Clone deep-copies the portfolio.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	for i := range p {
		out[i] = p[i].Clone()
	}
	return out
}

// TotalByCategory sums Amount over assets in category c.
func (p Portfolio) TotalByCategory(c AssetCategory) decimal.Decimal {
	total := decimal.Zero
	for _, a := range p {
		if a.Category == c {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// TotalInvestments is the value of all investment assets.
func (p Portfolio) TotalInvestments() decimal.Decimal {
	return p.TotalByCategory(AssetCategoryInvestments)
}

// TotalLiabilities is the outstanding balance of all loans.
func (p Portfolio) TotalLiabilities() decimal.Decimal {
	return p.TotalByCategory(AssetCategoryLoans)
}

// TotalInsurance is the total coverage of all policies.
func (p Portfolio) TotalInsurance() decimal.Decimal {
	return p.TotalByCategory(AssetCategoryInsurance)
}

// NetWorth is investments minus liabilities. Insurance coverage is not wealth.
func (p Portfolio) NetWorth() decimal.Decimal {
	return p.TotalInvestments().Sub(p.TotalLiabilities())
}

// ByCategory returns the assets in category c, in order.
func (p Portfolio) ByCategory(c AssetCategory) Portfolio {
	var out Portfolio
	for _, a := range p {
		if a.Category == c {
			out = append(out, a.Clone())
		}
	}
	return out
}
