package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetDetails is the type-specific payload of an Asset. Exactly one concrete
// implementation exists per DetailsKind, so an asset can never carry two
// payloads at once.
type AssetDetails interface {
	// Kind identifies the payload schema.
	Kind() DetailsKind
	// Valuation is the asset amount implied by the payload.
	Valuation() decimal.Decimal

	cloneDetails() AssetDetails
	validate() error
}

// MutualFundDetails tracks a fund position. Lumpsum and SIP are informational;
// the valuation is the user-entered current value.
type MutualFundDetails struct {
	Lumpsum      decimal.Decimal `json:"lumpsum"`
	SIPMonthly   decimal.Decimal `json:"sip_monthly"`
	SIPStartDate *time.Time      `json:"sip_start_date,omitempty"`
	CurrentValue decimal.Decimal `json:"current_value"`
}

func (d *MutualFundDetails) Kind() DetailsKind          { return DetailsMutualFund }
func (d *MutualFundDetails) Valuation() decimal.Decimal { return d.CurrentValue }

// Invested is the one-time amount put in.
func (d *MutualFundDetails) Invested() decimal.Decimal { return d.Lumpsum }

func (d *MutualFundDetails) cloneDetails() AssetDetails {
	c := *d
	if d.SIPStartDate != nil {
		t := *d.SIPStartDate
		c.SIPStartDate = &t
	}
	return &c
}

func (d *MutualFundDetails) validate() error {
	return nonNegative(
		amountField{"lumpsum", d.Lumpsum},
		amountField{"sip_monthly", d.SIPMonthly},
		amountField{"current_value", d.CurrentValue},
	)
}

// StockDetails is a direct equity holding.
type StockDetails struct {
	CompanyName    string          `json:"company_name"`
	NumberOfShares int             `json:"number_of_shares" binding:"min=0"`
	PricePerShare  decimal.Decimal `json:"price_per_share"`
	PurchaseDate   time.Time       `json:"purchase_date"`
}

func (d *StockDetails) Kind() DetailsKind { return DetailsStock }

// Valuation is shares × price per share.
func (d *StockDetails) Valuation() decimal.Decimal {
	return decimal.NewFromInt(int64(d.NumberOfShares)).Mul(d.PricePerShare)
}

func (d *StockDetails) cloneDetails() AssetDetails { c := *d; return &c }

func (d *StockDetails) validate() error {
	if d.NumberOfShares < 0 {
		return fmt.Errorf("number_of_shares must not be negative")
	}
	return nonNegative(amountField{"price_per_share", d.PricePerShare})
}

// Metal types accepted by GoldDetails.
const (
	MetalGold   = "Gold"
	MetalSilver = "Silver"
)

// GoldDetails is a precious-metal holding.
type GoldDetails struct {
	WeightInGrams decimal.Decimal `json:"weight_in_grams"`
	PricePerGram  decimal.Decimal `json:"price_per_gram"`
	MetalType     string          `json:"metal_type" binding:"omitempty,metal_type"`
}

func (d *GoldDetails) Kind() DetailsKind { return DetailsGold }

// Valuation is weight × price per gram.
func (d *GoldDetails) Valuation() decimal.Decimal { return d.WeightInGrams.Mul(d.PricePerGram) }

func (d *GoldDetails) cloneDetails() AssetDetails { c := *d; return &c }

func (d *GoldDetails) validate() error {
	if d.MetalType != "" && d.MetalType != MetalGold && d.MetalType != MetalSilver {
		return fmt.Errorf("metal_type must be %q or %q", MetalGold, MetalSilver)
	}
	return nonNegative(
		amountField{"weight_in_grams", d.WeightInGrams},
		amountField{"price_per_gram", d.PricePerGram},
	)
}

// FixedDepositDetails is a bank term deposit.
type FixedDepositDetails struct {
	BankName        string          `json:"bank_name"`
	DepositDate     time.Time       `json:"deposit_date"`
	MaturityDate    time.Time       `json:"maturity_date"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
}

func (d *FixedDepositDetails) Kind() DetailsKind          { return DetailsFixedDeposit }
func (d *FixedDepositDetails) Valuation() decimal.Decimal { return d.PrincipalAmount }

// TermMonths is the number of whole months between deposit and maturity.
func (d *FixedDepositDetails) TermMonths() int {
	if d.MaturityDate.Before(d.DepositDate) {
		return 0
	}
	y1, m1, _ := d.DepositDate.Date()
	y2, m2, _ := d.MaturityDate.Date()
	months := (y2-y1)*12 + int(m2-m1)
	if d.MaturityDate.Day() < d.DepositDate.Day() && months > 0 {
		months--
	}
	return months
}

func (d *FixedDepositDetails) cloneDetails() AssetDetails { c := *d; return &c }

func (d *FixedDepositDetails) validate() error {
	if !d.MaturityDate.IsZero() && d.MaturityDate.Before(d.DepositDate) {
		return fmt.Errorf("maturity_date must not be before deposit_date")
	}
	return nonNegative(
		amountField{"interest_rate", d.InterestRate},
		amountField{"principal_amount", d.PrincipalAmount},
	)
}

// InsuranceDetails is a policy; its valuation is the coverage amount.
type InsuranceDetails struct {
	MonthlyPremium decimal.Decimal `json:"monthly_premium"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
	StartDate      time.Time       `json:"start_date"`
	PolicyNumber   string          `json:"policy_number"`
}

func (d *InsuranceDetails) Kind() DetailsKind          { return DetailsInsurance }
func (d *InsuranceDetails) Valuation() decimal.Decimal { return d.CoverageAmount }

func (d *InsuranceDetails) cloneDetails() AssetDetails { c := *d; return &c }

func (d *InsuranceDetails) validate() error {
	return nonNegative(
		amountField{"monthly_premium", d.MonthlyPremium},
		amountField{"coverage_amount", d.CoverageAmount},
	)
}

type amountField struct {
	name  string
	value decimal.Decimal
}

// nonNegative reports the first negative field, in argument order.
func nonNegative(fields ...amountField) error {
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	return nil
}

// newDetails returns an empty payload for kind.
func newDetails(kind DetailsKind) (AssetDetails, error) {
	switch kind {
	case DetailsMutualFund:
		return &MutualFundDetails{}, nil
	case DetailsStock:
		return &StockDetails{}, nil
	case DetailsGold:
		return &GoldDetails{}, nil
	case DetailsFixedDeposit:
		return &FixedDepositDetails{}, nil
	case DetailsLoan:
		return &LoanDetails{}, nil
	case DetailsInsurance:
		return &InsuranceDetails{}, nil
	}
	return nil, fmt.Errorf("unknown details kind %q", kind)
}

// detailsEnvelope is the tagged wire form of AssetDetails.
type detailsEnvelope struct {
	Kind DetailsKind     `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func encodeDetails(d AssetDetails) (*detailsEnvelope, error) {
	if d == nil {
		return nil, nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return &detailsEnvelope{Kind: d.Kind(), Data: data}, nil
}

func decodeDetails(env *detailsEnvelope) (AssetDetails, error) {
	if env == nil {
		return nil, nil
	}
	d, err := newDetails(env.Kind)
	if err != nil {
		return nil, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, d); err != nil {
			return nil, fmt.Errorf("decode %s details: %w", env.Kind, err)
		}
	}
	return d, nil
}

// ParseDetails decodes a bare payload of the given kind, as sent by clients
// that already know the asset type.
func ParseDetails(kind DetailsKind, data []byte) (AssetDetails, error) {
	return decodeDetails(&detailsEnvelope{Kind: kind, Data: data})
}
