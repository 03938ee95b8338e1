package models

import "strings"

// AssetCategory groups asset types for totals and net worth.
type AssetCategory string

const (
	AssetCategoryInvestments AssetCategory = "investments"
	AssetCategoryLoans       AssetCategory = "loans"
	AssetCategoryInsurance   AssetCategory = "insurance"
)

// AssetType is one of the eleven concrete kinds of tracked asset.
type AssetType string

const (
	AssetTypeMutualFunds     AssetType = "mutual_funds"
	AssetTypeStocks          AssetType = "stocks"
	AssetTypeGold            AssetType = "gold"
	AssetTypeFixedDeposit    AssetType = "fixed_deposit"
	AssetTypeHomeLoan        AssetType = "home_loan"
	AssetTypeCarLoan         AssetType = "car_loan"
	AssetTypeEducationLoan   AssetType = "education_loan"
	AssetTypeOtherLoan       AssetType = "other_loan"
	AssetTypeHealthInsurance AssetType = "health_insurance"
	AssetTypeLifeInsurance   AssetType = "life_insurance"
	AssetTypeLIC             AssetType = "lic"
)

// DetailsKind names the detail payload schema an asset type carries.
type DetailsKind string

const (
	DetailsMutualFund   DetailsKind = "mutual_fund"
	DetailsStock        DetailsKind = "stock"
	DetailsGold         DetailsKind = "gold"
	DetailsFixedDeposit DetailsKind = "fixed_deposit"
	DetailsLoan         DetailsKind = "loan"
	DetailsInsurance    DetailsKind = "insurance"
)

type assetTypeInfo struct {
	category AssetCategory
	details  DetailsKind
	label    string
	icon     string
	color    string
}

// assetTypes is the authoritative type -> category mapping.
var assetTypes = map[AssetType]assetTypeInfo{
	AssetTypeMutualFunds:     {AssetCategoryInvestments, DetailsMutualFund, "Mutual Funds", "chart.pie.fill", "blue"},
	AssetTypeStocks:          {AssetCategoryInvestments, DetailsStock, "Stocks", "chart.line.uptrend.xyaxis", "green"},
	AssetTypeGold:            {AssetCategoryInvestments, DetailsGold, "Gold/Silver", "crown.fill", "yellow"},
	AssetTypeFixedDeposit:    {AssetCategoryInvestments, DetailsFixedDeposit, "Fixed Deposit", "building.columns.fill", "purple"},
	AssetTypeHomeLoan:        {AssetCategoryLoans, DetailsLoan, "Home Loan", "house.fill", "orange"},
	AssetTypeCarLoan:         {AssetCategoryLoans, DetailsLoan, "Car Loan", "car.fill", "red"},
	AssetTypeEducationLoan:   {AssetCategoryLoans, DetailsLoan, "Education Loan", "book.fill", "indigo"},
	AssetTypeOtherLoan:       {AssetCategoryLoans, DetailsLoan, "Other Loan", "creditcard.fill", "gray"},
	AssetTypeHealthInsurance: {AssetCategoryInsurance, DetailsInsurance, "Health Insurance", "cross.case.fill", "cyan"},
	AssetTypeLifeInsurance:   {AssetCategoryInsurance, DetailsInsurance, "Life Insurance", "heart.fill", "pink"},
	AssetTypeLIC:             {AssetCategoryInsurance, DetailsInsurance, "LIC", "shield.fill", "teal"},
}

// orderedAssetTypes keeps selection flows and reports deterministic.
var orderedAssetTypes = []AssetType{
	AssetTypeMutualFunds, AssetTypeStocks, AssetTypeGold, AssetTypeFixedDeposit,
	AssetTypeHomeLoan, AssetTypeCarLoan, AssetTypeEducationLoan, AssetTypeOtherLoan,
	AssetTypeHealthInsurance, AssetTypeLifeInsurance, AssetTypeLIC,
}

// AllAssetTypes returns the eleven asset types in display order.
func AllAssetTypes() []AssetType {
	out := make([]AssetType, len(orderedAssetTypes))
	copy(out, orderedAssetTypes)
	return out
}

// AllAssetCategories returns the three categories in display order.
func AllAssetCategories() []AssetCategory {
	return []AssetCategory{AssetCategoryInvestments, AssetCategoryLoans, AssetCategoryInsurance}
}

// TypesIn returns the asset types that belong to category c.
func TypesIn(c AssetCategory) []AssetType {
	var out []AssetType
	for _, t := range orderedAssetTypes {
		if assetTypes[t].category == c {
			out = append(out, t)
		}
	}
	return out
}

// ParseAssetType accepts the canonical token or the display label
// ("Gold/Silver"), case-insensitively.
func ParseAssetType(s string) (AssetType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range orderedAssetTypes {
		if strings.EqualFold(string(t), s) || strings.EqualFold(assetTypes[t].label, s) {
			return t, true
		}
	}
	return "", false
}

// ParseAssetCategory accepts a category token case-insensitively.
func ParseAssetCategory(s string) (AssetCategory, bool) {
	for _, c := range AllAssetCategories() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether t is one of the known asset types.
func (t AssetType) Valid() bool {
	_, ok := assetTypes[t]
	return ok
}

// Category is the fixed category of t, or "" for unknown types.
func (t AssetType) Category() AssetCategory { return assetTypes[t].category }

// DetailsKind is the detail payload schema used by t.
func (t AssetType) DetailsKind() DetailsKind { return assetTypes[t].details }

// Label is the human-readable name.
func (t AssetType) Label() string { return assetTypes[t].label }

// Icon is the presentation icon token.
func (t AssetType) Icon() string { return assetTypes[t].icon }

// Color is the presentation color token.
func (t AssetType) Color() string { return assetTypes[t].color }

// IsLoan reports whether t is a liability.
func (t AssetType) IsLoan() bool { return t.Category() == AssetCategoryLoans }

// Valid reports whether c is a known category.
func (c AssetCategory) Valid() bool {
	switch c {
	case AssetCategoryInvestments, AssetCategoryLoans, AssetCategoryInsurance:
		return true
	}
	return false
}

// Label is the human-readable category name.
func (c AssetCategory) Label() string {
	switch c {
	case AssetCategoryInvestments:
		return "Investments"
	case AssetCategoryLoans:
		return "Loans"
	case AssetCategoryInsurance:
		return "Insurance"
	}
	return string(c)
}
