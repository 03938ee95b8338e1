package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var day = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestAssetTypeTable(t *testing.T) {
	if got := len(AllAssetTypes()); got != 11 {
		t.Fatalf("expected 11 asset types, got %d", got)
	}

	counts := map[AssetCategory]int{}
	for _, at := range AllAssetTypes() {
		if !at.Valid() {
			t.Fatalf("%s should be valid", at)
		}
		counts[at.Category()]++
		if at.Label() == "" || at.Icon() == "" {
			t.Errorf("%s is missing a label or icon", at)
		}
	}
	want := map[AssetCategory]int{
		AssetCategoryInvestments: 4,
		AssetCategoryLoans:       4,
		AssetCategoryInsurance:   3,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("category counts mismatch (-want +got):\n%s", diff)
	}

	if !AssetTypeCarLoan.IsLoan() || AssetTypeLIC.IsLoan() {
		t.Error("only loan types report IsLoan")
	}
	wantInsurance := []AssetType{AssetTypeHealthInsurance, AssetTypeLifeInsurance, AssetTypeLIC}
	if diff := cmp.Diff(wantInsurance, TypesIn(AssetCategoryInsurance)); diff != "" {
		t.Errorf("insurance types mismatch (-want +got):\n%s", diff)
	}

	t.Run("parse", func(t *testing.T) {
		if parsed, ok := ParseAssetType("gold/silver"); !ok || parsed != AssetTypeGold {
			t.Errorf("expected gold, got %q (%v)", parsed, ok)
		}
		if _, ok := ParseAssetType("crypto"); ok {
			t.Error("crypto is not an asset type")
		}
		if c, ok := ParseAssetCategory(" LOANS "); !ok || c != AssetCategoryLoans {
			t.Errorf("expected loans, got %q (%v)", c, ok)
		}
	})
}

func TestAssetValidate(t *testing.T) {
	t.Run("category must match type", func(t *testing.T) {
		a := Asset{Name: "House", Type: AssetTypeHomeLoan, Category: AssetCategoryInvestments}
		assertCode(t, a.Validate(), "CATEGORY_MISMATCH")
	})

	t.Run("unknown type", func(t *testing.T) {
		a := Asset{Name: "Coin", Type: "crypto", Category: AssetCategoryInvestments}
		assertCode(t, a.Validate(), "INVALID_ASSET_TYPE")
	})

	t.Run("details must match type", func(t *testing.T) {
		a := Asset{Name: "Fund", Type: AssetTypeMutualFunds, Category: AssetCategoryInvestments, Details: &StockDetails{}}
		assertCode(t, a.Validate(), "DETAILS_MISMATCH")
	})

	t.Run("negative payload values", func(t *testing.T) {
		a := Asset{Name: "Gold", Type: AssetTypeGold, Category: AssetCategoryInvestments,
			Details: &GoldDetails{WeightInGrams: dec("-1"), PricePerGram: dec("6000")}}
		assertCode(t, a.Validate(), "INVALID_INPUT")
	})

	t.Run("first negative field is reported", func(t *testing.T) {
		a := Asset{Name: "Home", Type: AssetTypeHomeLoan, Category: AssetCategoryLoans,
			Details: &LoanDetails{TotalLoanAmount: dec("-1"), MonthlyEMI: dec("-2"), RemainingAmount: dec("-3")}}
		for i := 0; i < 20; i++ {
			err := a.Validate()
			assertCode(t, err, "INVALID_INPUT")
			if err == nil || !strings.Contains(err.Error(), "total_loan_amount") {
				t.Fatalf("expected total_loan_amount to be reported, got %v", err)
			}
		}
	})

	t.Run("normalize fills category and amount", func(t *testing.T) {
		a := Asset{Name: "Coins", Type: AssetTypeGold,
			Details: &GoldDetails{WeightInGrams: dec("10"), PricePerGram: dec("6000.5"), MetalType: MetalGold}}
		a.Normalize()
		if err := a.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Category != AssetCategoryInvestments {
			t.Errorf("expected investments, got %q", a.Category)
		}
		assertDec(t, a.Amount, "60005")
	})

	t.Run("plain amount without details", func(t *testing.T) {
		a := Asset{Name: "Policy", Type: AssetTypeLIC, Amount: dec("500000")}
		a.Normalize()
		if err := a.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDec(t, a.Amount, "500000")
	})
}

func TestDetailValuations(t *testing.T) {
	assertDec(t, (&StockDetails{NumberOfShares: 12, PricePerShare: dec("101.25")}).Valuation(), "1215")
	fund := &MutualFundDetails{Lumpsum: dec("1000"), CurrentValue: dec("1250")}
	assertDec(t, fund.Valuation(), "1250")
	assertDec(t, fund.Invested(), "1000")
	assertDec(t, (&FixedDepositDetails{PrincipalAmount: dec("50000")}).Valuation(), "50000")
	assertDec(t, (&InsuranceDetails{CoverageAmount: dec("1000000")}).Valuation(), "1000000")

	fd := &FixedDepositDetails{DepositDate: day, MaturityDate: day.AddDate(1, 6, 0)}
	if got := fd.TermMonths(); got != 18 {
		t.Errorf("expected 18 months, got %d", got)
	}
	fd.MaturityDate = day.AddDate(0, 0, -1)
	if got := fd.TermMonths(); got != 0 {
		t.Errorf("expected 0 months, got %d", got)
	}
}

func TestLoanRecordPayment(t *testing.T) {
	loan := &LoanDetails{TotalLoanAmount: dec("10000"), MonthlyEMI: dec("4000"), RemainingAmount: dec("10000"), Tenure: 3}

	assertDec(t, loan.RecordPayment(dec("4000"), day, "first"), "6000")
	assertDec(t, loan.RecordPayment(dec("4000"), day.AddDate(0, 1, 0), ""), "2000")
	assertDec(t, loan.RecordPayment(dec("4000"), day.AddDate(0, 2, 0), ""), "0")

	if got := loan.PaymentsMade(); got != 3 {
		t.Errorf("expected 3 payments, got %d", got)
	}
	assertDec(t, loan.TotalPaid(), "12000")
	assertDec(t, loan.PaidOff(), "1")
	if loan.EMIPayments[0].Notes != "first" {
		t.Errorf("expected notes to be kept, got %q", loan.EMIPayments[0].Notes)
	}

	assertDec(t, (&LoanDetails{}).PaidOff(), "0")
}

func TestAssetCloneIsDeep(t *testing.T) {
	a := Asset{Name: "Home", Type: AssetTypeHomeLoan, Category: AssetCategoryLoans,
		Details: &LoanDetails{RemainingAmount: dec("100"), EMIPayments: []EMIPayment{{Amount: dec("1")}}}}
	c := a.Clone()
	c.Loan().RecordPayment(dec("50"), day, "")

	assertDec(t, a.Loan().RemainingAmount, "100")
	if got := len(a.Loan().EMIPayments); got != 1 {
		t.Errorf("clone must not share payments, original has %d", got)
	}
}

func TestAssetJSONEnvelope(t *testing.T) {
	sip := day
	a := Asset{
		ID: "id-1", Name: "Index fund", Type: AssetTypeMutualFunds, Category: AssetCategoryInvestments,
		DateAdded: day,
		Details:   &MutualFundDetails{Lumpsum: dec("1000"), SIPMonthly: dec("500"), SIPStartDate: &sip, CurrentValue: dec("1800")},
	}
	a.Normalize()

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if !strings.Contains(string(raw["details"]), `"kind":"mutual_fund"`) {
		t.Errorf("expected a mutual_fund envelope, got %s", raw["details"])
	}

	var back Asset
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	details, ok := back.Details.(*MutualFundDetails)
	if !ok {
		t.Fatalf("expected mutual fund details, got %T", back.Details)
	}
	assertDec(t, details.CurrentValue, "1800")
	assertDec(t, back.Amount, "1800")

	var bad Asset
	if err := json.Unmarshal([]byte(`{"name":"x","details":{"kind":"crypto","data":{}}}`), &bad); err == nil {
		t.Error("expected an error for an unknown details kind")
	}
}

func TestParseDetails(t *testing.T) {
	d, err := ParseDetails(DetailsStock, []byte(`{"company_name":"Acme","number_of_shares":3,"price_per_share":"10"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDec(t, d.Valuation(), "30")

	if _, err := ParseDetails(DetailsLoan, []byte(`{"tenure":"twelve"}`)); err == nil {
		t.Error("expected an error for a malformed loan payload")
	}
}

func TestPortfolioTotals(t *testing.T) {
	p := Portfolio{
		{Name: "Stock", Category: AssetCategoryInvestments, Amount: dec("1500")},
		{Name: "FD", Category: AssetCategoryInvestments, Amount: dec("50000")},
		{Name: "Home", Category: AssetCategoryLoans, Amount: dec("100000")},
		{Name: "Health", Category: AssetCategoryInsurance, Amount: dec("500000")},
	}

	assertDec(t, p.TotalInvestments(), "51500")
	assertDec(t, p.TotalLiabilities(), "100000")
	assertDec(t, p.TotalInsurance(), "500000")
	// Insurance cover is excluded from net worth.
	assertDec(t, p.NetWorth(), "-48500")
	if got := len(p.ByCategory(AssetCategoryInvestments)); got != 2 {
		t.Errorf("expected 2 investments, got %d", got)
	}
	if got := len(Portfolio{}.ByCategory(AssetCategoryLoans)); got != 0 {
		t.Errorf("expected no loans, got %d", got)
	}
}
