package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
	"monex/internal/models"
	"monex/internal/uuid"
)

func setupAssetRouter(handler *AssetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/assets", handler.CreateAsset)
	auth.GET("/assets", handler.GetAssets)
	auth.GET("/assets/:id", handler.GetAsset)
	auth.PUT("/assets/:id", handler.UpdateAsset)
	auth.DELETE("/assets/:id", handler.DeleteAsset)
	auth.POST("/assets/:id/emi-payments", handler.RecordEMIPayment)
	return r
}

func TestAssetHandler_CreateAsset(t *testing.T) {
	t.Run("decodes details for the type", func(t *testing.T) {
		var got models.Asset
		finance := &mockFinanceService{
			addAssetFn: func(a models.Asset) (*models.Asset, error) {
				got = a
				a.ID = uuid.New()
				a.Normalize()
				return &a, nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "POST", "/assets",
			`{"name":"Acme","type":"stocks","details":{"company_name":"Acme","number_of_shares":10,"price_per_share":"150.5"}}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		stock, ok := got.Details.(*models.StockDetails)
		if !ok {
			t.Fatalf("expected stock details, got %T", got.Details)
		}
		if stock.NumberOfShares != 10 || !stock.PricePerShare.Equal(decimal.RequireFromString("150.5")) {
			t.Errorf("unexpected details %+v", stock)
		}
		asset := parseJSON(t, rec)["asset"].(map[string]interface{})
		if asset["amount"] != "1505" {
			t.Errorf("expected derived amount 1505, got %v", asset["amount"])
		}
	})

	t.Run("accepts display label as type", func(t *testing.T) {
		var got models.Asset
		finance := &mockFinanceService{
			addAssetFn: func(a models.Asset) (*models.Asset, error) { got = a; return &a, nil },
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "POST", "/assets",
			`{"name":"Coins","type":"Gold/Silver","details":{"weight_in_grams":"10","price_per_gram":"6000","metal_type":"Silver"}}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Type != models.AssetTypeGold {
			t.Errorf("expected gold type, got %s", got.Type)
		}
	})

	t.Run("rejects unknown metal", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockFinanceService{}))
		rec := doRequest(r, "POST", "/assets",
			`{"name":"Coins","type":"gold","details":{"weight_in_grams":"10","price_per_gram":"6000","metal_type":"Platinum"}}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockFinanceService{}))
		rec := doRequest(r, "POST", "/assets", `{"name":"Crypto","type":"bitcoin","amount":"100"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns category mismatch from store", func(t *testing.T) {
		var got models.Asset
		finance := &mockFinanceService{
			addAssetFn: func(a models.Asset) (*models.Asset, error) {
				got = a
				return nil, apperrors.ErrCategoryMismatch
			},
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "POST", "/assets", `{"name":"House","type":"home_loan","category":"investments","amount":"100"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_MISMATCH")
		if got.Category != models.AssetCategoryInvestments {
			t.Errorf("expected category passed through, got %s", got.Category)
		}
	})
}

func TestAssetHandler_GetAssets(t *testing.T) {
	stock := models.Asset{ID: uuid.New(), Name: "Acme", Type: models.AssetTypeStocks, Category: models.AssetCategoryInvestments, Amount: decimal.NewFromInt(1500)}
	loan := models.Asset{ID: uuid.New(), Name: "Home", Type: models.AssetTypeHomeLoan, Category: models.AssetCategoryLoans, Amount: decimal.NewFromInt(1000)}

	t.Run("returns totals", func(t *testing.T) {
		finance := &mockFinanceService{assetsFn: func() models.Portfolio { return models.Portfolio{stock, loan} }}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "GET", "/assets", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["net_worth"] != "500" {
			t.Errorf("expected net worth 500, got %v", result["net_worth"])
		}
	})

	t.Run("filters by category", func(t *testing.T) {
		var gotCategory models.AssetCategory
		finance := &mockFinanceService{
			assetsByCategoryFn: func(c models.AssetCategory) models.Portfolio {
				gotCategory = c
				return nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "GET", "/assets?category=Loans", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotCategory != models.AssetCategoryLoans {
			t.Errorf("expected loans, got %s", gotCategory)
		}
		if assets := parseJSON(t, rec)["assets"].([]interface{}); len(assets) != 0 {
			t.Errorf("expected empty list, got %v", assets)
		}
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockFinanceService{}))
		rec := doRequest(r, "GET", "/assets?category=crypto", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAssetHandler_UpdateAsset(t *testing.T) {
	t.Run("keeps payment history when omitted", func(t *testing.T) {
		id := uuid.New()
		added := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		existing := &models.Asset{
			ID: id, Name: "Home", Type: models.AssetTypeHomeLoan, Category: models.AssetCategoryLoans, DateAdded: added,
			Details: &models.LoanDetails{
				TotalLoanAmount: decimal.NewFromInt(100000),
				RemainingAmount: decimal.NewFromInt(95000),
				EMIPayments:     []models.EMIPayment{{Amount: decimal.NewFromInt(5000)}},
			},
		}
		var got models.Asset
		finance := &mockFinanceService{
			assetFn:       func(string) (*models.Asset, error) { return existing, nil },
			updateAssetFn: func(a models.Asset) (*models.Asset, error) { got = a; return &a, nil },
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "PUT", "/assets/"+id,
			`{"name":"Home loan","type":"home_loan","details":{"total_loan_amount":"100000","monthly_emi":"5000","remaining_amount":"95000","tenure":240}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.ID != id || !got.DateAdded.Equal(added) {
			t.Errorf("expected id and date_added preserved, got %+v", got)
		}
		if loan := got.Loan(); loan == nil || len(loan.EMIPayments) != 1 {
			t.Errorf("expected payment history kept, got %+v", got.Details)
		}
	})

	t.Run("unknown asset", func(t *testing.T) {
		finance := &mockFinanceService{
			assetFn: func(string) (*models.Asset, error) { return nil, apperrors.ErrAssetNotFound },
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "PUT", "/assets/"+uuid.New(), `{"name":"X","type":"lic","amount":"1"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAssetHandler_DeleteAsset(t *testing.T) {
	finance := &mockFinanceService{deleteAssetFn: func(string) error { return apperrors.ErrAssetNotFound }}
	r := setupAssetRouter(NewAssetHandler(finance))

	rec := doRequest(r, "DELETE", "/assets/"+uuid.New(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "ASSET_NOT_FOUND")
}

func TestAssetHandler_RecordEMIPayment(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		id := uuid.New()
		var gotAmount decimal.Decimal
		var gotNotes string
		finance := &mockFinanceService{
			recordEMIPaymentFn: func(assetID string, amount decimal.Decimal, _ time.Time, notes string) (*models.Asset, error) {
				gotAmount, gotNotes = amount, notes
				return &models.Asset{ID: assetID}, nil
			},
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "POST", "/assets/"+id+"/emi-payments", `{"amount":"5000","notes":"March"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotAmount.Equal(decimal.NewFromInt(5000)) || gotNotes != "March" {
			t.Errorf("unexpected payment %s %q", gotAmount, gotNotes)
		}
	})

	t.Run("non-loan returns 422", func(t *testing.T) {
		finance := &mockFinanceService{
			recordEMIPaymentFn: func(string, decimal.Decimal, time.Time, string) (*models.Asset, error) {
				return nil, apperrors.ErrNotALoan
			},
		}
		r := setupAssetRouter(NewAssetHandler(finance))

		rec := doRequest(r, "POST", "/assets/"+uuid.New()+"/emi-payments", `{"amount":"5000"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_A_LOAN")
	})

	t.Run("missing amount", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockFinanceService{}))
		rec := doRequest(r, "POST", "/assets/"+uuid.New()+"/emi-payments", `{"notes":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
