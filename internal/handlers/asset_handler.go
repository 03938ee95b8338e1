package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
	"monex/internal/models"
	"monex/internal/services"
)

// AssetHandler handles investment, loan and insurance requests.
type AssetHandler struct {
	finance services.FinanceServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(finance services.FinanceServicer) *AssetHandler {
	return &AssetHandler{finance: finance}
}

// AssetRequest represents the request payload for creating or replacing an
// asset. Details is the bare payload for the type's details kind; when it
// is present the amount is derived from it.
type AssetRequest struct {
	Name      string           `json:"name" binding:"required,min=1,max=100"`
	Type      string           `json:"type" binding:"required,asset_type"`
	Category  string           `json:"category" binding:"omitempty,asset_category"`
	Amount    *decimal.Decimal `json:"amount"`
	Notes     string           `json:"notes" binding:"omitempty,max=1000"`
	DateAdded *time.Time       `json:"date_added"`
	Details   json.RawMessage  `json:"details" swaggertype:"object"`
}

// EMIPaymentRequest represents the request payload for recording a loan
// installment.
type EMIPaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time       `json:"payment_date"`
	Notes       string           `json:"notes" binding:"omitempty,max=500"`
}

// toAsset converts the request into an asset. The type and category were
// already checked by the binding tags.
func (r AssetRequest) toAsset(id string) (models.Asset, error) {
	assetType, _ := models.ParseAssetType(r.Type)
	asset := models.Asset{
		ID:    id,
		Name:  r.Name,
		Type:  assetType,
		Notes: r.Notes,
	}
	if r.Category != "" {
		asset.Category, _ = models.ParseAssetCategory(r.Category)
	}
	if r.Amount != nil {
		asset.Amount = *r.Amount
	}
	if r.DateAdded != nil {
		asset.DateAdded = *r.DateAdded
	}

	if len(r.Details) > 0 && !bytes.Equal(bytes.TrimSpace(r.Details), []byte("null")) {
		details, err := models.ParseDetails(assetType.DetailsKind(), r.Details)
		if err != nil {
			return models.Asset{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		if err := binding.Validator.ValidateStruct(details); err != nil {
			return models.Asset{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		asset.Details = details
	}
	return asset, nil
}

// CreateAsset handles adding an asset.
// @Summary     Create an asset
// @Description Track an investment, loan or insurance policy
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AssetRequest true "Asset details"
// @Success     201 {object} models.Asset "Asset created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	asset, err := req.toAsset("")
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.finance.AddAsset(asset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": created})
}

// GetAssets handles listing assets.
// @Summary     Get assets
// @Description List assets with category totals, optionally filtered by category
// @Tags        assets
// @Produce     json
// @Security    BearerAuth
// @Param       category query string false "Filter by category (investments/loans/insurance)"
// @Success     200 {object} map[string]interface{} "Assets and totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /assets [get]
func (h *AssetHandler) GetAssets(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	if v := c.Query("category"); v != "" {
		category, ok := models.ParseAssetCategory(v)
		if !ok {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"category must be 'investments', 'loans' or 'insurance'"))
			return
		}
		assets := h.finance.AssetsByCategory(category)
		c.JSON(http.StatusOK, gin.H{
			"assets": nonNilAssets(assets),
			"total":  assets.TotalByCategory(category),
		})
		return
	}

	assets := h.finance.Assets()
	c.JSON(http.StatusOK, gin.H{
		"assets":            nonNilAssets(assets),
		"total_investments": assets.TotalInvestments(),
		"total_liabilities": assets.TotalLiabilities(),
		"total_insurance":   assets.TotalInsurance(),
		"net_worth":         assets.NetWorth(),
	})
}

// GetAsset handles retrieving a specific asset.
// @Summary     Get asset by ID
// @Tags        assets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} models.Asset "Asset"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.finance.Asset(assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// UpdateAsset handles replacing an asset.
// @Summary     Update asset
// @Description Replace an asset. Recorded EMI payments are kept when a loan payload omits them.
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string       true "Asset ID"
// @Param       request body AssetRequest true "Asset details"
// @Success     200 {object} models.Asset "Updated asset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	asset, err := req.toAsset(assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	existing, err := h.finance.Asset(assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if asset.DateAdded.IsZero() {
		asset.DateAdded = existing.DateAdded
	}
	if loan, prev := asset.Loan(), existing.Loan(); loan != nil && prev != nil && loan.EMIPayments == nil {
		loan.EMIPayments = prev.EMIPayments
	}

	updated, err := h.finance.UpdateAsset(asset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": updated})
}

// DeleteAsset handles removing an asset.
// @Summary     Delete asset
// @Tags        assets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} map[string]string "Asset deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.finance.DeleteAsset(assetID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted successfully"})
}

// RecordEMIPayment handles recording a loan installment.
// @Summary     Record EMI payment
// @Description Append a payment to a loan; its remaining amount drops by the payment, never below zero
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Asset ID"
// @Param       request body EMIPaymentRequest true "Payment"
// @Success     201 {object} models.Asset "Updated loan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     422 {object} ErrorResponse "Asset is not a loan"
// @Router      /assets/{id}/emi-payments [post]
func (h *AssetHandler) RecordEMIPayment(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EMIPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	var date time.Time
	if req.PaymentDate != nil {
		date = *req.PaymentDate
	}

	asset, err := h.finance.RecordEMIPayment(assetID, *req.Amount, date, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

func nonNilAssets(p models.Portfolio) models.Portfolio {
	if p == nil {
		return models.Portfolio{}
	}
	return p
}
