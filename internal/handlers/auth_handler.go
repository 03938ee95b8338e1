package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"monex/internal/middleware"
	"monex/internal/models"
	"monex/internal/services"
)

// AuthHandler handles signup, login and the signed-in user's profile.
type AuthHandler struct {
	sessions services.SessionServicer
	finance  services.FinanceServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions services.SessionServicer, finance services.FinanceServicer) *AuthHandler {
	return &AuthHandler{sessions: sessions, finance: finance}
}

// SignupRequest represents the request payload for creating the local account.
type SignupRequest struct {
	FirstName           string           `json:"first_name" binding:"required,min=1,max=100"`
	LastName            string           `json:"last_name" binding:"omitempty,max=100"`
	Email               string           `json:"email" binding:"required,email"`
	Password            string           `json:"password" binding:"omitempty,max=72"`
	MonthlyStartBalance *decimal.Decimal `json:"monthly_start_balance" binding:"required"`
	BalanceStartDate    *time.Time       `json:"balance_start_date"`
}

// LoginRequest represents the request payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,max=72"`
}

// UpdateBalanceRequest represents the request payload for resetting the
// monthly starting balance.
type UpdateBalanceRequest struct {
	MonthlyStartBalance *decimal.Decimal `json:"monthly_start_balance" binding:"required"`
	BalanceStartDate    *time.Time       `json:"balance_start_date"`
}

// TokenResponse is returned by every operation that opens a session.
type TokenResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   services.Session `json:"session"`
	User      *models.User     `json:"user"`
}

// Signup handles account creation.
// @Summary     Sign up
// @Description Create the local account with empty budgets and assets, and sign it in
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignupRequest true "Account details"
// @Success     201 {object} TokenResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	input := services.SignupInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Password:            req.Password,
		MonthlyStartBalance: *req.MonthlyStartBalance,
	}
	if req.BalanceStartDate != nil {
		input.BalanceStartDate = *req.BalanceStartDate
	}

	sess, err := h.sessions.Signup(input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, sess)
}

// Login handles signing in to the stored account.
// @Summary     Log in
// @Description Authenticate against the stored account and load its data
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} TokenResponse "Signed in"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	sess, err := h.sessions.Login(services.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, sess)
}

// Restore handles resuming the session recorded in storage.
// @Summary     Restore session
// @Description Issue a token for the session left signed in by a previous run
// @Tags        auth
// @Produce     json
// @Success     200 {object} TokenResponse "Session restored"
// @Failure     401 {object} ErrorResponse "Not signed in"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/restore [post]
func (h *AuthHandler) Restore(c *gin.Context) {
	sess, err := h.sessions.Restore()
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, sess)
}

// Logout handles signing out.
// @Summary     Log out
// @Description Persist everything and clear the active session
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Signed out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.sessions.Logout(); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetProfile handles retrieving the signed-in user.
// @Summary     Get profile
// @Description Get the signed-in user with the current balance
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.finance.CurrentUser()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

// UpdateBalance handles resetting the monthly starting balance.
// @Summary     Update balance
// @Description Set a new monthly starting balance; the current balance is re-derived
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateBalanceRequest true "New balance"
// @Success     200 {object} models.User "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balance [put]
func (h *AuthHandler) UpdateBalance(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	start := time.Now()
	if req.BalanceStartDate != nil {
		start = *req.BalanceStartDate
	}
	user, err := h.finance.UpdateMonthlyBalance(*req.MonthlyStartBalance, start)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, sess *services.Session) {
	token, expires, err := middleware.GenerateSessionToken(sess)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := TokenResponse{Token: token, ExpiresAt: expires, Session: *sess}
	if user, err := h.finance.CurrentUser(); err == nil {
		resp.User = publicUser(user)
	}
	c.JSON(status, resp)
}

// publicUser strips the stored credential hash before a user leaves the API.
func publicUser(u *models.User) *models.User {
	out := *u
	out.PasswordHash = ""
	return &out
}
