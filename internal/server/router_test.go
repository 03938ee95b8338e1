package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"monex/internal/app"
	"monex/internal/config"
	"monex/internal/logger"
)

// testApp holds the full application stack for end-to-end tests.
type testApp struct {
	App    *app.App
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.UseNop()
	config.Set(&config.Config{
		StorageDriver:    config.StorageMemory,
		AuthMode:         config.AuthModeEmail,
		JWTSecret:        "server-test-secret",
		JWTExpirationDur: time.Hour,
		Currency:         "INR",
	})
}

// setupApp creates a full application stack backed by memory storage.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	a, err := app.New(config.Get())
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(a.Close)

	return &testApp{App: a, Router: NewRouter(a)}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected an error body, got %s", rec.Body.String())
	}
	return errObj["code"].(string)
}

// decimalField reads a decimal serialized as a JSON string.
func decimalField(t *testing.T, obj map[string]interface{}, key string) decimal.Decimal {
	t.Helper()
	s, ok := obj[key].(string)
	if !ok {
		t.Fatalf("expected %s to be a decimal string, got %v", key, obj[key])
	}
	return decimal.RequireFromString(s)
}

func expectDecimal(t *testing.T, obj map[string]interface{}, key, want string) {
	t.Helper()
	if got := decimalField(t, obj, key); !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s = %s, got %s", key, want, got)
	}
}

// signupUser creates the local user and returns the session token.
func (app *testApp) signupUser(t *testing.T, email, balance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"first_name":"Test","last_name":"User","email":%q,"monthly_start_balance":%s}`, email, balance)
	rec := app.request("POST", "/api/v1/auth/signup", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

func (app *testApp) summary(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["summary"].(map[string]interface{})
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["status"] != "ok" || result["signed_in"] != false {
		t.Errorf("unexpected health body %v", result)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestAuthFlow_SignupLogoutLogin(t *testing.T) {
	app := setupApp(t)

	// Step 1: Sign up
	token := app.signupUser(t, "auth@test.com", "10000")

	// Step 2: Profile never exposes credentials
	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" {
		t.Errorf("expected email auth@test.com, got %v", user["email"])
	}
	if _, ok := user["password_hash"]; ok {
		t.Error("profile must not include the password hash")
	}
	expectDecimal(t, user, "current_balance", "10000")

	// Step 3: Restore hands out a token for the running session
	rec = app.request("POST", "/api/v1/auth/restore", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from restore, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 4: Log out, after which the token no longer works
	rec = app.request("POST", "/api/v1/auth/logout", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "NOT_SIGNED_IN" {
		t.Fatalf("expected 401 NOT_SIGNED_IN, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/auth/restore", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from restore while signed out, got %d", rec.Code)
	}

	// Step 5: Wrong email is rejected
	rec = app.request("POST", "/api/v1/auth/login", `{"email":"other@test.com"}`, "")
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 6: Log back in
	rec = app.request("POST", "/api/v1/auth/login", `{"email":"auth@test.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}
	newToken := parseJSON(t, rec)["token"].(string)
	rec = app.request("GET", "/api/v1/profile", "", newToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with new token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_ProtectedRoutesNeedToken(t *testing.T) {
	app := setupApp(t)
	app.signupUser(t, "guard@test.com", "100")

	for _, path := range []string{"/api/v1/profile", "/api/v1/summary", "/api/v1/budgets", "/api/v1/assets", "/api/v1/report"} {
		rec := app.request("GET", path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestBudgetFlow_SpendAndBalance(t *testing.T) {
	app := setupApp(t)
	token := app.signupUser(t, "budget@test.com", "10000")

	// Step 1: Create a budget
	rec := app.request("POST", "/api/v1/budgets", `{"name":"Groceries","amount":"5000","color":"green"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating budget, got %d: %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	budgetID := budget["id"].(string)
	expectDecimal(t, budget, "remaining_amount", "5000")

	// Step 2: Spend against it
	rec = app.request("POST", "/api/v1/budgets/"+budgetID+"/expenses",
		`{"title":"Vegetables","amount":1500,"date":"2024-03-15T10:00:00Z"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 adding expense, got %d: %s", rec.Code, rec.Body.String())
	}
	expenseID := parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(string)

	// Step 3: Spend from the miscellaneous budget
	rec = app.request("POST", "/api/v1/misc/expenses", `{"title":"Coffee","amount":"200"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 adding misc expense, got %d: %s", rec.Code, rec.Body.String())
	}

	summary := app.summary(t, token)
	expectDecimal(t, summary, "total_budget", "5000")
	expectDecimal(t, summary, "total_spent", "1700")
	expectDecimal(t, summary, "misc_spent", "200")
	expectDecimal(t, summary, "current_balance", "8300")

	// Step 4: Budget list is paginated and leaves out the misc budget
	rec = app.request("GET", "/api/v1/budgets?page=1&page_size=10", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing budgets, got %d: %s", rec.Code, rec.Body.String())
	}
	page := parseJSON(t, rec)
	if page["total_items"].(float64) != 1 || len(page["data"].([]interface{})) != 1 {
		t.Errorf("expected one budget, got %v", page)
	}

	// Step 5: The misc budget cannot be deleted
	rec = app.request("GET", "/api/v1/misc", "", token)
	miscID := parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(string)
	rec = app.request("DELETE", "/api/v1/budgets/"+miscID, "", token)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "MISC_BUDGET_LOCKED" {
		t.Fatalf("expected 409 MISC_BUDGET_LOCKED, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 6: Deleting the expense gives the money back
	rec = app.request("DELETE", "/api/v1/budgets/"+budgetID+"/expenses/"+expenseID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting expense, got %d: %s", rec.Code, rec.Body.String())
	}
	expectDecimal(t, app.summary(t, token), "current_balance", "9800")

	// Step 7: Deleting the budget
	rec = app.request("DELETE", "/api/v1/budgets/"+budgetID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting budget, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/budgets/"+budgetID, "", token)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "BUDGET_NOT_FOUND" {
		t.Fatalf("expected 404 BUDGET_NOT_FOUND, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetFlow_RejectsMalformedInput(t *testing.T) {
	app := setupApp(t)
	token := app.signupUser(t, "invalid@test.com", "100")

	tests := []struct {
		name string
		body string
	}{
		{"malformed amount", `{"name":"Rent","amount":"lots"}`},
		{"missing amount", `{"name":"Rent"}`},
		{"unknown color", `{"name":"Rent","amount":"10","color":"chartreuse"}`},
		{"zero amount", `{"name":"Rent","amount":"0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request("POST", "/api/v1/budgets", tt.body, token)
			if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
				t.Errorf("expected 400 INVALID_INPUT, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAssetFlow_LoanRepayment(t *testing.T) {
	app := setupApp(t)
	token := app.signupUser(t, "assets@test.com", "50000")

	// Step 1: Add a stock holding
	rec := app.request("POST", "/api/v1/assets",
		`{"name":"Acme","type":"stocks","details":{"company_name":"Acme","number_of_shares":10,"price_per_share":"150"}}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating stock, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 2: Add a home loan
	rec = app.request("POST", "/api/v1/assets",
		`{"name":"Home","type":"home_loan","details":{"total_loan_amount":"100000","monthly_emi":"1000","remaining_amount":"100000","interest_rate":"8.5","tenure":240}}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating loan, got %d: %s", rec.Code, rec.Body.String())
	}
	loan := parseJSON(t, rec)["asset"].(map[string]interface{})
	loanID := loan["id"].(string)
	if loan["category"] != "loans" {
		t.Errorf("expected loans category, got %v", loan["category"])
	}
	expectDecimal(t, loan, "amount", "100000")

	// Step 3: Pay one installment
	rec = app.request("POST", "/api/v1/assets/"+loanID+"/emi-payments", `{"amount":"1000","notes":"March"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 recording EMI, got %d: %s", rec.Code, rec.Body.String())
	}
	expectDecimal(t, parseJSON(t, rec)["asset"].(map[string]interface{}), "amount", "99000")

	// Step 4: Category filter
	rec = app.request("GET", "/api/v1/assets?category=loans", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	filtered := parseJSON(t, rec)
	if len(filtered["assets"].([]interface{})) != 1 {
		t.Errorf("expected one loan, got %v", filtered["assets"])
	}
	expectDecimal(t, filtered, "total", "99000")

	rec = app.request("GET", "/api/v1/assets?category=savings", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", rec.Code)
	}

	// Step 5: Net worth is investments minus liabilities
	expectDecimal(t, app.summary(t, token), "net_worth", "-97500")

	// Step 6: EMI payments only apply to loans
	rec = app.request("GET", "/api/v1/assets?category=investments", "", token)
	stockID := parseJSON(t, rec)["assets"].([]interface{})[0].(map[string]interface{})["id"].(string)
	rec = app.request("POST", "/api/v1/assets/"+stockID+"/emi-payments", `{"amount":"10"}`, token)
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "NOT_A_LOAN" {
		t.Fatalf("expected 422 NOT_A_LOAN, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 7: Type validation
	rec = app.request("POST", "/api/v1/assets", `{"name":"Coin","type":"crypto","amount":"5"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestReport(t *testing.T) {
	app := setupApp(t)
	token := app.signupUser(t, "report@test.com", "2500")

	rec := app.request("POST", "/api/v1/budgets", `{"name":"Travel","amount":"1000"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating budget, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/report?currency=USD", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"# Financial report for Test User", "### Travel", "$2,500.00", "## Net worth"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected report to contain %q\n%s", want, body)
		}
	}

	rec = app.request("GET", "/api/v1/report?currency=usd", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a lowercase currency, got %d", rec.Code)
	}
}
