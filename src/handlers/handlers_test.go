package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"fintrack-server/src/api"
	"fintrack-server/src/dashboard"
	"fintrack-server/src/db"
	store "fintrack-server/src/db/sql"
	"fintrack-server/src/handlers"
	"fintrack-server/src/insights"
	"fintrack-server/src/models"
	"fintrack-server/src/report"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const password = "Secret#123"

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeAI struct {
	text    string
	err     error
	lastKey string
}

func (f *fakeAI) AnalyzeFinance(_ context.Context, key string, _ insights.FinanceData, prompt string) (string, error) {
	if key == "" {
		return "", insights.ErrNoCredential
	}
	f.lastKey = key
	return f.text + " | " + prompt, f.err
}

func (f *fakeAI) AnalyzeGeneral(_ context.Context, key, question string) (string, error) {
	if key == "" {
		return "", insights.ErrNoCredential
	}
	f.lastKey = key
	return "answer: " + question, f.err
}

type fakeScanner struct {
	textErr  error
	parseErr error
}

func (f *fakeScanner) ExtractText(context.Context, string, []byte, string) (string, error) {
	return "TOTAL 12.00", f.textErr
}

func (f *fakeScanner) ParseReceipt(context.Context, string, []byte, string) (insights.ReceiptSuggestion, error) {
	return insights.ReceiptSuggestion{
		Amount:   decimal.NewFromInt(12),
		Category: models.CategoryFood,
		Note:     "Receipt",
		Date:     models.NewDate(fixedNow),
		Currency: "USD",
	}, f.parseErr
}

type fakeMailer struct {
	to, filename, mime string
	data               []byte
	err                error
}

func (f *fakeMailer) SendReport(_ context.Context, to, _, _, filename, mime string, data []byte) error {
	f.to, f.filename, f.mime, f.data = to, filename, mime, data
	return f.err
}

// fakeFX quotes EUR at 0.5 per base unit.
type fakeFX struct{}

func (fakeFX) Base() string { return "USD" }

func (fakeFX) Convert(_ context.Context, amount decimal.Decimal, from string) decimal.Decimal {
	if from == "EUR" {
		return amount.Mul(decimal.NewFromInt(2))
	}
	return amount
}

type HandlerTestSuite struct {
	suite.Suite
	store   *store.Store
	cache   *db.LedgerCache
	ai      *fakeAI
	scanner *fakeScanner
	mail    *fakeMailer
	env     *handlers.Env
	router  http.Handler
}

func (suite *HandlerTestSuite) SetupTest() {
	var err error
	suite.store, err = db.Connect(context.Background(), "sqlite://:memory:")
	require.NoError(suite.T(), err)
	suite.cache, err = db.NewLedgerCache()
	require.NoError(suite.T(), err)

	suite.ai = &fakeAI{text: "insight"}
	suite.scanner = &fakeScanner{}
	suite.mail = &fakeMailer{}
	suite.env = &handlers.Env{
		Store:        suite.store,
		Cache:        suite.cache,
		Reports:      report.NewGenerator(suite.store),
		FX:           fakeFX{},
		Insights:     suite.ai,
		Scanner:      suite.scanner,
		Mailer:       suite.mail,
		JWTSecret:    "test-secret",
		BaseCurrency: "USD",
		Now:          func() time.Time { return fixedNow },
	}
	suite.router = suite.newRouter(api.Options{MailEnabled: true, AllowedOrigins: []string{"*"}})
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.cache.Close()
	suite.store.Close()
}

func (suite *HandlerTestSuite) newRouter(opts api.Options) http.Handler {
	return api.NewRouter(suite.env, opts, zerolog.Nop())
}

func (suite *HandlerTestSuite) serve(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (suite *HandlerTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	return suite.serve(suite.router, method, path, token, body)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (suite *HandlerTestSuite) register(name, email string) (string, models.User) {
	rec := suite.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[models.TokenResponse](suite.T(), rec)
	return resp.Token, resp.User
}

func (suite *HandlerTestSuite) assertReason(rec *httptest.ResponseRecorder, reason string) {
	suite.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	body := decodeBody[map[string]string](suite.T(), rec)
	suite.Equal(reason, body["reason"], rec.Body.String())
}

func (suite *HandlerTestSuite) addExpense(token string, body map[string]interface{}) models.Expense {
	rec := suite.do(http.MethodPost, "/api/expenses", token, body)
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.Expense](suite.T(), rec)
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *HandlerTestSuite) TestRegisterAndLogin() {
	token, user := suite.register("Ada", "Ada@Example.com")
	suite.NotEmpty(token)
	suite.Equal("ada@example.com", user.Email)

	rec := suite.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": password,
	})
	suite.Equal(http.StatusConflict, rec.Code)

	rec = suite.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "short",
	})
	suite.assertReason(rec, "weak_password")

	rec = suite.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Bob", "email": "not-an-email", "password": password,
	})
	suite.assertReason(rec, "invalid_email")

	rec = suite.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ada@example.com", "password": "Wrong#123"})
	suite.Equal(http.StatusUnauthorized, rec.Code)
	rec = suite.do(http.MethodPost, "/api/login", "", map[string]string{"email": "nobody@example.com", "password": password})
	suite.Equal(http.StatusUnauthorized, rec.Code)

	rec = suite.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ADA@example.com", "password": password})
	suite.Require().Equal(http.StatusOK, rec.Code)
	login := decodeBody[models.TokenResponse](suite.T(), rec)

	rec = suite.do(http.MethodGet, "/api/user", login.Token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Equal(user.ID, decodeBody[models.User](suite.T(), rec).ID)
}

func (suite *HandlerTestSuite) TestTokensOutliveLedgerClock() {
	suite.env.Now = func() time.Time { return time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC) }
	token, _ := suite.register("Ada", "ada@example.com")

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/user", token, nil).Code)
	expense := suite.addExpense(token, map[string]interface{}{"amount": 3, "category": "Food"})
	suite.Equal("2001-01-01", expense.Date.String())
}

func (suite *HandlerTestSuite) TestProtectedRoutesNeedToken() {
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/expenses", "", nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/expenses", "bogus", nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/health", "", nil).Code)
}

func (suite *HandlerTestSuite) TestUserProfileAndPassword() {
	token, user := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPut, "/api/user", token, map[string]string{"name": "Ada L", "email": "ada.l@example.com"})
	suite.Equal(http.StatusOK, rec.Code)

	rec = suite.do(http.MethodPost, "/api/user/change-password", token, map[string]string{
		"current_password": "Wrong#123", "new_password": "Better#456",
	})
	suite.Equal(http.StatusUnauthorized, rec.Code)
	rec = suite.do(http.MethodPost, "/api/user/change-password", token, map[string]string{
		"current_password": password, "new_password": "weak",
	})
	suite.assertReason(rec, "weak_password")
	rec = suite.do(http.MethodPost, "/api/user/change-password", token, map[string]string{
		"current_password": password, "new_password": "Better#456",
	})
	suite.Equal(http.StatusOK, rec.Code)

	rec = suite.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ada.l@example.com", "password": "Better#456"})
	suite.Equal(http.StatusOK, rec.Code)

	suite.addExpense(token, map[string]interface{}{"amount": 5, "category": "Food"})
	suite.Equal(uint64(1), suite.cache.HistoryVersion(user.ID))

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/user", token, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/api/user", token, nil).Code)
	suite.Equal(uint64(0), suite.cache.HistoryVersion(user.ID))
}

func (suite *HandlerTestSuite) TestExpenseValidation() {
	token, _ := suite.register("Ada", "ada@example.com")
	cases := []struct {
		body   map[string]interface{}
		reason string
	}{
		{map[string]interface{}{"category": "Food"}, "required"},
		{map[string]interface{}{"amount": "abc", "category": "Food"}, "not_numeric"},
		{map[string]interface{}{"amount": "-5", "category": "Food"}, "negative_amount"},
		{map[string]interface{}{"amount": "1e6000000", "category": "Food"}, "not_numeric"},
		{map[string]interface{}{"amount": 1e20, "category": "Food"}, "not_numeric"},
		{map[string]interface{}{"amount": "10000000000000", "category": "Food"}, "not_numeric"},
		{map[string]interface{}{"amount": 5, "category": "Pets"}, "invalid_category"},
		{map[string]interface{}{"amount": 5, "category": "Food", "currency": "us"}, "invalid_currency"},
		{map[string]interface{}{"amount": 5, "category": "Food", "date": "2024-13-01"}, "invalid_date"},
	}
	for _, c := range cases {
		suite.assertReason(suite.do(http.MethodPost, "/api/expenses", token, c.body), c.reason)
	}

	rec := suite.do(http.MethodGet, "/api/expenses", token, nil)
	suite.Equal("[]\n", rec.Body.String())
}

func (suite *HandlerTestSuite) TestExpenseLifecycle() {
	token, _ := suite.register("Ada", "ada@example.com")
	other, _ := suite.register("Bob", "bob@example.com")

	euro := suite.addExpense(token, map[string]interface{}{
		"amount": "1,250.50", "category": "Food", "currency": "eur", "date": "2024-06-10", "note": "groceries",
	})
	suite.True(euro.Amount.Equal(amt("1250.50")))
	suite.Equal("EUR", euro.Currency)

	today := suite.addExpense(token, map[string]interface{}{"amount": 10, "category": "Transport"})
	suite.Equal("2024-06-15", today.Date.String())
	suite.Equal("USD", today.Currency)

	rec := suite.do(http.MethodGet, "/api/expenses", token, nil)
	list := decodeBody[[]models.Expense](suite.T(), rec)
	suite.Require().Len(list, 2)
	suite.Equal(today.ID, list[0].ID)
	suite.Nil(list[0].AmountInBase)

	suite.Len(decodeBody[[]models.Expense](suite.T(), suite.do(http.MethodGet, "/api/expenses?limit=1", token, nil)), 1)
	suite.Len(decodeBody[[]models.Expense](suite.T(), suite.do(http.MethodGet, "/api/expenses?start=2024-06-11", token, nil)), 1)
	suite.assertReason(suite.do(http.MethodGet, "/api/expenses?start=2024-06-11&end=2024-06-01", token, nil), "invalid_date")

	based := decodeBody[[]models.Expense](suite.T(), suite.do(http.MethodGet, "/api/expenses?base=true", token, nil))
	suite.Require().NotNil(based[1].AmountInBase)
	suite.True(based[1].AmountInBase.Equal(amt("2501")))

	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/expenses/"+euro.ID, other, nil).Code)
	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/expenses/"+euro.ID, token, nil).Code)
	suite.Len(decodeBody[[]models.Expense](suite.T(), suite.do(http.MethodGet, "/api/expenses", token, nil)), 1)
}

func (suite *HandlerTestSuite) TestIncome() {
	token, _ := suite.register("Ada", "ada@example.com")

	suite.assertReason(suite.do(http.MethodPost, "/api/income", token, map[string]interface{}{"amount": 10, "source": "Lottery"}), "invalid_source")

	rec := suite.do(http.MethodPost, "/api/income", token, map[string]interface{}{"amount": "3000", "source": "Salary"})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[models.Income](suite.T(), rec)

	list := decodeBody[[]models.Income](suite.T(), suite.do(http.MethodGet, "/api/income", token, nil))
	suite.Require().Len(list, 1)
	suite.True(list[0].Amount.Equal(amt("3000")))

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/income/"+created.ID, token, nil).Code)
}

func (suite *HandlerTestSuite) TestBudgets() {
	token, _ := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPut, "/api/budgets", token, map[string]interface{}{"category": "Food", "monthly_limit": 200})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[models.Budget](suite.T(), rec)
	rec = suite.do(http.MethodPut, "/api/budgets", token, map[string]interface{}{"category": "Food", "monthly_limit": "300"})
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Equal(first.ID, decodeBody[models.Budget](suite.T(), rec).ID)

	suite.addExpense(token, map[string]interface{}{"amount": 250, "category": "Food"})
	suite.addExpense(token, map[string]interface{}{"amount": 999, "category": "Food", "date": "2024-05-01"})

	statuses := decodeBody[[]models.BudgetStatus](suite.T(), suite.do(http.MethodGet, "/api/budgets", token, nil))
	suite.Require().Len(statuses, 1)
	suite.True(statuses[0].Spent.Equal(amt("250")))
	suite.True(statuses[0].Remaining.Equal(amt("50")))
	suite.False(statuses[0].OverBudget)

	may := decodeBody[[]models.BudgetStatus](suite.T(), suite.do(http.MethodGet, "/api/budgets?month=2024-05", token, nil))
	suite.True(may[0].OverBudget)

	summary := decodeBody[map[string][]string](suite.T(), suite.do(http.MethodGet, "/api/budgets/summary", token, nil))
	suite.Equal([]string{"Food: 250.00/300.00 (83.3%)"}, summary["lines"])

	suite.assertReason(suite.do(http.MethodDelete, "/api/budgets/Pets", token, nil), "invalid_category")
	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/budgets/Food", token, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/budgets/Food", token, nil).Code)
}

func (suite *HandlerTestSuite) TestBills() {
	token, _ := suite.register("Ada", "ada@example.com")

	suite.assertReason(suite.do(http.MethodPost, "/api/bills", token, map[string]interface{}{"title": "Rent", "amount": 900}), "required")

	rec := suite.do(http.MethodPost, "/api/bills", token, map[string]interface{}{"title": "Rent", "amount": 900, "due_date": "2024-07-01", "category": "Rent"})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	bill := decodeBody[models.BillReminder](suite.T(), rec)
	suite.False(bill.IsPaid)

	rec = suite.do(http.MethodPost, "/api/bills/"+bill.ID+"/pay", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.True(decodeBody[models.BillReminder](suite.T(), rec).IsPaid)

	suite.Len(decodeBody[[]models.BillReminder](suite.T(), suite.do(http.MethodGet, "/api/bills", token, nil)), 1)
	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/bills/"+bill.ID, token, nil).Code)
}

func (suite *HandlerTestSuite) TestDebtPayments() {
	token, _ := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPost, "/api/debts", token, map[string]interface{}{"creditor_name": "Bank", "total_amount": 100, "interest_rate": "4.5"})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	debt := decodeBody[models.Debt](suite.T(), rec)
	path := "/api/debts/" + debt.ID + "/payments"

	suite.assertReason(suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": 0}), "non_positive_amount")

	rec = suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": 60})
	suite.Require().Equal(http.StatusOK, rec.Code)
	res := decodeBody[models.DebtPaymentResult](suite.T(), rec)
	suite.True(res.Debt.RemainingAmount.Equal(amt("40")))
	suite.False(res.Debt.IsPaid)

	rec = suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": 50})
	suite.Require().Equal(http.StatusOK, rec.Code)
	res = decodeBody[models.DebtPaymentResult](suite.T(), rec)
	suite.True(res.Debt.RemainingAmount.IsZero())
	suite.True(res.Debt.IsPaid)
	suite.True(res.Overpaid.Equal(amt("10")))

	suite.Equal(http.StatusConflict, suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": 5}).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodPost, "/api/debts/missing/payments", token, map[string]interface{}{"amount": 5}).Code)
}

func (suite *HandlerTestSuite) TestGoalContributions() {
	token, _ := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPost, "/api/goals", token, map[string]interface{}{"title": "Laptop", "target_amount": 100, "target_date": "2024-12-31"})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	goal := decodeBody[models.FinancialGoal](suite.T(), rec)
	path := "/api/goals/" + goal.ID + "/contributions"

	rec = suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": 60})
	suite.False(decodeBody[models.FinancialGoal](suite.T(), rec).IsAchieved)
	rec = suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": 50})
	updated := decodeBody[models.FinancialGoal](suite.T(), rec)
	suite.True(updated.IsAchieved)
	suite.True(updated.CurrentAmount.Equal(amt("110")))

	suite.assertReason(suite.do(http.MethodPost, path, token, map[string]interface{}{"amount": -1}), "non_positive_amount")
}

func (suite *HandlerTestSuite) TestGroupExpenses() {
	token, _ := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPost, "/api/group-expenses", token, map[string]interface{}{
		"description": "Dinner", "total_amount": 100, "split_type": "equal",
		"members": []map[string]string{{"email": "a@x.co"}, {"email": "B@x.co"}, {"email": "c@x.co"}},
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	group := decodeBody[models.GroupExpense](suite.T(), rec)
	suite.Require().Len(group.Members, 3)
	suite.True(group.Members[0].Share.Equal(amt("33.34")))
	suite.True(group.Members[1].Share.Equal(amt("33.33")))
	suite.Equal("b@x.co", group.Members[1].Email)

	rec = suite.do(http.MethodPost, "/api/group-expenses", token, map[string]interface{}{
		"description": "Taxi", "total_amount": 30, "split_type": "custom",
		"members": []map[string]string{{"email": "a@x.co", "share": "10"}, {"email": "b@x.co", "share": "10"}},
	})
	suite.assertReason(rec, "invalid_split")

	rec = suite.do(http.MethodPost, "/api/group-expenses/"+group.ID+"/members/b@x.co/paid", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.True(decodeBody[models.GroupExpense](suite.T(), rec).Members[1].Paid)

	rec = suite.do(http.MethodPost, "/api/group-expenses/"+group.ID+"/members/zed@x.co/paid", token, nil)
	suite.Equal(http.StatusNotFound, rec.Code)

	suite.Len(decodeBody[[]models.GroupExpense](suite.T(), suite.do(http.MethodGet, "/api/group-expenses", token, nil)), 1)
	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/group-expenses/"+group.ID, token, nil).Code)
}

func (suite *HandlerTestSuite) TestSharing() {
	alice, aliceUser := suite.register("Alice", "alice@example.com")
	bob, _ := suite.register("Bob", "bob@example.com")
	suite.addExpense(alice, map[string]interface{}{"amount": 42, "category": "Food"})

	shared := "/api/shared/" + aliceUser.ID + "/expenses"
	suite.Equal(http.StatusForbidden, suite.do(http.MethodGet, shared, bob, nil).Code)

	suite.assertReason(suite.do(http.MethodPost, "/api/shares", alice, map[string]string{"member_email": "alice@example.com"}), "invalid_email")
	suite.Equal(http.StatusCreated, suite.do(http.MethodPost, "/api/shares", alice, map[string]string{"member_email": "Bob@example.com"}).Code)
	suite.Equal(http.StatusConflict, suite.do(http.MethodPost, "/api/shares", alice, map[string]string{"member_email": "bob@example.com"}).Code)

	rec := suite.do(http.MethodGet, shared, bob, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Len(decodeBody[[]models.Expense](suite.T(), rec), 1)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/shared/"+aliceUser.ID+"/income", bob, nil).Code)

	incoming := decodeBody[[]models.ShareGrant](suite.T(), suite.do(http.MethodGet, "/api/shares/incoming", bob, nil))
	suite.Require().Len(incoming, 1)
	suite.Equal(aliceUser.ID, incoming[0].UserID)
	suite.Len(decodeBody[[]models.ShareGrant](suite.T(), suite.do(http.MethodGet, "/api/shares", alice, nil)), 1)

	suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, "/api/shares/bob@example.com", alice, nil).Code)
	suite.Equal(http.StatusForbidden, suite.do(http.MethodGet, shared, bob, nil).Code)
}

func (suite *HandlerTestSuite) TestBadgesFollowLedgerChanges() {
	token, _ := suite.register("Ada", "ada@example.com")

	type badgeBody struct {
		Badges []struct {
			Name string `json:"name"`
		} `json:"badges"`
		Summary string `json:"summary"`
	}
	body := decodeBody[badgeBody](suite.T(), suite.do(http.MethodGet, "/api/badges", token, nil))
	suite.Equal("Unlocked 0 badges", body.Summary)
	body = decodeBody[badgeBody](suite.T(), suite.do(http.MethodGet, "/api/badges", token, nil))
	suite.Equal("Unlocked 0 badges", body.Summary)

	suite.addExpense(token, map[string]interface{}{"amount": 10, "category": "Food"})
	body = decodeBody[badgeBody](suite.T(), suite.do(http.MethodGet, "/api/badges", token, nil))
	suite.Require().NotEmpty(body.Badges)
	suite.Equal("First Expense", body.Badges[0].Name)
}

func (suite *HandlerTestSuite) TestDashboard() {
	token, _ := suite.register("Ada", "ada@example.com")
	suite.do(http.MethodPost, "/api/income", token, map[string]interface{}{"amount": 1000, "source": "Salary"})
	suite.addExpense(token, map[string]interface{}{"amount": 850, "category": "Rent"})

	rec := suite.do(http.MethodGet, "/api/dashboard?period=month", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	dash := decodeBody[dashboard.Dashboard](suite.T(), rec)
	suite.Require().NotNil(dash.Summary.SavingsRate)
	suite.True(dash.Summary.SavingsRate.Equal(amt("15")))
	suite.True(dash.Summary.LowSavings)
	suite.True(dash.Health.NetWorth.Equal(amt("150")))

	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/dashboard?period=week", token, nil).Code)
}

func (suite *HandlerTestSuite) TestReports() {
	token, _ := suite.register("Ada", "ada@example.com")
	suite.addExpense(token, map[string]interface{}{"amount": 12, "category": "Food", "note": "lunch"})

	rec := suite.do(http.MethodGet, "/api/reports/csv", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Equal("text/csv", rec.Header().Get("Content-Type"))
	suite.Contains(rec.Header().Get("Content-Disposition"), "report.csv")
	suite.Equal(2, strings.Count(rec.Body.String(), "\n"))

	suite.ai.err = errors.New("model overloaded")
	rec = suite.do(http.MethodGet, "/api/reports/pdf?start=2024-06-01&end=2024-06-30", token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.True(bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	suite.assertReason(suite.do(http.MethodGet, "/api/reports/csv?start=yesterday", token, nil), "invalid_date")
}

func (suite *HandlerTestSuite) TestEmailReport() {
	token, _ := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPost, "/api/reports/email", token, map[string]string{"format": "csv"})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("ada@example.com", suite.mail.to)
	suite.Equal("report.csv", suite.mail.filename)
	suite.Equal("text/csv", suite.mail.mime)
	suite.NotEmpty(suite.mail.data)

	suite.mail.err = errors.New("connection refused")
	rec = suite.do(http.MethodPost, "/api/reports/email", token, map[string]string{"to": "boss@example.com"})
	suite.Equal(http.StatusBadGateway, rec.Code)
	suite.Equal("report.pdf", suite.mail.filename)

	noMail := suite.newRouter(api.Options{})
	rec = suite.serve(noMail, http.MethodPost, "/api/reports/email", token, map[string]string{"format": "csv"})
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *HandlerTestSuite) TestInsightsAndChat() {
	token, _ := suite.register("Ada", "ada@example.com")

	rec := suite.do(http.MethodPost, "/api/insights", token, map[string]string{"prompt": "how am I doing?"})
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "No Gemini API key found")

	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPut, "/api/user/gemini-key", token, map[string]string{"api_key": "k-123"}).Code)
	user := decodeBody[models.User](suite.T(), suite.do(http.MethodGet, "/api/user", token, nil))
	suite.True(user.HasGeminiKey)

	rec = suite.do(http.MethodPost, "/api/insights", token, map[string]string{"prompt": "how am I doing?"})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Contains(decodeBody[map[string]string](suite.T(), rec)["text"], "how am I doing?")
	suite.Equal("k-123", suite.ai.lastKey)

	rec = suite.do(http.MethodPost, "/api/chat", token, map[string]string{"question": "what is APR?"})
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Equal("answer: what is APR?", decodeBody[map[string]string](suite.T(), rec)["text"])

	suite.assertReason(suite.do(http.MethodPost, "/api/chat", token, map[string]string{"question": " "}), "required")

	suite.ai.err = errors.New("quota exceeded")
	suite.Equal(http.StatusBadGateway, suite.do(http.MethodPost, "/api/chat", token, map[string]string{"question": "hi"}).Code)
}

func (suite *HandlerTestSuite) scanRequest(token string, withImage bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withImage {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="receipt.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		suite.Require().NoError(err)
		_, _ = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	}
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	return rec
}

func (suite *HandlerTestSuite) TestScanReceipt() {
	token, _ := suite.register("Ada", "ada@example.com")

	type scanBody struct {
		Text       string                      `json:"text"`
		Suggestion *insights.ReceiptSuggestion `json:"suggestion"`
		Warning    string                      `json:"warning"`
	}

	rec := suite.scanRequest(token, true)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[scanBody](suite.T(), rec)
	suite.Equal("TOTAL 12.00", body.Text)
	suite.Require().NotNil(body.Suggestion)
	suite.Equal(models.CategoryFood, body.Suggestion.Category)
	suite.Empty(body.Warning)

	suite.scanner.parseErr = insights.ErrUnreadableReceipt
	body = decodeBody[scanBody](suite.T(), suite.scanRequest(token, true))
	suite.Nil(body.Suggestion)
	suite.Contains(body.Warning, "could not read")

	suite.scanner.textErr = errors.New("vision down")
	suite.Equal(http.StatusBadGateway, suite.scanRequest(token, true).Code)

	suite.assertReason(suite.scanRequest(token, false), "required")
}

func (suite *HandlerTestSuite) TestDemoModeIsReadOnly() {
	demo := suite.newRouter(api.Options{DemoMode: true})

	rec := suite.serve(demo, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": password,
	})
	suite.Require().Equal(http.StatusCreated, rec.Code)
	token := decodeBody[models.TokenResponse](suite.T(), rec).Token

	rec = suite.serve(demo, http.MethodPost, "/api/expenses", token, map[string]interface{}{"amount": 1, "category": "Food"})
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Equal(http.StatusOK, suite.serve(demo, http.MethodGet, "/api/expenses", token, nil).Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func TestAmountAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A handlers.Amount `json:"a"`
		B handlers.Amount `json:"b"`
		C handlers.Amount `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "1,000", "c": null}`), &v))
	assert.Equal(t, handlers.Amount("12.5"), v.A)
	assert.Equal(t, handlers.Amount("1,000"), v.B)
	assert.Equal(t, handlers.Amount(""), v.C)
}
