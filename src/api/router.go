package api

import (
	"net/http"

	"fintrack-server/src/handlers"
	"fintrack-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Options struct {
	DemoMode       bool
	AllowedOrigins []string
	MailEnabled    bool
}

func NewRouter(env *handlers.Env, opts Options, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.DemoMode(opts.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(env))
		r.Post("/register", handlers.Register(env))

		// Protected routes
		r.With(middleware.JWTAuth(env.JWTSecret)).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(env))
			r.Put("/user", handlers.UpdateUser(env))
			r.Post("/user/change-password", handlers.ChangePassword(env))
			r.Delete("/user", handlers.DeleteUser(env))
			r.Put("/user/gemini-key", handlers.SetGeminiKey(env))

			// Ledger
			r.Post("/expenses", handlers.CreateExpense(env))
			r.Get("/expenses", handlers.ListExpenses(env))
			r.Delete("/expenses/{id}", handlers.DeleteExpense(env))
			r.Post("/income", handlers.CreateIncome(env))
			r.Get("/income", handlers.ListIncome(env))
			r.Delete("/income/{id}", handlers.DeleteIncome(env))

			// Budget
			r.Put("/budgets", handlers.UpsertBudget(env))
			r.Get("/budgets", handlers.ListBudgets(env))
			r.Get("/budgets/summary", handlers.BudgetSummary(env))
			r.Delete("/budgets/{category}", handlers.DeleteBudget(env))

			// Bills, debts, goals
			r.Post("/bills", handlers.CreateBill(env))
			r.Get("/bills", handlers.ListBills(env))
			r.Post("/bills/{id}/pay", handlers.PayBill(env))
			r.Delete("/bills/{id}", handlers.DeleteBill(env))
			r.Post("/debts", handlers.CreateDebt(env))
			r.Get("/debts", handlers.ListDebts(env))
			r.Post("/debts/{id}/payments", handlers.PayDebt(env))
			r.Delete("/debts/{id}", handlers.DeleteDebt(env))
			r.Post("/goals", handlers.CreateGoal(env))
			r.Get("/goals", handlers.ListGoals(env))
			r.Post("/goals/{id}/contributions", handlers.ContributeToGoal(env))
			r.Delete("/goals/{id}", handlers.DeleteGoal(env))

			// Group expenses
			r.Post("/group-expenses", handlers.CreateGroupExpense(env))
			r.Get("/group-expenses", handlers.ListGroupExpenses(env))
			r.Post("/group-expenses/{id}/members/{email}/paid", handlers.MarkMemberPaid(env))
			r.Delete("/group-expenses/{id}", handlers.DeleteGroupExpense(env))

			// Sharing
			r.Post("/shares", handlers.CreateShare(env))
			r.Get("/shares", handlers.ListShares(env))
			r.Get("/shares/incoming", handlers.ListIncomingShares(env))
			r.Delete("/shares/{email}", handlers.DeleteShare(env))
			r.Get("/shared/{owner_id}/expenses", handlers.SharedExpenses(env))
			r.Get("/shared/{owner_id}/income", handlers.SharedIncome(env))

			// Analytics
			r.Get("/dashboard", handlers.Dashboard(env))
			r.Get("/badges", handlers.Badges(env))

			// Reports
			r.Get("/reports/csv", handlers.ReportCSV(env))
			r.Get("/reports/pdf", handlers.ReportPDF(env))
			if opts.MailEnabled {
				r.Post("/reports/email", handlers.EmailReport(env))
			}

			// AI
			r.Post("/insights", handlers.Insights(env))
			r.Post("/chat", handlers.Chat(env))
			r.Post("/receipts/scan", handlers.ScanReceipt(env))
		})
	})

	return r
}
