package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health    *Handler
	Loans     *LoanHandler
	Approvals *ApprovalHandler
	Funding   *FundingHandler
	Wallets   *WalletHandler
}

// RegisterRoutes mounts the API on e. idem guards every mutating route except
// the deposit webhook, which is idempotent on the gateway reference.
func RegisterRoutes(e *echo.Echo, h Handlers, idem echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	loans := e.Group("/loans")
	loans.POST("", h.Loans.CreateLoan, idem)
	loans.GET("/:loan_id", h.Loans.GetLoan)
	loans.POST("/:loan_id/submit", h.Loans.SubmitLoan, idem)
	loans.POST("/:loan_id/approve", h.Approvals.ApproveLoan, idem)
	loans.POST("/:loan_id/reject", h.Approvals.RejectLoan, idem)
	loans.POST("/:loan_id/investments", h.Funding.Invest, idem)
	loans.POST("/:loan_id/payments", h.Funding.Pay, idem)
	loans.GET("/:loan_id/penalty", h.Funding.PenaltyStatus)

	wallets := e.Group("/wallets")
	wallets.POST("", h.Wallets.OpenWallet, idem)
	wallets.GET("/:wallet_id", h.Wallets.GetWallet)
	wallets.GET("/:wallet_id/transactions", h.Wallets.ListTransactions)
	wallets.POST("/:wallet_id/withdrawals", h.Wallets.Withdraw, idem)
	wallets.POST("/:wallet_id/transfers", h.Wallets.Transfer, idem)

	e.POST("/webhooks/deposits", h.Wallets.DepositWebhook)
}
