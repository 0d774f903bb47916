package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainApproval "p2p-lending-engine/internal/domain/approval"
	domainLoan "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	domainWallet "p2p-lending-engine/internal/domain/wallet"
)

var errorStatus = []struct {
	err  error
	code int
}{
	{domainLoan.ErrNotFound, http.StatusNotFound},
	{domainWallet.ErrNotFound, http.StatusNotFound},
	{domainWallet.ErrTransactionNotFound, http.StatusNotFound},
	{domainApproval.ErrNotFound, http.StatusNotFound},

	{domainLoan.ErrInvalidTransition, http.StatusConflict},
	{domainLoan.ErrAlreadyApproved, http.StatusConflict},
	{domainApproval.ErrAlreadyDecided, http.StatusConflict},
	{domainLoan.ErrDuplicateApplication, http.StatusConflict},
	{domainWallet.ErrDuplicateReference, http.StatusConflict},
	{domainWallet.ErrAlreadyExists, http.StatusConflict},
	{uow.ErrConcurrentModification, http.StatusConflict},

	{domainLoan.ErrFundingOverflow, http.StatusUnprocessableEntity},
	{domainLoan.ErrInvalidTerms, http.StatusUnprocessableEntity},
	{domainLoan.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{domainLoan.ErrSelfInvestment, http.StatusUnprocessableEntity},
	{domainLoan.ErrNothingDue, http.StatusUnprocessableEntity},
	{domainLoan.ErrRejectionReasonNeeded, http.StatusUnprocessableEntity},
	{domainWallet.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{domainWallet.ErrLimitExceeded, http.StatusUnprocessableEntity},
	{domainWallet.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{domainWallet.ErrInvalidType, http.StatusUnprocessableEntity},
	{domainWallet.ErrMissingReference, http.StatusUnprocessableEntity},
	{domainWallet.ErrSameWalletTransfer, http.StatusUnprocessableEntity},
}

// StatusFor maps a usecase error to its HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err. Internal failures are logged and never echoed.
func writeError(c echo.Context, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bindAndValidate reports whether req is usable. When it is not, the error
// response has already been written and the returned error is the write's.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
