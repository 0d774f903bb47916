package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"p2p-lending-engine/internal/usecase/funding"
	"p2p-lending-engine/internal/usecase/repayment"
)

type FundingHandler struct {
	funding   *funding.Usecase
	repayment *repayment.Usecase
}

func NewFundingHandler(f *funding.Usecase, r *repayment.Usecase) *FundingHandler {
	return &FundingHandler{funding: f, repayment: r}
}

type investReq struct {
	InvestorID string          `json:"investor_id" validate:"required,hex32"`
	Amount     decimal.Decimal `json:"amount"      validate:"money"`
	Reference  string          `json:"reference"   validate:"max=96"`
}

type payReq struct {
	Amount    decimal.Decimal `json:"amount"    validate:"money"`
	Reference string          `json:"reference" validate:"max=96"`
}

func (h *FundingHandler) Invest(c echo.Context) error {
	var req investReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.funding.Invest(c.Request().Context(), funding.InvestInput{
		LoanID:     c.Param("loan_id"),
		InvestorID: req.InvestorID,
		Amount:     req.Amount,
		Reference:  referenceOr(c, req.Reference),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *FundingHandler) Pay(c echo.Context) error {
	var req payReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.repayment.Pay(c.Request().Context(), repayment.PayInput{
		LoanID:    c.Param("loan_id"),
		Amount:    req.Amount,
		Reference: referenceOr(c, req.Reference),
	})
	if err != nil {
		return writeError(c, err)
	}
	code := http.StatusCreated
	if dto.Replayed {
		code = http.StatusOK
	}
	return c.JSON(code, dto)
}

func (h *FundingHandler) PenaltyStatus(c echo.Context) error {
	st, err := h.repayment.GetPenaltyStatus(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
