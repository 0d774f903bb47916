package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domain "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BorrowerID     string          `json:"borrower_id"     validate:"required,hex32"`
	Principal      decimal.Decimal `json:"principal"       validate:"money"`
	Purpose        string          `json:"purpose"         validate:"required,max=255"`
	DurationMonths int             `json:"duration_months" validate:"gte=1,lte=60"`
	InterestRate   decimal.Decimal `json:"interest_rate"   validate:"rate"`
	InterestModel  string          `json:"interest_model"  validate:"omitempty,oneof=flat amortized"`
	Draft          bool            `json:"draft"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		BorrowerID:     req.BorrowerID,
		Principal:      req.Principal,
		Purpose:        req.Purpose,
		DurationMonths: req.DurationMonths,
		InterestRate:   req.InterestRate,
		InterestModel:  domain.InterestModel(req.InterestModel),
		Draft:          req.Draft,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) SubmitLoan(c echo.Context) error {
	dto, err := h.uc.Submit(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
