package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"p2p-lending-engine/internal/usecase/approval"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type approveLoanReq struct {
	PhotoURL            string `json:"photo_url"              validate:"required,url"`
	ValidatorEmployeeID string `json:"validator_employee_id"  validate:"required,hex32"`
	// Accept canonical date `YYYY-MM-DD`; empty means today
	ApprovalDate string `json:"approval_date"          validate:"omitempty,datetime=2006-01-02"`
}

type rejectLoanReq struct {
	ValidatorEmployeeID string `json:"validator_employee_id" validate:"required,hex32"`
	Reason              string `json:"reason"                validate:"required,max=1000"`
}

func (h *ApprovalHandler) ApproveLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req approveLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := approval.ApproveInput{
		LoanID:              loanID,
		PhotoURL:            req.PhotoURL,
		ValidatorEmployeeID: req.ValidatorEmployeeID,
	}
	if req.ApprovalDate != "" {
		// layout already checked by the validator
		in.ApprovalDate, _ = time.ParseInLocation("2006-01-02", req.ApprovalDate, time.UTC)
	}
	dto, err := h.uc.Approve(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) RejectLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req rejectLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), approval.RejectInput{
		LoanID:              loanID,
		ValidatorEmployeeID: req.ValidatorEmployeeID,
		Reason:              req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
