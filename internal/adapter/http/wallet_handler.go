package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"p2p-lending-engine/internal/usecase/wallet"
)

type WalletHandler struct{ uc *wallet.Usecase }

func NewWalletHandler(uc *wallet.Usecase) *WalletHandler { return &WalletHandler{uc: uc} }

type openWalletReq struct {
	UserID string `json:"user_id" validate:"required,hex32"`
}

type withdrawReq struct {
	Amount    decimal.Decimal `json:"amount"    validate:"money"`
	Reference string          `json:"reference" validate:"max=96"`
}

type transferReq struct {
	ToWalletID string          `json:"to_wallet_id" validate:"required,hex32"`
	Amount     decimal.Decimal `json:"amount"       validate:"money"`
	Reference  string          `json:"reference"    validate:"max=96"`
	Note       string          `json:"note"         validate:"max=255"`
}

type depositWebhookReq struct {
	WalletID          string          `json:"wallet_id"          validate:"required,hex32"`
	Amount            decimal.Decimal `json:"amount"             validate:"money"`
	ExternalReference string          `json:"external_reference" validate:"required,max=96"`
}

func (h *WalletHandler) OpenWallet(c echo.Context) error {
	var req openWalletReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, created, err := h.uc.Open(c.Request().Context(), req.UserID)
	if err != nil {
		return writeError(c, err)
	}
	if !created {
		return c.JSON(http.StatusOK, dto)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *WalletHandler) GetWallet(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("wallet_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WalletHandler) ListTransactions(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
	}
	list, err := h.uc.Transactions(c.Request().Context(), c.Param("wallet_id"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": list})
}

func (h *WalletHandler) Withdraw(c echo.Context) error {
	var req withdrawReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Withdraw(c.Request().Context(), c.Param("wallet_id"), req.Amount, referenceOr(c, req.Reference))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *WalletHandler) Transfer(c echo.Context) error {
	var req transferReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Transfer(c.Request().Context(), wallet.TransferInput{
		FromWalletID: c.Param("wallet_id"),
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
		Reference:    referenceOr(c, req.Reference),
		Note:         req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// DepositWebhook records a payment-gateway deposit. Redelivery of the same
// external reference answers with the original ledger record.
func (h *WalletHandler) DepositWebhook(c echo.Context) error {
	var req depositWebhookReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RecordExternalDeposit(c.Request().Context(), req.WalletID, req.Amount, req.ExternalReference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
