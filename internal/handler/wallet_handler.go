package handler

import (
	"net/http"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type WalletHandler struct {
	wallets    WalletReader
	settlement SettlementServicer
	log        logrus.FieldLogger
}

func NewWalletHandler(wallets WalletReader, settlement SettlementServicer, log logrus.FieldLogger) *WalletHandler {
	return &WalletHandler{wallets: wallets, settlement: settlement, log: log.WithField("component", "wallet_handler")}
}

// List returns all six sub-balances of the caller.
func (h *WalletHandler) List(c *gin.Context) {
	list, err := h.wallets.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": list})
}

// Transactions returns the caller's ledger, newest first. ?type= filters by ledger type.
func (h *WalletHandler) Transactions(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.wallets.ListTransactions(c.Request.Context(), middleware.GetUserID(c), c.Query("type"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

type TransferRequest struct {
	From     string          `json:"from" binding:"required"`
	To       string          `json:"to" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// Transfer moves funds between two of the caller's own purposes in one currency.
func (h *WalletHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	wallets, err := h.settlement.Transfer(c.Request.Context(), middleware.GetUserID(c), req.From, req.To, req.Currency, req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": wallets})
}

// Purposes lists the valid purpose and currency names for clients building forms.
func (h *WalletHandler) Purposes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"purposes": domain.Purposes, "currencies": domain.Currencies})
}
