package handler

import (
	"net/http"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PurchaseHandler struct {
	svc SettlementServicer
	log logrus.FieldLogger
}

func NewPurchaseHandler(svc SettlementServicer, log logrus.FieldLogger) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, log: log.WithField("component", "purchase_handler")}
}

// PurchaseRequestBody is the checkout form. split_with names a second purpose
// to pay half of the price from.
type PurchaseRequestBody struct {
	Currency  string `json:"currency" binding:"required"`
	Purpose   string `json:"purpose" binding:"required"`
	SplitWith string `json:"split_with"`
}

// BuyProduct handles POST /purchase/products/:id.
func (h *PurchaseHandler) BuyProduct(c *gin.Context) { h.buy(c, domain.ItemProduct) }

// BuyPackage handles POST /purchase/packages/:id.
func (h *PurchaseHandler) BuyPackage(c *gin.Context) { h.buy(c, domain.ItemDatabasePackage) }

// BuySoftware handles POST /purchase/software/:id.
func (h *PurchaseHandler) BuySoftware(c *gin.Context) { h.buy(c, domain.ItemSoftware) }

func (h *PurchaseHandler) buy(c *gin.Context, kind string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req PurchaseRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.svc.Purchase(c.Request.Context(), service.PurchaseRequest{
		UserID:    middleware.GetUserID(c),
		Kind:      kind,
		ItemID:    id,
		Currency:  req.Currency,
		Purpose:   req.Purpose,
		SplitWith: req.SplitWith,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
