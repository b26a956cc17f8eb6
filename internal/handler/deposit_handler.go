package handler

import (
	"context"
	"net/http"

	"digilinex/internal/middleware"
	"digilinex/internal/models"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DepositHandler struct {
	svc DepositServicer
	log logrus.FieldLogger
}

func NewDepositHandler(svc DepositServicer, log logrus.FieldLogger) *DepositHandler {
	return &DepositHandler{svc: svc, log: log.WithField("component", "deposit_handler")}
}

func (h *DepositHandler) Create(c *gin.Context) {
	var req service.DepositInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.svc.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DepositHandler) Mine(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Request.Context(), middleware.GetUserID(c), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

// AdminList handles GET /admin/deposits?status=&user_id=.
func (h *DepositHandler) AdminList(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Request.Context(), queryID(c, "user_id"), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

type reviewRequest struct {
	Note string `json:"note"`
}

func (h *DepositHandler) Approve(c *gin.Context) {
	h.review(c, h.svc.Approve)
}

func (h *DepositHandler) Reject(c *gin.Context) {
	h.review(c, h.svc.Reject)
}

func (h *DepositHandler) review(c *gin.Context, fn func(ctx context.Context, adminID, id uint, note string) (*models.Deposit, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)
	d, err := fn(c.Request.Context(), middleware.GetUserID(c), id, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
