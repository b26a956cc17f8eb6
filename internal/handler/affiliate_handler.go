package handler

import (
	"context"
	"net/http"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"
	"digilinex/internal/models"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SettingReader interface {
	Get(ctx context.Context, key string) (string, error)
}

type AffiliateHandler struct {
	svc      AffiliateServicer
	apps     AffiliateLister
	settings SettingReader
	log      logrus.FieldLogger
}

func NewAffiliateHandler(svc AffiliateServicer, apps AffiliateLister, settings SettingReader, log logrus.FieldLogger) *AffiliateHandler {
	return &AffiliateHandler{svc: svc, apps: apps, settings: settings, log: log.WithField("component", "affiliate_handler")}
}

// Program describes the affiliate program: trust fee, auto-approval window and rank table.
// GET /affiliate/program
func (h *AffiliateHandler) Program(c *gin.Context) {
	fee, err := h.settings.Get(c.Request.Context(), domain.SettingAffiliateTrustFeeUSDT)
	if err != nil {
		fee = domain.DefaultSettings[domain.SettingAffiliateTrustFeeUSDT]
	}
	c.JSON(http.StatusOK, gin.H{
		"trust_fee_usdt":           fee,
		"auto_approve_min_minutes": int(domain.AutoApproveMinDelay.Minutes()),
		"auto_approve_max_minutes": int(domain.AutoApproveMaxDelay.Minutes()),
		"ranks":                    domain.RankTable,
	})
}

// GET /affiliate/status
func (h *AffiliateHandler) Status(c *gin.Context) {
	h.reply(c)(h.svc.Status(c.Request.Context(), middleware.GetUserID(c)))
}

// POST /affiliate/apply
func (h *AffiliateHandler) Apply(c *gin.Context) {
	var req service.AffiliateApply
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.reply(c)(h.svc.Apply(c.Request.Context(), middleware.GetUserID(c), req))
}

// POST /affiliate/trust-fee
func (h *AffiliateHandler) PayTrustFee(c *gin.Context) {
	h.reply(c)(h.svc.PayTrustFee(c.Request.Context(), middleware.GetUserID(c)))
}

// POST /affiliate/contact
func (h *AffiliateHandler) SubmitContact(c *gin.Context) {
	var req struct {
		ContactHandle string `json:"contact_handle" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.reply(c)(h.svc.SubmitContact(c.Request.Context(), middleware.GetUserID(c), req.ContactHandle))
}

// AdminList handles GET /admin/affiliates?status=.
func (h *AffiliateHandler) AdminList(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !domain.IsAffiliateStatus(status) {
		badRequest(c, "unknown status")
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.apps.List(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

func (h *AffiliateHandler) AdminGet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.reply(c)(h.apps.GetByID(c.Request.Context(), id))
}

func (h *AffiliateHandler) Review(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.reply(c)(h.svc.Review(c.Request.Context(), middleware.GetUserID(c), id))
	}
}

func (h *AffiliateHandler) RequestTrustFee(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.reply(c)(h.svc.RequestTrustFee(c.Request.Context(), middleware.GetUserID(c), id))
	}
}

func (h *AffiliateHandler) MarkTrustFeeCollected(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.reply(c)(h.svc.MarkTrustFeeCollected(c.Request.Context(), middleware.GetUserID(c), id))
	}
}

func (h *AffiliateHandler) Approve(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		adminID := middleware.GetUserID(c)
		h.reply(c)(h.svc.Approve(c.Request.Context(), &adminID, id))
	}
}

func (h *AffiliateHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	h.reply(c)(h.svc.Reject(c.Request.Context(), middleware.GetUserID(c), id, req.Reason))
}

func (h *AffiliateHandler) reply(c *gin.Context) func(*models.AffiliateApplication, error) {
	return func(app *models.AffiliateApplication, err error) {
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, app)
	}
}
