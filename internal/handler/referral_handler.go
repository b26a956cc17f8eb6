package handler

import (
	"net/http"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReferralHandler struct {
	svc ReferralServicer
	log logrus.FieldLogger
}

func NewReferralHandler(svc ReferralServicer, log logrus.FieldLogger) *ReferralHandler {
	return &ReferralHandler{svc: svc, log: log.WithField("component", "referral_handler")}
}

// GetMyCode returns the caller's referral code, creating one if needed.
// GET /me/referral-code
func (h *ReferralHandler) GetMyCode(c *gin.Context) {
	rc, err := h.svc.GetOrCreateCode(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, codeResponse(rc.Code, rc.LastEditedAt))
}

// UpdateMyCode changes the caller's code, at most once per cooldown period.
// PUT /me/referral-code
func (h *ReferralHandler) UpdateMyCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	rc, err := h.svc.UpdateCode(c.Request.Context(), middleware.GetUserID(c), req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, codeResponse(rc.Code, rc.LastEditedAt))
}

func codeResponse(code string, lastEdited *time.Time) gin.H {
	resp := gin.H{"code": code, "last_edited_at": lastEdited}
	if lastEdited != nil {
		resp["next_edit_at"] = lastEdited.Add(domain.ReferralEditCooldown)
	}
	return resp
}

// GetMyReferrals lists users the caller referred with the commission they generated.
// GET /me/referrals
func (h *ReferralHandler) GetMyReferrals(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.ListReferrals(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, ref := range list {
		out = append(out, gin.H{
			"referred_user": gin.H{
				"id":           ref.ReferredUser.ID,
				"username":     ref.ReferredUser.Username,
				"is_affiliate": ref.ReferredUser.IsAffiliate,
				"joined_at":    ref.ReferredUser.CreatedAt,
			},
			"earned_usdt":    ref.EarnedUSDT,
			"earned_inr":     ref.EarnedINR,
			"purchase_count": ref.PurchaseCount,
			"created_at":     ref.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, paged(out, total, page, limit))
}

// GET /me/referrals/stats
func (h *ReferralHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /commission-rates
func (h *ReferralHandler) CommissionRates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ranks": h.svc.CommissionRates()})
}

// GET /me/commission-rate
func (h *ReferralHandler) MyRate(c *gin.Context) {
	rate, err := h.svc.MyRate(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
