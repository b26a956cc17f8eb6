package handler

import (
	"net/http"
	"strconv"
	"strings"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	adminRepo   AdminReader
	users       UserReader
	settingRepo SettingsRepo
	audit       AuditRepo
	settlement  SettlementServicer
	log         logrus.FieldLogger
}

func NewAdminHandler(
	adminRepo AdminReader,
	users UserReader,
	settingRepo SettingsRepo,
	audit AuditRepo,
	settlement SettlementServicer,
	log logrus.FieldLogger,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:   adminRepo,
		users:       users,
		settingRepo: settingRepo,
		audit:       audit,
		settlement:  settlement,
		log:         log.WithField("component", "admin_handler"),
	}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users?search=&role=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	users, total, err := h.adminRepo.ListUsers(c.Request.Context(), c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(users, total, page, limit))
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateUser handles PATCH /admin/users/:id. Only role, rank and username can change.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role     *string `json:"role"`
		Rank     *string `json:"rank"`
		Username *string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	fields := map[string]interface{}{}
	if req.Role != nil {
		if *req.Role != domain.RoleUser && *req.Role != domain.RoleAdmin {
			badRequest(c, "role must be USER or ADMIN")
			return
		}
		fields["role"] = *req.Role
	}
	if req.Rank != nil {
		if !domain.IsRank(*req.Rank) {
			badRequest(c, "unknown rank")
			return
		}
		fields["rank"] = *req.Rank
	}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if !usernamePattern.MatchString(name) {
			badRequest(c, "invalid username")
			return
		}
		other, err := h.users.GetByUsername(ctx, name)
		switch {
		case err == nil && other.ID != id:
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		case err != nil && !errors.Is(err, domain.ErrRecordNotFound):
			respondError(c, h.log, err)
			return
		}
		fields["username"] = name
	}
	if len(fields) == 0 {
		badRequest(c, "no valid fields to update")
		return
	}
	if err := h.users.UpdateFields(ctx, id, fields); err != nil {
		respondError(c, h.log, err)
		return
	}
	writeAudit(c, h.audit, h.log, middleware.GetUserID(c), "user.update", "user", uintStr(id))
	u, err := h.users.GetByID(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type WalletAdjustRequest struct {
	Purpose  string          `json:"purpose" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount"` // signed: negative debits
	Note     string          `json:"note" binding:"required"`
}

// AdjustWallet handles POST /admin/users/:id/wallet-adjust.
func (h *AdminHandler) AdjustWallet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req WalletAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.settlement.AdjustWallet(c.Request.Context(), middleware.GetUserID(c), id, req.Purpose, req.Currency, req.Amount, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListTransactions handles GET /admin/transactions?user_id=&type=.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.adminRepo.ListTransactions(c.Request.Context(), queryID(c, "user_id"), c.Query("type"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings handles PUT /admin/settings. Unknown keys and malformed values are rejected
// before anything is written.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		Settings map[string]string `json:"settings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	for k, v := range req.Settings {
		if msg := validateSetting(k, v); msg != "" {
			badRequest(c, msg)
			return
		}
	}
	adminID := middleware.GetUserID(c)
	for k, v := range req.Settings {
		if err := h.settingRepo.Set(c.Request.Context(), k, strings.TrimSpace(v), &adminID); err != nil {
			respondError(c, h.log, err)
			return
		}
		writeAudit(c, h.audit, h.log, adminID, "setting.update", "setting", k)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func validateSetting(key, value string) string {
	value = strings.TrimSpace(value)
	switch key {
	case domain.SettingAffiliateTrustFeeUSDT, domain.SettingApplicantTrustFeeUSDT:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return key + " must be a non-negative number"
		}
	case domain.SettingCommissionsEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return key + " must be true or false"
		}
	default:
		return "unknown setting: " + key
	}
	return ""
}

// Analytics handles GET /admin/analytics?days=30.
func (h *AdminHandler) Analytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 || days > 365 {
		days = 30
	}
	ctx := c.Request.Context()
	signups, err := h.adminRepo.UserSignupsByDay(ctx, days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	orders, err := h.adminRepo.OrdersByDay(ctx, days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"signups": signups,
		"orders":  orders,
		"days":    days,
	})
}

// ListAudit handles GET /admin/audit?action=.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.audit.List(c.Request.Context(), c.Query("action"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}
