package handler

import (
	"net/http"
	"regexp"
	"strings"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

type MeHandler struct {
	users     UserReader
	wallets   WalletReader
	referrals ReferralServicer
	notifs    NotificationServicer
	log       logrus.FieldLogger
}

func NewMeHandler(users UserReader, wallets WalletReader, referrals ReferralServicer, notifs NotificationServicer, log logrus.FieldLogger) *MeHandler {
	return &MeHandler{
		users:     users,
		wallets:   wallets,
		referrals: referrals,
		notifs:    notifs,
		log:       log.WithField("component", "me_handler"),
	}
}

// GetProfile returns the current user with their referral code.
func (h *MeHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp := gin.H{"user": u}
	if rc, err := h.referrals.GetOrCreateCode(ctx, userID); err == nil {
		resp["referral_code"] = rc.Code
	} else {
		h.log.WithError(err).WithField("user_id", userID).Warn("referral code")
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProfile changes the caller's editable profile fields.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	var req struct {
		Username  *string `json:"username"`
		FullName  *string `json:"full_name"`
		Phone     *string `json:"phone"`
		Country   *string `json:"country"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	fields := map[string]interface{}{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if !usernamePattern.MatchString(name) {
			badRequest(c, "username must be 3-64 letters, digits, '.', '-' or '_'")
			return
		}
		other, err := h.users.GetByUsername(ctx, name)
		switch {
		case err == nil && other.ID != userID:
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		case err != nil && !errors.Is(err, domain.ErrRecordNotFound):
			respondError(c, h.log, err)
			return
		}
		fields["username"] = name
	}
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Country != nil {
		fields["country"] = strings.TrimSpace(*req.Country)
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if len(fields) == 0 {
		badRequest(c, "no valid fields to update")
		return
	}
	if err := h.users.UpdateFields(ctx, userID, fields); err != nil {
		respondError(c, h.log, err)
		return
	}
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// RegisterFCMToken saves the FCM token for push notifications.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token required")
		return
	}
	if err := h.notifs.RegisterToken(c.Request.Context(), middleware.GetUserID(c), req.Token); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Dashboard aggregates the member home screen: balances, referral totals, unread count.
func (h *MeHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	wallets, err := h.wallets.ListByUser(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	stats, err := h.referrals.Stats(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	rate, err := h.referrals.MyRate(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	unread, err := h.notifs.UnreadCount(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallets":         wallets,
		"referrals":       stats,
		"commission_rate": rate,
		"unread":          unread,
	})
}
