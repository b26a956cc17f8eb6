package handler

import (
	"net/http"

	"digilinex/internal/middleware"
	"digilinex/internal/models"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	svc   AuthServicer
	audit AuditRepo
	log   logrus.FieldLogger
}

func NewAuthHandler(svc AuthServicer, audit AuditRepo, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{svc: svc, audit: audit, log: log.WithField("component", "auth_handler")}
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // email or username
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, pair, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(c, u.ID, "register")
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, pair, err := h.svc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(c, u.ID, "login")
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// AdminLogin handles POST /auth/admin/login. Non-admin accounts get 403.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, pair, err := h.svc.AdminLogin(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(c, u.ID, "admin_login")
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout is stateless; it only leaves an audit line.
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID := middleware.GetUserID(c); userID != 0 {
		h.auditLog(c, userID, "logout")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.auditLog(c, userID, "change_password")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) auditLog(c *gin.Context, userID uint, action string) {
	writeAudit(c, h.audit, h.log, userID, action, "auth", "")
}

// writeAudit records an action with the caller's IP and user agent. Failures are logged only.
func writeAudit(c *gin.Context, repo AuditRepo, log logrus.FieldLogger, userID uint, action, resource, resourceID string) {
	if repo == nil {
		return
	}
	err := repo.Create(c.Request.Context(), &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("audit log")
	}
}
