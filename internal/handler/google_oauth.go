package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"digilinex/config"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateCookie  = "dlx_oauth_state"
)

type GoogleOAuthHandler struct {
	cfg      *config.OAuthConfig
	authSvc  AuthServicer
	audit    AuditRepo
	log      logrus.FieldLogger
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleOAuthHandler(cfg *config.OAuthConfig, authSvc AuthServicer, audit AuditRepo, log logrus.FieldLogger) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		cfg:      cfg,
		authSvc:  authSvc,
		audit:    audit,
		log:      log.WithField("component", "google_oauth"),
		validate: idtoken.Validate,
	}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.GoogleClientID,
		ClientSecret: h.cfg.GoogleClientSecret,
		RedirectURL:  h.cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *GoogleOAuthHandler) configured(c *gin.Context) bool {
	if h.cfg.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return false
	}
	return true
}

// Redirect sends the browser to the Google consent screen. A referral code in
// ?ref= rides along in the state cookie.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		respondError(c, h.log, err)
		return
	}
	state := hex.EncodeToString(buf)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state+"|"+c.Query("ref"), 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline))
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Callback exchanges the code, fetches the profile and signs the user in.
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	cookie, _ := c.Cookie(oauthStateCookie)
	state, ref := splitState(cookie)
	if state == "" || state != c.Query("state") {
		badRequest(c, "invalid oauth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		badRequest(c, "missing code")
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		badRequest(c, "exchange failed")
		return
	}
	resp, err := conf.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		h.log.WithError(err).Warn("userinfo request")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid user info"})
		return
	}
	h.finish(c, service.GoogleProfile{ID: info.ID, Email: info.Email, Name: info.Name, Picture: info.Picture}, ref)
}

// Token accepts a Google ID token from a client-side sign-in and returns our JWT pair.
func (h *GoogleOAuthHandler) Token(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req struct {
		IDToken      string `json:"id_token" binding:"required"`
		ReferralCode string `json:"referral_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "id_token required")
		return
	}
	payload, err := h.validate(c.Request.Context(), req.IDToken, h.cfg.GoogleClientID)
	if err != nil {
		badRequest(c, "invalid id_token")
		return
	}
	p := service.GoogleProfile{ID: payload.Subject}
	p.Email, _ = payload.Claims["email"].(string)
	p.Name, _ = payload.Claims["name"].(string)
	p.Picture, _ = payload.Claims["picture"].(string)
	if p.ID == "" || p.Email == "" {
		badRequest(c, "invalid token payload")
		return
	}
	h.finish(c, p, req.ReferralCode)
}

func (h *GoogleOAuthHandler) finish(c *gin.Context, p service.GoogleProfile, referralCode string) {
	u, pair, isNew, err := h.authSvc.LoginWithGoogle(c.Request.Context(), p, referralCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	action := "google_login"
	if isNew {
		action = "google_signup"
	}
	writeAudit(c, h.audit, h.log, u.ID, action, "auth", "")
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"is_new":        isNew,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func splitState(cookie string) (state, ref string) {
	state, ref, _ = strings.Cut(cookie, "|")
	return state, ref
}
