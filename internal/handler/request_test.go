package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digilinex/config"
	"digilinex/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type requestArgs struct {
	router http.Handler
	method string
	url    string
	body   interface{}
	token  string
}

// makeRequest serves one request against the router and decodes a JSON object body.
func makeRequest(t *testing.T, args requestArgs) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if args.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(args.body))
	}
	req := httptest.NewRequest(args.method, args.url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if args.token != "" {
		req.Header.Set("Authorization", "Bearer "+args.token)
	}
	w := httptest.NewRecorder()
	args.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	}
}

func tokenFor(t *testing.T, cfg *config.JWTConfig, userID uint, role string) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(cfg, userID, "u@example.com", role)
	require.NoError(t, err)
	return tok
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func init() {
	gin.SetMode(gin.TestMode)
}
