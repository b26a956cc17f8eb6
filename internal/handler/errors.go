package handler

import (
	"net/http"
	"strconv"

	"digilinex/internal/auth"
	"digilinex/internal/domain"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// statusFor maps service and domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, service.ErrNoFile):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCodeTaken),
		errors.Is(err, domain.ErrDuplicateKey),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrTrustFeeUnpaid),
		errors.Is(err, domain.ErrReferralEditCooldown),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrNotDelivered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidPurpose),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSamePurpose),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, service.ErrNoPassword):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCreds),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...}. Internal errors are logged and hidden from the client.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": rootMessage(err)}
	var cd *domain.CooldownError
	if errors.As(err, &cd) {
		body["next_allowed_at"] = cd.NextAllowedAt
	}
	var te *domain.TransitionError
	if errors.As(err, &te) {
		body["from"] = te.From
		body["to"] = te.To
	}
	c.JSON(status, body)
}

// rootMessage drops repository op prefixes so clients see "record not found",
// but keeps service context such as the wallet purpose on balance errors.
func rootMessage(err error) string {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrRecordNotFound.Error()
	}
	return err.Error()
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// paramID parses a positive uint path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return uint(id)
}

func paged(data interface{}, total int64, page, limit int) gin.H {
	return gin.H{"data": data, "total": total, "page": page, "limit": limit}
}

func uintStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
