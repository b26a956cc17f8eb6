package handler

import (
	"net/http"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"
	"digilinex/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	svc   OrderServicer
	audit AuditRepo
	log   logrus.FieldLogger
}

func NewOrderHandler(svc OrderServicer, audit AuditRepo, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{svc: svc, audit: audit, log: log.WithField("component", "order_handler")}
}

var orderKinds = map[string]string{
	"products":  domain.ItemProduct,
	"databases": domain.ItemDatabasePackage,
	"software":  domain.ItemSoftware,
}

func (h *OrderHandler) kind(c *gin.Context) (string, bool) {
	kind, ok := orderKinds[c.Param("kind")]
	if !ok {
		badRequest(c, "kind must be products, databases or software")
	}
	return kind, ok
}

// Mine handles GET /me/orders/:kind.
func (h *OrderHandler) Mine(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	h.list(c, kind, repository.OrderFilter{
		UserID:         middleware.GetUserID(c),
		DeliveryStatus: c.Query("status"),
		Page:           page,
		Limit:          limit,
	})
}

// AdminList handles GET /admin/orders/:kind?user_id=&status=.
func (h *OrderHandler) AdminList(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	h.list(c, kind, repository.OrderFilter{
		UserID:         queryID(c, "user_id"),
		DeliveryStatus: c.Query("status"),
		Page:           page,
		Limit:          limit,
	})
}

func (h *OrderHandler) list(c *gin.Context, kind string, f repository.OrderFilter) {
	list, total, err := h.svc.List(c.Request.Context(), kind, f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, f.Page, f.Limit))
}

// Deliver handles POST /admin/database-orders/:id/deliver. An empty file_key
// falls back to the package's data file.
func (h *OrderHandler) Deliver(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		FileKey string `json:"file_key"`
	}
	_ = c.ShouldBindJSON(&req)
	adminID := middleware.GetUserID(c)
	o, err := h.svc.Deliver(c.Request.Context(), adminID, id, req.FileKey)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writeAudit(c, h.audit, h.log, adminID, "order.deliver", "database_order", o.OrderNumber)
	c.JSON(http.StatusOK, o)
}

// DownloadDatabase handles GET /me/downloads/databases/:id.
func (h *OrderHandler) DownloadDatabase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	url, err := h.svc.DatabaseDownloadURL(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// DownloadProduct handles GET /me/downloads/products/:id.
func (h *OrderHandler) DownloadProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	url, err := h.svc.ProductDownloadURL(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
