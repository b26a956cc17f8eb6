package handler

import (
	"net/http"

	"digilinex/internal/middleware"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler serves the storefront (active items only) and the admin CRUD screens.
type CatalogHandler struct {
	svc   CatalogServicer
	audit AuditRepo
	log   logrus.FieldLogger
}

func NewCatalogHandler(svc CatalogServicer, audit AuditRepo, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{svc: svc, audit: audit, log: log.WithField("component", "catalog_handler")}
}

func (h *CatalogHandler) ok(c *gin.Context, status int, v interface{}, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, v)
}

func (h *CatalogHandler) audited(c *gin.Context, action, resource string, id uint) {
	writeAudit(c, h.audit, h.log, middleware.GetUserID(c), action, resource, uintStr(id))
}

// Storefront.

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list, err := h.svc.Categories(c.Request.Context(), true)
	h.ok(c, http.StatusOK, gin.H{"data": list}, err)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cat, err := h.svc.Category(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !cat.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	active := cat.Packages[:0]
	for _, p := range cat.Packages {
		if p.IsActive {
			active = append(active, p)
		}
	}
	cat.Packages = active
	c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) ListPackages(c *gin.Context) {
	list, err := h.svc.Packages(c.Request.Context(), queryID(c, "category_id"), true)
	h.ok(c, http.StatusOK, gin.H{"data": list}, err)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.Products(c.Request.Context(), c.Query("search"), true, page, limit)
	h.ok(c, http.StatusOK, paged(list, total, page, limit), err)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Product(c.Request.Context(), id)
	if err == nil && !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	h.ok(c, http.StatusOK, p, err)
}

func (h *CatalogHandler) ListSoftware(c *gin.Context) {
	list, err := h.svc.Software(c.Request.Context(), true)
	h.ok(c, http.StatusOK, gin.H{"data": list}, err)
}

func (h *CatalogHandler) GetSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sw, err := h.svc.GetSoftware(c.Request.Context(), id)
	if err == nil && !sw.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	h.ok(c, http.StatusOK, sw, err)
}

// Admin: database categories.

func (h *CatalogHandler) AdminListCategories(c *gin.Context) {
	list, err := h.svc.Categories(c.Request.Context(), false)
	h.ok(c, http.StatusOK, gin.H{"data": list}, err)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err == nil {
		h.audited(c, "category.create", "database_category", cat.ID)
	}
	h.ok(c, http.StatusCreated, cat, err)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), id, req)
	if err == nil {
		h.audited(c, "category.update", "database_category", id)
	}
	h.ok(c, http.StatusOK, cat, err)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.svc.DeleteCategory(c.Request.Context(), id)
	if err == nil {
		h.audited(c, "category.delete", "database_category", id)
	}
	h.ok(c, http.StatusOK, gin.H{"status": "deleted"}, err)
}

// Admin: database packages.

func (h *CatalogHandler) AdminListPackages(c *gin.Context) {
	list, err := h.svc.Packages(c.Request.Context(), queryID(c, "category_id"), false)
	h.ok(c, http.StatusOK, gin.H{"data": list}, err)
}

func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	var req service.PackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.CreatePackage(c.Request.Context(), req)
	if err == nil {
		h.audited(c, "package.create", "database_package", p.ID)
	}
	h.ok(c, http.StatusCreated, p, err)
}

func (h *CatalogHandler) UpdatePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.PackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.UpdatePackage(c.Request.Context(), id, req)
	if err == nil {
		h.audited(c, "package.update", "database_package", id)
	}
	h.ok(c, http.StatusOK, p, err)
}

func (h *CatalogHandler) DeletePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.svc.DeletePackage(c.Request.Context(), id)
	if err == nil {
		h.audited(c, "package.delete", "database_package", id)
	}
	h.ok(c, http.StatusOK, gin.H{"status": "deleted"}, err)
}

// Admin: digital products.

func (h *CatalogHandler) AdminListProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.Products(c.Request.Context(), c.Query("search"), false, page, limit)
	h.ok(c, http.StatusOK, paged(list, total, page, limit), err)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), req)
	if err == nil {
		h.audited(c, "product.create", "digital_product", p.ID)
	}
	h.ok(c, http.StatusCreated, p, err)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.svc.UpdateProduct(c.Request.Context(), id, req)
	if err == nil {
		h.audited(c, "product.update", "digital_product", id)
	}
	h.ok(c, http.StatusOK, p, err)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.svc.DeleteProduct(c.Request.Context(), id)
	if err == nil {
		h.audited(c, "product.delete", "digital_product", id)
	}
	h.ok(c, http.StatusOK, gin.H{"status": "deleted"}, err)
}

// Admin: marketing software.

func (h *CatalogHandler) AdminListSoftware(c *gin.Context) {
	list, err := h.svc.Software(c.Request.Context(), false)
	h.ok(c, http.StatusOK, gin.H{"data": list}, err)
}

func (h *CatalogHandler) CreateSoftware(c *gin.Context) {
	var req service.SoftwareInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sw, err := h.svc.CreateSoftware(c.Request.Context(), req)
	if err == nil {
		h.audited(c, "software.create", "marketing_software", sw.ID)
	}
	h.ok(c, http.StatusCreated, sw, err)
}

func (h *CatalogHandler) UpdateSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.SoftwareInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sw, err := h.svc.UpdateSoftware(c.Request.Context(), id, req)
	if err == nil {
		h.audited(c, "software.update", "marketing_software", id)
	}
	h.ok(c, http.StatusOK, sw, err)
}

func (h *CatalogHandler) DeleteSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	err := h.svc.DeleteSoftware(c.Request.Context(), id)
	if err == nil {
		h.audited(c, "software.delete", "marketing_software", id)
	}
	h.ok(c, http.StatusOK, gin.H{"status": "deleted"}, err)
}
