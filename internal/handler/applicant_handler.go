package handler

import (
	"net/http"

	"digilinex/internal/domain"
	"digilinex/internal/middleware"
	"digilinex/internal/models"
	"digilinex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ApplicantHandler serves the "work with us" hiring funnel.
type ApplicantHandler struct {
	svc  ApplicantServicer
	list ApplicantLister
	log  logrus.FieldLogger
}

func NewApplicantHandler(svc ApplicantServicer, list ApplicantLister, log logrus.FieldLogger) *ApplicantHandler {
	return &ApplicantHandler{svc: svc, list: list, log: log.WithField("component", "applicant_handler")}
}

// POST /work-with-us/applications
func (h *ApplicantHandler) Apply(c *gin.Context) {
	var req service.ApplicantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.svc.Apply(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GET /work-with-us/applications
func (h *ApplicantHandler) Mine(c *gin.Context) {
	list, err := h.svc.Mine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// POST /work-with-us/applications/:id/trust-fee
func (h *ApplicantHandler) PayTrustFee(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.reply(c)(h.svc.PayTrustFee(c.Request.Context(), middleware.GetUserID(c), id))
	}
}

// AdminList handles GET /admin/applicants?status=&search=.
func (h *ApplicantHandler) AdminList(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !domain.IsApplicantStatus(status) {
		badRequest(c, "unknown status")
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.list.List(c.Request.Context(), status, c.Query("search"), page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paged(list, total, page, limit))
}

func (h *ApplicantHandler) AdminGet(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.reply(c)(h.list.GetByID(c.Request.Context(), id))
	}
}

// UpdateStatus handles PATCH /admin/applicants/:id/status.
func (h *ApplicantHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !domain.IsApplicantStatus(req.Status) {
		badRequest(c, "unknown status")
		return
	}
	h.reply(c)(h.svc.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), id, req.Status, req.Notes))
}

// UpdateNotes handles PATCH /admin/applicants/:id/notes.
func (h *ApplicantHandler) UpdateNotes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.reply(c)(h.svc.UpdateNotes(c.Request.Context(), id, req.Notes))
}

// MarkTrustFeeCollected handles POST /admin/applicants/:id/trust-fee-collected.
func (h *ApplicantHandler) MarkTrustFeeCollected(c *gin.Context) {
	if id, ok := paramID(c, "id"); ok {
		h.reply(c)(h.svc.MarkTrustFeeCollected(c.Request.Context(), middleware.GetUserID(c), id))
	}
}

func (h *ApplicantHandler) reply(c *gin.Context) func(*models.Applicant, error) {
	return func(a *models.Applicant, err error) {
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}
