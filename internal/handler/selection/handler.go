package selection

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/selection"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
	"github.com/jwalitptl/clinic-queue-api/pkg/httputil"
)

// Handler exposes the cascading clinic/department/doctor selection for
// filter panels and booking forms. Each session owns one resolver; changing
// a level clears everything beneath it.
type Handler struct {
	manager *selection.Manager
}

func NewHandler(manager *selection.Manager) *Handler {
	return &Handler{manager: manager}
}

type setRequest struct {
	ID uuid.UUID `json:"id" binding:"required"`
}

func (h *Handler) SetClinic(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	r := h.manager.Get(c.Param("session"))
	departments, err := r.SetClinic(c.Request.Context(), req.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"selection":   r.Selection(),
		"departments": departments,
	})
}

func (h *Handler) SetDepartment(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	r := h.manager.Get(c.Param("session"))
	doctors, err := r.SetDepartment(c.Request.Context(), req.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"selection": r.Selection(),
		"doctors":   doctors,
	})
}

func (h *Handler) SetDoctor(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	r := h.manager.Get(c.Param("session"))
	if err := r.SetDoctor(req.ID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"selection": r.Selection()})
}

func (h *Handler) GetSelection(c *gin.Context) {
	r := h.manager.Get(c.Param("session"))
	httputil.RespondWithSuccess(c, gin.H{
		"selection":   r.Selection(),
		"departments": r.Departments(),
		"doctors":     r.Doctors(),
	})
}

func (h *Handler) DropSelection(c *gin.Context) {
	h.manager.Drop(c.Param("session"))
	httputil.RespondWithSuccess(c, gin.H{"dropped": true})
}
