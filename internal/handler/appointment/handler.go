package appointment

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/appointment"
	"github.com/jwalitptl/clinic-queue-api/internal/filter"
	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/internal/queue"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
	"github.com/jwalitptl/clinic-queue-api/pkg/httputil"
	"github.com/jwalitptl/clinic-queue-api/pkg/validator"
)

type Handler struct {
	service   *appointment.Service
	queueSvc  *queue.Service
	validator *validator.Validator
}

func NewHandler(service *appointment.Service, queueSvc *queue.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, queueSvc: queueSvc, validator: v}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) RequestAppointment(c *gin.Context) {
	var req model.RequestAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	apt, err := h.service.Request(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ApproveAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	var payload model.ApprovePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}
	if err := h.validator.Validate(payload); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Approve(c.Request.Context(), id, payload)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) RejectAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	var payload model.RejectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}
	if err := h.validator.Validate(payload); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Reject(c.Request.Context(), id, payload)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	var payload model.ReschedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, payload)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CheckInAppointment(c *gin.Context) {
	h.simpleTransition(c, h.service.CheckIn)
}

func (h *Handler) StartAppointment(c *gin.Context) {
	h.simpleTransition(c, h.service.Start)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	h.simpleTransition(c, h.service.Complete)
}

func (h *Handler) NoShowAppointment(c *gin.Context) {
	h.simpleTransition(c, h.service.NoShow)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	var payload struct {
		CancellationReason *string `json:"cancellation_reason"`
	}
	// a body is optional on cancel
	_ = c.ShouldBindJSON(&payload)

	apt, err := h.service.Cancel(c.Request.Context(), id, payload.CancellationReason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) FollowUpAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	var payload model.FollowUpPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	apt, err := h.service.FollowUp(c.Request.Context(), id, payload)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

// ListAppointments serves list views selected by the view query parameter.
// The view decides which raw filter values are required and which are
// ignored.
func (h *Handler) ListAppointments(c *gin.Context) {
	h.list(c, model.ListView(c.Query("view")))
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	h.list(c, model.ViewUpcoming)
}

func (h *Handler) ListHistory(c *gin.Context) {
	h.list(c, model.ViewHistory)
}

func (h *Handler) list(c *gin.Context, view model.ListView) {
	var raw model.RawFilterValues
	if err := c.ShouldBindQuery(&raw); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	criteria, err := filter.Build(view, raw)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), criteria)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, items, criteria.Page, criteria.Limit, total)
}

// LiveQueue serves the projected live view for one clinic, optionally
// narrowed to a department or doctor.
func (h *Handler) LiveQueue(c *gin.Context) {
	var raw model.RawFilterValues
	if err := c.ShouldBindQuery(&raw); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	criteria, err := filter.Build(model.ViewLiveQueue, raw)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	clinicID, err := uuid.Parse(criteria.ClinicID)
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid clinic ID"))
		return
	}
	departmentID, err := parseOptionalID(criteria.DepartmentID)
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid department ID"))
		return
	}
	doctorID, err := parseOptionalID(criteria.DoctorID)
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid doctor ID"))
		return
	}

	projection, err := h.queueSvc.Snapshot(c.Request.Context(), clinicID, departmentID, doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, projection)
}

func (h *Handler) simpleTransition(c *gin.Context, apply func(context.Context, uuid.UUID) (*model.Appointment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return
	}

	apt, err := apply(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func parseOptionalID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
