package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-queue-api/internal/catalog"
	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
	"github.com/jwalitptl/clinic-queue-api/pkg/httputil"
)

type Handler struct {
	service *catalog.Service
}

func NewHandler(service *catalog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.service.Clinics(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinics)
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, clinic)
}

// ListDepartments serves the departments of one clinic; the clinic id comes
// from the path so an empty scope is impossible here.
func (h *Handler) ListDepartments(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinicId"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid clinic ID"))
		return
	}

	departments, err := h.service.DepartmentsFor(c.Request.Context(), clinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, departments)
}

func (h *Handler) CreateDepartment(c *gin.Context) {
	var req model.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	department, err := h.service.CreateDepartment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, department)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	departmentID, err := uuid.Parse(c.Param("departmentId"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid department ID"))
		return
	}

	doctors, err := h.service.DoctorsFor(c.Request.Context(), departmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) ListShifts(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid doctor ID"))
		return
	}
	departmentID, err := uuid.Parse(c.Query("department_id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid department ID"))
		return
	}

	shifts, err := h.service.ShiftsFor(c.Request.Context(), doctorID, departmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, shifts)
}

// ReplaceShifts swaps one weekday's entries for a doctor.
func (h *Handler) ReplaceShifts(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid doctor ID"))
		return
	}

	var req model.UpsertShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	shifts, err := h.service.ReplaceShifts(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, shifts)
}
