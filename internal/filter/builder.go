package filter

import (
	"fmt"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
	"github.com/jwalitptl/clinic-queue-api/pkg/errors"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// upcomingStatuses is the exact set the upcoming list accepts. There is no
// "all" option; the data source requires exactly one of these.
var upcomingStatuses = map[model.AppointmentStatus]bool{
	model.AppointmentStatusRequested: true,
	model.AppointmentStatusBooked:    true,
	model.AppointmentStatusRejected:  true,
}

// historyStatuses are the terminal statuses; the history view accepts any
// one of them or none ("any terminal status").
var historyStatuses = map[model.AppointmentStatus]bool{
	model.AppointmentStatusCompleted: true,
	model.AppointmentStatusRejected:  true,
	model.AppointmentStatusNoShow:    true,
	model.AppointmentStatusCancelled: true,
}

// Build validates raw filter values against the rules of the given view and
// produces the normalized criteria. Required-field gaps are hard validation
// errors; status or type values outside the view's set are dropped to "no
// filter" rather than rejected, matching the lenient upstream policy.
func Build(view model.ListView, raw model.RawFilterValues) (*model.FilterCriteria, error) {
	switch view {
	case model.ViewLiveQueue:
		return buildLive(raw)
	case model.ViewUpcoming:
		return buildUpcoming(raw)
	case model.ViewHistory:
		return buildHistory(raw)
	}
	return nil, errors.NewValidation(fmt.Sprintf("unknown list view %q", view))
}

func buildLive(raw model.RawFilterValues) (*model.FilterCriteria, error) {
	if raw.ClinicID == "" {
		return nil, errors.NewValidation("live queue requires a clinic")
	}
	c := base(model.ViewLiveQueue, raw)
	// no date filter on the live queue
	c.DateFrom = ""
	c.DateTo = ""
	c.Status = ""
	c.AppointmentType = ""
	c.PatientName = ""
	return c, nil
}

func buildUpcoming(raw model.RawFilterValues) (*model.FilterCriteria, error) {
	if raw.DateFrom == "" || raw.DateTo == "" {
		return nil, errors.NewValidation("upcoming view requires a date range")
	}
	status := model.AppointmentStatus(raw.Status)
	if !upcomingStatuses[status] {
		return nil, errors.NewValidation("upcoming view requires one of REQUESTED, BOOKED, REJECTED")
	}
	c := base(model.ViewUpcoming, raw)
	c.Status = string(status)
	c.AppointmentType = normalizeType(raw.AppointmentType)
	c.PatientName = raw.PatientName
	return c, nil
}

func buildHistory(raw model.RawFilterValues) (*model.FilterCriteria, error) {
	if raw.DateFrom == "" || raw.DateTo == "" {
		return nil, errors.NewValidation("history view requires a date range")
	}
	c := base(model.ViewHistory, raw)
	if status := model.AppointmentStatus(raw.Status); historyStatuses[status] {
		c.Status = string(status)
	}
	c.AppointmentType = normalizeType(raw.AppointmentType)
	c.PatientName = raw.PatientName
	return c, nil
}

// base fills the fields common to every view. Empty ids and dates stay
// empty strings because the list endpoints expect placeholders, and
// page/limit default to 1/10.
func base(view model.ListView, raw model.RawFilterValues) *model.FilterCriteria {
	page := raw.Page
	if page <= 0 {
		page = defaultPage
	}
	limit := raw.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &model.FilterCriteria{
		View:         view,
		DateFrom:     raw.DateFrom,
		DateTo:       raw.DateTo,
		ClinicID:     raw.ClinicID,
		DepartmentID: raw.DepartmentID,
		DoctorID:     raw.DoctorID,
		Page:         page,
		Limit:        limit,
	}
}

// normalizeType drops unrecognized appointment types to "no filter".
func normalizeType(value string) string {
	if t := model.AppointmentType(value); t.Valid() {
		return value
	}
	return ""
}
