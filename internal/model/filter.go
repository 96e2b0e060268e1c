package model

// ListView names an appointment list surface. Each view mandates a
// different subset of filter fields.
type ListView string

const (
	ViewLiveQueue ListView = "live"
	ViewUpcoming  ListView = "upcoming"
	ViewHistory   ListView = "history"
)

// RawFilterValues is the untrusted bag of filter inputs as they arrive from
// the client, before per-view validation. Everything is a string so that
// absent and empty are indistinguishable, matching the form layer.
type RawFilterValues struct {
	DateFrom        string `form:"date_from" json:"date_from"`
	DateTo          string `form:"date_to" json:"date_to"`
	Status          string `form:"status" json:"status"`
	ClinicID        string `form:"clinic_id" json:"clinic_id"`
	DepartmentID    string `form:"department_id" json:"department_id"`
	DoctorID        string `form:"doctor_id" json:"doctor_id"`
	AppointmentType string `form:"appointment_type" json:"appointment_type"`
	PatientName     string `form:"patient_name" json:"patient_name"`
	Page            int    `form:"page" json:"page"`
	Limit           int    `form:"limit" json:"limit"`
}

// FilterCriteria is the normalized query descriptor produced by the filter
// builder. Date and id fields keep their empty-string placeholders because
// the list endpoints expect them; everything else is omitted when unset.
type FilterCriteria struct {
	View            ListView `json:"-"`
	DateFrom        string   `json:"date_from"`
	DateTo          string   `json:"date_to"`
	Status          string   `json:"status,omitempty"`
	ClinicID        string   `json:"clinic_id"`
	DepartmentID    string   `json:"department_id"`
	DoctorID        string   `json:"doctor_id"`
	AppointmentType string   `json:"appointment_type,omitempty"`
	PatientName     string   `json:"patient_name,omitempty"`
	Page            int      `json:"page"`
	Limit           int      `json:"limit"`
}
