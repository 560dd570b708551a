package models

// Row is one record as returned to the dashboard, keyed by column name.
type Row map[string]interface{}

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

var Genders = []string{GenderMale, GenderFemale, GenderOther}

var BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "No-Show"
)

var AppointmentStatuses = []string{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow}

// Option is one entry of a filter drop-down.
type Option struct {
	Value interface{} `json:"value"`
	Label string      `json:"label"`
}
