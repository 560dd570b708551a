package services

import (
	"context"
	"database/sql"

	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/internal/resources/models"
)

// AppointmentSchema describes the appointments table. A doctor can hold only
// one non-cancelled appointment per date and time.
func AppointmentSchema() *Schema {
	return &Schema{
		Resource: "appointments",
		Entity:   "Appointment",
		Table:    "appointments",
		Alias:    "a",
		Joins: "LEFT JOIN patients p ON p.id = a.patient_id " +
			"LEFT JOIN doctors d ON d.id = a.doctor_id " +
			"LEFT JOIN departments dep ON dep.id = d.department_id",
		Columns: []Column{
			{Name: "id", Label: "ID", Kind: KindInt},
			{Name: "patient_id", Label: "Patient", Kind: KindInt, Writable: true, Required: true},
			{Name: "patient_name", Label: "Patient Name", Expr: "p.name"},
			{Name: "doctor_id", Label: "Doctor", Kind: KindInt, Writable: true, Required: true},
			{Name: "doctor_name", Label: "Doctor Name", Expr: "d.name"},
			{Name: "specialization", Label: "Specialization", Expr: "d.specialization"},
			{Name: "department_name", Label: "Department", Expr: "dep.name"},
			{Name: "appointment_date", Label: "Appointment Date", Kind: KindDate, Writable: true, Required: true},
			{Name: "appointment_time", Label: "Appointment Time", Kind: KindTime, Writable: true, Required: true},
			{Name: "status", Label: "Status", Writable: true, Enum: models.AppointmentStatuses, Default: models.StatusScheduled},
			{Name: "reason_for_visit", Label: "Reason for Visit", Writable: true},
			{Name: "consultation_fee", Label: "Consultation Fee", Kind: KindFloat, Writable: true},
			{Name: "notes", Label: "Notes", Writable: true},
		},
		Filters: []Filter{
			{Param: "patient_id", Expr: "a.patient_id", Kind: KindInt, Match: MatchExact},
			{Param: "doctor_id", Expr: "a.doctor_id", Kind: KindInt, Match: MatchExact},
			{Param: "department_id", Expr: "d.department_id", Kind: KindInt, Match: MatchExact},
			{Param: "status", Expr: "a.status", Match: MatchExact},
			{Param: "appointment_date", Expr: "a.appointment_date", Kind: KindDate, Match: MatchExact},
			{Param: "date_from", Expr: "a.appointment_date", Kind: KindDate, Match: MatchFrom},
			{Param: "date_to", Expr: "a.appointment_date", Kind: KindDate, Match: MatchTo},
			{Param: "patient_name", Expr: "p.name", Match: MatchContains},
			{Param: "doctor_name", Expr: "d.name", Match: MatchContains},
			{Param: "reason_for_visit", Expr: "a.reason_for_visit", Match: MatchContains},
		},
		Sorts: map[string]string{
			"id":               "a.id",
			"appointment_date": "a.appointment_date",
			"appointment_time": "a.appointment_time",
			"patient_name":     "p.name",
			"doctor_name":      "d.name",
			"status":           "a.status",
			"consultation_fee": "a.consultation_fee",
		},
		DefaultSort:  "appointment_date",
		DefaultOrder: "DESC",
		References: []Reference{
			{Column: "patient_id", Table: "patients", Label: "Patient"},
			{Column: "doctor_id", Table: "doctors", Label: "Doctor"},
		},
		Hooks: []WriteHook{ensureSlotFree},
		Options: []OptionSource{
			{Key: "statuses", Values: models.AppointmentStatuses},
			{Key: "doctors", Query: "SELECT id, name FROM doctors ORDER BY name"},
			{Key: "patients", Query: "SELECT id, name FROM patients ORDER BY name"},
		},
		Export: []string{
			"id", "patient_name", "doctor_name", "department_name", "appointment_date", "appointment_time",
			"status", "reason_for_visit", "consultation_fee", "notes",
		},
	}
}

// ensureSlotFree rejects a second non-cancelled appointment for the same
// doctor, date and time. Matching rows are locked until commit.
func ensureSlotFree(ctx context.Context, tx *sql.Tx, id int64, values map[string]interface{}) error {
	if status, _ := values["status"].(string); status == models.StatusCancelled {
		return nil
	}

	var n int64
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = ? AND appointment_date = ? AND appointment_time = ?
		  AND status <> ? AND id <> ?
		FOR UPDATE`,
		values["doctor_id"], values["appointment_date"], values["appointment_time"],
		models.StatusCancelled, id,
	).Scan(&n)
	if err != nil {
		return apperror.Store("Failed to check doctor availability", err)
	}
	if n > 0 {
		return apperror.Conflict("Doctor already has an appointment at this date and time")
	}
	return nil
}
