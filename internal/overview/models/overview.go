package models

import "time"

// Age group labels.
const (
	AgeUnder18 = "Under 18"
	Age18To30  = "18-30"
	Age31To50  = "31-50"
	Age51To65  = "51-65"
	AgeOver65  = "Over 65"
	AgeUnknown = "Unknown"
)

// Stats is the overview payload. Grouped maps omit categories with no rows.
type Stats struct {
	TotalPatients       int64 `json:"total_patients"`
	TotalDoctors        int64 `json:"total_doctors"`
	TotalDepartments    int64 `json:"total_departments"`
	TotalAppointments   int64 `json:"total_appointments"`
	TotalMedicalRecords int64 `json:"total_medical_records"`

	TodayAppointments    int64 `json:"today_appointments"`
	WeekAppointments     int64 `json:"week_appointments"`
	UpcomingAppointments int64 `json:"upcoming_appointments"`
	NewPatientsMonth     int64 `json:"new_patients_month"`

	AvgConsultationFee float64 `json:"avg_consultation_fee"`

	AppointmentStatus    map[string]int64   `json:"appointment_status"`
	BloodGroup           map[string]int64   `json:"blood_group"`
	DoctorsPerDepartment map[string]int64   `json:"doctors_per_department"`
	Gender               map[string]int64   `json:"gender"`
	AgeGroups            map[string]int64   `json:"age_groups"`
	DepartmentRevenue    map[string]float64 `json:"department_revenue"`
}

type Overview struct {
	Stats       Stats     `json:"stats"`
	Demo        bool      `json:"demo,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
