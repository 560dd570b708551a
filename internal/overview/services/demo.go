package services

import "github.com/c14220110/hospital-dashboard/internal/overview/models"

// DemoStats is the fixed dataset served when the store is down and the demo
// fallback is enabled.
func DemoStats() models.Stats {
	return models.Stats{
		TotalPatients:        150,
		TotalDoctors:         25,
		TotalDepartments:     8,
		TotalAppointments:    320,
		TotalMedicalRecords:  210,
		TodayAppointments:    12,
		WeekAppointments:     58,
		UpcomingAppointments: 34,
		NewPatientsMonth:     18,
		AvgConsultationFee:   85.5,
		AppointmentStatus: map[string]int64{
			"Scheduled": 120, "Completed": 160, "Cancelled": 25, "No-Show": 15,
		},
		BloodGroup: map[string]int64{
			"A+": 35, "A-": 8, "B+": 30, "B-": 6, "O+": 45, "O-": 10, "AB+": 12, "AB-": 4,
		},
		DoctorsPerDepartment: map[string]int64{
			"Cardiology": 4, "Neurology": 3, "Orthopedics": 4, "Pediatrics": 5,
			"Emergency": 3, "Radiology": 2, "Oncology": 2, "Dermatology": 2,
		},
		Gender: map[string]int64{"Male": 72, "Female": 75, "Other": 3},
		AgeGroups: map[string]int64{
			models.AgeUnder18: 22, models.Age18To30: 35, models.Age31To50: 48,
			models.Age51To65: 28, models.AgeOver65: 17,
		},
		DepartmentRevenue: map[string]float64{
			"Cardiology": 12500, "Neurology": 9800, "Orthopedics": 11200, "Pediatrics": 7600,
			"Emergency": 15400, "Radiology": 5300, "Oncology": 8900, "Dermatology": 4100,
		},
	}
}
