package services

// MedicalRecordSchema describes the medical_records table, served as the
// medical-reports resource.
func MedicalRecordSchema() *Schema {
	return &Schema{
		Resource: "medical-reports",
		Entity:   "Medical record",
		Table:    "medical_records",
		Alias:    "mr",
		Joins: "LEFT JOIN patients p ON p.id = mr.patient_id " +
			"LEFT JOIN doctors d ON d.id = mr.doctor_id",
		Columns: []Column{
			{Name: "id", Label: "ID", Kind: KindInt},
			{Name: "patient_id", Label: "Patient", Kind: KindInt, Writable: true, Required: true},
			{Name: "patient_name", Label: "Patient Name", Expr: "p.name"},
			{Name: "doctor_id", Label: "Doctor", Kind: KindInt, Writable: true, Required: true},
			{Name: "doctor_name", Label: "Doctor Name", Expr: "d.name"},
			{Name: "appointment_id", Label: "Appointment", Kind: KindInt, Writable: true},
			{Name: "diagnosis", Label: "Diagnosis", Writable: true, Required: true},
			{Name: "symptoms", Label: "Symptoms", Writable: true},
			{Name: "treatment_plan", Label: "Treatment Plan", Writable: true},
			{Name: "medication_prescribed", Label: "Medication Prescribed", Writable: true},
			{Name: "visit_date", Label: "Visit Date", Kind: KindDate, Writable: true, Required: true},
			{Name: "follow_up_date", Label: "Follow-up Date", Kind: KindDate, Writable: true},
			{Name: "medical_notes", Label: "Medical Notes", Writable: true},
		},
		Filters: []Filter{
			{Param: "patient_id", Expr: "mr.patient_id", Kind: KindInt, Match: MatchExact},
			{Param: "doctor_id", Expr: "mr.doctor_id", Kind: KindInt, Match: MatchExact},
			{Param: "appointment_id", Expr: "mr.appointment_id", Kind: KindInt, Match: MatchExact},
			{Param: "patient_name", Expr: "p.name", Match: MatchContains},
			{Param: "doctor_name", Expr: "d.name", Match: MatchContains},
			{Param: "diagnosis", Expr: "mr.diagnosis", Match: MatchContains},
			{Param: "visit_date", Expr: "mr.visit_date", Kind: KindDate, Match: MatchExact},
			{Param: "visit_from", Expr: "mr.visit_date", Kind: KindDate, Match: MatchFrom},
			{Param: "visit_to", Expr: "mr.visit_date", Kind: KindDate, Match: MatchTo},
		},
		Sorts: map[string]string{
			"id":             "mr.id",
			"visit_date":     "mr.visit_date",
			"follow_up_date": "mr.follow_up_date",
			"patient_name":   "p.name",
			"doctor_name":    "d.name",
			"diagnosis":      "mr.diagnosis",
		},
		DefaultSort:  "visit_date",
		DefaultOrder: "DESC",
		References: []Reference{
			{Column: "patient_id", Table: "patients", Label: "Patient"},
			{Column: "doctor_id", Table: "doctors", Label: "Doctor"},
			{Column: "appointment_id", Table: "appointments", Label: "Appointment"},
		},
		Options: []OptionSource{
			{Key: "doctors", Query: "SELECT id, name FROM doctors ORDER BY name"},
			{Key: "patients", Query: "SELECT id, name FROM patients ORDER BY name"},
		},
		Export: []string{
			"id", "patient_name", "doctor_name", "visit_date", "diagnosis", "symptoms",
			"treatment_plan", "medication_prescribed", "follow_up_date",
		},
	}
}

// All returns every resource schema in route order.
func All() []*Schema {
	return []*Schema{
		PatientSchema(),
		DoctorSchema(),
		DepartmentSchema(),
		AppointmentSchema(),
		MedicalRecordSchema(),
	}
}
