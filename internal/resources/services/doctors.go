package services

// DoctorSchema describes the doctors table. A doctor cannot be deleted while
// appointments reference them.
func DoctorSchema() *Schema {
	return &Schema{
		Resource: "doctors",
		Entity:   "Doctor",
		Table:    "doctors",
		Alias:    "d",
		Joins:    "LEFT JOIN departments dep ON dep.id = d.department_id",
		Columns: []Column{
			{Name: "id", Label: "ID", Kind: KindInt},
			{Name: "name", Label: "Name", Writable: true, Required: true},
			{Name: "specialization", Label: "Specialization", Writable: true, Required: true},
			{Name: "department_id", Label: "Department", Kind: KindInt, Writable: true, Required: true},
			{Name: "department_name", Label: "Department Name", Expr: "dep.name"},
			{Name: "phone", Label: "Phone", Writable: true},
			{Name: "email", Label: "Email", Writable: true},
			{Name: "license_number", Label: "License Number", Writable: true},
			{Name: "experience_years", Label: "Experience (years)", Kind: KindInt, Writable: true},
			{Name: "consultation_fee", Label: "Consultation Fee", Kind: KindFloat, Writable: true},
			{Name: "available_from", Label: "Available From", Kind: KindTime, Writable: true},
			{Name: "available_to", Label: "Available To", Kind: KindTime, Writable: true},
		},
		Filters: []Filter{
			{Param: "name", Expr: "d.name", Match: MatchContains},
			{Param: "specialization", Expr: "d.specialization", Match: MatchContains},
			{Param: "department_id", Expr: "d.department_id", Kind: KindInt, Match: MatchExact},
			{Param: "department_name", Expr: "dep.name", Match: MatchContains},
			{Param: "license_number", Expr: "d.license_number", Match: MatchExact},
			{Param: "min_experience", Expr: "d.experience_years", Kind: KindInt, Match: MatchFrom},
			{Param: "max_fee", Expr: "d.consultation_fee", Kind: KindFloat, Match: MatchTo},
		},
		Sorts: map[string]string{
			"id":               "d.id",
			"name":             "d.name",
			"specialization":   "d.specialization",
			"department_name":  "dep.name",
			"experience_years": "d.experience_years",
			"consultation_fee": "d.consultation_fee",
		},
		DefaultSort:  "name",
		DefaultOrder: "ASC",
		References: []Reference{
			{Column: "department_id", Table: "departments", Label: "Department"},
		},
		Guards: []Guard{
			{Table: "appointments", Column: "doctor_id",
				Message: "Cannot delete doctor: %d appointment(s) reference this doctor"},
		},
		Detaches: []Detach{
			{Table: "departments", Column: "head_doctor_id"},
		},
		Options: []OptionSource{
			{Key: "departments", Query: "SELECT id, name FROM departments ORDER BY name"},
			{Key: "specializations", Query: "SELECT DISTINCT specialization, specialization FROM doctors ORDER BY specialization"},
		},
		Export: []string{
			"id", "name", "specialization", "department_name", "phone", "email", "license_number",
			"experience_years", "consultation_fee", "available_from", "available_to",
		},
	}
}
