package services

// DepartmentSchema describes the departments table. A department cannot be
// deleted while doctors are assigned to it.
func DepartmentSchema() *Schema {
	return &Schema{
		Resource: "departments",
		Entity:   "Department",
		Table:    "departments",
		Alias:    "dep",
		Joins:    "LEFT JOIN doctors hd ON hd.id = dep.head_doctor_id",
		Columns: []Column{
			{Name: "id", Label: "ID", Kind: KindInt},
			{Name: "name", Label: "Name", Writable: true, Required: true},
			{Name: "description", Label: "Description", Writable: true},
			{Name: "contact_number", Label: "Contact Number", Writable: true},
			{Name: "location", Label: "Location", Writable: true},
			{Name: "head_doctor_id", Label: "Head Doctor", Kind: KindInt, Writable: true},
			{Name: "head_doctor_name", Label: "Head Doctor Name", Expr: "hd.name"},
			{Name: "doctor_count", Label: "Doctors", Kind: KindInt,
				Expr: "(SELECT COUNT(*) FROM doctors dc WHERE dc.department_id = dep.id)"},
		},
		Filters: []Filter{
			{Param: "name", Expr: "dep.name", Match: MatchContains},
			{Param: "location", Expr: "dep.location", Match: MatchContains},
			{Param: "head_doctor_name", Expr: "hd.name", Match: MatchContains},
			{Param: "head_doctor_id", Expr: "dep.head_doctor_id", Kind: KindInt, Match: MatchExact},
		},
		Sorts: map[string]string{
			"id":           "dep.id",
			"name":         "dep.name",
			"location":     "dep.location",
			"doctor_count": "doctor_count",
		},
		DefaultSort:  "name",
		DefaultOrder: "ASC",
		References: []Reference{
			{Column: "head_doctor_id", Table: "doctors", Label: "Head doctor"},
		},
		Guards: []Guard{
			{Table: "doctors", Column: "department_id",
				Message: "Cannot delete department: %d doctor(s) are still assigned to it"},
		},
		Options: []OptionSource{
			{Key: "doctors", Query: "SELECT id, name FROM doctors ORDER BY name"},
			{Key: "locations", Query: "SELECT DISTINCT location, location FROM departments WHERE location IS NOT NULL AND location <> '' ORDER BY location"},
		},
		Export: []string{"id", "name", "description", "contact_number", "location", "head_doctor_name", "doctor_count"},
	}
}
