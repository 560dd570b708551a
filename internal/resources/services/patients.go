package services

import "github.com/c14220110/hospital-dashboard/internal/resources/models"

// PatientSchema describes the patients table.
func PatientSchema() *Schema {
	return &Schema{
		Resource: "patients",
		Entity:   "Patient",
		Table:    "patients",
		Alias:    "p",
		Columns: []Column{
			{Name: "id", Label: "ID", Kind: KindInt},
			{Name: "name", Label: "Name", Writable: true, Required: true},
			{Name: "date_of_birth", Label: "Date of Birth", Kind: KindDate, Writable: true, Required: true},
			{Name: "gender", Label: "Gender", Writable: true, Required: true, Enum: models.Genders},
			{Name: "phone", Label: "Phone", Writable: true, Required: true},
			{Name: "email", Label: "Email", Writable: true},
			{Name: "address", Label: "Address", Writable: true},
			{Name: "blood_group", Label: "Blood Group", Writable: true, Enum: models.BloodGroups},
			{Name: "emergency_contact_name", Label: "Emergency Contact Name", Writable: true},
			{Name: "emergency_contact_phone", Label: "Emergency Contact Phone", Writable: true},
			{Name: "insurance_number", Label: "Insurance Number", Writable: true},
			{Name: "registered_at", Label: "Registered At", Kind: KindDateTime},
		},
		Filters: []Filter{
			{Param: "name", Expr: "p.name", Match: MatchContains},
			{Param: "phone", Expr: "p.phone", Match: MatchContains},
			{Param: "email", Expr: "p.email", Match: MatchContains},
			{Param: "gender", Expr: "p.gender", Match: MatchExact},
			{Param: "blood_group", Expr: "p.blood_group", Match: MatchExact},
			{Param: "insurance_number", Expr: "p.insurance_number", Match: MatchExact},
			{Param: "date_of_birth", Expr: "p.date_of_birth", Kind: KindDate, Match: MatchExact},
			{Param: "registered_from", Expr: "DATE(p.registered_at)", Kind: KindDate, Match: MatchFrom},
			{Param: "registered_to", Expr: "DATE(p.registered_at)", Kind: KindDate, Match: MatchTo},
		},
		Sorts: map[string]string{
			"id":            "p.id",
			"name":          "p.name",
			"date_of_birth": "p.date_of_birth",
			"gender":        "p.gender",
			"blood_group":   "p.blood_group",
			"registered_at": "p.registered_at",
		},
		DefaultSort:  "name",
		DefaultOrder: "ASC",
		Options: []OptionSource{
			{Key: "genders", Values: models.Genders},
			{Key: "blood_groups", Values: models.BloodGroups},
		},
		ListKey: "patients",
		Export: []string{
			"id", "name", "date_of_birth", "gender", "phone", "email", "address", "blood_group",
			"emergency_contact_name", "emergency_contact_phone", "insurance_number", "registered_at",
		},
	}
}
