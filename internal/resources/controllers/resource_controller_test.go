package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hospital-dashboard/internal/resources/services"
)

type recordedEvent struct {
	resource, action string
	id               int64
}

type fakePublisher struct{ events []recordedEvent }

func (f *fakePublisher) Publish(resource, action string, id int64) {
	f.events = append(f.events, recordedEvent{resource, action, id})
}

func setup(t *testing.T, schema *services.Schema, debugSQL bool) (*ResourceController, sqlmock.Sqlmock, *fakePublisher) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	pub := &fakePublisher{}
	return NewResourceController(services.NewTableService(db, schema), pub, debugSQL), mock, pub
}

func call(t *testing.T, rc *ResourceController, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, rc.Handle(e.NewContext(req, rec)))

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

var patientCols = []string{
	"id", "name", "date_of_birth", "gender", "phone", "email", "address", "blood_group",
	"emergency_contact_name", "emergency_contact_phone", "insurance_number", "registered_at",
}

func patientRows() *sqlmock.Rows {
	return sqlmock.NewRows(patientCols).
		AddRow(int64(1), "Ana", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "Female", "0811",
			nil, nil, "O+", nil, nil, nil, time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC))
}

func TestHandle_ListPatients(t *testing.T) {
	rc, mock, _ := setup(t, services.PatientSchema(), false)
	mock.ExpectQuery("SELECT .* FROM patients p ORDER BY p.name ASC").WillReturnRows(patientRows())

	rec, out := call(t, rc, http.MethodGet, "/api/patients?action=list", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Len(t, out["patients"], 1)
	assert.Equal(t, map[string]interface{}{"total": float64(1)}, out["stats"])
	assert.NotContains(t, out, "sql_code")
}

func TestHandle_FilterWithDebugSQL(t *testing.T) {
	rc, mock, _ := setup(t, services.DoctorSchema(), true)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.name LIKE ?")).
		WithArgs("%rina%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, out := call(t, rc, http.MethodPost, "/api/doctors", `{"action":"filter","name":"rina","sort_by":"bogus"}`)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, []interface{}{}, out["data"])
	assert.Contains(t, out["sql_code"], "d.name LIKE '%rina%'")
	assert.Contains(t, out["sql_code"], "ORDER BY d.name ASC")
}

func TestHandle_MissingAndUnknownAction(t *testing.T) {
	rc, _, _ := setup(t, services.PatientSchema(), false)

	rec, out := call(t, rc, http.MethodGet, "/api/patients", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Action is required", out["error"])

	_, out = call(t, rc, http.MethodGet, "/api/patients?action=drop", "")
	assert.Equal(t, "Invalid action: drop", out["error"])
}

func TestHandle_MalformedJSON(t *testing.T) {
	rc, _, _ := setup(t, services.PatientSchema(), false)

	rec, out := call(t, rc, http.MethodPost, "/api/patients", `{"action":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
}

func TestHandle_CreateValidationFailsWithOK(t *testing.T) {
	rc, _, pub := setup(t, services.PatientSchema(), false)

	rec, out := call(t, rc, http.MethodPost, "/api/patients", `{"action":"create","name":"Ana"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Missing required fields: Date of Birth, Gender, Phone", out["error"])
	assert.Empty(t, pub.events)
}

func TestHandle_DeletePublishes(t *testing.T) {
	rc, mock, pub := setup(t, services.MedicalRecordSchema(), false)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM medical_records WHERE id = ? FOR UPDATE")).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM medical_records WHERE id = ?")).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, out := call(t, rc, http.MethodPost, "/api/medical-reports", `{"action":"delete","id":5}`)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Medical record deleted successfully", out["message"])
	assert.Equal(t, []recordedEvent{{"medical_reports", "delete", 5}}, pub.events)
}

func TestHandle_GetNotFound(t *testing.T) {
	rc, mock, _ := setup(t, services.DepartmentSchema(), false)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE dep.id = ?")).WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, out := call(t, rc, http.MethodGet, "/api/departments?action=get&id=77", "")
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Department not found", out["error"])
}

func TestHandle_ExportCSV(t *testing.T) {
	rc, mock, _ := setup(t, services.PatientSchema(), false)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.gender = ?")).WithArgs("Female").WillReturnRows(patientRows())

	rec, _ := call(t, rc, http.MethodGet, "/api/patients?action=export_csv&gender=Female", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Regexp(t, `^attachment; filename="patients_\d{4}-\d{2}-\d{2}\.csv"$`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Name,Date of Birth"))
	assert.Contains(t, rec.Body.String(), "1,Ana,1990-05-01,Female,0811")
}

func TestHandle_FilterOptions(t *testing.T) {
	rc, _, _ := setup(t, services.PatientSchema(), false)

	_, out := call(t, rc, http.MethodGet, "/api/patients?action=get_filter_options", "")
	data := out["data"].(map[string]interface{})
	assert.Len(t, data["genders"], 3)
	assert.Len(t, data["blood_groups"], 8)
}
