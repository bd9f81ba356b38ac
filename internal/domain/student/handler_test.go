package student

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/imuniza/imuniza/internal/domain/status"
	"github.com/imuniza/imuniza/internal/platform/auth"
	"github.com/imuniza/imuniza/internal/platform/validation"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// request performs req against the handler with the given role injected
// on the context, the way the auth middleware would after verifying a
// token.
func request(e *echo.Echo, h *Handler, method, target string, role string, schoolID *uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()

	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, "test-user")
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	if schoolID != nil {
		ctx = context.WithValue(ctx, auth.SchoolIDKey, *schoolID)
	}
	req = req.WithContext(ctx)

	api := e.Group("/api")
	h.RegisterRoutes(api)
	e.ServeHTTP(rec, req)
	return rec
}

func TestImmunizationStatusEndpoint_WireFormat(t *testing.T) {
	repo := newMockRepo()
	recs := make(map[uuid.UUID][]status.Record)
	svc := testService(repo, hpvSchedule(), recs)
	schoolID := uuid.New()
	st := seed(t, svc, schoolID, "Ana Souza", date(2015, 3, 1))

	// One dose of another vaccine on file; the HPV dose stays pending.
	recs[st.ID] = []status.Record{
		{VaccineCode: "DTPA", DoseNumber: 1, ApplicationDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}

	e := newTestEcho()
	h := NewHandler(svc)
	rec := request(e, h, http.MethodGet, "/api/students/"+st.ID.String()+"/immunization-status/", auth.RoleHealth, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["studentId"] != st.ID.String() {
		t.Errorf("studentId = %v", body["studentId"])
	}
	if body["studentName"] != "Ana Souza" {
		t.Errorf("studentName = %v", body["studentName"])
	}
	if body["status"] != "INCOMPLETO" {
		t.Errorf("status = %v", body["status"])
	}
	if body["asOfDate"] != "2025-06-15" {
		t.Errorf("asOfDate = %v", body["asOfDate"])
	}
	if body["activeScheduleCode"] != "PNI-2025" {
		t.Errorf("activeScheduleCode = %v", body["activeScheduleCode"])
	}
	pending, ok := body["pending"].([]any)
	if !ok || len(pending) != 1 {
		t.Fatalf("pending = %v", body["pending"])
	}
	dose := pending[0].(map[string]any)
	if dose["vaccineCode"] != "HPV" || dose["status"] != "PENDENTE" {
		t.Errorf("pending dose = %v", dose)
	}
}

func TestStudentEndpoints_SchoolRoleScoping(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo, hpvSchedule(), nil)
	mySchool := uuid.New()
	otherSchool := uuid.New()
	mine := seed(t, svc, mySchool, "Ana", date(2015, 3, 1))
	other := seed(t, svc, otherSchool, "Bruno", date(2015, 3, 1))

	h := NewHandler(svc)

	rec := request(newTestEcho(), h, http.MethodGet, "/api/students/"+other.ID.String()+"/", auth.RoleSchool, &mySchool)
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-school get = %d, want 403", rec.Code)
	}

	rec = request(newTestEcho(), h, http.MethodGet, "/api/students/"+mine.ID.String()+"/", auth.RoleSchool, &mySchool)
	if rec.Code != http.StatusOK {
		t.Errorf("own-school get = %d, want 200", rec.Code)
	}

	rec = request(newTestEcho(), h, http.MethodGet, "/api/students/", auth.RoleSchool, &mySchool)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	var body struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 1 {
		t.Errorf("school caller sees %d students, want 1", body.Total)
	}
}

func TestListEndpoint_StatusFilterAndPagination(t *testing.T) {
	repo := newMockRepo()
	recs := make(map[uuid.UUID][]status.Record)
	svc := testService(repo, hpvSchedule(), recs)
	schoolID := uuid.New()
	covered := seed(t, svc, schoolID, "Ana", date(2015, 3, 1))
	recs[covered.ID] = []status.Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}
	seed(t, svc, schoolID, "Bruno", date(2015, 3, 1))

	h := NewHandler(svc)
	rec := request(newTestEcho(), h, http.MethodGet, "/api/students/?status=EM_DIA", auth.RoleAdmin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	var body struct {
		Data []struct {
			FullName      string `json:"full_name"`
			AgeMonths     int    `json:"age_months"`
			CurrentStatus string `json:"current_status"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 1 || len(body.Data) != 1 {
		t.Fatalf("total = %d, rows = %d", body.Total, len(body.Data))
	}
	if body.Data[0].FullName != "Ana" || body.Data[0].CurrentStatus != "EM_DIA" {
		t.Errorf("row = %+v", body.Data[0])
	}
	if body.Data[0].AgeMonths != 123 {
		t.Errorf("age_months = %d, want 123", body.Data[0].AgeMonths)
	}

	rec = request(newTestEcho(), h, http.MethodGet, "/api/students/?status=INVALIDO", auth.RoleAdmin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status filter = %d, want 400", rec.Code)
	}
}
