package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gartstein/staffdir/internal/directory/auth"
	"github.com/gartstein/staffdir/internal/directory/controller"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
	"github.com/gartstein/staffdir/internal/directory/storage"
	"github.com/gartstein/staffdir/internal/directory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

type fixture struct {
	handler  http.Handler
	store    *store.Store
	provider *i18n.Provider
	storage  storage.Storage
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	mem := storage.NewMemory()
	st, err := store.New(ctx, mem, logger)
	require.NoError(t, err)
	provider := i18n.NewProvider(mem, logger)
	require.NoError(t, provider.Init(ctx, ""))

	svc := controller.NewEmployeeService(st, provider, logger)
	server := NewServer(0, 0, logger)
	require.NoError(t, server.RegisterHTTPHandlers(NewEmployeeHandler(svc, provider, logger), secret))

	return &fixture{handler: server.Handler(), store: st, provider: provider, storage: mem}
}

func (f *fixture) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const newEmployeeJSON = `{
	"firstName": "Deniz",
	"lastName": "Yılmaz",
	"email": "deniz@company.com",
	"phone": "5551234567",
	"dob": "1992-03-04",
	"doe": "2019-09-01"
}`

func TestEmployeeHandler_ListEmployees(t *testing.T) {
	f := newFixture(t, "")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantNames  []string
		wantPages  int
	}{
		{
			name:       "default view",
			target:     "/v1/employees",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Ali", "Aysun"},
			wantPages:  1,
		},
		{
			name:       "search by name",
			target:     "/v1/employees?search=ali&department=all&position=all",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Ali"},
			wantPages:  1,
		},
		{
			name:       "sorted descending, one per page",
			target:     "/v1/employees?sort=firstName&direction=desc&pageSize=1",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Aysun"},
			wantPages:  2,
		},
		{
			name:       "page past the end is clamped",
			target:     "/v1/employees?pageSize=1&page=9",
			wantStatus: http.StatusOK,
			wantNames:  []string{"Aysun"},
			wantPages:  2,
		},
		{
			name:       "unknown sort column",
			target:     "/v1/employees?sort=salary",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non numeric page",
			target:     "/v1/employees?page=two",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				body := decodeBody[errorResponse](t, rec)
				assert.Equal(t, "InvalidArgument", body.Code)
				return
			}

			body := decodeBody[listResponse](t, rec)
			names := make([]string, 0, len(body.Employees))
			for _, emp := range body.Employees {
				names = append(names, emp.FirstName)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantPages, body.TotalPages)
		})
	}
}

func TestEmployeeHandler_CRUD(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(t, http.MethodPost, "/v1/employees", newEmployeeJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[models.Employee](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.Tech, created.Department)
	assert.Equal(t, models.Junior, created.Position)

	target := "/v1/employees/" + jsonID(created.ID)
	rec = f.do(t, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeBody[models.Employee](t, rec))

	rec = f.do(t, http.MethodPatch, target, `{"position":"Senior"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[models.Employee](t, rec)
	assert.Equal(t, models.Senior, updated.Position)
	assert.Equal(t, created.Email, updated.Email)

	rec = f.do(t, http.MethodDelete, target, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, target, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodDelete, target, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployeeHandler_ValidationErrors(t *testing.T) {
	f := newFixture(t, "")
	body := `{"firstName":"A","lastName":"Balta","email":"bad","phone":"123","dob":"","doe":""}`

	rec := f.do(t, http.MethodPost, "/v1/employees?lang=en", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "InvalidArgument", resp.Code)
	for _, field := range []string{"firstName", "email", "phone", "dob", "doe"} {
		assert.Contains(t, resp.Fields, field)
	}
	assert.NotContains(t, resp.Fields, "lastName")
	assert.Equal(t, i18n.For(i18n.English).Get("errEmail"), resp.Fields["email"])

	rec = f.do(t, http.MethodPost, "/v1/employees", body, "Accept-Language", "tr-TR")
	resp = decodeBody[errorResponse](t, rec)
	assert.Equal(t, i18n.For(i18n.Turkish).Get("errEmail"), resp.Fields["email"])

	assert.Len(t, f.store.List(), 2)
}

func TestEmployeeHandler_BadRequests(t *testing.T) {
	f := newFixture(t, "")

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"malformed body", http.MethodPost, "/v1/employees", `{"firstName":`, http.StatusBadRequest},
		{"non numeric id", http.MethodGet, "/v1/employees/abc", "", http.StatusNotFound},
		{"unknown id", http.MethodPatch, "/v1/employees/42", `{"position":"Senior"}`, http.StatusNotFound},
		{"duplicate ids on replace", http.MethodPut, "/v1/employees", `[` + idJSON(7) + `,` + idJSON(7) + `]`, http.StatusBadRequest},
		{"unsupported language", http.MethodPut, "/v1/lang", `{"lang":"de"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestEmployeeHandler_ReplaceEmployees(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(t, http.MethodPut, "/v1/employees", `[`+idJSON(10)+`,`+newEmployeeJSON+`]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	replaced := decodeBody[[]models.Employee](t, rec)
	require.Len(t, replaced, 2)
	assert.Equal(t, int64(10), replaced[0].ID)
	assert.Greater(t, replaced[1].ID, int64(10))
	assert.Equal(t, replaced, f.store.List())
}

func TestEmployeeHandler_Language(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(t, http.MethodGet, "/v1/translations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, i18n.Turkish, decodeBody[translationsResponse](t, rec).Lang)

	rec = f.do(t, http.MethodGet, "/v1/translations?lang=en", "")
	resp := decodeBody[translationsResponse](t, rec)
	assert.Equal(t, i18n.English, resp.Lang)
	assert.Equal(t, i18n.For(i18n.English).Get("employeeList"), resp.Translations["employeeList"])

	rec = f.do(t, http.MethodPut, "/v1/lang", `{"lang":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, i18n.English, f.provider.Lang())

	saved, ok, err := f.storage.GetItem(context.Background(), storage.LangKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", saved)
}

func TestEmployeeHandler_Auth(t *testing.T) {
	f := newFixture(t, testSecret)

	rec := f.do(t, http.MethodPost, "/v1/employees", newEmployeeJSON)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/employees", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := auth.GenerateToken("12345", testSecret, time.Hour)
	require.NoError(t, err)
	rec = f.do(t, http.MethodPost, "/v1/employees", newEmployeeJSON, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/v1/lang", `{"lang":"en"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, i18n.Turkish, f.provider.Lang())

	rec = f.do(t, http.MethodPut, "/v1/lang", `{"lang":"en"}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, i18n.English, f.provider.Lang())
}

// mockEmployeeController returns err from every call.
type mockEmployeeController struct {
	err error
}

func (m *mockEmployeeController) CreateEmployee(context.Context, models.Employee) (models.Employee, error) {
	return models.Employee{}, m.err
}

func (m *mockEmployeeController) GetEmployee(context.Context, int64) (models.Employee, error) {
	return models.Employee{}, m.err
}

func (m *mockEmployeeController) UpdateEmployee(context.Context, int64, models.EmployeeUpdate) (models.Employee, error) {
	return models.Employee{}, m.err
}

func (m *mockEmployeeController) DeleteEmployee(context.Context, int64) error {
	return m.err
}

func (m *mockEmployeeController) ListEmployees(context.Context, controller.ListInput) (pipeline.Result, error) {
	return pipeline.Result{}, m.err
}

func (m *mockEmployeeController) ReplaceEmployees(context.Context, []models.Employee) ([]models.Employee, error) {
	return nil, m.err
}

func TestEmployeeHandler_InternalErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := NewEmployeeHandler(&mockEmployeeController{err: errors.New("boom")}, nil, logger)
	server := NewServer(0, 0, logger)
	require.NoError(t, server.RegisterHTTPHandlers(handler, ""))

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/1", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "internal server error", body.Error)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func idJSON(id int64) string {
	return `{"id":` + jsonID(id) + `,"firstName":"Ece","lastName":"Demir","email":"ece@company.com",` +
		`"phone":"5550000000","department":"Analytics","position":"Medior","dob":"1990-01-01","doe":"2015-01-01"}`
}
