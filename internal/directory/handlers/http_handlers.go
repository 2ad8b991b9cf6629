package handlers

import (
	"context"
	"net/http"

	"github.com/gartstein/staffdir/internal/directory/controller"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
	"github.com/gartstein/staffdir/internal/directory/store"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmployeeController defines the business logic interface
// that the HTTP handlers invoke.
type EmployeeController interface {
	CreateEmployee(ctx context.Context, employee models.Employee) (models.Employee, error)
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, update models.EmployeeUpdate) (models.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
	ListEmployees(ctx context.Context, in controller.ListInput) (pipeline.Result, error)
	ReplaceEmployees(ctx context.Context, employees []models.Employee) ([]models.Employee, error)
}

// LanguageController reads and switches the UI language.
type LanguageController interface {
	Lang() i18n.Lang
	SetLang(ctx context.Context, lang i18n.Lang) error
}

// EmployeeHandler serves the /v1 HTTP routes.
type EmployeeHandler struct {
	service   EmployeeController
	languages LanguageController
	mux       *runtime.ServeMux
	logger    *zap.Logger
}

// NewEmployeeHandler constructs a new EmployeeHandler with the given
// services and logger.
func NewEmployeeHandler(service EmployeeController, languages LanguageController, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service:   service,
		languages: languages,
		logger:    logger.Named("http_handler"),
	}
}

// Register mounts every route on mux.
func (h *EmployeeHandler) Register(mux *runtime.ServeMux) error {
	h.mux = mux
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/employees", h.ListEmployees},
		{http.MethodPost, "/v1/employees", h.CreateEmployee},
		{http.MethodPut, "/v1/employees", h.ReplaceEmployees},
		{http.MethodGet, "/v1/employees/{id}", h.GetEmployee},
		{http.MethodPatch, "/v1/employees/{id}", h.UpdateEmployee},
		{http.MethodDelete, "/v1/employees/{id}", h.DeleteEmployee},
		{http.MethodGet, "/v1/translations", h.GetTranslations},
		{http.MethodPut, "/v1/lang", h.SetLang},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return err
		}
	}
	return nil
}

// ListEmployees runs the list pipeline with the view-state in the query.
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, err := queryToListInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.ListEmployees(h.requestContext(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, resultToResponse(res))
}

// GetEmployee fetches an Employee by ID.
func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := store.ParseID(params["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	employee, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, employee)
}

// CreateEmployee validates and stores the employee in the request body.
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var employee models.Employee
	if err := h.decode(r, &employee); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.service.CreateEmployee(h.requestContext(r), employee)
	if err != nil {
		h.logger.Debug("Create employee failed", zap.Error(err))
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, created)
}

// UpdateEmployee merges the fields present in the body over an Employee.
func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := store.ParseID(params["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var update models.EmployeeUpdate
	if err := h.decode(r, &update); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.service.UpdateEmployee(h.requestContext(r), id, update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, updated)
}

// DeleteEmployee removes an Employee given its ID.
func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := store.ParseID(params["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteEmployee(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceEmployees overwrites the whole collection with the body array.
func (h *EmployeeHandler) ReplaceEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var employees []models.Employee
	if err := h.decode(r, &employees); err != nil {
		h.writeError(w, r, err)
		return
	}

	replaced, err := h.service.ReplaceEmployees(h.requestContext(r), employees)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, replaced)
}

// GetTranslations returns the label table of the requested language.
func (h *EmployeeHandler) GetTranslations(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	lang := h.requestLang(r)
	h.writeJSON(w, r, http.StatusOK, translationsResponse{
		Lang:         lang,
		Translations: i18n.For(lang),
	})
}

// SetLang switches and persists the UI language.
func (h *EmployeeHandler) SetLang(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req langRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	lang, err := i18n.Parse(req.Lang)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.languages.SetLang(r.Context(), lang); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, translationsResponse{
		Lang:         lang,
		Translations: i18n.For(lang),
	})
}

// requestLang picks the lang query parameter, then Accept-Language, then
// the saved language.
func (h *EmployeeHandler) requestLang(r *http.Request) i18n.Lang {
	fallback := i18n.DefaultLang
	if h.languages != nil {
		fallback = h.languages.Lang()
	}
	if raw := r.URL.Query().Get("lang"); raw != "" {
		return i18n.Match(raw, fallback)
	}
	if raw := r.Header.Get("Accept-Language"); raw != "" {
		return i18n.Match(raw, fallback)
	}
	return fallback
}

func (h *EmployeeHandler) requestContext(r *http.Request) context.Context {
	return i18n.NewContext(r.Context(), h.requestLang(r))
}

func (h *EmployeeHandler) marshalers(r *http.Request) (runtime.Marshaler, runtime.Marshaler) {
	if h.mux == nil {
		builtin := &runtime.JSONBuiltin{}
		return builtin, builtin
	}
	return runtime.MarshalerForRequest(h.mux, r)
}

func (h *EmployeeHandler) decode(r *http.Request, v interface{}) error {
	inbound, _ := h.marshalers(r)
	if err := inbound.NewDecoder(r.Body).Decode(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request body: %v", err)
	}
	return nil
}

func (h *EmployeeHandler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	_, outbound := h.marshalers(r)
	body, err := outbound.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func (h *EmployeeHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := h.errorToResponse(err)
	h.writeJSON(w, r, code, body)
}
