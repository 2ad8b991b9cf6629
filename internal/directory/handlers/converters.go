package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gartstein/staffdir/internal/directory/controller"
	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// listResponse is the JSON body of GET /v1/employees.
type listResponse struct {
	Employees  []models.Employee `json:"employees"`
	Total      int               `json:"total"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
}

type translationsResponse struct {
	Lang         i18n.Lang        `json:"lang"`
	Translations i18n.Translation `json:"translations"`
}

type langRequest struct {
	Lang string `json:"lang"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// queryToListInput reads the list view-state from URL parameters.
func queryToListInput(r *http.Request) (controller.ListInput, error) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		return controller.ListInput{}, err
	}
	pageSize, err := intParam(q.Get("pageSize"), "pageSize")
	if err != nil {
		return controller.ListInput{}, err
	}

	return controller.ListInput{
		Search:     q.Get("search"),
		Department: q.Get("department"),
		Position:   q.Get("position"),
		Sort:       q.Get("sort"),
		Direction:  q.Get("direction"),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	return n, nil
}

func resultToResponse(res pipeline.Result) listResponse {
	employees := res.Employees
	if employees == nil {
		employees = []models.Employee{}
	}
	return listResponse{
		Employees:  employees,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Page:       res.Page,
		PageSize:   res.PageSize,
	}
}

// mapServiceError maps domain or storage errors to appropriate gRPC status codes.
func (h *EmployeeHandler) mapServiceError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrStorage):
		h.logger.Error("Storage failure", zap.Error(err))
		return status.Error(codes.Unavailable, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

// errorToResponse renders err as an HTTP status and body. Validation
// errors carry their per-field messages.
func (h *EmployeeHandler) errorToResponse(err error) (int, errorResponse) {
	st := status.Convert(h.mapServiceError(err))
	resp := errorResponse{
		Error: st.Message(),
		Code:  st.Code().String(),
	}

	var verr *e.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	return runtime.HTTPStatusFromCode(st.Code()), resp
}
