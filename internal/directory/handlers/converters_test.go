package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gartstein/staffdir/internal/directory/controller"
	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestQueryToListInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/v1/employees?search=ali&department=Tech&position=all&sort=dob&direction=desc&page=2&pageSize=10", nil)

	in, err := queryToListInput(req)
	require.NoError(t, err)
	assert.Equal(t, controller.ListInput{
		Search:     "ali",
		Department: "Tech",
		Position:   "all",
		Sort:       "dob",
		Direction:  "desc",
		Page:       2,
		PageSize:   10,
	}, in)

	_, err = queryToListInput(httptest.NewRequest(http.MethodGet, "/v1/employees?pageSize=x", nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestResultToResponse_EmptyPage(t *testing.T) {
	resp := resultToResponse(pipeline.Result{PageSize: 5})
	assert.NotNil(t, resp.Employees)
	assert.Empty(t, resp.Employees)
}

func TestMapServiceError(t *testing.T) {
	h := NewEmployeeHandler(nil, nil, zaptest.NewLogger(t))

	tests := []struct {
		name       string
		err        error
		wantCode   codes.Code
		wantStatus int
	}{
		{"not found", fmt.Errorf("employee 1: %w", e.ErrNotFound), codes.NotFound, http.StatusNotFound},
		{"invalid input", fmt.Errorf("%w: bad sort", e.ErrInvalidInput), codes.InvalidArgument, http.StatusBadRequest},
		{"validation", &e.ValidationError{Fields: map[string]string{"email": "x"}}, codes.InvalidArgument, http.StatusBadRequest},
		{"storage", fmt.Errorf("%w: quota", e.ErrStorage), codes.Unavailable, http.StatusServiceUnavailable},
		{"status passthrough", status.Error(codes.InvalidArgument, "page"), codes.InvalidArgument, http.StatusBadRequest},
		{"unknown", fmt.Errorf("boom"), codes.Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, status.Code(h.mapServiceError(tt.err)))
			code, body := h.errorToResponse(tt.err)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantCode.String(), body.Code)
		})
	}
}
