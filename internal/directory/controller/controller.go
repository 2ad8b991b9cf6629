// Package controller implements the core business logic (service layer)
// for managing Employee records: it applies form defaults, validates,
// and hands the result to the record store.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
	"github.com/gartstein/staffdir/internal/directory/validation"
	"go.uber.org/zap"
)

// Store defines the record store operations the service relies on.
type Store interface {
	List() []models.Employee
	GetByID(id int64) (models.Employee, error)
	Add(ctx context.Context, employee models.Employee) (models.Employee, error)
	Modify(ctx context.Context, id int64, fn func(models.Employee) (models.Employee, error)) (models.Employee, error)
	Delete(ctx context.Context, id int64) error
	ReplaceAll(ctx context.Context, employees []models.Employee) ([]models.Employee, error)
}

// Languages reports the language currently selected in the UI.
type Languages interface {
	Lang() i18n.Lang
}

// ListInput is the raw view-state of a list request.
type ListInput struct {
	Search     string
	Department string
	Position   string
	Sort       string
	Direction  string
	Page       int
	PageSize   int
}

// EmployeeService provides methods to manage employees via the store.
type EmployeeService struct {
	store     Store
	languages Languages
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService with a store, the
// language provider, and a logger.
func NewEmployeeService(store Store, languages Languages, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		store:     store,
		languages: languages,
		logger:    logger.Named("employee_service"),
	}
}

// CreateEmployee fills form defaults, validates and stores a new employee.
func (s *EmployeeService) CreateEmployee(ctx context.Context, employee models.Employee) (models.Employee, error) {
	employee.ID = 0
	employee = withDefaults(employee)
	if err := s.validate(ctx, employee); err != nil {
		return models.Employee{}, err
	}

	created, err := s.store.Add(ctx, employee)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	s.logger.Info("Employee created", zap.Int64("employee_id", created.ID))
	return created, nil
}

// GetEmployee retrieves an employee by ID, returning ErrNotFound if missing.
func (s *EmployeeService) GetEmployee(_ context.Context, id int64) (models.Employee, error) {
	return s.store.GetByID(id)
}

// UpdateEmployee merges update over the stored employee, fills form
// defaults and validates the merged record. Merge and validation run under
// the store lock, so the stored record is always the one that was validated.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id int64, update models.EmployeeUpdate) (models.Employee, error) {
	updated, err := s.store.Modify(ctx, id, func(existing models.Employee) (models.Employee, error) {
		merged := withDefaults(update.Apply(existing))
		if err := s.validate(ctx, merged); err != nil {
			return models.Employee{}, err
		}
		return merged, nil
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrInvalidInput) {
			return models.Employee{}, err
		}
		return models.Employee{}, fmt.Errorf("failed to update employee: %w", err)
	}
	s.logger.Info("Employee updated", zap.Int64("employee_id", id))
	return updated, nil
}

// DeleteEmployee removes an employee by ID.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	s.logger.Info("Employee deleted", zap.Int64("employee_id", id))
	return nil
}

// ListEmployees runs the list pipeline over the current store snapshot.
func (s *EmployeeService) ListEmployees(ctx context.Context, in ListInput) (pipeline.Result, error) {
	column, err := pipeline.ParseSortColumn(in.Sort)
	if err != nil {
		return pipeline.Result{}, err
	}
	direction, err := pipeline.ParseSortDirection(in.Direction)
	if err != nil {
		return pipeline.Result{}, err
	}
	if err := pipeline.ValidatePageSize(in.PageSize); err != nil {
		return pipeline.Result{}, err
	}

	return pipeline.Apply(s.store.List(), pipeline.Query{
		Search:        in.Search,
		Department:    in.Department,
		Position:      in.Position,
		SortColumn:    column,
		SortDirection: direction,
		Page:          in.Page,
		PageSize:      in.PageSize,
		Lang:          s.lang(ctx).Tag(),
	}), nil
}

// ReplaceEmployees validates every record and overwrites the collection.
// Field errors are keyed "<index>.<field>".
func (s *EmployeeService) ReplaceEmployees(ctx context.Context, employees []models.Employee) ([]models.Employee, error) {
	t := i18n.For(s.lang(ctx))
	fields := map[string]string{}
	prepared := make([]models.Employee, len(employees))
	for i, emp := range employees {
		prepared[i] = withDefaults(emp)
		for field, msg := range validation.Validate(prepared[i], t) {
			fields[strconv.Itoa(i)+"."+field] = msg
		}
	}
	if len(fields) > 0 {
		return nil, &e.ValidationError{Fields: fields}
	}

	replaced, err := s.store.ReplaceAll(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("failed to replace employees: %w", err)
	}
	s.logger.Info("Employees replaced", zap.Int("count", len(replaced)))
	return replaced, nil
}

func (s *EmployeeService) validate(ctx context.Context, employee models.Employee) error {
	errs := validation.Validate(employee, i18n.For(s.lang(ctx)))
	if !errs.Valid() {
		return &e.ValidationError{Fields: errs}
	}
	return nil
}

func (s *EmployeeService) lang(ctx context.Context) i18n.Lang {
	if lang, ok := i18n.FromContext(ctx); ok {
		return lang
	}
	if s.languages != nil {
		return s.languages.Lang()
	}
	return i18n.DefaultLang
}

// withDefaults applies the entry form's preselected department and position.
func withDefaults(employee models.Employee) models.Employee {
	if employee.Department == "" {
		employee.Department = models.Tech
	}
	if employee.Position == "" {
		employee.Position = models.Junior
	}
	return employee
}
