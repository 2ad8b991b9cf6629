// Package pipeline derives what a list view shows from a snapshot of the
// store: sort, then filter by name, department and position, then cut one
// page. Everything here is pure; the input slice is never modified.
package pipeline

import (
	"fmt"
	"slices"
	"strings"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All disables a department or position filter.
const All = "all"

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// SortColumn names the employee field a list is ordered by.
type SortColumn string

const (
	SortNone             SortColumn = ""
	SortFirstName        SortColumn = "firstName"
	SortLastName         SortColumn = "lastName"
	SortEmail            SortColumn = "email"
	SortPhone            SortColumn = "phone"
	SortDepartment       SortColumn = "department"
	SortPosition         SortColumn = "position"
	SortDateOfBirth      SortColumn = "dob"
	SortDateOfEmployment SortColumn = "doe"
)

// SortColumns lists the sortable columns in table order.
var SortColumns = []SortColumn{
	SortFirstName, SortLastName, SortEmail, SortPhone,
	SortDepartment, SortPosition, SortDateOfBirth, SortDateOfEmployment,
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortColumn accepts the empty string as "unsorted".
func ParseSortColumn(raw string) (SortColumn, error) {
	if raw == "" {
		return SortNone, nil
	}
	for _, c := range SortColumns {
		if string(c) == raw {
			return c, nil
		}
	}
	return SortNone, fmt.Errorf("%w: unknown sort column %q", e.ErrInvalidInput, raw)
}

// ParseSortDirection defaults to ascending.
func ParseSortDirection(raw string) (SortDirection, error) {
	switch strings.ToLower(raw) {
	case "", string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: unknown sort direction %q", e.ErrInvalidInput, raw)
	}
}

// ValidatePageSize rejects sizes outside 1..MaxPageSize. Zero means default.
func ValidatePageSize(size int) error {
	if size < 0 || size > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", e.ErrInvalidInput, MaxPageSize)
	}
	return nil
}

func (c SortColumn) value(emp models.Employee) string {
	switch c {
	case SortFirstName:
		return emp.FirstName
	case SortLastName:
		return emp.LastName
	case SortEmail:
		return emp.Email
	case SortPhone:
		return emp.Phone
	case SortDepartment:
		return string(emp.Department)
	case SortPosition:
		return string(emp.Position)
	case SortDateOfBirth:
		return string(emp.DateOfBirth)
	case SortDateOfEmployment:
		return string(emp.DateOfEmployment)
	default:
		return ""
	}
}

// Query is the view-state the pipeline needs.
type Query struct {
	Search        string
	Department    string
	Position      string
	SortColumn    SortColumn
	SortDirection SortDirection
	// Page is 1-based. Out-of-range pages are clamped.
	Page     int
	PageSize int
	// Lang selects the collation; the zero tag uses root collation.
	Lang language.Tag
}

// Result is one rendered page plus the numbers a pager needs.
type Result struct {
	Employees  []models.Employee
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// Apply runs sort, filter and paginate over employees.
func Apply(employees []models.Employee, q Query) Result {
	sorted := Sort(employees, q.SortColumn, q.SortDirection, q.Lang)
	filtered := Filter(sorted, q.Search, q.Department, q.Position)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Sort returns a stably sorted copy. Values are compared lower-cased with
// the collation rules of lang.
func Sort(employees []models.Employee, column SortColumn, dir SortDirection, lang language.Tag) []models.Employee {
	out := append([]models.Employee(nil), employees...)
	if column == SortNone {
		return out
	}

	collator := collate.New(lang)
	lower := cases.Lower(language.Und)
	slices.SortStableFunc(out, func(a, b models.Employee) int {
		av := lower.String(column.value(a))
		bv := lower.String(column.value(b))
		if dir == Descending {
			return collator.CompareString(bv, av)
		}
		return collator.CompareString(av, bv)
	})
	return out
}

// Filter keeps employees whose full name contains search (case-insensitive)
// and whose department and position match, where All or "" match anything.
func Filter(employees []models.Employee, search, department, position string) []models.Employee {
	lower := cases.Lower(language.Und)
	term := lower.String(search)

	out := make([]models.Employee, 0, len(employees))
	for _, emp := range employees {
		if !strings.Contains(lower.String(emp.FullName()), term) {
			continue
		}
		if !matches(department, string(emp.Department)) || !matches(position, string(emp.Position)) {
			continue
		}
		out = append(out, emp)
	}
	return out
}

func matches(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}

// Paginate cuts page out of employees. A page past the end is clamped to the
// last page and a page below 1 to the first.
func Paginate(employees []models.Employee, page, size int) Result {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(employees)
	totalPages := (total + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}

	return Result{
		Employees:  append([]models.Employee{}, employees[start:end]...),
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   size,
	}
}
