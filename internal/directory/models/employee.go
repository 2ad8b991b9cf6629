// Package models defines the core domain models for the Employee entity.
// It includes definitions for Employee, EmployeeUpdate, the Department and
// Position enumerations, and the calendar Date used for birth and
// employment dates.
package models

import (
	"strings"
	"time"
)

// Department is the organizational unit an employee belongs to.
type Department string

const (
	Tech      Department = "Tech"
	Analytics Department = "Analytics"
)

// Departments lists the accepted departments in display order.
var Departments = []Department{Tech, Analytics}

// Position is the seniority level of an employee.
type Position string

const (
	Junior Position = "Junior"
	Medior Position = "Medior"
	Senior Position = "Senior"
)

// Positions lists the accepted positions in display order.
var Positions = []Position{Junior, Medior, Senior}

// Valid reports whether d is one of the enumerated departments.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the enumerated positions.
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// DateLayout is the persisted text form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date kept in its YYYY-MM-DD text form. The empty
// Date means "not set".
type Date string

// NewDate formats t as a calendar date, dropping time of day.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return strings.TrimSpace(string(d)) == ""
}

// Time parses the date at midnight UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(string(d)))
}

// Employee defines the domain model for an employee record.
type Employee struct {
	// ID is the unique identifier, derived from the creation time.
	ID int64 `json:"id" yaml:"id"`
	// FirstName is the employee's given name.
	FirstName string `json:"firstName" yaml:"firstName"`
	// LastName is the employee's family name.
	LastName string `json:"lastName" yaml:"lastName"`
	// Email is the contact address.
	Email string `json:"email" yaml:"email"`
	// Phone holds digits only.
	Phone string `json:"phone" yaml:"phone"`
	// Department is one of Departments.
	Department Department `json:"department" yaml:"department"`
	// Position is one of Positions.
	Position Position `json:"position" yaml:"position"`
	// DateOfBirth is the birth date.
	DateOfBirth Date `json:"dob" yaml:"dob"`
	// DateOfEmployment is the hiring date; never before DateOfBirth.
	DateOfEmployment Date `json:"doe" yaml:"doe"`
}

// FullName joins first and last name the way the list view shows it.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// EmployeeUpdate represents the fields that can be updated for an Employee.
// Pointer types are used to allow partial updates: nil keeps the stored value.
type EmployeeUpdate struct {
	FirstName        *string     `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName         *string     `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Email            *string     `json:"email,omitempty" yaml:"email,omitempty"`
	Phone            *string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	Department       *Department `json:"department,omitempty" yaml:"department,omitempty"`
	Position         *Position   `json:"position,omitempty" yaml:"position,omitempty"`
	DateOfBirth      *Date       `json:"dob,omitempty" yaml:"dob,omitempty"`
	DateOfEmployment *Date       `json:"doe,omitempty" yaml:"doe,omitempty"`
}

// Apply merges the set fields of u over e and returns the result. The ID is
// never changed.
func (u EmployeeUpdate) Apply(e Employee) Employee {
	if u.FirstName != nil {
		e.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		e.LastName = *u.LastName
	}
	if u.Email != nil {
		e.Email = *u.Email
	}
	if u.Phone != nil {
		e.Phone = *u.Phone
	}
	if u.Department != nil {
		e.Department = *u.Department
	}
	if u.Position != nil {
		e.Position = *u.Position
	}
	if u.DateOfBirth != nil {
		e.DateOfBirth = *u.DateOfBirth
	}
	if u.DateOfEmployment != nil {
		e.DateOfEmployment = *u.DateOfEmployment
	}
	return e
}

// Ptr returns a pointer to v. Handy for building EmployeeUpdate values.
func Ptr[T any](v T) *T {
	return &v
}
