// Package validation checks a candidate employee the way the entry form
// does before every create or update.
//
// Validate is pure: it reads nothing but its arguments, and dates are
// compared as calendar days.
package validation

import (
	"regexp"
	"unicode/utf8"

	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
)

// Field names, as used in the persisted JSON and by form renderers.
const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldDepartment       = "department"
	FieldPosition         = "position"
	FieldDateOfBirth      = "dob"
	FieldDateOfEmployment = "doe"
)

const minNameLength = 2

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10,}$`)
)

// Errors maps a field name to its message. Empty means valid.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

// Validate returns a message from t for every field of emp that breaks a
// rule. Department and position may be left empty; callers fill defaults.
func Validate(emp models.Employee, t i18n.Translation) Errors {
	errs := Errors{}

	if utf8.RuneCountInString(emp.FirstName) < minNameLength {
		errs[FieldFirstName] = t.Get("errFirstName")
	}
	if utf8.RuneCountInString(emp.LastName) < minNameLength {
		errs[FieldLastName] = t.Get("errLastName")
	}
	if !emailPattern.MatchString(emp.Email) {
		errs[FieldEmail] = t.Get("errEmail")
	}
	if !phonePattern.MatchString(emp.Phone) {
		errs[FieldPhone] = t.Get("errPhone")
	}
	if emp.Department != "" && !emp.Department.Valid() {
		errs[FieldDepartment] = t.Get("errDepartment")
	}
	if emp.Position != "" && !emp.Position.Valid() {
		errs[FieldPosition] = t.Get("errPosition")
	}

	dobOK := checkDate(errs, FieldDateOfBirth, emp.DateOfBirth, t.Get("errDobRequired"), t)
	doeOK := checkDate(errs, FieldDateOfEmployment, emp.DateOfEmployment, t.Get("errDoeRequired"), t)
	if dobOK && doeOK {
		dob, _ := emp.DateOfBirth.Time()
		doe, _ := emp.DateOfEmployment.Time()
		if doe.Before(dob) {
			errs[FieldDateOfEmployment] = t.Get("errDoeBeforeDob")
		}
	}

	return errs
}

// checkDate records a required or format error and reports whether the
// date is usable for comparison.
func checkDate(errs Errors, field string, d models.Date, required string, t i18n.Translation) bool {
	if d.IsZero() {
		errs[field] = required
		return false
	}
	if _, err := d.Time(); err != nil {
		errs[field] = t.Get("errDateFormat")
		return false
	}
	return true
}
