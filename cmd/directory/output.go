package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
)

var (
	accent      = lipgloss.Color("#FF6200")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// columnKeys is the table column order; each key is also a translation key.
var columnKeys = []string{"firstName", "lastName", "doe", "dob", "phone", "email", "department", "position"}

func employeeRow(emp models.Employee) []string {
	return []string{
		strconv.FormatInt(emp.ID, 10),
		emp.FirstName,
		emp.LastName,
		string(emp.DateOfEmployment),
		string(emp.DateOfBirth),
		emp.Phone,
		emp.Email,
		string(emp.Department),
		string(emp.Position),
	}
}

func tableHeaders(t i18n.Translation) []string {
	headers := []string{"ID"}
	for _, key := range columnKeys {
		headers = append(headers, t.Get(key))
	}
	return headers
}

// employeeCard renders emp as a labelled block: the full name on top,
// then one line per remaining column.
func employeeCard(emp models.Employee, t i18n.Translation) string {
	row := employeeRow(emp)
	lines := []string{titleStyle.Render(emp.FullName())}
	for i := 2; i < len(columnKeys); i++ {
		lines = append(lines, mutedStyle.Render(t.Get(columnKeys[i])+": ")+row[i+1])
	}
	return strings.Join(lines, "\n")
}

// pageCount is the pager denominator; an empty result still has one page.
func pageCount(res pipeline.Result) int {
	return max(res.TotalPages, 1)
}

// renderEmployees draws one page of employees with a pager footer.
func renderEmployees(out io.Writer, res pipeline.Result, t i18n.Translation) {
	fmt.Fprintln(out, titleStyle.Render(t.Get("employeeList")))
	if len(res.Employees) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(t.Get("noResults")))
		return
	}

	rows := make([][]string, 0, len(res.Employees))
	for _, emp := range res.Employees {
		rows = append(rows, employeeRow(emp))
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(tableHeaders(t)...).
		Rows(rows...)

	fmt.Fprintln(out, tbl.Render())
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s %d / %d (%d)", t.Get("page"), res.Page, pageCount(res), res.Total)))
}

// renderFieldErrors prints validation messages one per line. Keys may be
// prefixed with a record index, as in "3.email".
func renderFieldErrors(out io.Writer, fields map[string]string, t i18n.Translation) {
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		label := t.Get(key)
		if i := strings.LastIndexByte(key, '.'); i >= 0 {
			label = "#" + key[:i] + " " + t.Get(key[i+1:])
		}
		fmt.Fprintf(out, "%s: %s\n", label, errorStyle.Render(fields[key]))
	}
}
