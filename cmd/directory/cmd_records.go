package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gartstein/staffdir/internal/directory/controller"
	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	listInput controller.ListInput
	listLang  string

	addFlags    employeeFlags
	updateFlags employeeFlags

	deleteYes bool

	exportFormat string
	exportOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show one page of employees",
	Long: `Sorts, filters and paginates the employee list the same way the
web view does. Department and position accept "all".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app, out io.Writer) error {
			if listLang != "" {
				ctx = i18n.NewContext(ctx, i18n.Match(listLang, a.languages.Lang()))
			}
			res, err := a.service.ListEmployees(ctx, listInput)
			if err != nil {
				return err
			}
			renderEmployees(out, res, translationFor(ctx))
			return nil
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one employee as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app, out io.Writer) error {
			id, err := store.ParseID(args[0])
			if err != nil {
				return err
			}
			emp, err := a.service.GetEmployee(ctx, id)
			if err != nil {
				return err
			}
			return yaml.NewEncoder(out).Encode(emp)
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an employee",
	Long: `Adds an employee after validating it. Department defaults to Tech and
position to Junior. Dates use YYYY-MM-DD.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app, out io.Writer) error {
			created, err := a.service.CreateEmployee(ctx, addFlags.employee())
			if err != nil {
				return reportError(ctx, cmd, err)
			}
			fmt.Fprintf(out, "%d\n", created.ID)
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of an employee",
	Long:  `Only the flags given are changed; the merged record is validated.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app, out io.Writer) error {
			id, err := store.ParseID(args[0])
			if err != nil {
				return err
			}
			updated, err := a.service.UpdateEmployee(ctx, id, updateFlags.update(cmd))
			if err != nil {
				return reportError(ctx, cmd, err)
			}
			return yaml.NewEncoder(out).Encode(updated)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app, out io.Writer) error {
			id, err := store.ParseID(args[0])
			if err != nil {
				return err
			}
			emp, err := a.service.GetEmployee(ctx, id)
			if err != nil {
				return err
			}
			if !deleteYes && !confirm(cmd, fmt.Sprintf("%s (%s)", translationFor(ctx).Get("confirmDelete"), emp.FullName())) {
				return nil
			}
			return a.service.DeleteEmployee(ctx, id)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all employees with the records in a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		employees, err := readEmployees(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app, out io.Writer) error {
			replaced, err := a.service.ReplaceEmployees(ctx, employees)
			if err != nil {
				return reportError(ctx, cmd, err)
			}
			fmt.Fprintf(out, "%d\n", len(replaced))
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all employees as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, false, func(_ context.Context, a *app, out io.Writer) error {
			if exportOutput != "" {
				f, err := os.Create(exportOutput)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
				if exportFormat == "" {
					exportFormat = formatFromPath(exportOutput)
				}
			}
			return writeEmployees(out, a.store.List(), exportFormat)
		})
	},
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listInput.Search, "search", "s", "", "match first or last name")
	f.StringVar(&listInput.Department, "department", "all", "Analytics, Tech or all")
	f.StringVar(&listInput.Position, "position", "all", "Junior, Medior, Senior or all")
	f.StringVar(&listInput.Sort, "sort", "", "column: firstName, lastName, email, phone, department, position, dob, doe")
	f.StringVar(&listInput.Direction, "direction", "asc", "asc or desc")
	f.IntVarP(&listInput.Page, "page", "p", 1, "page number")
	f.IntVar(&listInput.PageSize, "page-size", 5, "rows per page")
	f.StringVar(&listLang, "lang", "", "label language (tr or en)")

	addFlags.register(addCmd)
	updateFlags.register(updateCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "yaml or json (default from the file name, else yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
}

// employeeFlags holds the record fields accepted by add and update.
type employeeFlags struct {
	firstName, lastName, email, phone string
	department, position              string
	dob, doe                          string
}

func (f *employeeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.firstName, "first-name", "", "first name")
	fs.StringVar(&f.lastName, "last-name", "", "last name")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.phone, "phone", "", "phone number, at least 10 digits")
	fs.StringVar(&f.department, "department", "", "Analytics or Tech")
	fs.StringVar(&f.position, "position", "", "Junior, Medior or Senior")
	fs.StringVar(&f.dob, "dob", "", "date of birth, YYYY-MM-DD")
	fs.StringVar(&f.doe, "doe", "", "date of employment, YYYY-MM-DD")
}

func (f *employeeFlags) employee() models.Employee {
	return models.Employee{
		FirstName:        f.firstName,
		LastName:         f.lastName,
		Email:            f.email,
		Phone:            f.phone,
		Department:       models.Department(f.department),
		Position:         models.Position(f.position),
		DateOfBirth:      models.Date(f.dob),
		DateOfEmployment: models.Date(f.doe),
	}
}

// update sets only the fields whose flags were given.
func (f *employeeFlags) update(cmd *cobra.Command) models.EmployeeUpdate {
	changed := cmd.Flags().Changed
	var u models.EmployeeUpdate
	if changed("first-name") {
		u.FirstName = models.Ptr(f.firstName)
	}
	if changed("last-name") {
		u.LastName = models.Ptr(f.lastName)
	}
	if changed("email") {
		u.Email = models.Ptr(f.email)
	}
	if changed("phone") {
		u.Phone = models.Ptr(f.phone)
	}
	if changed("department") {
		u.Department = models.Ptr(models.Department(f.department))
	}
	if changed("position") {
		u.Position = models.Ptr(models.Position(f.position))
	}
	if changed("dob") {
		u.DateOfBirth = models.Ptr(models.Date(f.dob))
	}
	if changed("doe") {
		u.DateOfEmployment = models.Ptr(models.Date(f.doe))
	}
	return u
}

func translationFor(ctx context.Context) i18n.Translation {
	lang, ok := i18n.FromContext(ctx)
	if !ok {
		lang = i18n.DefaultLang
	}
	return i18n.For(lang)
}

// reportError prints per-field validation messages before returning err.
func reportError(ctx context.Context, cmd *cobra.Command, err error) error {
	var verr *e.ValidationError
	if errors.As(err, &verr) {
		renderFieldErrors(cmd.ErrOrStderr(), verr.Fields, translationFor(ctx))
	}
	return err
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "e", "evet":
		return true
	default:
		return false
	}
}

func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

func readEmployees(path string) ([]models.Employee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var employees []models.Employee
	if formatFromPath(path) == "json" {
		err = json.Unmarshal(data, &employees)
	} else {
		err = yaml.Unmarshal(data, &employees)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", e.ErrInvalidInput, path, err)
	}
	return employees, nil
}

func writeEmployees(out io.Writer, employees []models.Employee, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(employees)
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(employees); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown format %q", e.ErrInvalidInput, format)
	}
}
