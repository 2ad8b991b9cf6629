package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gartstein/staffdir/internal/directory/events"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/pipeline"
	"github.com/spf13/cobra"
)

const reloadInterval = 2 * time.Second

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and search employees in a terminal UI",
	Long: `Keys:
  /        search by name          tab      cycle department filter
  p        cycle position filter   1-8      sort by column (again to reverse)
  ← →      previous / next page    + -      page size
  x        delete selected row     L        switch language
  v        table / card view       q        quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app, _ io.Writer) error {
			m := newBrowseModel(ctx, a.store, a.service, a.languages)
			m.reload = func() error { return a.store.Load(ctx) }

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			unsubscribeStore := a.store.Subscribe(func(events.Event) {
				go p.Send(storeChangedMsg{})
			})
			defer unsubscribeStore()
			unsubscribeLang := a.languages.Subscribe(func(lang i18n.Lang) {
				go p.Send(langChangedMsg{lang: lang})
			})
			defer unsubscribeLang()

			_, err := p.Run()
			return err
		})
	},
}

// Messages delivered to the browse model.
type (
	storeChangedMsg struct{}
	langChangedMsg  struct{ lang i18n.Lang }
	reloadTickMsg   struct{}
	statusMsg       string
)

type employeeLister interface {
	List() []models.Employee
}

type employeeDeleter interface {
	DeleteEmployee(ctx context.Context, id int64) error
}

type languageSwitcher interface {
	Lang() i18n.Lang
	SetLang(ctx context.Context, lang i18n.Lang) error
}

// browseModel is the terminal list view: one pipeline.View rendered as a
// table or as cards, refreshed whenever the store or the language changes.
type browseModel struct {
	ctx       context.Context
	lister    employeeLister
	deleter   employeeDeleter
	languages languageSwitcher
	reload    func() error

	view   pipeline.View
	lang   i18n.Lang
	result pipeline.Result

	search        textinput.Model
	searchFocused bool
	table         table.Model
	cardView      bool

	pendingDelete *models.Employee
	status        string
	width         int
}

func newBrowseModel(ctx context.Context, lister employeeLister, deleter employeeDeleter, languages languageSwitcher) browseModel {
	si := textinput.New()
	si.CharLimit = 50
	si.Width = 30

	m := browseModel{
		ctx:       ctx,
		lister:    lister,
		deleter:   deleter,
		languages: languages,
		view:      pipeline.NewView(),
		lang:      languages.Lang(),
		search:    si,
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(pipeline.DefaultPageSize+1),
		),
	}
	m.refresh()
	return m
}

func (m browseModel) Init() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	return reloadTick()
}

func reloadTick() tea.Cmd {
	return tea.Tick(reloadInterval, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width - 2)
		return m, nil
	case storeChangedMsg:
		m.refresh()
		return m, nil
	case langChangedMsg:
		m.lang = msg.lang
		m.refresh()
		return m, nil
	case reloadTickMsg:
		if m.reload != nil {
			if err := m.reload(); err != nil {
				m.status = err.Error()
			}
			m.refresh()
		}
		return m, reloadTick()
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case tea.KeyMsg:
		if m.searchFocused {
			return m.updateSearch(msg)
		}
		if m.pendingDelete != nil {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searchFocused = false
		m.search.Blur()
		m.table.Focus()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Search {
		m.view.SetSearch(m.search.Value())
		m.refresh()
	}
	return m, cmd
}

func (m browseModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.pendingDelete
	m.pendingDelete = nil
	switch msg.String() {
	case "y", "Y", "e", "E", "enter":
		if err := m.deleter.DeleteEmployee(m.ctx, target.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		m.refresh()
	}
	return m, nil
}

func (m browseModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searchFocused = true
		m.table.Blur()
		return m, m.search.Focus()
	case "tab":
		m.view.SetDepartment(nextFilter(m.view.Department, departmentFilters))
	case "p":
		m.view.SetPosition(nextFilter(m.view.Position, positionFilters))
	case "left", "h":
		m.view.PrevPage()
	case "right", "l":
		m.view.NextPage(m.result.TotalPages)
	case "+":
		if m.view.PageSize < pipeline.MaxPageSize {
			m.view.SetPageSize(m.view.PageSize + 1)
		}
	case "-":
		if m.view.PageSize > 1 {
			m.view.SetPageSize(m.view.PageSize - 1)
		}
	case "L":
		next := i18n.English
		if m.lang == i18n.English {
			next = i18n.Turkish
		}
		if err := m.languages.SetLang(m.ctx, next); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.lang = next
	case "v":
		m.cardView = !m.cardView
		return m, nil
	case "x", "delete":
		if emp, ok := m.selected(); ok {
			m.pendingDelete = &emp
		}
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8":
		m.view.SortBy(sortColumnForKey(key))
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

var (
	departmentFilters = []string{pipeline.All, string(models.Analytics), string(models.Tech)}
	positionFilters   = []string{pipeline.All, string(models.Junior), string(models.Medior), string(models.Senior)}
)

func nextFilter(current string, options []string) string {
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// sortColumnForKey maps the digit keys to columns in table order.
func sortColumnForKey(key string) pipeline.SortColumn {
	idx := int(key[0] - '1')
	return pipeline.SortColumn(columnKeys[idx])
}

func (m browseModel) selected() (models.Employee, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.result.Employees) {
		return models.Employee{}, false
	}
	return m.result.Employees[idx], true
}

// refresh reruns the pipeline and rebuilds the table.
func (m *browseModel) refresh() {
	m.result = pipeline.Apply(m.lister.List(), m.view.Query(m.lang.Tag()))
	if m.result.Page > 0 {
		m.view.SetPage(m.result.Page)
	}

	t := i18n.For(m.lang)
	m.search.Placeholder = t.Get("search")
	headers := tableHeaders(t)
	columns := make([]table.Column, len(headers))
	for i, title := range headers {
		if i > 0 && pipeline.SortColumn(columnKeys[i-1]) == m.view.SortColumn {
			title += sortArrow(m.view.SortDirection)
		}
		width := lipgloss.Width(title)
		if width < 12 {
			width = 12
		}
		columns[i] = table.Column{Title: title, Width: width}
	}

	rows := make([]table.Row, 0, len(m.result.Employees))
	for _, emp := range m.result.Employees {
		rows = append(rows, table.Row(employeeRow(emp)))
	}

	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	m.table.SetHeight(m.view.PageSize + 1)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func sortArrow(dir pipeline.SortDirection) string {
	if dir == pipeline.Descending {
		return " ↓"
	}
	return " ↑"
}

func (m browseModel) View() string {
	t := i18n.For(m.lang)
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(t.Get("employeeList")))
	sb.WriteString("  ")
	sb.WriteString(mutedStyle.Render(strings.ToUpper(string(m.lang))))
	sb.WriteString("\n\n")

	searchStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if m.searchFocused {
		searchStyle = searchStyle.BorderForeground(accent)
	}
	sb.WriteString(searchStyle.Render(m.search.View()))
	sb.WriteString("  ")
	sb.WriteString(fmt.Sprintf("%s: %s  %s: %s",
		t.Get("department"), m.view.Department, t.Get("position"), m.view.Position))
	sb.WriteString("\n")

	switch {
	case len(m.result.Employees) == 0:
		sb.WriteString(mutedStyle.Render(t.Get("noResults")))
	case m.cardView:
		sb.WriteString(m.cardsView(t))
	default:
		sb.WriteString(m.table.View())
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("← %s  %s %d / %d  %s →   [v] %s",
		t.Get("previous"), t.Get("page"), m.result.Page, pageCount(m.result), t.Get("next"), t.Get(m.nextViewLabel()))))
	sb.WriteString("\n")

	if m.pendingDelete != nil {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("%s (%s) [y/N]", t.Get("confirmDelete"), m.pendingDelete.FullName())))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(errorStyle.Render(m.status))
		sb.WriteString("\n")
	}
	return sb.String()
}

// cardsView stacks one card per employee on the page; the card under the
// table cursor gets the accent border.
func (m browseModel) cardsView(t i18n.Translation) string {
	cards := make([]string, 0, len(m.result.Employees))
	for i, emp := range m.result.Employees {
		style := cardStyle
		if i == m.table.Cursor() {
			style = style.BorderForeground(accent)
		}
		cards = append(cards, style.Render(employeeCard(emp, t)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// nextViewLabel names the layout the v key switches to.
func (m browseModel) nextViewLabel() string {
	if m.cardView {
		return "tableview"
	}
	return "listview"
}

var _ tea.Model = browseModel{}
