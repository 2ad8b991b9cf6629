package pipeline

import "golang.org/x/text/language"

// View is the transient state of a list screen. Changing what is shown
// (search, filters, page size) sends the user back to page 1.
type View struct {
	Search        string
	Department    string
	Position      string
	SortColumn    SortColumn
	SortDirection SortDirection
	Page          int
	PageSize      int
}

func NewView() View {
	return View{
		Department:    All,
		Position:      All,
		SortDirection: Ascending,
		Page:          1,
		PageSize:      DefaultPageSize,
	}
}

func (v *View) SetSearch(term string) {
	v.Search = term
	v.Page = 1
}

func (v *View) SetDepartment(department string) {
	v.Department = department
	v.Page = 1
}

func (v *View) SetPosition(position string) {
	v.Position = position
	v.Page = 1
}

func (v *View) SetPageSize(size int) {
	v.PageSize = size
	v.Page = 1
}

// SortBy selects column ascending, or flips the direction if column is
// already selected.
func (v *View) SortBy(column SortColumn) {
	if v.SortColumn == column {
		if v.SortDirection == Ascending {
			v.SortDirection = Descending
		} else {
			v.SortDirection = Ascending
		}
		return
	}
	v.SortColumn = column
	v.SortDirection = Ascending
}

func (v *View) SetPage(page int) {
	v.Page = page
}

// NextPage advances unless already on the last page.
func (v *View) NextPage(totalPages int) {
	if v.Page < totalPages {
		v.Page++
	}
}

// PrevPage goes back unless already on the first page.
func (v *View) PrevPage() {
	if v.Page > 1 {
		v.Page--
	}
}

// Query turns the view into pipeline input.
func (v View) Query(lang language.Tag) Query {
	return Query{
		Search:        v.Search,
		Department:    v.Department,
		Position:      v.Position,
		SortColumn:    v.SortColumn,
		SortDirection: v.SortDirection,
		Page:          v.Page,
		PageSize:      v.PageSize,
		Lang:          lang,
	}
}
