package pipeline

import (
	"testing"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var (
	ali = models.Employee{ID: 1, FirstName: "Ali", LastName: "Balta", Email: "alibalta@company.com",
		Department: models.Tech, Position: models.Senior}
	aysun = models.Employee{ID: 2, FirstName: "Aysun", LastName: "Kayalar", Email: "aysunkayalar@company.com",
		Department: models.Analytics, Position: models.Junior}
)

func names(employees []models.Employee) []string {
	out := make([]string, len(employees))
	for i, emp := range employees {
		out[i] = emp.FirstName
	}
	return out
}

func TestApply_SearchMatchesOneRecord(t *testing.T) {
	result := Apply([]models.Employee{ali, aysun}, Query{Search: "Ali", Department: All, Position: All})

	if diff := cmp.Diff([]models.Employee{ali}, result.Employees); diff != "" {
		t.Fatalf("unexpected employees (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.TotalPages)
}

func TestApply_PageSizeOne(t *testing.T) {
	result := Apply([]models.Employee{aysun, ali}, Query{
		SortColumn:    SortFirstName,
		SortDirection: Ascending,
		Page:          1,
		PageSize:      1,
	})

	assert.Equal(t, []string{"Ali"}, names(result.Employees))
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 2, result.Total)
}

func TestFilter(t *testing.T) {
	all := []models.Employee{ali, aysun}

	tests := []struct {
		name       string
		search     string
		department string
		position   string
		want       []string
	}{
		{name: "empty search matches everything", want: []string{"Ali", "Aysun"}},
		{name: "case-insensitive", search: "aLI", want: []string{"Ali"}},
		{name: "matches across first and last name", search: "ali bal", want: []string{"Ali"}},
		{name: "last name substring", search: "kaya", want: []string{"Aysun"}},
		{name: "department filter", department: "Analytics", want: []string{"Aysun"}},
		{name: "position filter", position: "Senior", want: []string{"Ali"}},
		{name: "all keyword", department: All, position: All, want: []string{"Ali", "Aysun"}},
		{name: "filters combine", search: "a", department: "Tech", position: "Junior", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(all, tt.search, tt.department, tt.position)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSort(t *testing.T) {
	zeynep := models.Employee{ID: 3, FirstName: "zeynep", LastName: "Acar"}
	blank := models.Employee{ID: 4, FirstName: "", LastName: "Empty"}
	input := []models.Employee{zeynep, aysun, blank, ali}

	asc := Sort(input, SortFirstName, Ascending, language.Und)
	assert.Equal(t, []string{"", "Ali", "Aysun", "zeynep"}, names(asc))

	desc := Sort(input, SortFirstName, Descending, language.Und)
	assert.Equal(t, []string{"zeynep", "Aysun", "Ali", ""}, names(desc))

	byLast := Sort(input, SortLastName, Ascending, language.Und)
	assert.Equal(t, []string{"zeynep", "Ali", "", "Aysun"}, names(byLast))

	unsorted := Sort(input, SortNone, Ascending, language.Und)
	assert.Equal(t, names(input), names(unsorted))

	assert.Equal(t, []string{"zeynep", "Aysun", "", "Ali"}, names(input), "input must not be reordered")
}

func TestSort_IsStable(t *testing.T) {
	first := models.Employee{ID: 10, FirstName: "One", Department: models.Tech}
	second := models.Employee{ID: 11, FirstName: "Two", Department: models.Tech}
	third := models.Employee{ID: 12, FirstName: "Three", Department: models.Analytics}

	sorted := Sort([]models.Employee{first, second, third}, SortDepartment, Ascending, language.Und)
	assert.Equal(t, []string{"Three", "One", "Two"}, names(sorted))
}

func TestSort_LocaleAware(t *testing.T) {
	input := []models.Employee{
		{ID: 1, FirstName: "Zafer"},
		{ID: 2, FirstName: "Çağla"},
		{ID: 3, FirstName: "Can"},
	}

	sorted := Sort(input, SortFirstName, Ascending, language.Turkish)
	assert.Equal(t, []string{"Can", "Çağla", "Zafer"}, names(sorted))
}

func TestPaginate(t *testing.T) {
	seven := make([]models.Employee, 7)
	for i := range seven {
		seven[i] = models.Employee{ID: int64(i + 1)}
	}

	tests := []struct {
		name      string
		page      int
		size      int
		wantIDs   []int64
		wantPage  int
		wantPages int
	}{
		{name: "first page", page: 1, size: 3, wantIDs: []int64{1, 2, 3}, wantPage: 1, wantPages: 3},
		{name: "last partial page", page: 3, size: 3, wantIDs: []int64{7}, wantPage: 3, wantPages: 3},
		{name: "beyond last page is clamped", page: 9, size: 3, wantIDs: []int64{7}, wantPage: 3, wantPages: 3},
		{name: "below first page is clamped", page: 0, size: 3, wantIDs: []int64{1, 2, 3}, wantPage: 1, wantPages: 3},
		{name: "default size", page: 1, size: 0, wantIDs: []int64{1, 2, 3, 4, 5}, wantPage: 1, wantPages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Paginate(seven, tt.page, tt.size)
			ids := make([]int64, len(result.Employees))
			for i, emp := range result.Employees {
				ids[i] = emp.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantPage, result.Page)
			assert.Equal(t, tt.wantPages, result.TotalPages)
			assert.Equal(t, 7, result.Total)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	result := Paginate(nil, 3, 5)
	assert.Empty(t, result.Employees)
	assert.Equal(t, 0, result.TotalPages)
	assert.Equal(t, 1, result.Page)
}

func TestParsers(t *testing.T) {
	col, err := ParseSortColumn("lastName")
	require.NoError(t, err)
	assert.Equal(t, SortLastName, col)

	col, err = ParseSortColumn("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, col)

	_, err = ParseSortColumn("salary")
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	dir, err := ParseSortDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, dir)

	_, err = ParseSortDirection("sideways")
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	assert.NoError(t, ValidatePageSize(0))
	assert.NoError(t, ValidatePageSize(10))
	assert.ErrorIs(t, ValidatePageSize(-1), e.ErrInvalidInput)
	assert.ErrorIs(t, ValidatePageSize(MaxPageSize+1), e.ErrInvalidInput)
}
