package screens

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/view"
)

func TestCategoriesLoadsAccountTree(t *testing.T) {
	r := newRig(t)
	r.start(ScreenCategories, view.ModeDefault, nil)
	c := r.screen(ScreenCategories).(*Categories)

	require.Equal(t, "Personal", c.Account().Name)
	require.Equal(t, TitleCategories+" · Personal", r.header.Spec().Title)
	require.Len(t, c.Buttons(), 6)
	require.Equal(t, "Food", c.Buttons()[0].Category().Name)
	require.Len(t, c.Buttons()[0].Rows(), 3)
	require.Equal(t, "3", c.Buttons()[0].count.Text)
	require.Equal(t, 16, c.Rows().Stats().Allocated)
}

func TestCategoriesOneButtonOpenAtATime(t *testing.T) {
	r := newRig(t)
	r.start(ScreenCategories, view.ModeDefault, nil)
	c := r.screen(ScreenCategories).(*Categories)
	food := buttonNamed(t, c, "Food")
	transport := buttonNamed(t, c, "Transport")

	r.tap(food.header)
	r.settle()
	require.Equal(t, view.Open, food.State())
	require.Equal(t, float64(80), food.Height())
	require.Equal(t, float64(80), transport.Node().Y)

	r.tap(transport.header)
	r.settle()
	require.Equal(t, view.Closed, food.State())
	require.Equal(t, view.Open, transport.State())
	require.Equal(t, float64(20), transport.Node().Y)

	r.tap(transport.header)
	r.settle()
	require.Equal(t, view.Closed, transport.State())
}

func TestCategoriesDefaultModeOpensTransactions(t *testing.T) {
	r := newRig(t)
	taxi := r.subCategory("Transport", "Taxi")
	r.insert("cab", 1500, repository.KindExpense, taxi.ID, time.Hour)
	r.insert("bread", 300, repository.KindExpense, r.subCategory("Food", "Groceries").ID, 2*time.Hour)
	r.start(ScreenCategories, view.ModeDefault, nil)
	c := r.screen(ScreenCategories).(*Categories)

	transport := buttonNamed(t, c, "Transport")
	r.tap(transport.header)
	r.settle()
	r.tap(rowNamed(t, transport, "Taxi").Node())
	r.settle()

	require.Equal(t, []ScreenName{ScreenCategories, ScreenTransactions}, r.router.Stack())
	list := r.screen(ScreenTransactions).(*Transactions)
	require.Equal(t, taxi.ID, list.Filter().CategoryID)
	require.Len(t, list.Rows(), 1)
	require.Equal(t, "cab", list.Rows()[0].Transaction().ID)
	r.requireRecordsReleased()
}

func TestCategoriesEditSwipeAndRename(t *testing.T) {
	r := newRig(t)
	r.start(ScreenCategories, view.ModeEdit, nil)
	c := r.screen(ScreenCategories).(*Categories)
	require.Equal(t, TitleEditCategories+" · Personal", r.header.Spec().Title)

	food := buttonNamed(t, c, "Food")
	row := rowNamed(t, food, "Groceries")
	r.swipeLeft(row.Node(), 100)
	require.False(t, row.IsOpen(), "closed buttons do not swipe")

	r.tap(food.header)
	r.settle()
	r.swipeLeft(row.Node(), 100)
	require.True(t, row.IsOpen())
	require.Equal(t, -row.OpenOffset(), row.Position())

	r.tap(row.action)
	require.Same(t, row, c.Renaming())
	r.settle()
	require.False(t, row.IsOpen())
	require.Equal(t, "Groceries▏", row.name.Text)

	r.typeText(c, " & Co")
	require.Equal(t, "Groceries & Co▏", row.name.Text)
	require.True(t, r.key(c, tea.KeyEnter))
	require.Nil(t, c.Renaming())

	renamed, err := r.categories.Get(r.ctx, row.Category().ID)
	require.NoError(t, err)
	require.Equal(t, "Groceries & Co", renamed.Name)
	require.Equal(t, "Groceries & Co", rowNamed(t, buttonNamed(t, c, "Food"), "Groceries & Co").Category().Name)
}

func TestCategoriesRenameCancel(t *testing.T) {
	r := newRig(t)
	r.start(ScreenCategories, view.ModeEdit, nil)
	c := r.screen(ScreenCategories).(*Categories)
	food := buttonNamed(t, c, "Food")
	r.tap(food.header)
	r.settle()
	row := rowNamed(t, food, "Coffee")
	r.swipeLeft(row.Node(), 100)
	r.tap(row.action)
	r.typeText(c, "!")

	require.True(t, r.key(c, tea.KeyEsc))
	require.Nil(t, c.Renaming())
	require.Equal(t, "Coffee", row.name.Text)
	got, err := r.categories.Get(r.ctx, row.Category().ID)
	require.NoError(t, err)
	require.Equal(t, "Coffee", got.Name)
}

func TestCategoriesSwipeOnlyInEditMode(t *testing.T) {
	r := newRig(t)
	r.start(ScreenCategories, view.ModeSelect, nil)
	c := r.screen(ScreenCategories).(*Categories)
	food := buttonNamed(t, c, "Food")
	r.tap(food.header)
	r.settle()

	row := rowNamed(t, food, "Groceries")
	r.swipeLeft(row.Node(), 100)
	require.False(t, row.IsOpen())
}

func TestCategoriesFuzzyFilter(t *testing.T) {
	r := newRig(t)
	r.start(ScreenCategories, view.ModeDefault, nil)
	c := r.screen(ScreenCategories).(*Categories)

	require.False(t, r.key(c, tea.KeyEnter))
	r.typeText(c, "/")
	require.True(t, c.Filtering())
	r.typeText(c, "grocer")
	require.Equal(t, "grocer", c.Filter())
	require.Len(t, c.Buttons(), 1)
	food := c.Buttons()[0]
	require.Equal(t, "Food", food.Category().Name)
	require.Len(t, food.Rows(), 1)
	require.Equal(t, "Groceries", food.Rows()[0].Category().Name)
	require.True(t, food.IsOpen())
	require.Equal(t, 1, c.Rows().Stats().Allocated)

	require.True(t, r.key(c, tea.KeyEnter))
	require.False(t, c.Filtering())
	require.Equal(t, "grocer", c.Filter())

	r.typeText(c, "/")
	require.True(t, r.key(c, tea.KeyEsc))
	require.False(t, c.Filtering())
	require.Empty(t, c.Filter())
	require.Len(t, c.Buttons(), 6)
	require.Equal(t, 16, c.Rows().Stats().Allocated)

	require.NoError(t, c.SetFilter("transport"))
	require.Len(t, c.Buttons(), 1)
	require.Len(t, c.Buttons()[0].Rows(), 3)
	require.NoError(t, c.SetFilter("zzz"))
	require.Empty(t, c.Buttons())
	require.Zero(t, c.Rows().Stats().Allocated)
}
