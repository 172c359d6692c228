package screens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/view"
)

func TestTransactionsLabelsAndColors(t *testing.T) {
	r := newRig(t)
	coffee := r.subCategory("Food", "Coffee")
	r.insert("", 420, repository.KindExpense, coffee.ID, time.Hour)
	r.start(ScreenTransactions, view.ModeDefault, nil)
	list := r.screen(ScreenTransactions).(*Transactions)

	require.Len(t, list.Rows(), 1)
	row := list.Rows()[0]
	require.Equal(t, "19/10/2026  Coffee", row.Label())
	require.Equal(t, "-$4.20", row.Amount())
	require.Equal(t, ColorRed, row.amount.Ink)
}

func TestTransactionsSwipeDelete(t *testing.T) {
	r := newRig(t)
	r.insert("old", 100, repository.KindExpense, "", 2*time.Hour)
	r.insert("new", 200, repository.KindIncome, "", time.Hour)
	r.start(ScreenTransactions, view.ModeDefault, nil)
	list := r.screen(ScreenTransactions).(*Transactions)
	require.Equal(t, ColorGreen, list.Rows()[0].amount.Ink)

	first := list.Rows()[0]
	r.swipeLeft(first.Node(), 150)
	require.True(t, first.IsOpen())
	require.Equal(t, float64(-160), first.Position())

	r.tap(first.remove)
	require.Len(t, list.Rows(), 1)
	require.Equal(t, "old", list.Rows()[0].Transaction().ID)
	require.False(t, list.Rows()[0].IsOpen())
	require.Equal(t, 1, list.Pool().Stats().Allocated)

	_, err := r.txs.Get(r.ctx, "new")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Equal(t, ScreenTransactions, r.router.Current().Name())
}

func TestTransactionsSwipeCopy(t *testing.T) {
	r := newRig(t)
	r.insert("lunch", 1250, repository.KindExpense, "", time.Hour)
	r.start(ScreenTransactions, view.ModeDefault, nil)
	list := r.screen(ScreenTransactions).(*Transactions)

	row := list.Rows()[0]
	r.swipeLeft(row.Node(), 150)
	r.tap(row.copy)
	r.settle()

	require.Equal(t, ScreenAddTransaction, r.router.Current().Name())
	draft := r.editor.Current()
	require.NotNil(t, draft)
	require.False(t, draft.Saved)
	require.NotEqual(t, "lunch", draft.Transaction.ID)
	require.Equal(t, int64(1250), draft.Transaction.AmountCents)

	add := r.screen(ScreenAddTransaction).(*AddTransaction)
	require.Equal(t, view.ModeDefault, add.Mode())
	require.Equal(t, "12.50", add.Form().Amount)
	require.Equal(t, "lunch", add.Form().Note)
	r.requireRecordsReleased()
}

func TestTransactionsSwipeClosesOtherRows(t *testing.T) {
	r := newRig(t)
	r.insert("a", 100, repository.KindExpense, "", time.Hour)
	r.insert("b", 100, repository.KindExpense, "", 2*time.Hour)
	r.start(ScreenTransactions, view.ModeDefault, nil)
	list := r.screen(ScreenTransactions).(*Transactions)
	a, b := list.Rows()[0], list.Rows()[1]

	r.swipeLeft(a.Node(), 150)
	require.True(t, a.IsOpen())
	r.swipeLeft(b.Node(), 150)
	require.True(t, b.IsOpen())
	require.False(t, a.IsOpen())

	r.tap(b.surface)
	r.settle()
	require.False(t, b.IsOpen())
	require.Equal(t, ScreenTransactions, r.router.Current().Name())
}

func TestTransactionsShortSwipeSnapsBack(t *testing.T) {
	r := newRig(t)
	r.insert("a", 100, repository.KindExpense, "", time.Hour)
	r.start(ScreenTransactions, view.ModeDefault, nil)
	row := r.screen(ScreenTransactions).(*Transactions).Rows()[0]

	r.swipeLeft(row.Node(), 40)
	require.False(t, row.IsOpen())
	require.Zero(t, row.Position())
}

func TestTransactionsPoolBoundsRows(t *testing.T) {
	r := newRig(t)
	for i := range 40 {
		r.insert("tx"+string(rune('A'+i)), 100, repository.KindExpense, "", time.Duration(i+1)*time.Minute)
	}
	r.start(ScreenTransactions, view.ModeDefault, nil)
	list := r.screen(ScreenTransactions).(*Transactions)

	require.Len(t, list.Rows(), r.deps.RowCapacity)
	require.Zero(t, list.Pool().Available())
	require.Equal(t, "txA", list.Rows()[0].Transaction().ID)

	require.NoError(t, list.OnUpdate(repository.TransactionFilters{Limit: 5}, view.ModeDefault))
	require.Len(t, list.Rows(), 5)
	require.Equal(t, r.deps.RowCapacity-5, list.Pool().Available())
}

func TestPaneScrolling(t *testing.T) {
	r := newRig(t)
	p := NewPane(r.deps.Env, "pane", 100, 50)
	t.Cleanup(p.Release)
	p.Content().Height = 200
	child := p.Content().AddChild(scene.NewNode("child", 100, 20))
	child.Y = 120

	p.ScrollBy(-10)
	require.Zero(t, p.Offset())
	require.NoError(t, p.ScrollTo(500, false))
	require.Equal(t, float64(150), p.Offset())
	require.Equal(t, float64(-150), p.Content().Y)

	require.NoError(t, p.ScrollTo(0, true))
	require.True(t, p.Scrolling())
	r.frames(6)
	require.Greater(t, p.Offset(), 0.0)
	require.Less(t, p.Offset(), 150.0)
	r.settle()
	require.False(t, p.Scrolling())
	require.Zero(t, p.Offset())

	require.NoError(t, p.Reveal(child, false))
	require.Equal(t, float64(90), p.Offset())
	require.NoError(t, p.Reveal(child, false))
	require.Equal(t, float64(90), p.Offset())

	p.Content().Height = 60
	p.Clamp()
	require.Equal(t, float64(10), p.Offset())
}
