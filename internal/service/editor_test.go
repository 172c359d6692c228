package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
)

func newEditor(f fixture) *Editor {
	now := time.Date(2025, 5, 2, 9, 41, 13, 0, time.UTC)
	return &Editor{
		Transactions: f.transactions,
		Defaults:     Defaults{AccountID: database.DefaultAccountID},
		Now:          func() time.Time { return now },
	}
}

func TestEditorCreateChangeConfirm(t *testing.T) {
	f := setupFixture(t)
	ed := newEditor(f)
	groceries := f.subCategory(t, "Food", "Groceries")

	draft, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCreate})
	require.NoError(t, err)
	require.False(t, draft.Saved)
	require.Equal(t, repository.KindExpense, draft.Transaction.Kind)
	require.Equal(t, time.Date(2025, 5, 2, 9, 41, 0, 0, time.UTC), draft.Transaction.Date)

	day := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	_, err = ed.Apply(f.ctx, ChangeRequest{
		Type: ChangeUpdate, Amount: "12.40", AccountID: database.DefaultAccountID,
		CategoryID: groceries.ID, Date: &day, Method: repository.MethodCredit,
	})
	require.NoError(t, err)
	require.Equal(t, groceries.ID, ed.Defaults.CategoryID)
	require.Equal(t, repository.MethodCredit, ed.Defaults.Method)

	id := ed.Current().Transaction.ID
	draft, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeConfirm, Note: "market", Pending: boolPtr(true)})
	require.NoError(t, err)
	require.Nil(t, draft)

	got, err := f.transactions.Get(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(1240), got.AmountCents)
	require.Equal(t, "market", got.Note)
	require.True(t, got.Pending)
	require.True(t, got.Date.Equal(day))
	require.Equal(t, groceries.ID, *got.CategoryID)
}

func TestEditorCancelRevertsSavedTransaction(t *testing.T) {
	f := setupFixture(t)
	ed := newEditor(f)
	_, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCreate})
	require.NoError(t, err)
	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeConfirm, Amount: "5"})
	require.NoError(t, err)

	list, err := f.transactions.List(f.ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeEdit, Source: &list[0]})
	require.NoError(t, err)
	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeUpdate, Amount: "99"})
	require.NoError(t, err)
	require.Equal(t, int64(9900), ed.Current().Transaction.AmountCents)

	draft, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCancel})
	require.NoError(t, err)
	require.Nil(t, draft)
	got, err := f.transactions.Get(f.ctx, list[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), got.AmountCents)
}

func TestEditorCopyAndDelete(t *testing.T) {
	f := setupFixture(t)
	ed := newEditor(f)
	_, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCreate})
	require.NoError(t, err)
	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeConfirm, Amount: "7.25", Note: "bus"})
	require.NoError(t, err)
	list, err := f.transactions.List(f.ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	draft, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCopy, Source: &list[0]})
	require.NoError(t, err)
	require.NotEqual(t, list[0].ID, draft.Transaction.ID)
	require.Equal(t, "bus", draft.Transaction.Note)
	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeConfirm})
	require.NoError(t, err)

	list, err = f.transactions.List(f.ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeEdit, Source: &list[0]})
	require.NoError(t, err)
	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeDelete})
	require.NoError(t, err)
	list, err = f.transactions.List(f.ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestEditorRequiresDraft(t *testing.T) {
	f := setupFixture(t)
	ed := newEditor(f)
	for _, typ := range []ChangeType{ChangeUpdate, ChangeConfirm, ChangeDelete, ChangeCopy, ChangeEdit} {
		_, err := ed.Apply(f.ctx, ChangeRequest{Type: typ})
		require.ErrorIs(t, err, ErrNoDraft, typ.String())
	}
	_, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCancel})
	require.NoError(t, err)
}

func TestEditorSuggestsCategoryOnConfirm(t *testing.T) {
	f := setupFixture(t)
	coffee := f.subCategory(t, "Food", "Coffee")
	require.NoError(t, f.transactions.Insert(f.ctx, repository.Transaction{
		ID: "past", AccountID: database.DefaultAccountID, CategoryID: &coffee.ID,
		Date: time.Now().UTC(), AmountCents: 450, Kind: repository.KindExpense,
		Method: repository.MethodCash, Currency: "USD", Note: "Blue Bottle Coffee",
	}))

	ed := newEditor(f)
	ed.Suggest = &Suggester{Transactions: f.transactions}
	_, err := ed.Apply(f.ctx, ChangeRequest{Type: ChangeCreate})
	require.NoError(t, err)
	id := ed.Current().Transaction.ID
	_, err = ed.Apply(f.ctx, ChangeRequest{Type: ChangeConfirm, Amount: "4.80", Note: "blue bottle  coffee"})
	require.NoError(t, err)

	got, err := f.transactions.Get(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	require.Equal(t, coffee.ID, *got.CategoryID)
}
