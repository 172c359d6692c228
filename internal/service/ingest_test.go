package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database/repository"
)

func newIngest(f fixture) *IngestService {
	return &IngestService{
		Transactions: f.transactions,
		Accounts:     f.accounts,
		Categories:   f.categories,
	}
}

func TestImportCSV_HappyPath(t *testing.T) {
	f := setupFixture(t)
	svc := newIngest(f)

	data := "2026-02-01,-45.67,WOOLWORTHS 123,Everyday,Groceries,credit\n" +
		"3/02/2026,+2500.00,SALARY,Salary"

	res, err := svc.ImportCSV(f.ctx, strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 0, res.Skipped)

	txs, err := f.transactions.List(f.ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	byNote := map[string]repository.Transaction{}
	for _, tx := range txs {
		byNote[tx.Note] = tx
	}
	shop := byNote["WOOLWORTHS 123"]
	require.Equal(t, repository.KindExpense, shop.Kind)
	require.Equal(t, int64(4567), shop.AmountCents)
	require.Equal(t, repository.MethodCredit, shop.Method)
	require.NotNil(t, shop.CategoryID)
	require.Equal(t, repository.KindIncome, byNote["SALARY"].Kind)

	accts, err := f.accounts.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, accts, 3, "seeded Personal plus two imported accounts")
}

func TestImportCSV_ErrorsAndSkips(t *testing.T) {
	f := setupFixture(t)
	svc := newIngest(f)

	bad := "2026-02-01,-45.67,WOOLWORTHS 123,Everyday\n" + // ok
		"not-a-date,10.00,BAD,Everyday\n" + // bad date
		"2026-02-01,-45.67,WOOLWORTHS 123,Everyday" // duplicate row

	res, err := svc.ImportCSV(f.ctx, strings.NewReader(bad), time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)

	txs, err := f.transactions.List(f.ctx, repository.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
}
