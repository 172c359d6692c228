package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// TransactionFilters defines list filters. Zero values mean no filter.
type TransactionFilters struct {
	AccountID  string
	CategoryID string
	From       time.Time
	To         time.Time // exclusive
	Search     string
	Limit      int
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, account_id, category_id, date, amount, kind, pending, repeat, method, currency, note, created_at, updated_at`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, category_id, date, amount, kind, pending, repeat, method, currency, note, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.AccountID, t.CategoryID, t.Date.UTC(), t.AmountCents, t.Kind, t.Pending, t.Repeat,
		t.Method, t.Currency, t.Note)
	return err
}

func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET
	 account_id=?, category_id=?, date=?, amount=?, kind=?, pending=?, repeat=?, method=?, currency=?, note=?,
	 updated_at=CURRENT_TIMESTAMP
	WHERE id = ?`,
		t.AccountID, t.CategoryID, t.Date.UTC(), t.AmountCents, t.Kind, t.Pending, t.Repeat,
		t.Method, t.Currency, t.Note, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []interface{}

	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, f.To.UTC())
	}
	if f.Search != "" {
		where = append(where, "note LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return t, err
}

// SumByCategory returns signed totals per sub-category in [from, to).
// Expenses count negative and income positive.
func (r *TransactionRepo) SumByCategory(ctx context.Context, from, to time.Time) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT COALESCE(category_id, ''),
	 SUM(CASE WHEN kind = 'income' THEN amount ELSE -amount END) AS total,
	 COUNT(*)
	FROM transactions
	WHERE date >= ? AND date < ?
	GROUP BY category_id
	ORDER BY total ASC;
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.TotalCents, &ct.Count); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// scanTransaction handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var category sql.NullString
	if err := row.Scan(&t.ID, &t.AccountID, &category, &t.Date, &t.AmountCents, &t.Kind,
		&t.Pending, &t.Repeat, &t.Method, &t.Currency, &t.Note, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	if category.Valid {
		t.CategoryID = &category.String
	}
	return t, nil
}
