package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categoryColumns = `id, account_id, parent_id, name, color, sort_order`

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, account_id, parent_id, name, color, sort_order)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 account_id=excluded.account_id,
	 parent_id=excluded.parent_id,
	 name=excluded.name,
	 color=excluded.color,
	 sort_order=excluded.sort_order;
	`, c.ID, c.AccountID, c.ParentID, c.Name, c.Color, c.SortOrder)
	return err
}

// List returns every category, parents and children alike.
func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
}

// ListByAccount returns the top-level categories of an account.
func (r *CategoryRepo) ListByAccount(ctx context.Context, accountID string) ([]Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE account_id = ? AND parent_id IS NULL ORDER BY sort_order, name`, accountID)
}

// Children returns the sub-categories of parentID.
func (r *CategoryRepo) Children(ctx context.Context, parentID string) ([]Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE parent_id = ? ORDER BY sort_order, name`, parentID)
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (Category, error) {
	out, err := r.query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	if err != nil {
		return Category{}, err
	}
	if len(out) == 0 {
		return Category{}, ErrNotFound
	}
	return out[0], nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

func (r *CategoryRepo) query(ctx context.Context, q string, args ...any) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		var account, parent sql.NullString
		if err := rows.Scan(&c.ID, &account, &parent, &c.Name, &c.Color, &c.SortOrder); err != nil {
			return nil, err
		}
		if account.Valid {
			c.AccountID = &account.String
		}
		if parent.Valid {
			c.ParentID = &parent.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
