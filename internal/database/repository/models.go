package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Get lookups that match no row.
var ErrNotFound = errors.New("not found")

// Transaction kinds.
const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// Payment methods.
const (
	MethodCash   = "cash"
	MethodCredit = "credit"
)

// Account represents an account row.
type Account struct {
	ID        string
	Name      string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category represents a category row. Top-level categories belong to an
// account; sub-categories have a ParentID and inherit the account.
type Category struct {
	ID        string
	AccountID *string
	ParentID  *string
	Name      string
	Color     string
	SortOrder int
}

// Transaction represents a transaction row. CategoryID points at a
// sub-category.
type Transaction struct {
	ID          string
	AccountID   string
	CategoryID  *string
	Date        time.Time
	AmountCents int64
	Kind        string
	Pending     bool
	Repeat      bool
	Method      string
	Currency    string
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryTotal is the summed amount of one sub-category.
type CategoryTotal struct {
	CategoryID string
	TotalCents int64
	Count      int
}
