package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/logging"
)

// ErrNoDraft is returned when a change needs a transaction being edited and
// there is none.
var ErrNoDraft = errors.New("no transaction being edited")

// ChangeType selects what a ChangeRequest does to the draft.
type ChangeType int

const (
	ChangeCreate ChangeType = iota
	ChangeCopy
	ChangeEdit
	ChangeUpdate
	ChangeConfirm
	ChangeCancel
	ChangeDelete
)

func (c ChangeType) String() string {
	switch c {
	case ChangeCreate:
		return "create"
	case ChangeCopy:
		return "copy"
	case ChangeEdit:
		return "edit"
	case ChangeUpdate:
		return "change"
	case ChangeConfirm:
		return "confirm"
	case ChangeCancel:
		return "cancel"
	case ChangeDelete:
		return "delete"
	}
	return "unknown"
}

// ChangeRequest carries the editor form state. Empty fields leave the draft
// unchanged.
type ChangeRequest struct {
	Type   ChangeType
	Source *repository.Transaction

	Amount     string
	Note       string
	Kind       string
	Pending    *bool
	Repeat     *bool
	AccountID  string
	CategoryID string
	Date       *time.Time
	Method     string
	Currency   string
}

// Defaults seed new drafts and remember the last choices made in the
// editor.
type Defaults struct {
	AccountID  string
	CategoryID string
	Method     string
	Currency   string
}

// Draft is the transaction currently open in the editor.
type Draft struct {
	Transaction repository.Transaction
	Saved       bool
	original    repository.Transaction
}

// Editor applies CREATE/COPY/CHANGE/CONFIRM/CANCEL/DELETE to the single
// transaction being edited and persists the result.
type Editor struct {
	Transactions *repository.TransactionRepo
	Suggest      *Suggester
	Defaults     Defaults
	Now          func() time.Time

	current *Draft
}

// Current returns the open draft, or nil.
func (e *Editor) Current() *Draft { return e.current }

// Apply executes req and returns the draft afterwards (nil once it is
// confirmed, cancelled or deleted).
func (e *Editor) Apply(ctx context.Context, req ChangeRequest) (*Draft, error) {
	logging.Trace("editor.change", map[string]any{"type": req.Type.String()})
	switch req.Type {
	case ChangeCreate:
		e.current = &Draft{Transaction: e.blank()}
	case ChangeCopy:
		if req.Source == nil {
			return nil, fmt.Errorf("copy: %w", ErrNoDraft)
		}
		tx := *req.Source
		tx.ID = uuid.NewString()
		e.current = &Draft{Transaction: tx}
	case ChangeEdit:
		if req.Source == nil {
			return nil, fmt.Errorf("edit: %w", ErrNoDraft)
		}
		e.current = &Draft{Transaction: *req.Source, Saved: true, original: *req.Source}
	case ChangeUpdate:
		if e.current == nil {
			return nil, fmt.Errorf("change: %w", ErrNoDraft)
		}
		tx := &e.current.Transaction
		setInputs(tx, req)
		setToggles(tx, req)
		e.setCategories(tx, req)
		setTime(tx, req)
		e.setMethod(tx, req)
		e.setCurrency(tx, req)
	case ChangeConfirm:
		if e.current == nil {
			return nil, fmt.Errorf("confirm: %w", ErrNoDraft)
		}
		tx := &e.current.Transaction
		setInputs(tx, req)
		setToggles(tx, req)
		e.setMethod(tx, req)
		e.setCurrency(tx, req)
		if tx.CategoryID == nil && e.Suggest != nil && tx.Note != "" {
			if id, ok := e.Suggest.SuggestCategory(ctx, tx.Note); ok {
				tx.CategoryID = &id
			}
		}
		if err := e.save(ctx); err != nil {
			return e.current, err
		}
		e.current = nil
	case ChangeCancel:
		if e.current != nil && e.current.Saved {
			e.current.Transaction = e.current.original
		}
		e.current = nil
	case ChangeDelete:
		if e.current == nil {
			return nil, fmt.Errorf("delete: %w", ErrNoDraft)
		}
		if e.current.Saved {
			if err := e.Transactions.Delete(ctx, e.current.Transaction.ID); err != nil {
				return e.current, fmt.Errorf("delete transaction: %w", err)
			}
		}
		e.current = nil
	}
	return e.current, nil
}

func (e *Editor) save(ctx context.Context) error {
	tx := e.current.Transaction
	if tx.AccountID == "" {
		return fmt.Errorf("save transaction: account required")
	}
	if e.current.Saved {
		if err := e.Transactions.Update(ctx, tx); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return nil
	}
	if err := e.Transactions.Insert(ctx, tx); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	e.current.Saved = true
	return nil
}

func (e *Editor) blank() repository.Transaction {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	tx := repository.Transaction{
		ID:        uuid.NewString(),
		AccountID: e.Defaults.AccountID,
		Date:      now().Truncate(time.Minute),
		Kind:      repository.KindExpense,
		Method:    e.Defaults.Method,
		Currency:  e.Defaults.Currency,
	}
	if tx.Method == "" {
		tx.Method = repository.MethodCash
	}
	if tx.Currency == "" {
		tx.Currency = "USD"
	}
	if e.Defaults.CategoryID != "" {
		id := e.Defaults.CategoryID
		tx.CategoryID = &id
	}
	return tx
}

// setInputs stores the amount as a magnitude; Kind carries the sign.
func setInputs(tx *repository.Transaction, req ChangeRequest) {
	if cents, err := ParseAmount(req.Amount); err == nil {
		if cents < 0 {
			cents = -cents
		}
		tx.AmountCents = cents
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		tx.Note = note
	}
}

func setToggles(tx *repository.Transaction, req ChangeRequest) {
	if req.Kind != "" {
		tx.Kind = req.Kind
	}
	if req.Pending != nil {
		tx.Pending = *req.Pending
	}
	if req.Repeat != nil {
		tx.Repeat = *req.Repeat
	}
}

func (e *Editor) setCategories(tx *repository.Transaction, req ChangeRequest) {
	if req.AccountID == "" || req.CategoryID == "" {
		return
	}
	id := req.CategoryID
	tx.AccountID = req.AccountID
	tx.CategoryID = &id
	e.Defaults.AccountID = req.AccountID
	e.Defaults.CategoryID = req.CategoryID
}

func setTime(tx *repository.Transaction, req ChangeRequest) {
	if req.Date != nil {
		tx.Date = *req.Date
	}
}

func (e *Editor) setMethod(tx *repository.Transaction, req ChangeRequest) {
	if req.Method != "" {
		tx.Method = req.Method
		e.Defaults.Method = req.Method
	}
}

func (e *Editor) setCurrency(tx *repository.Transaction, req ChangeRequest) {
	if req.Currency != "" {
		tx.Currency = req.Currency
		e.Defaults.Currency = req.Currency
	}
}
