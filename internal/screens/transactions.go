package screens

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/pool"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/view"
)

// transactionActionCells is the width of each action behind a row.
const transactionActionCells = 8

// TransactionRow is a pooled swipe row. Swiping left reveals Copy and
// Delete.
type TransactionRow struct {
	*view.SwipeRow

	copy    *scene.Node
	remove  *scene.Node
	surface *scene.Node
	label   *scene.Node
	amount  *scene.Node
	tx      repository.Transaction
}

// TransactionRowPool holds TransactionRows.
type TransactionRowPool = pool.Pool[*TransactionRow]

// NewTransactionRowPool allocates capacity rows up front.
func NewTransactionRowPool(deps Deps, capacity int) *TransactionRowPool {
	return pool.New("transaction rows", capacity, func(i int) *TransactionRow {
		return newTransactionRow(deps, i)
	})
}

func newTransactionRow(deps Deps, i int) *TransactionRow {
	w, h := deps.Width, deps.rowHeight()
	actionW := transactionActionCells * deps.cellWidth()
	node := scene.NewNode("transaction."+strconv.Itoa(i), w, h)
	copyNode := node.AddChild(scene.NewNode("copy", actionW, h))
	copyNode.X = w - 2*actionW
	copyNode.Fill = ColorBlue
	copyNode.Ink = ColorGreyLight
	copyNode.Text = "Copy"
	copyNode.Align = scene.AlignCenter
	remove := node.AddChild(scene.NewNode("delete", actionW, h))
	remove.X = w - actionW
	remove.Fill = ColorRed
	remove.Ink = ColorGreyLight
	remove.Text = "Delete"
	remove.Align = scene.AlignCenter
	surface := node.AddChild(scene.NewNode("surface", w, h))
	surface.Fill = ColorGreyLight
	label := surface.AddChild(deps.label("label", "", 0, w-14*deps.cellWidth()))
	amount := surface.AddChild(deps.label("amount", "", w-14*deps.cellWidth(), 14*deps.cellWidth()))
	amount.Align = scene.AlignRight
	return &TransactionRow{
		SwipeRow: view.NewSwipeRow(deps.Env, node, surface, 2*actionW, deps.SwipeTween),
		copy:     copyNode,
		remove:   remove,
		surface:  surface,
		label:    label,
		amount:   amount,
	}
}

// Update shows tx. label is the text left of the amount.
func (r *TransactionRow) Update(tx repository.Transaction, label, amount string) {
	r.tx = tx
	r.label.Text = label
	r.amount.Text = amount
	r.amount.Ink = ColorRed
	if tx.Kind == repository.KindIncome {
		r.amount.Ink = ColorGreen
	}
	r.label.Bold = tx.Pending
	r.SwipeRow.Reset()
}

// Transaction returns the row's transaction.
func (r *TransactionRow) Transaction() repository.Transaction { return r.tx }

// Label returns the row text left of the amount.
func (r *TransactionRow) Label() string { return r.label.Text }

// Amount returns the formatted amount.
func (r *TransactionRow) Amount() string { return r.amount.Text }

// Reset clears the row for its pool.
func (r *TransactionRow) Reset() {
	r.SwipeRow.Reset()
	r.tx = repository.Transaction{}
	r.label.Text = ""
	r.amount.Text = ""
	if p := r.Node().Parent(); p != nil {
		p.RemoveChild(r.Node())
	}
}

// Transactions lists recent transactions with pooled rows. Rows go back to
// the pool once the screen is fully hidden and are rebuilt on the next
// show.
type Transactions struct {
	*view.Surface
	view.NopHooks

	deps    Deps
	pane    *Pane
	list    *view.List
	rows    *TransactionRowPool
	active  []*TransactionRow
	filter  repository.TransactionFilters
	stale   bool
	swiping bool
}

// NewTransactions builds the list screen with its own row pool.
func NewTransactions(deps Deps) *Transactions {
	t := &Transactions{deps: deps}
	t.pane = NewPane(deps.Env, "transactions", deps.Width, deps.Height)
	t.pane.Viewport().Fill = ColorGrey
	t.list = view.NewList(t.pane.Content(), 0)
	t.rows = NewTransactionRowPool(deps, deps.RowCapacity)
	opts := deps.surfaceOptions()
	opts.Swipe = true
	t.Surface = view.NewSurface(deps.Env, t.pane.Viewport(), t, opts)
	return t
}

func (t *Transactions) Name() ScreenName { return ScreenTransactions }

func (t *Transactions) Header() HeaderSpec {
	return HeaderSpec{Title: TitleTransactions, Left: view.HeaderMenu, Right: view.HeaderAdd}
}

// Rows returns the rows shown, top first.
func (t *Transactions) Rows() []*TransactionRow { return t.active }

// Pool returns the row pool.
func (t *Transactions) Pool() *TransactionRowPool { return t.rows }

// Filter returns the active list filter.
func (t *Transactions) Filter() repository.TransactionFilters { return t.filter }

// OnUpdate takes an optional repository.TransactionFilters; anything else
// shows every transaction.
func (t *Transactions) OnUpdate(data any, _ view.Mode) error {
	t.filter, _ = data.(repository.TransactionFilters)
	return t.reload()
}

func (t *Transactions) OnEnable() error {
	if t.stale {
		return t.reload()
	}
	return nil
}

// OnHidden returns every row to the pool.
func (t *Transactions) OnHidden() {
	t.clear()
	t.stale = true
}

func (t *Transactions) clear() {
	t.list.Clear()
	for _, r := range t.active {
		t.rows.Release(r)
	}
	t.active = t.active[:0]
	t.swiping = false
}

func (t *Transactions) reload() error {
	ctx := t.deps.context()
	t.clear()
	t.stale = false

	f := t.filter
	if f.Limit == 0 || f.Limit > t.rows.Cap() {
		f.Limit = t.rows.Cap()
	}
	txs, err := t.deps.Transactions.List(ctx, f)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	cats, err := t.deps.Categories.List(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	var errs []error
	for _, tx := range txs {
		row, err := t.rows.Allocate()
		if err != nil {
			errs = append(errs, err)
			break
		}
		text := tx.Note
		if text == "" && tx.CategoryID != nil {
			text = names[*tx.CategoryID]
		}
		label := tx.Date.In(t.deps.location()).Format(t.deps.dateFormat()) + "  " + text
		amount := service.FormatAmount(tx.AmountCents, t.deps.CurrencySymbol)
		if tx.Kind == repository.KindExpense {
			amount = "-" + amount
		}
		row.Update(tx, label, amount)
		t.active = append(t.active, row)
		t.list.Add(row)
	}
	t.pane.Clamp()
	return errors.Join(errs...)
}

func (t *Transactions) rowAt(p scene.Point) *TransactionRow {
	item, _ := t.list.ItemUnderPoint(p)
	r, _ := item.(*TransactionRow)
	return r
}

func (t *Transactions) OnClick(p scene.Point) error {
	r := t.rowAt(p)
	if r == nil {
		return nil
	}
	tx := r.tx
	if r.IsOpen() {
		switch {
		case r.copy.HitTest(p):
			return t.deps.changeTransaction(service.ChangeRequest{Type: service.ChangeCopy, Source: &tx}, ScreenAddTransaction, view.ModeDefault)
		case r.remove.HitTest(p):
			if err := t.deps.Transactions.Delete(t.deps.context(), tx.ID); err != nil {
				return fmt.Errorf("delete transaction: %w", err)
			}
			return t.reload()
		}
		return r.Close(false)
	}
	if err := t.list.CloseAllExcept(nil, false); err != nil {
		return err
	}
	return t.deps.changeTransaction(service.ChangeRequest{Type: service.ChangeEdit, Source: &tx}, ScreenAddTransaction, view.ModeEdit)
}

func (t *Transactions) SwipeStart(_ bool, dir view.Direction) error {
	item, err := t.list.SwipeStart(t.deps.Env.Pointer.PointerPosition(), dir)
	t.swiping = item != nil
	return err
}

func (t *Transactions) SwipeEnd() error {
	if !t.swiping {
		return nil
	}
	t.swiping = false
	return t.list.SwipeEnd()
}

func (t *Transactions) OnHeaderClick(action view.HeaderAction) error {
	switch action {
	case view.HeaderMenu:
		return t.deps.navigate(ScreenMenu, view.ModeDefault, nil)
	case view.HeaderAdd:
		return t.deps.changeTransaction(service.ChangeRequest{Type: service.ChangeCreate}, ScreenAddTransaction, view.ModeDefault)
	}
	return nil
}

func (t *Transactions) Scroll(dy float64) { t.pane.ScrollBy(dy) }

func (t *Transactions) Release() {
	t.clear()
	t.pane.Release()
	t.Surface.Release()
}
