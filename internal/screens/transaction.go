package screens

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/view"
)

// Currencies offered by the currency option, in cycle order.
var Currencies = []string{"USD", "EUR", "GBP", "CZK", "JPY"}

// editorMode is EDIT for a stored transaction and DEFAULT for a new one.
func editorMode(e *service.Editor) view.Mode {
	if e != nil && e.Current() != nil && e.Current().Saved {
		return view.ModeEdit
	}
	return view.ModeDefault
}

// formInput is a text field row.
type formInput struct {
	node   *scene.Node
	model  textinput.Model
	prefix string
}

func (f *formInput) Node() *scene.Node { return f.node }

func (f *formInput) render() {
	text := f.prefix + f.model.Value()
	switch {
	case f.model.Focused():
		text += "▏"
		f.node.Ink = ColorInputHighlight
	case f.model.Value() == "":
		text = f.prefix + f.model.Placeholder
		f.node.Ink = ColorGreyDark
	default:
		f.node.Ink = ColorBlue
	}
	f.node.Text = text
}

// AddTransaction edits the editor's current draft. Focusing an input
// scrolls it to the top of the pane with its own tween, and scrolls back
// when it loses focus.
type AddTransaction struct {
	*view.Surface
	view.NopHooks

	deps Deps
	pane *Pane
	list *view.List

	amount   *formInput
	note     *formInput
	focused  *formInput
	kind     *Button
	pending  *Button
	repeat   *Button
	account  *Button
	category *Button
	date     *Button
	method   *Button
	currency *Button
	remove   *Button
	spacer   *scene.Node

	form service.ChangeRequest
}

// NewAddTransaction builds the editor screen.
func NewAddTransaction(deps Deps) *AddTransaction {
	s := &AddTransaction{deps: deps}
	s.pane = NewPane(deps.Env, "transaction", deps.Width, deps.Height)
	s.pane.Viewport().Fill = ColorGrey
	s.list = view.NewList(s.pane.Content(), deps.ratio())

	s.amount = s.newInput("amount", "Amount: ", "0.00", 16)
	s.note = s.newInput("note", "Note: ", "add a note", 80)

	s.kind = deps.newButton("kind", "Type", s.toggleKind)
	s.pending = deps.newButton("pending", "Pending", func() error {
		s.form.Pending = flip(s.form.Pending)
		s.render()
		return nil
	})
	s.repeat = deps.newButton("repeat", "Repeat", func() error {
		s.form.Repeat = flip(s.form.Repeat)
		s.render()
		return nil
	})
	s.account = deps.newButton("account", "Account", func() error {
		return s.leave(ScreenAccounts, view.ModeSelect)
	})
	s.category = deps.newButton("category", "Category", func() error {
		return s.leave(ScreenCategories, view.ModeSelect)
	})
	s.date = deps.newButton("date", "Time", func() error {
		return s.leave(ScreenSelectTime, view.ModeDefault)
	})
	s.method = deps.newButton("method", "Method", s.toggleMethod)
	s.currency = deps.newButton("currency", "Currency", s.cycleCurrency)
	s.remove = deps.newButton("delete", "Delete", func() error {
		return deps.changeTransaction(service.ChangeRequest{Type: service.ChangeDelete}, ScreenTransactions, view.ModeDefault)
	})
	s.remove.Node().Fill = ColorRed
	s.remove.label.Ink = ColorGreyLight
	s.remove.label.Align = scene.AlignCenter
	s.spacer = scene.NewNode("spacer", deps.Width, deps.Height)

	s.Surface = view.NewSurface(deps.Env, s.pane.Viewport(), s, deps.surfaceOptions())
	s.layout()
	return s
}

func (s *AddTransaction) newInput(name, prefix, placeholder string, limit int) *formInput {
	m := textinput.New()
	m.Prompt = ""
	m.Placeholder = placeholder
	m.CharLimit = limit
	node := scene.NewNode(name, s.deps.Width, s.deps.rowHeight())
	node.Fill = ColorGreyLight
	node.Inset = s.deps.cellWidth()
	in := &formInput{node: node, model: m, prefix: prefix}
	in.render()
	return in
}

// layout stacks the rows; Delete only shows in EDIT mode. The trailing
// spacer lets the last input scroll to the top.
func (s *AddTransaction) layout() {
	s.list.Clear()
	for _, item := range []view.Item{s.amount, s.kind, s.pending, s.repeat, s.account, s.category, s.date, s.method, s.currency, s.note} {
		s.list.Add(item)
	}
	if s.Mode() == view.ModeEdit {
		s.list.Add(s.remove)
	}
	s.list.Add(&Button{node: s.spacer})
	s.pane.Clamp()
}

func (s *AddTransaction) Name() ScreenName { return ScreenAddTransaction }

func (s *AddTransaction) Header() HeaderSpec {
	title := TitleAddTransaction
	if s.Mode() == view.ModeEdit {
		title = TitleEditTransaction
	}
	return HeaderSpec{Title: title, Left: view.HeaderCancel, Right: view.HeaderConfirm}
}

// Form returns the values currently entered.
func (s *AddTransaction) Form() service.ChangeRequest {
	req := s.form
	req.Amount = s.amount.model.Value()
	req.Note = s.note.model.Value()
	return req
}

// Focused returns "amount", "note" or "".
func (s *AddTransaction) Focused() string {
	if s.focused == nil {
		return ""
	}
	return s.focused.node.Name
}

// Pane returns the scrolling pane.
func (s *AddTransaction) Pane() *Pane { return s.pane }

func (s *AddTransaction) OnUpdate(data any, _ view.Mode) error {
	s.dropFocus()
	if err := s.pane.ScrollTo(0, false); err != nil {
		return err
	}
	draft, ok := data.(*service.Draft)
	if !ok || draft == nil {
		draft = s.deps.Editor.Current()
	}
	s.layout()
	if draft == nil {
		return errors.New("transaction editor: no draft")
	}
	tx := draft.Transaction
	pending, repeat := tx.Pending, tx.Repeat
	s.form = service.ChangeRequest{
		Kind:     tx.Kind,
		Pending:  &pending,
		Repeat:   &repeat,
		Method:   tx.Method,
		Currency: tx.Currency,
	}
	s.amount.model.SetValue("")
	if tx.AmountCents != 0 {
		s.amount.model.SetValue(service.FormatAmount(tx.AmountCents, ""))
	}
	s.note.model.SetValue(tx.Note)
	s.date.SetValue(tx.Date.In(s.deps.location()).Format(s.deps.dateFormat() + " 15:04"))
	s.account.SetValue(s.accountName(tx.AccountID))
	s.category.SetValue(s.categoryName(tx.CategoryID))
	s.render()
	return nil
}

func (s *AddTransaction) accountName(id string) string {
	if id == "" {
		return "Choose"
	}
	acct, err := s.deps.Accounts.Get(s.deps.context(), id)
	if err != nil {
		return "?"
	}
	return acct.Name
}

func (s *AddTransaction) categoryName(id *string) string {
	if id == nil {
		return "Choose"
	}
	ctx := s.deps.context()
	cat, err := s.deps.Categories.Get(ctx, *id)
	if err != nil {
		return "?"
	}
	if cat.ParentID == nil {
		return cat.Name
	}
	parent, err := s.deps.Categories.Get(ctx, *cat.ParentID)
	if err != nil {
		return cat.Name
	}
	return parent.Name + " / " + cat.Name
}

func (s *AddTransaction) render() {
	kind := "Expense"
	if s.form.Kind == repository.KindIncome {
		kind = "Income"
	}
	s.kind.SetValue(kind)
	s.pending.SetValue(onOff(s.form.Pending))
	s.repeat.SetValue(onOff(s.form.Repeat))
	method := "Cash"
	if s.form.Method == repository.MethodCredit {
		method = "Credit"
	}
	s.method.SetValue(method)
	s.currency.SetValue(s.form.Currency)
	s.amount.prefix = "Amount: " + s.deps.CurrencySymbol
	s.amount.render()
	s.note.render()
}

func (s *AddTransaction) toggleKind() error {
	if s.form.Kind == repository.KindIncome {
		s.form.Kind = repository.KindExpense
	} else {
		s.form.Kind = repository.KindIncome
	}
	s.render()
	return nil
}

func (s *AddTransaction) toggleMethod() error {
	if s.form.Method == repository.MethodCredit {
		s.form.Method = repository.MethodCash
	} else {
		s.form.Method = repository.MethodCredit
	}
	s.render()
	return nil
}

func (s *AddTransaction) cycleCurrency() error {
	next := Currencies[0]
	for i, c := range Currencies {
		if c == s.form.Currency {
			next = Currencies[(i+1)%len(Currencies)]
			break
		}
	}
	s.form.Currency = next
	s.render()
	return nil
}

// leave stores the form in the draft and opens a picker screen.
func (s *AddTransaction) leave(next ScreenName, mode view.Mode) error {
	s.dropFocus()
	req := s.Form()
	req.Type = service.ChangeUpdate
	return s.deps.changeTransaction(req, next, mode)
}

func (s *AddTransaction) OnClick(p scene.Point) error {
	switch {
	case s.amount.node.HitTest(p):
		return s.focus(s.amount)
	case s.note.node.HitTest(p):
		return s.focus(s.note)
	}
	if s.focused != nil {
		return s.blur()
	}
	return pressAt(s.list, p)
}

func (s *AddTransaction) OnHeaderClick(action view.HeaderAction) error {
	switch action {
	case view.HeaderConfirm:
		s.dropFocus()
		req := s.Form()
		req.Type = service.ChangeConfirm
		if req.Amount != "" {
			if _, err := service.ParseAmount(req.Amount); err != nil {
				return fmt.Errorf("confirm transaction: %w", err)
			}
		}
		return s.deps.changeTransaction(req, ScreenTransactions, view.ModeDefault)
	case view.HeaderCancel:
		s.dropFocus()
		return s.deps.changeTransaction(service.ChangeRequest{Type: service.ChangeCancel}, ScreenBack, view.ModeDefault)
	}
	return nil
}

func (s *AddTransaction) focus(in *formInput) error {
	if s.focused == in {
		return nil
	}
	if s.focused != nil {
		s.focused.model.Blur()
		s.focused.render()
	}
	s.focused = in
	in.model.CursorEnd()
	in.model.Focus()
	in.render()
	top := in.node.Y - s.deps.rowHeight()
	return s.pane.ScrollTo(top, true)
}

func (s *AddTransaction) blur() error {
	if s.focused == nil {
		return nil
	}
	s.focused.model.Blur()
	s.focused.render()
	s.focused = nil
	return s.pane.ScrollTo(0, true)
}

func (s *AddTransaction) OnDisable() { s.dropFocus() }

// dropFocus blurs without scrolling back.
func (s *AddTransaction) dropFocus() {
	if s.focused == nil {
		return
	}
	s.focused.model.Blur()
	s.focused.render()
	s.focused = nil
}

// HandleKey types into the focused input.
func (s *AddTransaction) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	in := s.focused
	if in == nil {
		return false, nil
	}
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		return true, errCmd(s.blur())
	case tea.KeyTab:
		next := s.note
		if in == s.note {
			next = s.amount
		}
		return true, errCmd(s.focus(next))
	case tea.KeyRunes:
		if in == s.amount && !amountRunes(msg.Runes) {
			return true, nil
		}
	}
	var cmd tea.Cmd
	in.model, cmd = in.model.Update(msg)
	in.render()
	return true, cmd
}

func amountRunes(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsDigit(r) && !strings.ContainsRune(".,", r) {
			return false
		}
	}
	return true
}

func (s *AddTransaction) Scroll(dy float64) {
	if s.focused == nil {
		s.pane.ScrollBy(dy)
	}
}

func (s *AddTransaction) Release() {
	s.pane.Release()
	s.Surface.Release()
}

func flip(b *bool) *bool {
	v := b == nil || !*b
	return &v
}

func onOff(b *bool) string {
	if b != nil && *b {
		return "On"
	}
	return "Off"
}
