package screens

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/pool"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/tween"
	"github.com/jask/cashflow/internal/view"
)

// subCategoryActionCells is how far a sub-category row slides open.
const subCategoryActionCells = 10

// SubCategoryRow is a pooled swipe row showing one sub-category. In EDIT
// mode swiping it reveals an Edit action.
type SubCategoryRow struct {
	*view.SwipeRow

	background *scene.Node
	action     *scene.Node
	surface    *scene.Node
	name       *scene.Node
	category   repository.Category
	mode       view.Mode
}

// SubCategoryRowPool holds SubCategoryRows.
type SubCategoryRowPool = pool.Pool[*SubCategoryRow]

// NewSubCategoryRowPool allocates capacity rows up front.
func NewSubCategoryRowPool(deps Deps, capacity int) *SubCategoryRowPool {
	return pool.New("sub-category rows", capacity, func(i int) *SubCategoryRow {
		return newSubCategoryRow(deps, i)
	})
}

func newSubCategoryRow(deps Deps, i int) *SubCategoryRow {
	w, h := deps.Width, deps.rowHeight()
	offset := subCategoryActionCells * deps.cellWidth()
	node := scene.NewNode("subcategory."+strconv.Itoa(i), w, h)
	background := node.AddChild(scene.NewNode("background", w, h))
	background.Fill = ColorRed
	action := node.AddChild(scene.NewNode("edit", offset, h))
	action.X = w - offset
	action.Text = "Edit"
	action.Ink = ColorGreyLight
	action.Align = scene.AlignCenter
	surface := node.AddChild(scene.NewNode("surface", w, h))
	surface.Fill = ColorGreyLight
	name := surface.AddChild(deps.label("name", "", 3*deps.cellWidth(), w-3*deps.cellWidth()))
	return &SubCategoryRow{
		SwipeRow:   view.NewSwipeRow(deps.Env, node, surface, offset, deps.SwipeTween),
		background: background,
		action:     action,
		surface:    surface,
		name:       name,
	}
}

// Update shows c in mode and snaps the row shut.
func (r *SubCategoryRow) Update(c repository.Category, mode view.Mode) {
	r.category = c
	r.mode = mode
	r.name.Text = c.Name
	if mode == view.ModeEdit {
		r.surface.Fill = ColorGrey
		r.name.X = r.name.Inset
	} else {
		r.surface.Fill = ColorGreyLight
		r.name.X = 3 * r.name.Inset
	}
	r.SwipeRow.Reset()
}

// Category returns the sub-category shown.
func (r *SubCategoryRow) Category() repository.Category { return r.category }

// Reset clears the row for its pool.
func (r *SubCategoryRow) Reset() {
	r.SwipeRow.Reset()
	r.category = repository.Category{}
	r.mode = view.ModeDefault
	r.name.Text = ""
	if p := r.Node().Parent(); p != nil {
		p.RemoveChild(r.Node())
	}
}

// CategoryButton is a top-level category that expands to list its
// sub-categories.
type CategoryButton struct {
	*view.Expandable

	header   *scene.Node
	count    *scene.Node
	subs     *view.List
	category repository.Category
	rows     []*SubCategoryRow
}

func newCategoryButton(deps Deps, c repository.Category) *CategoryButton {
	w, h := deps.Width, deps.rowHeight()
	node := scene.NewNode("category."+c.ID, w, h)
	node.Clip = true
	node.Fill = ColorGreyLight
	header := node.AddChild(scene.NewNode("header", w, h))
	swatch := header.AddChild(scene.NewNode("swatch", deps.cellWidth(), h))
	swatch.X = deps.cellWidth()
	swatch.Fill = c.Color
	if swatch.Fill == "" {
		swatch.Fill = ColorBlue
	}
	header.AddChild(deps.label("name", c.Name, 2*deps.cellWidth(), w-2*deps.cellWidth()))
	count := header.AddChild(deps.label("count", "", 0, w))
	count.Align = scene.AlignRight
	count.Ink = ColorGreyDark
	list := scene.NewNode("subcategories", w, 0)
	list.Y = h
	list.Fill = ColorGrey
	node.AddChild(list)
	return &CategoryButton{
		Expandable: view.NewExpandable(deps.Env, node, h, 0, deps.ExpandTween, tween.OutExpo),
		header:     header,
		count:      count,
		subs:       view.NewList(list, 0),
		category:   c,
	}
}

// Category returns the top-level category.
func (b *CategoryButton) Category() repository.Category { return b.category }

// Rows returns the sub-category rows.
func (b *CategoryButton) Rows() []*SubCategoryRow { return b.rows }

func (b *CategoryButton) add(row *SubCategoryRow) error {
	b.rows = append(b.rows, row)
	b.subs.Add(row)
	b.count.Text = strconv.Itoa(len(b.rows))
	return b.SetExpansion(b.subs.Node().Height)
}

func (b *CategoryButton) release(rows *SubCategoryRowPool) {
	b.subs.Clear()
	for _, r := range b.rows {
		rows.Release(r)
	}
	b.rows = nil
	b.Expandable.Release()
}

type categoryGroup struct {
	parent   repository.Category
	children []repository.Category
}

// Categories shows the categories of one account. SELECT mode picks a
// sub-category for the transaction being edited, DEFAULT mode opens the
// transactions of a sub-category and EDIT mode allows renaming through the
// swipe action. Typing "/" starts a fuzzy filter.
type Categories struct {
	*view.Surface
	view.NopHooks

	deps    Deps
	pane    *Pane
	list    *view.List
	rows    *SubCategoryRowPool
	account repository.Account
	groups  []categoryGroup
	buttons []*CategoryButton

	filter    textinput.Model
	filtering bool
	rename    textinput.Model
	renaming  *SubCategoryRow
	swiping   *view.List
}

// NewCategories builds the screen with its own row pool.
func NewCategories(deps Deps) *Categories {
	c := &Categories{deps: deps}
	c.pane = NewPane(deps.Env, "categories", deps.Width, deps.Height)
	c.pane.Viewport().Fill = ColorGrey
	c.list = view.NewList(c.pane.Content(), 0)
	c.rows = NewSubCategoryRowPool(deps, deps.RowCapacity)
	c.filter = textinput.New()
	c.filter.Prompt = "/"
	c.filter.CharLimit = 32
	c.rename = textinput.New()
	c.rename.CharLimit = 40
	opts := deps.surfaceOptions()
	opts.Swipe = true
	c.Surface = view.NewSurface(deps.Env, c.pane.Viewport(), c, opts)
	return c
}

func (c *Categories) Name() ScreenName { return ScreenCategories }

func (c *Categories) Header() HeaderSpec {
	spec := HeaderSpec{Title: TitleCategories, Left: view.HeaderBack}
	switch c.Mode() {
	case view.ModeSelect:
		spec.Title = TitleSelectCategory
	case view.ModeEdit:
		spec.Title = TitleEditCategories
	}
	if c.account.Name != "" {
		spec.Title += " · " + c.account.Name
	}
	return spec
}

// Account returns the account whose categories are shown.
func (c *Categories) Account() repository.Account { return c.account }

// Buttons returns the category buttons in display order.
func (c *Categories) Buttons() []*CategoryButton { return c.buttons }

// Filter returns the current filter text.
func (c *Categories) Filter() string { return c.filter.Value() }

// SetFilter narrows the list to categories matching q.
func (c *Categories) SetFilter(q string) error {
	c.filter.SetValue(q)
	return c.rebuild()
}

// Renaming returns the row being renamed, or nil.
func (c *Categories) Renaming() *SubCategoryRow { return c.renaming }

// Rows returns the row pool.
func (c *Categories) Rows() *SubCategoryRowPool { return c.rows }

func (c *Categories) OnUpdate(data any, mode view.Mode) error {
	ctx := c.deps.context()
	switch acct := data.(type) {
	case repository.Account:
		c.account = acct
	case *repository.Account:
		if acct != nil {
			c.account = *acct
		}
	case *service.Draft:
		if acct != nil && acct.Transaction.AccountID != "" {
			a, err := c.deps.Accounts.Get(ctx, acct.Transaction.AccountID)
			if err != nil {
				return fmt.Errorf("load draft account: %w", err)
			}
			c.account = a
		}
	}
	if c.account.ID == "" {
		accounts, err := c.deps.Accounts.List(ctx)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		if len(accounts) == 0 {
			c.groups = nil
			return c.rebuild()
		}
		c.account = accounts[0]
	}
	c.Surface.SetSwipe(mode == view.ModeEdit)
	c.cancelRename()

	parents, err := c.deps.Categories.ListByAccount(ctx, c.account.ID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	c.groups = c.groups[:0]
	for _, p := range parents {
		children, err := c.deps.Categories.Children(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load sub-categories of %s: %w", p.Name, err)
		}
		c.groups = append(c.groups, categoryGroup{parent: p, children: children})
	}
	return c.rebuild()
}

// rebuild recreates the buttons from the loaded groups and the filter.
func (c *Categories) rebuild() error {
	for _, b := range c.buttons {
		b.RemoveEventListener(event.LayoutUpdate, c, c.onLayoutUpdate)
		b.release(c.rows)
	}
	c.buttons = c.buttons[:0]
	c.list.Clear()
	c.swiping = nil

	var errs []error
	for _, g := range c.filtered() {
		b := newCategoryButton(c.deps, g.parent)
		for _, child := range g.children {
			row, err := c.rows.Allocate()
			if err != nil {
				errs = append(errs, fmt.Errorf("category %s: %w", g.parent.Name, err))
				break
			}
			row.Update(child, c.Mode())
			if err := b.add(row); err != nil {
				errs = append(errs, err)
			}
		}
		if err := b.AddEventListener(event.LayoutUpdate, c, c.onLayoutUpdate); err != nil {
			errs = append(errs, err)
		}
		c.buttons = append(c.buttons, b)
		c.list.Add(b)
	}
	c.pane.Clamp()
	if c.filter.Value() != "" && len(c.buttons) > 0 {
		errs = append(errs, c.buttons[0].Open())
	}
	return errors.Join(errs...)
}

func (c *Categories) filtered() []categoryGroup {
	q := strings.TrimSpace(c.filter.Value())
	if q == "" {
		return c.groups
	}
	var out []categoryGroup
	for _, g := range c.groups {
		if fuzzy.MatchNormalizedFold(q, g.parent.Name) {
			out = append(out, g)
			continue
		}
		names := make([]string, len(g.children))
		for i, child := range g.children {
			names[i] = child.Name
		}
		ranks := fuzzy.RankFindNormalizedFold(q, names)
		if len(ranks) == 0 {
			continue
		}
		sort.Sort(ranks)
		match := categoryGroup{parent: g.parent}
		for _, r := range ranks {
			match.children = append(match.children, g.children[r.OriginalIndex])
		}
		out = append(out, match)
	}
	return out
}

func (c *Categories) onLayoutUpdate(any) error {
	c.list.Layout()
	c.pane.Clamp()
	return nil
}

func (c *Categories) buttonAt(p scene.Point) *CategoryButton {
	item, _ := c.list.ItemUnderPoint(p)
	b, _ := item.(*CategoryButton)
	return b
}

func (c *Categories) OnClick(p scene.Point) error {
	b := c.buttonAt(p)
	if b == nil {
		return nil
	}
	if b.header.HitTest(p) {
		if b.IsOpen() {
			return b.Close(false)
		}
		if err := c.list.CloseAllExcept(b, false); err != nil {
			return err
		}
		return b.Open()
	}
	item, _ := b.subs.ItemUnderPoint(p)
	row, ok := item.(*SubCategoryRow)
	if !ok {
		return nil
	}
	switch c.Mode() {
	case view.ModeEdit:
		if !row.IsOpen() {
			return nil
		}
		if row.action.HitTest(p) {
			return c.startRename(row)
		}
		return row.Close(false)
	case view.ModeSelect:
		req := service.ChangeRequest{
			Type:       service.ChangeUpdate,
			AccountID:  c.account.ID,
			CategoryID: row.category.ID,
		}
		return c.deps.changeTransaction(req, ScreenAddTransaction, editorMode(c.deps.Editor))
	default:
		return c.deps.navigate(ScreenTransactions, view.ModeDefault, repository.TransactionFilters{CategoryID: row.category.ID})
	}
}

func (c *Categories) SwipeStart(_ bool, dir view.Direction) error {
	if c.Mode() != view.ModeEdit || c.renaming != nil {
		return nil
	}
	p := c.deps.Env.Pointer.PointerPosition()
	b := c.buttonAt(p)
	if b == nil || !b.IsOpen() {
		return nil
	}
	item, err := b.subs.SwipeStart(p, dir)
	if item != nil {
		c.swiping = b.subs
	}
	return err
}

func (c *Categories) SwipeEnd() error {
	if c.swiping == nil {
		return nil
	}
	l := c.swiping
	c.swiping = nil
	return l.SwipeEnd()
}

func (c *Categories) OnHeaderClick(action view.HeaderAction) error {
	if action != view.HeaderBack {
		return nil
	}
	c.cancelRename()
	return c.deps.back(nil, false)
}

func (c *Categories) OnDisable() { c.cancelRename() }

func (c *Categories) startRename(row *SubCategoryRow) error {
	c.cancelRename()
	c.renaming = row
	c.rename.SetValue(row.category.Name)
	c.rename.CursorEnd()
	c.rename.Focus()
	row.name.Text = c.rename.Value() + "▏"
	return row.Close(false)
}

func (c *Categories) cancelRename() {
	if c.renaming == nil {
		return
	}
	c.renaming.name.Text = c.renaming.category.Name
	c.renaming = nil
	c.rename.Blur()
}

func (c *Categories) commitRename() error {
	row := c.renaming
	name := strings.TrimSpace(c.rename.Value())
	c.cancelRename()
	if name == "" || name == row.category.Name {
		return nil
	}
	cat := row.category
	cat.Name = name
	if err := c.deps.Categories.Upsert(c.deps.context(), cat); err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	return c.OnUpdate(nil, c.Mode())
}

// HandleKey edits the rename field or the filter.
func (c *Categories) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if c.renaming != nil {
		switch msg.Type {
		case tea.KeyEnter:
			return true, errCmd(c.commitRename())
		case tea.KeyEsc:
			c.cancelRename()
			return true, nil
		}
		var cmd tea.Cmd
		c.rename, cmd = c.rename.Update(msg)
		c.renaming.name.Text = c.rename.Value() + "▏"
		return true, cmd
	}
	if !c.filtering {
		if msg.String() == "/" {
			c.filtering = true
			return true, c.filter.Focus()
		}
		return false, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		c.filtering = false
		c.filter.Blur()
		return true, nil
	case tea.KeyEsc:
		c.filtering = false
		c.filter.Blur()
		return true, errCmd(c.SetFilter(""))
	}
	before := c.filter.Value()
	var cmd tea.Cmd
	c.filter, cmd = c.filter.Update(msg)
	if c.filter.Value() != before {
		return true, tea.Batch(cmd, errCmd(c.rebuild()))
	}
	return true, cmd
}

// Filtering reports whether keys go to the filter.
func (c *Categories) Filtering() bool { return c.filtering }

func (c *Categories) Scroll(dy float64) { c.pane.ScrollBy(dy) }

func (c *Categories) Release() {
	for _, b := range c.buttons {
		b.release(c.rows)
	}
	c.buttons = nil
	c.pane.Release()
	c.Surface.Release()
}
