package screens

import (
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/view"
)

// Menu links to the top-level screens.
type Menu struct {
	*view.Surface
	view.NopHooks

	deps Deps
	pane *Pane
	list *view.List
}

// NewMenu builds the menu.
func NewMenu(deps Deps) *Menu {
	m := &Menu{deps: deps}
	m.pane = NewPane(deps.Env, "menu", deps.Width, deps.Height)
	m.pane.Viewport().Fill = ColorGrey
	m.list = view.NewList(m.pane.Content(), deps.ratio())
	m.list.Add(deps.newButton("menu.add", "Add Transaction", func() error {
		return deps.changeTransaction(service.ChangeRequest{Type: service.ChangeCreate}, ScreenAddTransaction, view.ModeDefault)
	}))
	m.list.Add(deps.newButton("menu.transactions", TitleTransactions, func() error {
		return deps.navigate(ScreenTransactions, view.ModeDefault, nil)
	}))
	m.list.Add(deps.newButton("menu.accounts", TitleAccounts, func() error {
		return deps.navigate(ScreenAccounts, view.ModeDefault, nil)
	}))
	m.list.Add(deps.newButton("menu.categories", TitleEditCategories, func() error {
		return deps.navigate(ScreenAccounts, view.ModeEdit, nil)
	}))
	m.list.Add(deps.newButton("menu.report", TitleReport, func() error {
		return deps.navigate(ScreenReport, view.ModeDefault, nil)
	}))
	m.Surface = view.NewSurface(deps.Env, m.pane.Viewport(), m, deps.surfaceOptions())
	return m
}

func (m *Menu) Name() ScreenName { return ScreenMenu }

func (m *Menu) Header() HeaderSpec {
	return HeaderSpec{Title: TitleMenu, Left: view.HeaderBack}
}

// Items returns the menu entries.
func (m *Menu) Items() []view.Item { return m.list.Items() }

func (m *Menu) OnClick(p scene.Point) error { return pressAt(m.list, p) }

func (m *Menu) OnHeaderClick(action view.HeaderAction) error {
	if action == view.HeaderBack {
		return m.deps.back(nil, false)
	}
	return nil
}

func (m *Menu) Release() {
	m.pane.Release()
	m.Surface.Release()
}
