package screens

import (
	"fmt"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/view"
)

// Accounts lists accounts. Picking one opens its categories in the same
// mode.
type Accounts struct {
	*view.Surface
	view.NopHooks

	deps     Deps
	pane     *Pane
	list     *view.List
	accounts []repository.Account
}

// NewAccounts builds an empty accounts screen; Update loads it.
func NewAccounts(deps Deps) *Accounts {
	a := &Accounts{deps: deps}
	a.pane = NewPane(deps.Env, "accounts", deps.Width, deps.Height)
	a.pane.Viewport().Fill = ColorGrey
	a.list = view.NewList(a.pane.Content(), deps.ratio())
	a.Surface = view.NewSurface(deps.Env, a.pane.Viewport(), a, deps.surfaceOptions())
	return a
}

func (a *Accounts) Name() ScreenName { return ScreenAccounts }

func (a *Accounts) Header() HeaderSpec {
	title := TitleAccounts
	if a.Mode() == view.ModeSelect {
		title = TitleSelectAccount
	}
	return HeaderSpec{Title: title, Left: view.HeaderBack}
}

// List returns the loaded accounts.
func (a *Accounts) List() []repository.Account { return a.accounts }

func (a *Accounts) OnUpdate(_ any, mode view.Mode) error {
	accounts, err := a.deps.Accounts.List(a.deps.context())
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	a.accounts = accounts
	a.list.Clear()
	for _, acct := range accounts {
		acct := acct
		a.list.Add(a.deps.newButton("account."+acct.ID, acct.Name, func() error {
			return a.deps.navigate(ScreenCategories, mode, acct)
		}))
	}
	return a.pane.ScrollTo(0, false)
}

func (a *Accounts) OnClick(p scene.Point) error { return pressAt(a.list, p) }

func (a *Accounts) OnHeaderClick(action view.HeaderAction) error {
	if action == view.HeaderBack {
		return a.deps.back(nil, false)
	}
	return nil
}

func (a *Accounts) Scroll(dy float64) { a.pane.ScrollBy(dy) }

func (a *Accounts) Release() {
	a.pane.Release()
	a.Surface.Release()
}
