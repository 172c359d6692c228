package screens

import (
	"cmp"
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/ticker"
	"github.com/jask/cashflow/internal/view"
)

const (
	frame        = time.Second / 60
	screenWidth  = 800
	screenHeight = 480
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type rig struct {
	t          *testing.T
	ctx        context.Context
	ticker     *ticker.Ticker
	stage      *scene.Stage
	header     *Header
	deps       Deps
	router     *Router
	editor     *service.Editor
	txs        *repository.TransactionRepo
	categories *repository.CategoryRepo
}

func newRig(t *testing.T) *rig {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	db, err := database.Open(filepath.Join(t.TempDir(), "screens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, ""))
	require.NoError(t, database.SeedDefaults(ctx, db))

	listeners := event.NewListenerPool(2048)
	tk := ticker.New(listeners, 60)
	stage := scene.NewStage(screenWidth, screenHeight, listeners)
	env := view.Env{Ticker: tk, Listeners: listeners, Input: stage, Pointer: stage, PixelRatio: 1}
	header := NewHeader(env, screenWidth)
	env.Header = header
	stage.Root.AddChild(header.Node())
	require.NoError(t, header.Attach(stage))
	layer := stage.Root.AddChild(scene.NewNode("screens", screenWidth, screenHeight-20))
	layer.Y = 20

	txs := repository.NewTransactionRepo(db)
	cats := repository.NewCategoryRepo(db)
	editor := &service.Editor{
		Transactions: txs,
		Defaults:     service.Defaults{AccountID: database.DefaultAccountID},
		Now:          func() time.Time { return fixedNow },
	}
	deps := Deps{
		Ctx:            ctx,
		Env:            env,
		Width:          screenWidth,
		Height:         screenHeight - 20,
		Accounts:       repository.NewAccountRepo(db),
		Categories:     cats,
		Transactions:   txs,
		Editor:         editor,
		Reporter:       &service.Reporter{Transactions: txs, Categories: cats},
		Bus:            event.NewDispatcher(listeners),
		Changes:        NewChangeScreenPool(8),
		RowCapacity:    32,
		ScreenTween:    400 * time.Millisecond,
		ExpandTween:    400 * time.Millisecond,
		SwipeTween:     250 * time.Millisecond,
		CurrencySymbol: "$",
		Location:       time.UTC,
		Now:            func() time.Time { return fixedNow },
	}
	router, _, err := Mount(deps, header, layer)
	require.NoError(t, err)

	return &rig{
		t:          t,
		ctx:        ctx,
		ticker:     tk,
		stage:      stage,
		header:     header,
		deps:       deps,
		router:     router,
		editor:     editor,
		txs:        txs,
		categories: cats,
	}
}

func (r *rig) frames(n int) {
	r.t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(r.t, r.ticker.Tick(frame))
	}
}

// settle runs a second of frames, longer than any tween.
func (r *rig) settle() { r.frames(60) }

func (r *rig) start(name ScreenName, mode view.Mode, data any) {
	r.t.Helper()
	require.NoError(r.t, r.router.Start(name, mode, data))
	r.settle()
}

func (r *rig) screen(name ScreenName) Screen {
	r.t.Helper()
	s, ok := r.router.Screen(name)
	require.True(r.t, ok)
	return s
}

func center(n *scene.Node) scene.Point {
	g := n.Global()
	return scene.Point{X: g.X + n.Width/2, Y: g.Y + n.Height/2}
}

func (r *rig) tap(n *scene.Node) {
	r.t.Helper()
	p := center(n)
	require.NoError(r.t, r.stage.PointerDown(p))
	require.NoError(r.t, r.stage.PointerUp(p))
}

// swipeLeft drags n's row left by dx over a few frames and releases.
func (r *rig) swipeLeft(n *scene.Node, dx float64) {
	r.t.Helper()
	p := center(n)
	require.NoError(r.t, r.stage.PointerDown(p))
	p.X -= 20
	require.NoError(r.t, r.stage.PointerMove(p))
	r.frames(1)
	p.X -= dx
	require.NoError(r.t, r.stage.PointerMove(p))
	r.frames(1)
	require.NoError(r.t, r.stage.PointerUp(p))
	r.settle()
}

func (r *rig) trigger(action view.HeaderAction) {
	r.t.Helper()
	require.NoError(r.t, r.header.Trigger(action))
	r.settle()
}

func (r *rig) typeText(k KeyReceiver, s string) {
	r.t.Helper()
	ok, _ := k.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	require.True(r.t, ok)
}

func (r *rig) key(k KeyReceiver, typ tea.KeyType) bool {
	ok, _ := k.HandleKey(tea.KeyMsg{Type: typ})
	return ok
}

// insert stores a cash transaction age before fixedNow. The note doubles as
// the ID when set.
func (r *rig) insert(note string, cents int64, kind, category string, age time.Duration) repository.Transaction {
	r.t.Helper()
	tx := repository.Transaction{
		ID:          cmp.Or(note, "blank"),
		AccountID:   database.DefaultAccountID,
		Date:        fixedNow.Add(-age),
		AmountCents: cents,
		Kind:        kind,
		Method:      repository.MethodCash,
		Currency:    "USD",
		Note:        note,
	}
	if category != "" {
		tx.CategoryID = &category
	}
	require.NoError(r.t, r.txs.Insert(r.ctx, tx))
	return tx
}

func (r *rig) subCategory(parent, name string) repository.Category {
	r.t.Helper()
	cats, err := r.categories.List(r.ctx)
	require.NoError(r.t, err)
	for _, p := range cats {
		if p.ParentID != nil || p.Name != parent {
			continue
		}
		for _, c := range cats {
			if c.ParentID != nil && *c.ParentID == p.ID && c.Name == name {
				return c
			}
		}
	}
	r.t.Fatalf("no category %s > %s", parent, name)
	return repository.Category{}
}

func (r *rig) requireRecordsReleased() {
	r.t.Helper()
	stats := r.deps.Changes.Stats()
	require.Zero(r.t, stats.Allocated)
	require.Zero(r.t, stats.DoubleReleases)
}

func buttonNamed(t *testing.T, c *Categories, name string) *CategoryButton {
	t.Helper()
	for _, b := range c.Buttons() {
		if b.Category().Name == name {
			return b
		}
	}
	t.Fatalf("no category button %s", name)
	return nil
}

func rowNamed(t *testing.T, b *CategoryButton, name string) *SubCategoryRow {
	t.Helper()
	for _, r := range b.Rows() {
		if r.Category().Name == name {
			return r
		}
	}
	t.Fatalf("no row %s", name)
	return nil
}
