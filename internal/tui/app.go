// Package tui drives the screens from a bubbletea program: it owns the
// stage and the frame ticker, feeds mouse and keyboard input to them, and
// renders the display tree into the terminal.
package tui

import (
	"cmp"
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cashflow/internal/config"
	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/logging"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/screens"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/ticker"
	"github.com/jask/cashflow/internal/view"
)

// maxFrameDelta caps the time one frame may advance tweens after a stall.
const maxFrameDelta = 100 * time.Millisecond

// wheelRows is how far one wheel notch scrolls.
const wheelRows = 3

type Repos struct {
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
}

type Services struct {
	Editor   *service.Editor
	Reporter *service.Reporter
}

// Option customises an App.
type Option func(*App)

// WithClock replaces time.Now for both the screens and frame scheduling.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithStart picks the first screen. The default is the transaction list.
func WithStart(name screens.ScreenName) Option {
	return func(a *App) { a.start = name }
}

// App is the bubbletea model.
type App struct {
	now   func() time.Time
	start screens.ScreenName
	ratio float64

	ticker     *ticker.Ticker
	stage      *scene.Stage
	header     *screens.Header
	router     *screens.Router
	controller *screens.Controller
	renderer   *Renderer
	keys       *KeyRegistry
	help       help.Model

	// Frames are scheduled while the pointer is down, while a tween asks the
	// ticker to stay awake, and for settle after the last input. Shown
	// screens stay subscribed to the ticker, so its subscriber count cannot
	// tell when animation is over.
	settle     time.Duration
	awakeUntil time.Time
	lastFrame  time.Time
	ticking    bool

	width     int
	height    int
	status    string
	statusErr bool
	showHelp  bool
}

type frameMsg time.Time

type statusMsg string

// New builds the stage, mounts every screen and shows the first one.
func New(ctx context.Context, cfg config.Config, repos Repos, services Services, opts ...Option) (*App, error) {
	a := &App{
		now:   time.Now,
		start: screens.ScreenTransactions,
		ratio: cfg.UI.PixelRatio,
		keys:  NewKeyRegistry(),
		help:  help.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ratio <= 0 {
		a.ratio = 1
	}
	cols, rows := cmp.Or(cfg.UI.Columns, 80), cmp.Or(cfg.UI.Rows, 22)
	width, height := float64(cols)*a.cellWidth(), float64(rows)*a.rowHeight()

	listeners := event.NewListenerPool(cmp.Or(cfg.Pool.Listeners, 512))
	a.ticker = ticker.New(listeners, cfg.UI.FrameRate)
	a.stage = scene.NewStage(width, height, listeners)
	env := view.Env{
		Ticker:     a.ticker,
		Listeners:  listeners,
		Input:      a.stage,
		Pointer:    a.stage,
		PixelRatio: a.ratio,
	}
	a.header = screens.NewHeader(env, width)
	env.Header = a.header
	a.stage.Root.AddChild(a.header.Node())
	if err := a.header.Attach(a.stage); err != nil {
		return nil, err
	}
	layer := a.stage.Root.AddChild(scene.NewNode("screens", width, height-a.rowHeight()))
	layer.Y = a.rowHeight()

	deps := screens.Deps{
		Ctx:            ctx,
		Env:            env,
		Width:          width,
		Height:         height - a.rowHeight(),
		Accounts:       repos.Accounts,
		Categories:     repos.Categories,
		Transactions:   repos.Transactions,
		Editor:         services.Editor,
		Reporter:       services.Reporter,
		Bus:            event.NewDispatcher(listeners),
		Changes:        screens.NewChangeScreenPool(cmp.Or(cfg.Pool.ScreenChanges, 8)),
		RowCapacity:    cmp.Or(cfg.Pool.Rows, 64),
		ScreenTween:    cfg.UI.ScreenTween,
		ExpandTween:    cfg.UI.ExpandTween,
		SwipeTween:     cfg.UI.SwipeTween,
		CurrencySymbol: cfg.UI.CurrencySymbol,
		DateFormat:     cfg.UI.DateFormat,
		Location:       cfg.UI.Location(),
		Now:            a.now,
	}
	router, controller, err := screens.Mount(deps, a.header, layer)
	if err != nil {
		a.header.Release()
		return nil, err
	}
	a.router, a.controller = router, controller
	if err := a.router.Start(a.start, view.ModeDefault, nil); err != nil {
		a.Close()
		return nil, err
	}

	a.settle = 2 * max(cfg.UI.ScreenTween, cfg.UI.ExpandTween, cfg.UI.SwipeTween, screens.InputScrollDuration)
	a.renderer = NewRenderer(cols, rows, a.ratio, screens.ColorGrey, screens.ColorBlue)
	return a, nil
}

// Close releases every listener the app registered.
func (a *App) Close() {
	a.controller.Release()
	a.router.Release()
	a.header.Release()
	a.ticker.Release()
}

// Router exposes navigation state.
func (a *App) Router() *screens.Router { return a.router }

// Stage exposes the display tree.
func (a *App) Stage() *scene.Stage { return a.stage }

// Ticking reports whether a frame is scheduled.
func (a *App) Ticking() bool { return a.ticking }

// Status returns the status line text.
func (a *App) Status() string { return a.status }

func (a *App) Init() tea.Cmd {
	return a.wake()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		return a, nil
	case frameMsg:
		return a, a.onFrame(time.Time(msg))
	case tea.KeyMsg:
		return a, a.onKey(msg)
	case tea.MouseMsg:
		return a, a.onMouse(msg)
	case statusMsg:
		a.status, a.statusErr = string(msg), false
		return a, nil
	case screens.ErrMsg:
		a.fail(msg.Err)
		return a, nil
	}
	return a, nil
}

func (a *App) View() string {
	body := a.renderer.Render(a.stage.Root)
	scope := scopeFor(a.router.Current())
	if a.showHelp {
		body = a.helpOverlay(body)
	}
	footer := a.renderFooter(keyMap{registry: a.keys, scope: scope}.ShortHelp())
	return a.placeWithFooter(body, a.renderStatus(), footer)
}

func (a *App) onKey(msg tea.KeyMsg) tea.Cmd {
	if a.showHelp && (msg.String() == "esc" || msg.String() == "?") {
		a.showHelp = false
		return nil
	}
	a.clearError()

	current := a.router.Current()
	if kr, ok := current.(screens.KeyReceiver); ok {
		if handled, cmd := kr.HandleKey(msg); handled {
			a.syncHeader()
			return tea.Batch(cmd, a.wake())
		}
	}

	b := a.keys.Lookup(msg.String(), scopeFor(current))
	if b == nil {
		return nil
	}
	logging.Trace("key", map[string]any{"key": msg.String(), "action": b.Action, "screen": scopeFor(current)})

	var err error
	switch b.Action {
	case actionQuit:
		return tea.Quit
	case actionHelp:
		a.showHelp = !a.showHelp
		return nil
	case actionLeft:
		err = a.header.Trigger(a.header.Spec().Left)
	case actionRight:
		err = a.header.Trigger(a.header.Spec().Right)
	case actionMenu:
		err = a.header.Trigger(view.HeaderMenu)
	case actionAdd:
		err = a.header.Trigger(view.HeaderAdd)
	case actionScrollUp:
		a.scroll(-a.rowHeight())
	case actionScrollDown:
		a.scroll(a.rowHeight())
	case actionPageUp:
		a.scroll(-a.page())
	case actionPageDown:
		a.scroll(a.page())
	default:
		return nil
	}
	if err != nil {
		a.fail(err)
	}
	a.syncHeader()
	return a.wake()
}

func (a *App) onMouse(msg tea.MouseMsg) tea.Cmd {
	p := scene.Point{
		X: (float64(msg.X) + 0.5) * a.cellWidth(),
		Y: (float64(msg.Y) + 0.5) * a.rowHeight(),
	}
	var err error
	switch {
	case tea.MouseEvent(msg).IsWheel():
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scroll(-wheelRows * a.rowHeight())
		case tea.MouseButtonWheelDown:
			a.scroll(wheelRows * a.rowHeight())
		default:
			return nil
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		a.clearError()
		err = a.stage.PointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		if !a.stage.Pressed() {
			return nil
		}
		err = a.stage.PointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		if !a.stage.Pressed() {
			return nil
		}
		err = a.stage.PointerUp(p)
	default:
		return nil
	}
	if err != nil {
		a.fail(err)
	}
	a.syncHeader()
	return a.wake()
}

// wake extends the settle window and starts the frame loop if it is idle.
func (a *App) wake() tea.Cmd {
	a.awakeUntil = a.now().Add(a.settle)
	if a.ticking {
		return nil
	}
	a.ticking = true
	a.lastFrame = time.Time{}
	return a.frame()
}

func (a *App) frame() tea.Cmd {
	return tea.Tick(a.ticker.Frame(), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (a *App) onFrame(at time.Time) tea.Cmd {
	delta := a.ticker.Frame()
	if !a.lastFrame.IsZero() {
		if d := at.Sub(a.lastFrame); d > 0 && d <= maxFrameDelta {
			delta = d
		}
	}
	a.lastFrame = at
	if err := a.ticker.Tick(delta); err != nil {
		a.fail(err)
	}
	if a.stage.Pressed() || a.ticker.Animating() || at.Before(a.awakeUntil) {
		return a.frame()
	}
	a.ticking = false
	return nil
}

// syncHeader re-reads the header from the current screen, which may have
// changed its title while handling input.
func (a *App) syncHeader() {
	if cur := a.router.Current(); cur != nil {
		a.header.Set(cur.Header())
	}
}

func (a *App) scroll(dy float64) {
	if s, ok := a.router.Current().(screens.Scroller); ok {
		s.Scroll(dy)
	}
}

func (a *App) fail(err error) {
	logging.Error(err)
	a.status, a.statusErr = err.Error(), true
}

func (a *App) clearError() {
	if a.statusErr {
		a.status, a.statusErr = "", false
	}
}

func (a *App) page() float64 {
	_, rows := a.renderer.Size()
	return float64(max(rows-2, 1)) * a.rowHeight()
}

func (a *App) cellWidth() float64 { return 10 * a.ratio }
func (a *App) rowHeight() float64 { return 20 * a.ratio }
