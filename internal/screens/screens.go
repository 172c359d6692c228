// Package screens implements the application screens on top of
// view.Surface, the header bar, and the router that moves between screens.
//
// Screens never call each other. They dispatch event.ChangeScreen and
// event.ChangeTransaction on the shared bus with pooled records, and the
// Router and Controller act on them.
package screens

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/event"
	"github.com/jask/cashflow/internal/pool"
	"github.com/jask/cashflow/internal/scene"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/view"
)

// ScreenName identifies a screen. ScreenBack asks the router to pop.
type ScreenName int

const (
	ScreenBack ScreenName = iota - 1
	ScreenAccounts
	ScreenCategories
	ScreenSelectTime
	ScreenTransactions
	ScreenReport
	ScreenAddTransaction
	ScreenMenu
)

func (n ScreenName) String() string {
	switch n {
	case ScreenBack:
		return "back"
	case ScreenAccounts:
		return "accounts"
	case ScreenCategories:
		return "categories"
	case ScreenSelectTime:
		return "select-time"
	case ScreenTransactions:
		return "transactions"
	case ScreenReport:
		return "report"
	case ScreenAddTransaction:
		return "add-transaction"
	case ScreenMenu:
		return "menu"
	}
	return fmt.Sprintf("screen(%d)", int(n))
}

// Header titles.
const (
	TitleMenu            = "Menu"
	TitleAccounts        = "Accounts"
	TitleCategories      = "Categories"
	TitleSelectAccount   = "Select Account"
	TitleSelectCategory  = "Select Category"
	TitleEditCategories  = "Edit Categories"
	TitleSelectTime      = "Select Time & Date"
	TitleTransactions    = "Transactions"
	TitleAddTransaction  = "Add Transaction"
	TitleEditTransaction = "Edit Transaction"
	TitleReport          = "Report"
)

// HeaderSpec is what the header shows for a screen.
type HeaderSpec struct {
	Title string
	Left  view.HeaderAction
	Right view.HeaderAction
}

// Screen is what the router drives. The lifecycle methods come from the
// embedded view.Surface.
type Screen interface {
	event.Target
	Show() error
	Hide() error
	Update(data any, mode view.Mode) error
	State() view.TransitionState
	Mode() view.Mode
	Node() *scene.Node
	Name() ScreenName
	Header() HeaderSpec
	Release()
}

// KeyReceiver is implemented by screens that take keyboard input while
// shown. It reports whether the key was consumed.
type KeyReceiver interface {
	HandleKey(msg tea.KeyMsg) (bool, tea.Cmd)
}

// Scroller is implemented by screens with scrollable content.
type Scroller interface {
	Scroll(dy float64)
}

// ErrMsg carries an error raised while handling a key back to the program
// loop.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

func errCmd(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// ChangeScreenData is the pooled payload of event.ChangeScreen. Whoever
// allocates a record releases it after DispatchEvent returns; handlers must
// not keep it.
type ChangeScreenData struct {
	Screen ScreenName
	Mode   view.Mode
	Data   any
	// UpdateBack also updates the screen revealed by ScreenBack.
	UpdateBack bool
}

func (d *ChangeScreenData) Reset() { *d = ChangeScreenData{} }

// ChangeScreenPool holds ChangeScreenData records.
type ChangeScreenPool = pool.Pool[*ChangeScreenData]

// NewChangeScreenPool allocates capacity records up front.
func NewChangeScreenPool(capacity int) *ChangeScreenPool {
	return pool.New("screen changes", capacity, func(int) *ChangeScreenData {
		return &ChangeScreenData{}
	})
}

// TransactionChange is the payload of event.ChangeTransaction: an editor
// request and, optionally, where to go once it is applied. A nil Next.Data
// is filled with the resulting draft.
type TransactionChange struct {
	Request service.ChangeRequest
	Next    *ChangeScreenData
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Ctx context.Context
	Env view.Env

	// Width and Height of the content area below the header, in pixels.
	Width  float64
	Height float64

	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
	Editor       *service.Editor
	Reporter     *service.Reporter

	Bus     *event.Dispatcher
	Changes *ChangeScreenPool

	RowCapacity int
	ScreenTween time.Duration
	ExpandTween time.Duration
	SwipeTween  time.Duration

	CurrencySymbol string
	DateFormat     string
	Location       *time.Location
	Now            func() time.Time
}

func (d Deps) ratio() float64 {
	if d.Env.PixelRatio <= 0 {
		return 1
	}
	return d.Env.PixelRatio
}

// cellWidth and rowHeight are one terminal cell in pixels.
func (d Deps) cellWidth() float64 { return 10 * d.ratio() }
func (d Deps) rowHeight() float64 { return 20 * d.ratio() }

func (d Deps) context() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

func (d Deps) dateFormat() string {
	if d.DateFormat == "" {
		return "02/01/2006"
	}
	return d.DateFormat
}

func (d Deps) surfaceOptions() view.SurfaceOptions {
	return view.SurfaceOptions{Duration: d.ScreenTween}
}

// navigate asks the router for another screen.
func (d Deps) navigate(name ScreenName, mode view.Mode, data any) error {
	rec, err := d.Changes.Allocate()
	if err != nil {
		return fmt.Errorf("change screen to %s: %w", name, err)
	}
	defer d.Changes.Release(rec)
	rec.Screen, rec.Mode, rec.Data = name, mode, data
	return d.Bus.DispatchEvent(event.ChangeScreen, rec)
}

// back pops the router stack, optionally updating the revealed screen.
func (d Deps) back(data any, update bool) error {
	rec, err := d.Changes.Allocate()
	if err != nil {
		return fmt.Errorf("change screen back: %w", err)
	}
	defer d.Changes.Release(rec)
	rec.Screen, rec.Data, rec.UpdateBack = ScreenBack, data, update
	return d.Bus.DispatchEvent(event.ChangeScreen, rec)
}

// changeTransaction sends req to the editor and then moves to next.
func (d Deps) changeTransaction(req service.ChangeRequest, next ScreenName, mode view.Mode) error {
	rec, err := d.Changes.Allocate()
	if err != nil {
		return fmt.Errorf("change transaction %s: %w", req.Type, err)
	}
	defer d.Changes.Release(rec)
	rec.Screen, rec.Mode = next, mode
	return d.Bus.DispatchEvent(event.ChangeTransaction, &TransactionChange{Request: req, Next: rec})
}
