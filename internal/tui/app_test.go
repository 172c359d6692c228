package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/config"
	"github.com/jask/cashflow/internal/database"
	"github.com/jask/cashflow/internal/database/repository"
	"github.com/jask/cashflow/internal/logging"
	"github.com/jask/cashflow/internal/screens"
	"github.com/jask/cashflow/internal/service"
	"github.com/jask/cashflow/internal/view"
)

const frame = time.Second / 60

type harness struct {
	t      *testing.T
	ctx    context.Context
	app    *App
	at     time.Time
	txs    *repository.TransactionRepo
	editor *service.Editor
}

func testConfig() config.Config {
	return config.Config{
		UI: config.UIConfig{
			Columns:        80,
			Rows:           22,
			PixelRatio:     1,
			FrameRate:      60,
			ScreenTween:    400 * time.Millisecond,
			ExpandTween:    400 * time.Millisecond,
			SwipeTween:     250 * time.Millisecond,
			DateFormat:     "02/01/2006",
			CurrencySymbol: "$",
			Timezone:       "UTC",
		},
		Pool: config.PoolConfig{Listeners: 2048, Rows: 32, ScreenChanges: 8},
	}
}

// newHarness opens a seeded database; setup runs before the app is built.
func newHarness(t *testing.T, setup func(h *harness), opts ...Option) *harness {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "tui.log"))
	t.Cleanup(func() { logging.Configure("") })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	db, err := database.Open(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, ""))
	require.NoError(t, database.SeedDefaults(ctx, db))

	h := &harness{
		t:   t,
		ctx: ctx,
		at:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		txs: repository.NewTransactionRepo(db),
	}
	cats := repository.NewCategoryRepo(db)
	h.editor = &service.Editor{
		Transactions: h.txs,
		Defaults:     service.Defaults{AccountID: database.DefaultAccountID},
		Now:          h.now,
	}
	if setup != nil {
		setup(h)
	}

	opts = append([]Option{WithClock(h.now)}, opts...)
	app, err := New(ctx, testConfig(), Repos{
		Accounts:     repository.NewAccountRepo(db),
		Categories:   cats,
		Transactions: h.txs,
	}, Services{
		Editor:   h.editor,
		Reporter: &service.Reporter{Transactions: h.txs, Categories: cats},
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	h.app = app

	require.NotNil(t, app.Init())
	require.True(t, app.Ticking())
	h.frames(70)
	return h
}

func (h *harness) now() time.Time { return h.at }

// frames delivers n frame messages and returns the last command.
func (h *harness) frames(n int) tea.Cmd {
	var cmd tea.Cmd
	for range n {
		h.at = h.at.Add(frame)
		_, cmd = h.app.Update(frameMsg(h.at))
	}
	return cmd
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.app.Update(msg)
	return cmd
}

func (h *harness) press(s string) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) keyType(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

func (h *harness) click(x, y int) {
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func (h *harness) view() string {
	return ansi.Strip(h.app.View())
}

func (h *harness) current() screens.ScreenName {
	return h.app.Router().Current().Name()
}

func TestAppRendersStartScreen(t *testing.T) {
	h := newHarness(t, nil)

	lines := strings.Split(h.view(), "\n")
	require.Len(t, lines, 24)
	require.Contains(t, lines[0], screens.TitleTransactions)
	require.Contains(t, lines[0], "≡ Menu")
	require.Contains(t, lines[0], "+ Add")
	require.Contains(t, lines[23], "quit")
	for _, line := range lines {
		require.Equal(t, 80, ansi.StringWidth(line))
	}
	require.Equal(t, screens.ColorBlue, strings.ToUpper(h.app.renderer.Cell(0, 0).Bg.Hex()))
}

func TestAppWindowSizePadsView(t *testing.T) {
	h := newHarness(t, nil)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})

	lines := strings.Split(h.view(), "\n")
	require.Len(t, lines, 30)
	require.Equal(t, 100, ansi.StringWidth(lines[0]))
	require.Equal(t, strings.Repeat(" ", 100), lines[25])
}

func TestAppKeysDriveHeaderActions(t *testing.T) {
	h := newHarness(t, nil)

	require.NotNil(t, h.press("a"))
	h.frames(70)
	require.Equal(t, screens.ScreenAddTransaction, h.current())
	require.NotNil(t, h.editor.Current())
	require.Contains(t, h.view(), screens.TitleAddTransaction)

	h.keyType(tea.KeyEsc)
	h.frames(70)
	require.Equal(t, []screens.ScreenName{screens.ScreenTransactions}, h.app.Router().Stack())
	require.Nil(t, h.editor.Current())

	h.press("m")
	h.frames(70)
	require.Equal(t, screens.ScreenMenu, h.current())
	h.keyType(tea.KeyEsc)
	h.frames(70)
	require.Equal(t, screens.ScreenTransactions, h.current())

	cmd := h.press("q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppScreenKeysComeFirst(t *testing.T) {
	h := newHarness(t, nil, WithStart(screens.ScreenReport))
	require.Contains(t, h.app.header.Spec().Title, "October 2026")

	h.keyType(tea.KeyLeft)
	require.Contains(t, h.app.header.Spec().Title, "September 2026")
	require.Contains(t, h.view(), "September 2026")
	require.Equal(t, screens.ScreenReport, h.current())
}

func TestAppMouseClickOnHeader(t *testing.T) {
	h := newHarness(t, nil)

	h.click(2, 0)
	h.frames(70)
	require.Equal(t, screens.ScreenMenu, h.current())
	require.Contains(t, h.view(), screens.TitleMenu)
}

func TestAppWheelScrollsCurrentScreen(t *testing.T) {
	h := newHarness(t, func(h *harness) {
		for i := range 40 {
			require.NoError(h.t, h.txs.Insert(h.ctx, repository.Transaction{
				ID:          fmt.Sprintf("tx%02d", i),
				AccountID:   database.DefaultAccountID,
				Date:        h.at.Add(-time.Duration(i+1) * time.Minute),
				AmountCents: 100,
				Kind:        repository.KindExpense,
				Method:      repository.MethodCash,
				Currency:    "USD",
				Note:        fmt.Sprintf("row%02d", i),
			}))
		}
	})
	require.Contains(t, h.view(), "row00")

	for range 3 {
		h.send(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	}
	view := h.view()
	require.NotContains(t, view, "row00")
	require.Contains(t, view, "row09")

	h.keyType(tea.KeyUp)
	require.Contains(t, h.view(), "row08")
}

func TestAppFrameScheduling(t *testing.T) {
	h := newHarness(t, nil)
	require.False(t, h.app.Ticking())

	require.NotNil(t, h.send(tea.MouseMsg{X: 40, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	require.Nil(t, h.send(tea.MouseMsg{X: 41, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}))
	require.NotNil(t, h.frames(120), "frames continue while the pointer is down")
	require.True(t, h.app.Ticking())

	h.send(tea.MouseMsg{X: 41, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.NotNil(t, h.frames(30))
	require.Nil(t, h.frames(40))
	require.False(t, h.app.Ticking())

	require.Nil(t, h.send(tea.MouseMsg{X: 41, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}))
}

func TestAppFramesUntilTweensSettle(t *testing.T) {
	h := newHarness(t, nil)
	require.False(t, h.app.Ticking())

	require.NotNil(t, h.press("m"))
	cmd, n := tea.Cmd(nil), 0
	for n < 500 {
		// Stalled frames fall back to the nominal delta while the wall clock
		// races past the settle window.
		h.at = h.at.Add(time.Second)
		_, cmd = h.app.Update(frameMsg(h.at))
		n++
		if cmd == nil {
			break
		}
	}
	require.Nil(t, cmd)
	require.Greater(t, n, 2, "frames must outlive the settle window")
	require.Equal(t, screens.ScreenMenu, h.current())
	require.Equal(t, view.Shown, h.app.Router().Current().State())
	require.Zero(t, h.app.Router().Hiding())
	require.False(t, h.app.Ticking())
}

func TestAppErrorsReachStatusLine(t *testing.T) {
	h := newHarness(t, nil)

	h.send(screens.ErrMsg{Err: errors.New("disk full")})
	require.Equal(t, "disk full", h.app.Status())
	lines := strings.Split(h.view(), "\n")
	require.Contains(t, lines[len(lines)-2], "disk full")

	h.send(statusMsg("saved"))
	require.Equal(t, "saved", h.app.Status())
	h.send(screens.ErrMsg{Err: errors.New("again")})
	h.press("m")
	require.Empty(t, h.app.Status())
}

func TestAppHelpOverlay(t *testing.T) {
	h := newHarness(t, nil, WithStart(screens.ScreenReport))

	require.NotContains(t, h.view(), "╭")
	h.press("?")
	view := h.view()
	require.Contains(t, view, "╭")
	require.Contains(t, view, "month")

	h.keyType(tea.KeyEsc)
	require.NotContains(t, h.view(), "╭")
	require.Equal(t, screens.ScreenReport, h.current())
}
