package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jask/cashflow/internal/screens"
)

type Action string

// Binding maps keys to an action within scopes. Scopes are "global" or a
// screen name.
type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry resolves key names to bindings. A scope lookup falls back to
// the global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const scopeGlobal = "global"

const (
	actionQuit       Action = "quit"
	actionHelp       Action = "help"
	actionLeft       Action = "left"
	actionRight      Action = "right"
	actionMenu       Action = "menu"
	actionAdd        Action = "add"
	actionScrollUp   Action = "scroll_up"
	actionScrollDown Action = "scroll_down"
	actionPageUp     Action = "page_up"
	actionPageDown   Action = "page_down"
	// actionScreen keys are consumed by the screen itself; the binding only
	// feeds the help line.
	actionScreen Action = "screen"
)

func scopeFor(s screens.Screen) string {
	if s == nil {
		return scopeGlobal
	}
	return s.Name().String()
}

// NewKeyRegistry returns the default bindings.
func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}
	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reports := screens.ScreenReport.String()
	reg(reports, actionScreen, []string{"←/→", "left", "right"}, "month")

	categories := screens.ScreenCategories.String()
	reg(categories, actionScreen, []string{"/"}, "filter")

	editor := screens.ScreenAddTransaction.String()
	reg(editor, actionScreen, []string{"tab"}, "next field")

	picker := screens.ScreenSelectTime.String()
	reg(picker, actionScreen, []string{"arrows", "left", "right", "up", "down"}, "day")
	reg(picker, actionScreen, []string{"pgup/pgdn", "pgup", "pgdown"}, "month")

	reg(scopeGlobal, actionLeft, []string{"esc"}, "back")
	reg(scopeGlobal, actionRight, []string{"enter"}, "confirm")
	reg(scopeGlobal, actionMenu, []string{"m"}, "menu")
	reg(scopeGlobal, actionAdd, []string{"a"}, "add")
	reg(scopeGlobal, actionScrollUp, []string{"↑/↓", "up", "k"}, "scroll")
	reg(scopeGlobal, actionScrollDown, []string{"down", "j"}, "")
	reg(scopeGlobal, actionPageUp, []string{"pgup"}, "")
	reg(scopeGlobal, actionPageDown, []string{"pgdown"}, "")
	reg(scopeGlobal, actionHelp, []string{"?"}, "help")
	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "quit")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// HelpBindings returns the bindings of scope that carry help text. The
// first key doubles as the displayed key.
func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		if len(b.Keys) == 0 || b.Help == "" {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	if scope == "" {
		return nil
	}
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		ch := trimmed[0]
		if ch >= 'A' && ch <= 'Z' {
			return trimmed
		}
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "pagedown", "pgdown")
	s = strings.ReplaceAll(s, "pageup", "pgup")
	return s
}

// keyMap adapts the registry to help.KeyMap for one scope.
type keyMap struct {
	registry *KeyRegistry
	scope    string
}

func (k keyMap) ShortHelp() []key.Binding {
	out := k.registry.HelpBindings(k.scope)
	if k.scope != scopeGlobal {
		out = append(out, k.registry.HelpBindings(scopeGlobal)...)
	}
	return out
}

func (k keyMap) FullHelp() [][]key.Binding {
	global := k.registry.HelpBindings(scopeGlobal)
	if k.scope == scopeGlobal {
		return [][]key.Binding{global}
	}
	local := k.registry.HelpBindings(k.scope)
	if len(local) == 0 {
		return [][]key.Binding{global}
	}
	return [][]key.Binding{local, global}
}
