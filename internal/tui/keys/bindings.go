// Package keys dispatches key events to actions scoped by page.
package keys

import "github.com/gdamore/tcell/v2"

// Action is one key binding.
type Action struct {
	Key     tcell.Key
	Rune    rune
	Name    string
	Handler func()
}

// Matches reports whether ev triggers the action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds bindings in registration order. Page bindings shadow
// global ones.
type Registry struct {
	global []*Action
	pages  map[string][]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string][]*Action)}
}

// Global binds a rune for every page.
func (r *Registry) Global(ch rune, name string, fn func()) {
	r.global = append(r.global, &Action{Key: tcell.KeyRune, Rune: ch, Name: name, Handler: fn})
}

// GlobalKey binds a special key for every page.
func (r *Registry) GlobalKey(k tcell.Key, name string, fn func()) {
	r.global = append(r.global, &Action{Key: k, Name: name, Handler: fn})
}

// Page binds a rune on one page.
func (r *Registry) Page(page string, ch rune, name string, fn func()) {
	r.pages[page] = append(r.pages[page], &Action{Key: tcell.KeyRune, Rune: ch, Name: name, Handler: fn})
}

// HandleEvent runs the first action matching ev on page, then globally.
// It reports whether one ran.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	for _, a := range r.pages[page] {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}
