package ui

import "github.com/rivo/tview"

// Pages is a stack of Components over tview.Pages. The top page is shown
// and started; pages below it are hidden and stopped.
type Pages struct {
	*tview.Pages
	stack    []string
	comps    map[string]Component
	onChange func(top Component, stack []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
		comps: make(map[string]Component),
	}
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(top Component, stack []string)) {
	p.onChange = fn
}

// Add registers c under its name with the primitive that draws it.
func (p *Pages) Add(c Component, prim tview.Primitive) {
	p.comps[c.Name()] = c
	p.AddPage(c.Name(), prim, true, false)
	c.Init()
}

// Push shows name on top of the stack. Pushing the current page is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if top := p.top(); top != nil {
		top.Stop()
		p.HidePage(top.Name())
	}
	p.stack = append(p.stack, name)
	p.show(name)
}

// Pop removes the top page and shows the previous one. The root page is
// never popped. Returns the popped name, or empty.
func (p *Pages) Pop() string {
	if len(p.stack) < 2 {
		return ""
	}
	name := p.stack[len(p.stack)-1]
	if c := p.comps[name]; c != nil {
		c.Stop()
	}
	p.HidePage(name)
	p.stack = p.stack[:len(p.stack)-1]
	p.show(p.stack[len(p.stack)-1])
	return name
}

// Reset clears the stack and shows only name.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		if c := p.comps[n]; c != nil {
			c.Stop()
		}
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.show(name)
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the page names, bottom first.
func (p *Pages) Stack() []string {
	return append([]string(nil), p.stack...)
}

func (p *Pages) top() Component {
	return p.comps[p.Current()]
}

func (p *Pages) show(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	if c := p.comps[name]; c != nil {
		c.Start()
	}
	if p.onChange != nil {
		p.onChange(p.top(), p.Stack())
	}
}
