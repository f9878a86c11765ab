package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/guard"
	"github.com/matheus3301/chinopark/internal/tui/model"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// BannerStack shows one line per notification above the desk forms.
type BannerStack struct {
	*tview.Flex
	theme    *ui.Theme
	queue    Queue
	items    []*banner
	onResize func(height int)
}

// NewBannerStack creates an empty stack. Element calls from timers are
// funnelled through queue.
func NewBannerStack(theme *ui.Theme, queue Queue) *BannerStack {
	f := tview.NewFlex().SetDirection(tview.FlexRow)
	f.SetBackgroundColor(theme.BgColor)
	return &BannerStack{Flex: f, theme: theme, queue: queue}
}

// SetOnResize is called with the new height whenever a banner goes away.
func (s *BannerStack) SetOnResize(fn func(height int)) { s.onResize = fn }

// Height is the number of rows the stack needs.
func (s *BannerStack) Height() int { return len(s.items) }

// Replace drops every banner and shows bs instead.
func (s *BannerStack) Replace(bs []model.Banner) {
	s.Clear()
	s.items = nil
	for _, b := range bs {
		item := &banner{stack: s, data: b, view: tview.NewTextView().SetDynamicColors(true)}
		item.view.SetBackgroundColor(s.theme.BgColor)
		item.render()
		s.items = append(s.items, item)
		s.AddItem(item.view, 1, 0, false)
	}
}

// Elements returns the banners currently shown.
func (s *BannerStack) Elements() []guard.Element {
	out := make([]guard.Element, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, b)
	}
	return out
}

// Texts returns the text of each banner still shown, top to bottom.
func (s *BannerStack) Texts() []string {
	out := make([]string, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, b.data.Text)
	}
	return out
}

func (s *BannerStack) remove(b *banner) {
	for i, item := range s.items {
		if item != b {
			continue
		}
		s.RemoveItem(b.view)
		s.items = append(s.items[:i], s.items[i+1:]...)
		if s.onResize != nil {
			s.onResize(len(s.items))
		}
		return
	}
}

// banner is one notification line. It implements guard.Element.
type banner struct {
	stack *BannerStack
	data  model.Banner
	view  *tview.TextView
	faded bool
}

// AddClass implements guard.Element. Only the fade class has a look.
func (b *banner) AddClass(name string) {
	if name != guard.FadeClass {
		return
	}
	b.stack.queue(func() {
		b.faded = true
		b.render()
	})
}

// Remove implements guard.Element. Removing twice is a no-op.
func (b *banner) Remove() {
	b.stack.queue(func() { b.stack.remove(b) })
}

func (b *banner) render() {
	color := ui.ColorName(b.stack.theme.FlashInfoColor)
	mark := "✔"
	if b.data.Category == model.BannerDanger {
		color = ui.ColorName(b.stack.theme.FlashErrColor)
		mark = "✘"
	}
	attrs := "b"
	if b.faded {
		attrs = "d"
	}
	b.view.Clear()
	_, _ = fmt.Fprintf(b.view, " [%s::%s]%s %s[-:-:-]", color, attrs, mark, tview.Escape(b.data.Text))
}
