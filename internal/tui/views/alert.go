package views

import (
	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/guard"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

const alertPage = "alert"

// Alert shows a modal that holds focus until dismissed. It implements
// guard.Alerter and must be called on the UI goroutine.
type Alert struct {
	pages *tview.Pages
	theme *ui.Theme
	focus func(p tview.Primitive)
	// current returns the primitive to refocus after dismissal.
	current func() tview.Primitive
	shown   []string
}

var _ guard.Alerter = (*Alert)(nil)

// NewAlert overlays modals on pages.
func NewAlert(pages *tview.Pages, theme *ui.Theme, focus func(tview.Primitive), current func() tview.Primitive) *Alert {
	return &Alert{pages: pages, theme: theme, focus: focus, current: current}
}

// Alert implements guard.Alerter.
func (a *Alert) Alert(msg string) {
	a.shown = append(a.shown, msg)
	prev := a.current()

	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"})
	modal.SetBackgroundColor(a.theme.BgColor)
	modal.SetTextColor(a.theme.FlashWarnColor)
	modal.SetBorderColor(a.theme.FlashWarnColor)
	modal.SetDoneFunc(func(int, string) {
		a.pages.RemovePage(alertPage)
		if prev != nil {
			a.focus(prev)
		}
	})

	a.pages.AddPage(alertPage, modal, false, true)
	a.focus(modal)
}

// Open reports whether an alert is on screen.
func (a *Alert) Open() bool {
	return a.pages.HasPage(alertPage)
}

// Messages returns every message alerted so far.
func (a *Alert) Messages() []string {
	return append([]string(nil), a.shown...)
}
