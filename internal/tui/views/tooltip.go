package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/guard"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// HintLine shows help for the focused field.
type HintLine struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHintLine creates an empty hint line.
func NewHintLine(theme *ui.Theme) *HintLine {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &HintLine{TextView: tv, theme: theme}
}

// Show replaces the hint text.
func (h *HintLine) Show(text string) {
	h.Clear()
	_, _ = fmt.Fprintf(h, " [%s]ⓘ %s[-]", ui.ColorName(h.theme.CounterColor), tview.Escape(text))
}

// trigger is an input that declares help text. Triggers are never faded or
// detached, so the guard.Element methods do nothing.
type trigger struct {
	field *tview.InputField
	help  string
	hint  *HintLine
	bound bool
}

func (t *trigger) AddClass(string) {}
func (t *trigger) Remove()         {}

func (t *trigger) show() { t.hint.Show(t.help) }
func (t *trigger) hide() { t.hint.Clear() }

// Tooltips binds field help to the hint line: focus shows it, blur clears it.
type Tooltips struct{}

var _ guard.TooltipBinder = Tooltips{}

// Bind implements guard.TooltipBinder. Elements that are not desk triggers
// are ignored.
func (Tooltips) Bind(el guard.Element) {
	t, ok := el.(*trigger)
	if !ok || t.bound {
		return
	}
	t.bound = true
	t.field.SetFocusFunc(t.show)
	t.field.SetBlurFunc(t.hide)
}
