package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{TextView: tv, theme: theme}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Init implements Component.
func (hv *HelpView) Init() {}

// Start implements Component.
func (hv *HelpView) Start() {}

// Stop implements Component.
func (hv *HelpView) Stop() {}

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

func (hv *HelpView) render() {
	kc := ui.ColorName(hv.theme.MenuKeyColor)
	key := func(k string) string { return fmt.Sprintf("[%s]%s[-:-:-]", kc, k) }

	_, _ = fmt.Fprintf(hv, `
  [::b]Global Keys[-:-:-]

  %s      Command mode        %s    Cancel / Go back
  %s      Filter parked       %s      Help
  %s      Quit                %s Quit immediately

  [::b]Dashboard[-:-:-]

  %s      Check-in form       %s      Check-out form
  %s      Activity            %s      Ticket of selected
  %s      Refresh now

  [::b]Desk[-:-:-]

  %s    Next field          %s Switch form
  %s  Submit (on button)

  Plates are 3-10 letters or digits. Notifications fade after a few seconds.

  [::b]Commands (: mode)[-:-:-]

  %s   Check out a plate
  %s         Show the ticket for a plate
  %s  %s  %s  %s
`,
		key(":"), key("Esc"),
		key("/"), key("?"),
		key("q"), key("Ctrl-C"),
		key("n"), key("o"),
		key("a"), key("t"),
		key("r"),
		key("Tab"), key("Ctrl-O"),
		key("Enter"),
		key(":checkout <plate>"),
		key(":ticket <plate>"),
		key(":refresh"), key(":activity"), key(":help"), key(":quit"),
	)
}
