package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// Activity lists recent check-ins and check-outs, newest first.
type Activity struct {
	*tview.Table
	theme *ui.Theme
}

// NewActivity creates the activity table.
func NewActivity(theme *ui.Theme) *Activity {
	return &Activity{Table: newTable(theme, " Activity ", true), theme: theme}
}

// Name implements Component.
func (a *Activity) Name() string { return "Activity" }

// Init implements Component.
func (a *Activity) Init() {}

// Start implements Component.
func (a *Activity) Start() {}

// Stop implements Component.
func (a *Activity) Stop() {}

// Hints implements Component.
func (a *Activity) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "j/k", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders rows.
func (a *Activity) Update(rows []parking.ActivityView) {
	a.Clear()
	for i, h := range []string{"WHEN", "EVENT", "TICKET", "PLATE", "TYPE"} {
		a.SetCell(0, i, tview.NewTableCell(" "+h).
			SetSelectable(false).
			SetTextColor(a.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1))
	}
	for i, r := range rows {
		event, color := "in", a.theme.FlashInfoColor
		if r.Kind == bus.KindCheckedOut {
			event, color = "out", a.theme.FlashWarnColor
		}
		row := i + 1
		a.SetCell(row, 0, tview.NewTableCell(" "+r.At.Local().Format("01/02 15:04:05")).SetTextColor(a.theme.FgColor).SetExpansion(1))
		a.SetCell(row, 1, tview.NewTableCell(" "+event).SetTextColor(color).SetExpansion(1))
		a.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(r.Ticket)).SetTextColor(a.theme.FgColor).SetExpansion(1))
		a.SetCell(row, 3, tview.NewTableCell(" "+tview.Escape(r.Plate)).SetTextColor(a.theme.FgColor).SetExpansion(1))
		a.SetCell(row, 4, tview.NewTableCell(" "+r.Type).SetTextColor(a.theme.FgColor).SetExpansion(1))
	}
	a.SetTitle(fmt.Sprintf(" Activity (%d) ", len(rows)))
}
