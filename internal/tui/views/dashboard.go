package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// Dashboard lists capacity per vehicle type and the vehicles parked now.
type Dashboard struct {
	*tview.Flex
	theme    *ui.Theme
	spaces   *tview.Table
	vehicles *tview.Table
	report   *parking.ReportView
	filter   string
}

// NewDashboard creates the dashboard tables.
func NewDashboard(theme *ui.Theme) *Dashboard {
	d := &Dashboard{
		Flex:     tview.NewFlex().SetDirection(tview.FlexRow),
		theme:    theme,
		spaces:   newTable(theme, " Spaces ", false),
		vehicles: newTable(theme, " Parked ", true),
	}
	d.AddItem(d.spaces, 6, 0, false).
		AddItem(d.vehicles, 0, 1, true)
	return d
}

func newTable(theme *ui.Theme, title string, selectable bool) *tview.Table {
	t := tview.NewTable().
		SetSelectable(selectable, false).
		SetBorders(false).
		SetFixed(1, 0)
	t.SetBorder(true)
	t.SetBorderColor(theme.BorderColor)
	t.SetBackgroundColor(theme.BgColor)
	t.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	t.SetTitle(title)
	t.SetTitleColor(theme.TitleColor)
	return t
}

// Name implements Component.
func (d *Dashboard) Name() string { return "Dashboard" }

// Init implements Component.
func (d *Dashboard) Init() {}

// Start implements Component.
func (d *Dashboard) Start() {}

// Stop implements Component.
func (d *Dashboard) Stop() {}

// Hints implements Component.
func (d *Dashboard) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "n", Description: "New check-in"},
		{Key: "o", Description: "Check out"},
		{Key: "a", Description: "Activity"},
		{Key: "t", Description: "Ticket"},
		{Key: "r", Description: "Refresh"},
		{Key: "/", Description: "Filter"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
	}
}

// Vehicles returns the vehicle table primitive, for focusing.
func (d *Dashboard) Vehicles() *tview.Table { return d.vehicles }

// Update refreshes both tables.
func (d *Dashboard) Update(r *parking.ReportView) {
	d.report = r
	d.render()
}

// SetFilter narrows the vehicle table to plates or drivers containing text.
func (d *Dashboard) SetFilter(text string) {
	d.filter = strings.ToLower(strings.TrimSpace(text))
	d.render()
}

// ClearFilter clears the active filter.
func (d *Dashboard) ClearFilter() {
	d.SetFilter("")
}

func (d *Dashboard) render() {
	d.renderSpaces()
	d.renderVehicles()
}

func (d *Dashboard) header(t *tview.Table, cols ...string) {
	for i, h := range cols {
		t.SetCell(0, i, tview.NewTableCell(" "+h).
			SetSelectable(false).
			SetTextColor(d.theme.TableHeaderFg).
			SetBackgroundColor(d.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1))
	}
}

func (d *Dashboard) cell(text string) *tview.TableCell {
	return tview.NewTableCell(" " + tview.Escape(clean(text))).
		SetTextColor(d.theme.FgColor).
		SetExpansion(1)
}

func (d *Dashboard) renderSpaces() {
	d.spaces.Clear()
	d.header(d.spaces, "TYPE", "TOTAL", "OCCUPIED", "AVAILABLE")
	if d.report == nil {
		return
	}
	for i, s := range d.report.Spaces {
		row := i + 1
		avail := d.cell(fmt.Sprint(s.Available))
		if s.Available == 0 {
			avail.SetTextColor(d.theme.FlashErrColor)
		}
		d.spaces.SetCell(row, 0, d.cell(s.Type))
		d.spaces.SetCell(row, 1, d.cell(fmt.Sprint(s.Total)))
		d.spaces.SetCell(row, 2, d.cell(fmt.Sprint(s.Occupied)))
		d.spaces.SetCell(row, 3, avail)
	}
}

func (d *Dashboard) renderVehicles() {
	d.vehicles.Clear()
	d.header(d.vehicles, "TICKET", "PLATE", "TYPE", "DRIVER", "SINCE")
	if d.report == nil {
		d.vehicles.SetTitle(" Parked ")
		return
	}
	row := 1
	for _, v := range d.visible() {
		d.vehicles.SetCell(row, 0, d.cell(v.Ticket))
		d.vehicles.SetCell(row, 1, d.cell(v.Plate))
		d.vehicles.SetCell(row, 2, d.cell(v.Type))
		d.vehicles.SetCell(row, 3, d.cell(v.DriverName))
		d.vehicles.SetCell(row, 4, d.cell(v.CheckInTime.Local().Format("01/02 15:04")))
		row++
	}
	if d.filter != "" {
		d.vehicles.SetTitle(fmt.Sprintf(" Parked (%d/%d) filter: %s ", row-1, len(d.report.Vehicles), d.filter))
	} else {
		d.vehicles.SetTitle(fmt.Sprintf(" Parked (%d) ", len(d.report.Vehicles)))
	}
}

func (d *Dashboard) visible() []parking.VehicleView {
	if d.report == nil {
		return nil
	}
	if d.filter == "" {
		return d.report.Vehicles
	}
	var out []parking.VehicleView
	for _, v := range d.report.Vehicles {
		if strings.Contains(strings.ToLower(v.Plate), d.filter) ||
			strings.Contains(strings.ToLower(v.DriverName), d.filter) {
			out = append(out, v)
		}
	}
	return out
}

// Selected returns the vehicle under the cursor.
func (d *Dashboard) Selected() (parking.VehicleView, bool) {
	row, _ := d.vehicles.GetSelection()
	vs := d.visible()
	idx := row - 1
	if idx < 0 || idx >= len(vs) {
		return parking.VehicleView{}, false
	}
	return vs[idx], true
}
