package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/guard"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/tui/model"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// Queue runs f on the UI goroutine and redraws. It is
// tview.Application.QueueUpdateDraw in the running app.
type Queue func(f func())

// Desk is the attendant's page: a banner stack above the check-in and
// check-out forms, and a hint line for field help. It implements
// guard.Document; Load starts a new page so the guard can be attached again.
type Desk struct {
	*tview.Flex
	theme    *ui.Theme
	queue    Queue
	banners  *BannerStack
	hint     *HintLine
	checkIn  *deskForm
	checkOut *deskForm
	fields   map[string]*field
	triggers []guard.Element
	focus    func(p tview.Primitive)

	onCheckIn  func(model.CheckInForm)
	onCheckOut func(plate string)
}

var _ guard.Document = (*Desk)(nil)

// NewDesk builds the desk. queue must be safe to call from any goroutine.
func NewDesk(theme *ui.Theme, queue Queue) *Desk {
	d := &Desk{
		Flex:   tview.NewFlex().SetDirection(tview.FlexRow),
		theme:  theme,
		queue:  queue,
		hint:   NewHintLine(theme),
		fields: make(map[string]*field),
	}
	d.banners = NewBannerStack(theme, queue)
	d.banners.SetOnResize(func(h int) { d.ResizeItem(d.banners, h, 0) })
	d.build()
	return d
}

// Name implements Component.
func (d *Desk) Name() string { return "Desk" }

// Init implements Component.
func (d *Desk) Init() {}

// Start implements Component.
func (d *Desk) Start() {}

// Stop implements Component.
func (d *Desk) Stop() {}

// Hints implements Component.
func (d *Desk) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl-O", Description: "Switch form"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnCheckIn sets the action run for a check-in submission that no
// interceptor prevented.
func (d *Desk) SetOnCheckIn(fn func(model.CheckInForm)) { d.onCheckIn = fn }

// SetOnCheckOut sets the action run for an unprevented check-out submission.
func (d *Desk) SetOnCheckOut(fn func(plate string)) { d.onCheckOut = fn }

// CheckInForm returns the check-in form primitive, for focusing.
func (d *Desk) CheckInForm() *tview.Form { return d.checkIn.Form }

// CheckOutForm returns the check-out form primitive.
func (d *Desk) CheckOutForm() *tview.Form { return d.checkOut.Form }

func (d *Desk) build() {
	plateIn := d.addField(guard.CheckInPlateID, "Plate Number", 12, "3-10 letters or digits, no spaces")
	color := d.addField("vehicleColor", "Color", 20, "")
	driver := d.addField("driverName", "Driver Name", 30, "")
	idNumber := d.addField("driverIdNumber", "ID Number", 20, "")
	phone := d.addField("driverPhone", "Phone", 20, "")
	residence := d.addField("driverResidence", "Residence", 30, "")

	vehicleType := tview.NewDropDown().SetLabel("Vehicle Type").SetOptions(parking.VehicleTypes, nil)
	vehicleType.SetCurrentOption(len(parking.VehicleTypes) - 1)
	idType := tview.NewDropDown().SetLabel("ID Type").SetOptions(parking.DriverIDTypes, nil)
	idType.SetCurrentOption(0)

	in := tview.NewForm().
		AddFormItem(plateIn.InputField).
		AddFormItem(vehicleType).
		AddFormItem(color.InputField).
		AddFormItem(driver.InputField).
		AddFormItem(idType).
		AddFormItem(idNumber.InputField).
		AddFormItem(phone.InputField).
		AddFormItem(residence.InputField)
	d.checkIn = newDeskForm(guard.CheckInFormID, in, d.theme, " Check In ")
	d.checkIn.action = func() {
		if d.onCheckIn == nil {
			return
		}
		_, vt := vehicleType.GetCurrentOption()
		_, it := idType.GetCurrentOption()
		d.onCheckIn(model.CheckInForm{
			Plate:           plateIn.Value(),
			Type:            vt,
			Color:           color.Value(),
			DriverName:      driver.Value(),
			DriverIDType:    it,
			DriverIDNumber:  idNumber.Value(),
			DriverPhone:     phone.Value(),
			DriverResidence: residence.Value(),
		})
	}
	in.AddButton("Check In", d.checkIn.submit)

	plateOut := d.addField(guard.CheckOutPlateID, "Plate Number", 12, "Plate of a parked vehicle")
	out := tview.NewForm().AddFormItem(plateOut.InputField)
	d.checkOut = newDeskForm(guard.CheckOutFormID, out, d.theme, " Check Out ")
	d.checkOut.action = func() {
		if d.onCheckOut != nil {
			d.onCheckOut(plateOut.Value())
		}
	}
	out.AddButton("Check Out", d.checkOut.submit)

	forms := tview.NewFlex().
		AddItem(in, 0, 2, true).
		AddItem(out, 0, 1, false)

	d.AddItem(d.banners, 0, 0, false).
		AddItem(forms, 0, 1, true).
		AddItem(d.hint, 1, 0, false)

	d.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyCtrlO {
			d.toggleForm()
			return nil
		}
		return ev
	})
}

func (d *Desk) addField(id, label string, width int, help string) *field {
	input := tview.NewInputField().SetLabel(label).SetFieldWidth(width)
	input.SetFieldBackgroundColor(d.theme.FieldBgColor)
	f := &field{InputField: input}
	d.fields[id] = f
	if help != "" {
		d.triggers = append(d.triggers, &trigger{field: input, help: help, hint: d.hint})
	}
	return f
}

// SetFocusFunc sets how the desk moves focus between its forms.
func (d *Desk) SetFocusFunc(fn func(p tview.Primitive)) { d.focus = fn }

func (d *Desk) toggleForm() {
	if d.focus == nil {
		return
	}
	if d.checkIn.HasFocus() {
		d.focus(d.checkOut.Form)
		return
	}
	d.focus(d.checkIn.Form)
}

// Banners returns the banner stack.
func (d *Desk) Banners() *BannerStack { return d.banners }

// Load starts a new page: it drops interceptors attached to the previous
// page, clears the inputs and shows banners. Must run on the UI goroutine.
func (d *Desk) Load(banners []model.Banner) {
	d.checkIn.reset()
	d.checkOut.reset()
	for _, f := range d.fields {
		f.SetText("")
	}
	d.hint.Clear()
	d.banners.Replace(banners)
	d.ResizeItem(d.banners, d.banners.Height(), 0)
}

// Prefill sets a field's text after Load.
func (d *Desk) Prefill(id, text string) {
	if f, ok := d.fields[id]; ok {
		f.SetText(text)
	}
}

// Form implements guard.Document.
func (d *Desk) Form(id string) (guard.Form, bool) {
	switch id {
	case guard.CheckInFormID:
		return d.checkIn, true
	case guard.CheckOutFormID:
		return d.checkOut, true
	}
	return nil, false
}

// Field implements guard.Document.
func (d *Desk) Field(id string) (guard.Field, bool) {
	f, ok := d.fields[id]
	if !ok {
		return nil, false
	}
	return f, true
}

// Dismissibles implements guard.Document.
func (d *Desk) Dismissibles() []guard.Element {
	return d.banners.Elements()
}

// TooltipTriggers implements guard.Document.
func (d *Desk) TooltipTriggers() []guard.Element {
	return d.triggers
}

// deskForm is a tview.Form whose submit button runs interceptors before the
// form's action.
type deskForm struct {
	*tview.Form
	id       string
	handlers []func(*guard.SubmitEvent)
	action   func()
}

func newDeskForm(id string, form *tview.Form, theme *ui.Theme, title string) *deskForm {
	form.SetBorder(true)
	form.SetTitle(title)
	form.SetTitleColor(theme.TitleColor)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetButtonBackgroundColor(theme.MenuKeyColor)
	return &deskForm{Form: form, id: id}
}

// OnSubmit implements guard.Form.
func (f *deskForm) OnSubmit(h func(*guard.SubmitEvent)) {
	f.handlers = append(f.handlers, h)
}

func (f *deskForm) submit() {
	evt := &guard.SubmitEvent{FormID: f.id}
	for _, h := range f.handlers {
		h(evt)
	}
	if evt.DefaultPrevented() || f.action == nil {
		return
	}
	f.action()
}

func (f *deskForm) reset() {
	f.handlers = nil
}

type field struct {
	*tview.InputField
}

// Value implements guard.Field.
func (f *field) Value() string { return f.GetText() }
