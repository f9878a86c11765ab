package guard

import "time"

// Element identifiers the guard looks up on page-ready.
const (
	CheckInFormID       = "checkInForm"
	CheckInPlateID      = "plateNumber"
	CheckOutFormID      = "checkOutForm"
	CheckOutPlateID     = "checkOutPlateNumber"
	FadeClass           = "fade"
	DismissibleClass    = "alert"
	TooltipTriggerAttr  = `data-bs-toggle="tooltip"`
	DefaultDismissAfter = 3000 * time.Millisecond
	DefaultFadeFor      = 150 * time.Millisecond
)

// Document is the page a Guard is attached to.
type Document interface {
	Form(id string) (Form, bool)
	Field(id string) (Field, bool)
	// Dismissibles returns the notification banners present right now.
	Dismissibles() []Element
	// TooltipTriggers returns the elements declaring a hover tooltip.
	TooltipTriggers() []Element
}

// Form accepts a submission interceptor.
type Form interface {
	OnSubmit(handler func(*SubmitEvent))
}

// Field is a text input.
type Field interface {
	Value() string
}

// Element is anything the guard can fade or detach.
type Element interface {
	AddClass(name string)
	Remove()
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// TooltipBinder attaches hover-tooltip behaviour to one trigger.
type TooltipBinder interface {
	Bind(el Element)
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SubmitEvent is handed to submission interceptors. A prevented event
// must not be sent by the host.
type SubmitEvent struct {
	FormID    string
	prevented bool
}

// PreventDefault cancels the submission.
func (e *SubmitEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether an interceptor cancelled the submission.
func (e *SubmitEvent) DefaultPrevented() bool { return e.prevented }

// Clock schedules with the runtime timer.
type Clock struct{}

// AfterFunc implements Scheduler.
func (Clock) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }
