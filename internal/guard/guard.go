// Package guard validates plate forms and tidies transient banners on a page.
package guard

import (
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/plate"
)

// binding pairs a form with the plate field it guards.
type binding struct {
	form  string
	field string
}

var bindings = []binding{
	{form: CheckInFormID, field: CheckInPlateID},
	{form: CheckOutFormID, field: CheckOutPlateID},
}

// Guard wires plate validation, banner dismissal and tooltips into a Document.
type Guard struct {
	alerter      Alerter
	tooltips     TooltipBinder
	scheduler    Scheduler
	log          *zap.Logger
	dismissAfter time.Duration
	fadeFor      time.Duration
}

// New creates a Guard. A nil scheduler uses Clock, a nil binder skips tooltips.
func New(alerter Alerter, tooltips TooltipBinder, scheduler Scheduler, log *zap.Logger) *Guard {
	if scheduler == nil {
		scheduler = Clock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{
		alerter:      alerter,
		tooltips:     tooltips,
		scheduler:    scheduler,
		log:          log,
		dismissAfter: DefaultDismissAfter,
		fadeFor:      DefaultFadeFor,
	}
}

// Ready attaches the guard to doc. Call it once, when the page is ready.
func (g *Guard) Ready(doc Document) {
	for _, b := range bindings {
		form, ok := doc.Form(b.form)
		if !ok {
			continue
		}
		form.OnSubmit(g.interceptor(doc, b.field))
		g.log.Debug("form guarded", zap.String("form", b.form), zap.String("field", b.field))
	}

	banners := doc.Dismissibles()
	for _, el := range banners {
		g.scheduleDismiss(el)
	}

	triggers := doc.TooltipTriggers()
	if g.tooltips != nil {
		for _, el := range triggers {
			g.tooltips.Bind(el)
		}
	}
	g.log.Debug("page ready", zap.Int("banners", len(banners)), zap.Int("tooltips", len(triggers)))
}

func (g *Guard) interceptor(doc Document, fieldID string) func(*SubmitEvent) {
	return func(evt *SubmitEvent) {
		// The field is read at submission time; a missing field counts as empty.
		var value string
		if f, ok := doc.Field(fieldID); ok {
			value = f.Value()
		}
		if plate.Valid(value) {
			return
		}
		evt.PreventDefault()
		if g.alerter != nil {
			g.alerter.Alert(plate.InvalidMessage)
		}
	}
}

func (g *Guard) scheduleDismiss(el Element) {
	g.scheduler.AfterFunc(g.dismissAfter, func() {
		el.AddClass(FadeClass)
		g.scheduler.AfterFunc(g.fadeFor, el.Remove)
	})
}
