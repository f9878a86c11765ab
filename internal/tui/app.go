// Package tui is the parktui terminal front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/api"
	"github.com/matheus3301/chinopark/internal/guard"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/plate"
	"github.com/matheus3301/chinopark/internal/tui/keys"
	"github.com/matheus3301/chinopark/internal/tui/model"
	"github.com/matheus3301/chinopark/internal/tui/ui"
	"github.com/matheus3301/chinopark/internal/tui/views"
)

const refreshEvery = 5 * time.Second

// EventSource streams daemon events; parktui refreshes on each one.
type EventSource interface {
	WatchEvents(ctx context.Context, prefix string) (<-chan api.Event, <-chan error, error)
}

// Options configures the App.
type Options struct {
	Site   string
	Origin string
	// HTTP reaches the parkd web API, normally through the offline worker.
	HTTP *http.Client
	// Events is optional; without it the app only polls.
	Events EventSource
	// Cache describes the offline cache for the status line.
	Cache  func() string
	Logger *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	registry *keys.Registry
	vm       *model.ViewModel
	flash    *ui.FlashModel
	banners  model.Banners
	guard    *guard.Guard
	alert    *views.Alert
	opts     Options
	log      *zap.Logger

	root     *tview.Flex
	siteInfo *ui.SiteInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	prompt   *ui.Prompt
	status   *views.StatusBar
	dash     *views.Dashboard
	desk     *views.Desk
	activity *views.Activity
	ticket   *views.Ticket
	help     *views.HelpView

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = func() string { return "off" }
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:      tview.NewApplication(),
		theme:    theme,
		pages:    ui.NewPages(),
		registry: keys.NewRegistry(),
		vm:       model.NewViewModel(opts.HTTP, opts.Origin),
		flash:    ui.NewFlashModel(),
		opts:     opts,
		log:      opts.Logger,
		siteInfo: ui.NewSiteInfo(theme),
		menu:     ui.NewMenu(theme),
		crumbs:   ui.NewCrumbs(theme),
		prompt:   ui.NewPrompt(theme),
		status:   views.NewStatusBar(theme),
		dash:     views.NewDashboard(theme),
		activity: views.NewActivity(theme),
		ticket:   views.NewTicket(theme),
		help:     views.NewHelpView(theme),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.desk = views.NewDesk(theme, func(f func()) { a.app.QueueUpdateDraw(f) })
	a.desk.SetFocusFunc(func(p tview.Primitive) { a.app.SetFocus(p) })
	a.alert = views.NewAlert(a.pages.Pages, theme,
		func(p tview.Primitive) { a.app.SetFocus(p) },
		func() tview.Primitive { return a.app.GetFocus() },
	)
	a.guard = guard.New(a.alert, views.Tooltips{}, nil, a.log.Named("guard"))

	a.status.SetSite(opts.Site)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	a.registry.Global('q', "quit", a.Stop)
	a.registry.Global('?', "help", func() { a.pages.Push(a.help.Name()) })
	a.registry.Global(':', "command", func() { a.showPrompt(ui.PromptCommand) })
	a.registry.GlobalKey(tcell.KeyCtrlR, "refresh", a.refresh)

	dash := a.dash.Name()
	a.registry.Page(dash, '/', "filter", func() { a.showPrompt(ui.PromptFilter) })
	a.registry.Page(dash, 'n', "check-in", func() { a.openDesk(a.desk.CheckInForm(), "") })
	a.registry.Page(dash, 'o', "check-out", func() {
		v, _ := a.dash.Selected()
		a.openDesk(a.desk.CheckOutForm(), v.Plate)
	})
	a.registry.Page(dash, 'a', "activity", func() { a.pages.Push(a.activity.Name()) })
	a.registry.Page(dash, 't', "ticket", func() {
		if v, ok := a.dash.Selected(); ok {
			a.showTicket(v)
		}
	})
	a.registry.Page(dash, 'r', "refresh", a.refresh)
}

func (a *App) setupCallbacks() {
	a.desk.SetOnCheckIn(func(form model.CheckInForm) {
		a.submit("check-in", func() (string, error) {
			v, err := a.vm.CheckIn(a.ctx, form)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s Ticket %s", parking.CheckedInMessage, v.Ticket), nil
		})
	})
	a.desk.SetOnCheckOut(func(p string) {
		a.submit("check-out", func() (string, error) {
			if _, err := a.vm.CheckOut(a.ctx, p); err != nil {
				return "", err
			}
			return parking.CheckedOutMessage, nil
		})
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptFilter:
			a.dash.SetFilter(text)
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)

	a.pages.SetOnChange(func(top ui.Component, stack []string) {
		if top != nil {
			a.menu.Update(top.Hints())
		}
		a.crumbs.Update(stack)
	})
}

func (a *App) setupLayout() {
	a.pages.Add(a.dash, a.dash)
	a.pages.Add(a.desk, a.desk)
	a.pages.Add(a.activity, a.activity)
	a.pages.Add(a.ticket, a.ticket)
	a.pages.Add(a.help, a.help)

	header := tview.NewFlex().
		AddItem(a.siteInfo, 40, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(ui.NewLogo(a.theme), 18, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.status, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.pages.Reset(a.dash.Name())
	a.app.SetFocus(a.dash.Vehicles())

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.alert.Open() {
			return event
		}
		if a.prompt.HasFocus() {
			return event
		}

		current := a.pages.Current()
		if event.Key() == tcell.KeyEscape {
			if a.pages.Pop() != "" {
				a.focusCurrent()
				return nil
			}
			return event
		}

		// Forms own every other key on the desk.
		if current == a.desk.Name() {
			return event
		}

		if a.registry.HandleEvent(current, event) {
			return nil
		}
		return event
	})
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case a.dash.Name():
		a.app.SetFocus(a.dash.Vehicles())
	case a.activity.Name():
		a.app.SetFocus(a.activity)
	case a.ticket.Name():
		a.app.SetFocus(a.ticket)
	case a.help.Name():
		a.app.SetFocus(a.help)
	}
}

// openDesk loads the desk page and attaches the guard to it. checkOutPlate
// prefills the check-out field when set. Runs on the UI goroutine.
func (a *App) openDesk(focus tview.Primitive, checkOutPlate string) {
	a.pages.Push(a.desk.Name())
	a.loadDesk()
	if checkOutPlate != "" {
		a.desk.Prefill(guard.CheckOutPlateID, checkOutPlate)
	}
	a.app.SetFocus(focus)
}

func (a *App) loadDesk() {
	a.desk.Load(a.banners.Pop())
	a.guard.Ready(a.desk)
}

// submit runs a form action off the UI goroutine, queues the outcome as a
// banner and reloads the desk like a post/redirect/get round trip.
func (a *App) submit(action string, call func() (string, error)) {
	go func() {
		msg, err := call()
		switch {
		case err == nil:
			a.banners.Push(model.BannerSuccess, msg)
		case isUserError(err):
			a.banners.Push(model.BannerDanger, err.Error())
		default:
			a.log.Warn(action+" failed", zap.Error(err))
			a.banners.Push(model.BannerDanger, "Cannot reach parkd: "+err.Error())
		}
		_ = a.vm.Refresh(a.ctx)
		a.app.QueueUpdateDraw(func() {
			if a.pages.Current() == a.desk.Name() {
				a.loadDesk()
			}
			a.render()
		})
	}()
}

func isUserError(err error) bool {
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.Status < 500
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "quit":
		a.Stop()
	case "help":
		a.pages.Push(a.help.Name())
	case "refresh":
		a.refresh()
	case "activity":
		a.pages.Push(a.activity.Name())
	case "checkin":
		a.openDesk(a.desk.CheckInForm(), "")
	case "checkout":
		if !plate.Valid(cmd.Args) {
			a.flash.Warn(plate.InvalidMessage)
			a.render()
			return
		}
		a.submitCommand(cmd.Args)
	case "ticket":
		a.ticketFor(cmd.Args)
	default:
		a.flash.Warn(fmt.Sprintf("unknown command %q", cmd.Name))
		a.render()
	}
}

func (a *App) submitCommand(p string) {
	go func() {
		_, err := a.vm.CheckOut(a.ctx, p)
		if err != nil {
			a.flash.Err(err)
		} else {
			a.flash.Info(parking.CheckedOutMessage)
		}
		_ = a.vm.Refresh(a.ctx)
		a.app.QueueUpdateDraw(a.render)
	}()
}

func (a *App) ticketFor(p string) {
	want := strings.ToUpper(strings.TrimSpace(p))
	if r := a.vm.Report(); r != nil {
		for _, v := range r.Vehicles {
			if v.Plate == want {
				a.showTicket(v)
				return
			}
		}
	}
	a.flash.Warn(parking.Message(parking.ErrNotFound))
	a.render()
}

func (a *App) showTicket(v parking.VehicleView) {
	a.ticket.Show(v)
	a.pages.Push(a.ticket.Name())
	a.app.SetFocus(a.ticket)
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

// refresh reloads in the background. Safe from any goroutine.
func (a *App) refresh() {
	go func() {
		if err := a.vm.Refresh(a.ctx); err != nil && a.ctx.Err() == nil {
			a.log.Debug("refresh failed", zap.Error(err))
			a.flash.Err(err)
		}
		a.app.QueueUpdateDraw(a.render)
	}()
}

// render copies view model state into the widgets. UI goroutine only.
func (a *App) render() {
	r := a.vm.Report()
	a.dash.Update(r)

	data := ui.SiteData{
		Site:     a.opts.Site,
		Origin:   a.opts.Origin,
		Online:   a.vm.Online(),
		Revision: a.vm.Revision(),
		Cache:    a.opts.Cache(),
	}
	if r != nil {
		a.activity.Update(r.Activity)
		data.Parked = len(r.Vehicles)
		for _, s := range r.Spaces {
			data.Free += s.Available
		}
	}
	a.siteInfo.Update(data)
	a.status.SetConnection(data.Online, data.Revision)
	a.status.SetCache(data.Cache)
	a.status.SetFlash(a.flash.Get())
}

// Run starts the TUI application. It blocks until the app stops.
func (a *App) Run() error {
	a.render()
	go func() {
		if err := a.vm.Refresh(a.ctx); err != nil {
			a.flash.Err(err)
		}
		a.app.QueueUpdateDraw(a.render)
	}()
	go a.refreshLoop()
	if a.opts.Events != nil {
		go a.watchLoop()
	}
	err := a.app.Run()
	a.cancel()
	return err
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = a.vm.Refresh(a.ctx)
			a.app.QueueUpdateDraw(a.render)
		case <-a.ctx.Done():
			return
		}
	}
}

// watchLoop refreshes on every parking event. It reconnects after errors,
// since parkd may restart under a running parktui.
func (a *App) watchLoop() {
	for a.ctx.Err() == nil {
		events, errc, err := a.opts.Events.WatchEvents(a.ctx, "parking.")
		if err == nil {
			for evt := range events {
				a.log.Debug("event", zap.String("kind", evt.Kind))
				a.refresh()
			}
			select {
			case err = <-errc:
			default:
			}
		}
		if err != nil {
			a.log.Debug("event stream ended", zap.Error(err))
		}
		select {
		case <-time.After(refreshEvery):
		case <-a.ctx.Done():
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
