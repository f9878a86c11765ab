package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// StatusBar displays site, connectivity and cache state.
type StatusBar struct {
	*tview.TextView
	theme    *ui.Theme
	site     string
	online   bool
	revision int64
	cache    string
	flash    string
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &StatusBar{TextView: tv, theme: theme}
}

// SetSite updates the site name display.
func (sb *StatusBar) SetSite(name string) {
	sb.site = name
	sb.render()
}

// SetConnection updates the online marker and revision.
func (sb *StatusBar) SetConnection(online bool, revision int64) {
	sb.online = online
	sb.revision = revision
	sb.render()
}

// SetCache shows the offline cache version and worker state.
func (sb *StatusBar) SetCache(desc string) {
	sb.cache = desc
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	conn := fmt.Sprintf("[%s]online[-]", ui.ColorName(sb.theme.FlashInfoColor))
	if !sb.online {
		conn = fmt.Sprintf("[%s]offline[-]", ui.ColorName(sb.theme.FlashErrColor))
	}
	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s rev %d | cache %s | %s",
		sb.site, conn, sb.revision, tview.Escape(sb.cache), time.Now().Format("15:04"))
	if sb.flash != "" {
		line += fmt.Sprintf(" | [%s]%s[-]", ui.ColorName(sb.theme.FlashWarnColor), tview.Escape(sb.flash))
	}
	_, _ = fmt.Fprint(sb, line)
}
