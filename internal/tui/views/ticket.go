package views

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/rivo/tview"

	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/tui/ui"
)

// Ticket shows a parked vehicle's ticket code as a scannable QR block.
type Ticket struct {
	*tview.TextView
	theme *ui.Theme
}

// NewTicket creates the ticket view.
func NewTicket(theme *ui.Theme) *Ticket {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Ticket ")
	tv.SetTitleColor(theme.TitleColor)
	return &Ticket{TextView: tv, theme: theme}
}

// Name implements Component.
func (t *Ticket) Name() string { return "Ticket" }

// Init implements Component.
func (t *Ticket) Init() {}

// Start implements Component.
func (t *Ticket) Start() {}

// Stop implements Component.
func (t *Ticket) Stop() {}

// Hints implements Component.
func (t *Ticket) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

// Show renders v's ticket.
func (t *Ticket) Show(v parking.VehicleView) {
	t.Clear()
	_, _ = fmt.Fprintf(t, "\n[::b]%s[-:-:-]  %s  %s\n\n%s\n  Checked in %s",
		tview.Escape(v.Ticket), tview.Escape(v.Plate), v.Type,
		RenderQR(v.Ticket), v.CheckInTime.Local().Format("2006-01-02 15:04"))
}

// RenderQR converts content to a compact QR block. Each output line packs
// two bitmap rows using half-block characters.
func RenderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := y+1 < rows && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
