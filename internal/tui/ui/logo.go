package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo displays a compact ASCII art logo.
type Logo struct {
	*tview.TextView
}

// NewLogo creates a new logo component.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	title, fg := ColorName(theme.TitleColor), ColorName(theme.FgColor)
	_, _ = fmt.Fprintf(tv,
		"[%[1]s::b]╔═╗╔═╗╦═╗╦╔═[-:-:-]\n"+
			"[%[1]s::b]╠═╝╠═╣╠╦╝╠╩╗[-:-:-]\n"+
			"[%[1]s::b]╩  ╩ ╩╩╚═╩ ╩[-:-:-]\n"+
			"[%[2]s]chino park desk[-:-:-]",
		title, fg,
	)
	return &Logo{TextView: tv}
}
