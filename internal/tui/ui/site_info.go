package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SiteData is the header summary of one site.
type SiteData struct {
	Site     string
	Origin   string
	Online   bool
	Revision int64
	Parked   int
	Free     int
	Cache    string
}

// SiteInfo displays site metadata in the header.
type SiteInfo struct {
	*tview.TextView
	theme *Theme
}

// NewSiteInfo creates a new site info panel.
func NewSiteInfo(theme *Theme) *SiteInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)
	return &SiteInfo{TextView: tv, theme: theme}
}

// Update renders data.
func (si *SiteInfo) Update(data SiteData) {
	si.Clear()

	fg := ColorName(si.theme.FgColor)
	val := ColorName(si.theme.CounterColor)
	state := fmt.Sprintf("[%s]online[-]", ColorName(si.theme.FlashInfoColor))
	if !data.Online {
		state = fmt.Sprintf("[%s]offline (cached)[-]", ColorName(si.theme.FlashErrColor))
	}

	rows := []struct {
		label, value string
	}{
		{"Site:", data.Site},
		{"Parkd:", data.Origin},
		{"Status:", state},
		{"Parked:", fmt.Sprint(data.Parked)},
		{"Free:", fmt.Sprint(data.Free)},
		{"Cache:", data.Cache},
	}
	for i, r := range rows {
		if i > 0 {
			_, _ = fmt.Fprint(si, "\n")
		}
		value := r.value
		if r.label != "Status:" {
			value = fmt.Sprintf("[%s]%s[-]", val, tview.Escape(value))
		}
		_, _ = fmt.Fprintf(si, "[%s::b]%-8s[-:-:-]%s", fg, r.label, value)
	}
}
