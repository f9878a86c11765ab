package ui

// MenuHint describes a keyboard shortcut shown in the menu panel.
type MenuHint struct {
	Key         string
	Description string
}

// Component is the lifecycle interface for all TUI pages.
type Component interface {
	Name() string
	Init()
	Start()
	Stop()
	Hints() []MenuHint
}
