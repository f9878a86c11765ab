package tui

import "strings"

// Command is a parsed ':' prompt entry.
type Command struct {
	Name string
	Args string
}

// aliases maps short forms to command names.
var aliases = map[string]string{
	"q":   "quit",
	"h":   "help",
	"co":  "checkout",
	"ci":  "checkin",
	"r":   "refresh",
	"act": "activity",
}

// ParseCommand parses a command string without the leading ':'.
func ParseCommand(input string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if full, ok := aliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}
