package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"checkout AB123", Command{Name: "checkout", Args: "AB123"}},
		{"  CO   ab123  ", Command{Name: "checkout", Args: "ab123"}},
		{"q", Command{Name: "quit"}},
		{"ticket", Command{Name: "ticket"}},
		{"", Command{}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.in); got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
