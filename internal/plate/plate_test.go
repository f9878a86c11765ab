package plate

import (
	"errors"
	"strings"
	"testing"
)

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ABC", true},
		{"abc123", true},
		{"B1234XYZ", true},
		{"0123456789", true},
		{"aZ9", true},
		{"", false},
		{"AB", false},
		{"ABCDEFGHIJK", false},
		{" ABC", false},
		{"ABC ", false},
		{"AB C", false},
		{"AB-123", false},
		{"ÄBC", false},
		{"ABC\n", false},
		{"١٢٣", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidAllLengths(t *testing.T) {
	for n := 0; n <= 12; n++ {
		s := strings.Repeat("a", n)
		want := n >= 3 && n <= 10
		if got := Valid(s); got != want {
			t.Errorf("Valid(len %d) = %v, want %v", n, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("KDA123"); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	err := Validate("x")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() = %v, want ErrInvalid", err)
	}
	if err.Error() != InvalidMessage {
		t.Errorf("message = %q", err.Error())
	}
}
