// Package plate holds the licence-plate rule shared by every input surface.
package plate

import (
	"errors"
	"regexp"
)

// InvalidMessage is shown to the user when a plate is rejected.
const InvalidMessage = "Please enter a valid plate number (3-10 alphanumeric characters)"

// ErrInvalid is returned by Validate for plates outside the accepted format.
var ErrInvalid = errors.New(InvalidMessage)

var pattern = regexp.MustCompile(`^[A-Za-z0-9]{3,10}$`)

// Valid reports whether s is 3 to 10 ASCII letters or digits, with nothing else.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Validate returns ErrInvalid when s is not a valid plate.
func Validate(s string) error {
	if !Valid(s) {
		return ErrInvalid
	}
	return nil
}
