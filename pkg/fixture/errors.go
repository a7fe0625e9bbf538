package fixture

import "fmt"

// ValidationError is returned when a fixture file is malformed.
type ValidationError struct {
	// File is the source the fixture was read from.
	File string
	// Index is the position of the offending fixture, or -1 when the error
	// is not tied to one fixture.
	Index int
	// Field is the dotted path of the offending value, if known.
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	loc := e.File
	if e.Index >= 0 {
		loc = fmt.Sprintf("%s: fixture %d", loc, e.Index)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	return "Each fixture needs a query and at most one of response, error or events. Durations use Go syntax such as 250ms or 1s."
}
