package provision

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Event is a connection progress notification.
type Event int

const (
	// EventFirstAttempt is reported on the first failed connection attempt.
	EventFirstAttempt Event = iota + 1

	// EventProgressIncrease is reported on every failed attempt that will be
	// retried.
	EventProgressIncrease

	// EventDBFail is reported once the retry budget is spent. Its arguments
	// carry the error under ArgError.
	EventDBFail

	// EventConnected is reported when a connection was established.
	EventConnected
)

func (e Event) String() string {
	switch e {
	case EventFirstAttempt:
		return "FIRST_ATTEMPT"
	case EventProgressIncrease:
		return "PROGRESS_INCREASE"
	case EventDBFail:
		return "DB_FAIL"
	case EventConnected:
		return "CONNECTED"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ArgError is the EventArgs key holding the failure for EventDBFail.
const ArgError = "error"

// EventArgs carries optional event data.
type EventArgs map[string]interface{}

// Err returns the error stored under ArgError, if any.
func (a EventArgs) Err() error {
	if a == nil {
		return nil
	}
	err, _ := a[ArgError].(error)
	return err
}

// ReportFunc presents connection progress. A non-nil return aborts the
// connection attempt with that error.
type ReportFunc func(event Event, args EventArgs) error

// ConsoleReporter prints a dot per failed attempt and a framed message on
// success or failure. On EventDBFail it returns a fatal error wrapping the
// cause.
func ConsoleReporter(w io.Writer) ReportFunc {
	success := color.New(color.FgGreen)
	failure := color.New(color.FgRed, color.Bold)

	return func(event Event, args EventArgs) error {
		switch event {
		case EventFirstAttempt:
			fmt.Fprint(w, "\nWaiting for database ")
		case EventProgressIncrease:
			fmt.Fprint(w, ".")
		case EventConnected:
			fmt.Fprint(w, "\n\n")
			success.Fprintln(w, "Connected to database.")
			fmt.Fprintln(w)
		case EventDBFail:
			cause := args.Err()
			if cause == nil {
				cause = errors.New("unknown error")
			}
			fmt.Fprint(w, "\n\n")
			failure.Fprintf(w, "Could not connect to database: %v\n", cause)
			fmt.Fprintln(w)
			return fmt.Errorf("fatal: database unavailable: %w", cause)
		}
		return nil
	}
}
