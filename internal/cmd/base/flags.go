package base

import (
	"bytes"
	"flag"
	"strings"
)

// FlagSet wraps a flag.FlagSet so its defaults can be appended to a command's
// help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a FlagSet wrapping f. Usage output is suppressed; the CLI
// prints Help instead.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.Usage = func() {}
	f.SetOutput(discard{})
	return &FlagSet{FlagSet: f}
}

// Help returns the flag defaults formatted for a command's help text.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	f.SetOutput(&buf)
	f.PrintDefaults()
	f.SetOutput(discard{})

	if buf.Len() == 0 {
		return ""
	}
	return "\n\nOptions:\n\n" + strings.TrimRight(buf.String(), "\n")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
