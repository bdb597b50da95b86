package pdb

import (
	"fmt"
	"strconv"
)

const maxMsgLen = 70

// FormatError says a line could not be read. Either it was too short for a
// column we need, or a numeric column did not hold a number.
type FormatError struct {
	Line  int    // line number, from 1. Zero if not known
	Field string // name of the column from the layout table
	Text  string // the line that provoked the error
	Err   error  // underlying conversion error, may be nil
}

func firstPart(s string) string {
	l := len(s)
	if l > maxMsgLen {
		l = maxMsgLen
	}
	return s[:l]
}

// Error gives the line number, the field and the start of the line.
func (e *FormatError) Error() string {
	var errmsg string
	if e.Line != 0 {
		errmsg = "Line: " + strconv.Itoa(e.Line) + " "
	}
	errmsg += "bad " + e.Field
	if e.Err != nil {
		errmsg += ": " + e.Err.Error()
	}
	if e.Text != "" {
		errmsg += "\nLine starting with\n" + firstPart(e.Text)
	}
	return errmsg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Warning is a problem we could live with. Partial atom records and
// dropped connectivity references end up here, so callers can decide if
// they care.
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string {
	if w.Line == 0 {
		return w.Msg
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
}
