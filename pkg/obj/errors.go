package obj

import (
	"errors"
	"fmt"
)

// OBJ parse errors.
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrIndexOutOfRange = errors.New("face index out of range")
)

// ParseError is a fatal parse error with the position and grouping state at
// which it occurred.
type ParseError struct {
	Line           int    // 1-based line number
	Offset         int64  // byte offset of the terminating byte
	Record         string // record keyword (v, vn, vt, f, s, ...)
	Object         string
	Group          string
	Material       string
	SmoothingGroup int
	Err            error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (offset %d, %q record, object %q, group %q, material %q, s %d): %v",
		e.Line, e.Offset, e.Record, e.Object, e.Group, e.Material, e.SmoothingGroup, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
