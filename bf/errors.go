package bf

import "fmt"

// Kind tags the four ways a run can fail, mirroring the original engine's
// parse/io/numeric/assembler split.
type Kind int

const (
	KindParse Kind = iota
	KindIo
	KindNumeric
	KindAssembler
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindIo:
		return "io"
	case KindNumeric:
		return "numeric"
	case KindAssembler:
		return "assembler"
	default:
		return "unknown"
	}
}

// Error is the single error type every engine returns. Msg already contains
// any positional detail (source index, instruction offset); callers that
// only care about the category should switch on Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, if any (e.g. an *os.PathError)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func parseErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindParse, Msg: fmt.Sprintf(format, args...)}
}

func ioErrorf(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindIo, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// NumericError reports a count that does not fit into the machine-sized
// field an emitter wants to put it in.
func NumericError(format string, args ...any) *Error {
	return &Error{Kind: KindNumeric, Msg: fmt.Sprintf(format, args...)}
}

// AssemblerError reports a code-emission failure discovered at finalize
// time (buffer too large, mmap/mprotect failure, and similar).
func AssemblerError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindAssembler, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// UnmatchedOpen and UnmatchedClose are the two parse failures every parser
// tier in this package reports, always at parse time and always with the
// offending source index, per the canonical behavior decided in
// SPEC_FULL.md section 4.2.
func UnmatchedOpen(index int) *Error {
	return parseErrorf("unmatched '[' at index %d", index)
}

func UnmatchedClose(index int) *Error {
	return parseErrorf("unmatched ']' at index %d", index)
}
