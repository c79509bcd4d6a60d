package bytecode1

import (
	"bytes"
	"strings"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestRunHelloWorld(t *testing.T) {
	source := []byte("++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.")
	var out bytes.Buffer
	err := Run(source, strings.NewReader(""), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "Hello World!\n", "unexpected output: %q", out.String())
}

func TestRunRunLengthCounts(t *testing.T) {
	// A long run of identical writes exercises the run-length count loop
	// in OpWrite handling, not just single-instruction dispatch.
	source := []byte(strings.Repeat("+", 65) + strings.Repeat(".", 3))
	var out bytes.Buffer
	err := Run(source, strings.NewReader(""), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "AAA", "expected three 'A' bytes, got %q", out.String())
}

func TestRunOnlyLastReadPersists(t *testing.T) {
	source := []byte(",,,.")
	var out bytes.Buffer
	err := Run(source, strings.NewReader("xyz"), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "z", "expected only the last read byte to persist, got %q", out.String())
}
