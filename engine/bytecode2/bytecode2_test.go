package bytecode2

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

func TestRunMatchesBytecode1OnARunLengthProgram(t *testing.T) {
	// bytecode1 and bytecode2 interpret the same run-length form through
	// different dispatch mechanisms (switch vs. function table); they must
	// agree on every program.
	source := []byte(strings.Repeat("+", 65) + strings.Repeat(".", 3))
	var out bytes.Buffer
	err := Run(source, strings.NewReader(""), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "AAA", "expected three 'A' bytes, got %q", out.String())
}

func TestRunLoop(t *testing.T) {
	source := []byte("+++++[>+++++<-]>.")
	var out bytes.Buffer
	err := Run(source, strings.NewReader(""), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == string(rune(25)), "expected cell value 25, got %q", out.String())
}
