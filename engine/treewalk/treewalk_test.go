package treewalk

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
	// A short, well-known Brainfuck hello-world program.
	source := []byte("++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.")

	var out bytes.Buffer
	err := Run(source, strings.NewReader(""), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "Hello World!\n", "unexpected output: %q", out.String())
}

func TestRunEchoesInput(t *testing.T) {
	source := []byte(",.,.,.")
	var out bytes.Buffer
	err := Run(source, strings.NewReader("abc"), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "abc", "unexpected output: %q", out.String())
}

func TestRunCellWrapsAround(t *testing.T) {
	// Incrementing a zeroed cell 256 times must wrap back to zero.
	source := []byte(strings.Repeat("+", 256) + ".")
	var out bytes.Buffer
	err := Run(source, strings.NewReader(""), &out)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "\x00", "expected a wrapped null byte, got %q", out.String())
}

func TestRunUnmatchedBracketIsAnError(t *testing.T) {
	var out bytes.Buffer
	err := Run([]byte("[+"), strings.NewReader(""), &out)
	assert(t, err != nil, "expected an error for an unmatched '['")
}
