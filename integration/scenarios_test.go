// Package integration runs the full scenario corpus through every
// execution engine and checks they all agree with each other, byte for
// byte, on stdout. No single engine package can do this on its own
// without importing its five siblings, so this is the one place in the
// module that imports all six.
package integration

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"bfjit/bf"
	"bfjit/engine/bytecode1"
	"bfjit/engine/bytecode2"
	"bfjit/engine/bytecode3"
	"bfjit/engine/optjit"
	"bfjit/engine/simplejit"
	"bfjit/engine/treewalk"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

type runFunc func(source []byte, stdin *strings.Reader, stdout *bytes.Buffer) error

var interpreterEngines = map[string]runFunc{
	"treewalk":  treewalk.Run,
	"bytecode1": bytecode1.Run,
	"bytecode2": bytecode2.Run,
	"bytecode3": bytecode3.Run,
}

// jitEngines are exercised separately from interpreterEngines: they only
// run correctly on the host's own architecture, since the code they emit
// is raw machine code for whatever asm.HostConfig resolves to.
var jitEngines = map[string]runFunc{
	"simplejit": simplejit.Run,
	"optjit":    optjit.Run,
}

func TestInterpreterEnginesAgreeOnScenarios(t *testing.T) {
	for _, sc := range bf.Scenarios {
		for name, run := range interpreterEngines {
			sc, name, run := sc, name, run
			t.Run(fmt.Sprintf("%s/%s", name, sc.Name), func(t *testing.T) {
				var out bytes.Buffer
				err := run([]byte(sc.Source), strings.NewReader(sc.Stdin), &out)
				assert(t, err == nil, "unexpected error: %v", err)
				assert(t, out.String() == sc.Want, "got %q, want %q", out.String(), sc.Want)
			})
		}
	}
}

func TestJITEnginesAgreeOnScenarios(t *testing.T) {
	for _, sc := range bf.Scenarios {
		for name, run := range jitEngines {
			sc, name, run := sc, name, run
			t.Run(fmt.Sprintf("%s/%s", name, sc.Name), func(t *testing.T) {
				var out bytes.Buffer
				err := run([]byte(sc.Source), strings.NewReader(sc.Stdin), &out)
				assert(t, err == nil, "unexpected error: %v", err)
				assert(t, out.String() == sc.Want, "got %q, want %q", out.String(), sc.Want)
			})
		}
	}
}

func TestUnmatchedBracketsFailTheSameWayInEveryEngine(t *testing.T) {
	all := map[string]runFunc{}
	for name, run := range interpreterEngines {
		all[name] = run
	}
	for name, run := range jitEngines {
		all[name] = run
	}

	for _, src := range []string{"[+", "+]"} {
		for name, run := range all {
			name, run, src := name, run, src
			t.Run(fmt.Sprintf("%s/%q", name, src), func(t *testing.T) {
				var out bytes.Buffer
				err := run([]byte(src), strings.NewReader(""), &out)
				assert(t, err != nil, "expected an error for source %q", src)
			})
		}
	}
}
