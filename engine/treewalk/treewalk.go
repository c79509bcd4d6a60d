// Package treewalk implements the first and simplest execution engine: a
// direct walk over the simple instruction form, advancing a program
// counter and data pointer one instruction at a time with no run-length
// counts and no super-ops.
package treewalk

import (
	"io"

	"bfjit/bf"
)

// Run parses source with the simple parser and interprets it directly.
// This is the baseline every other engine is measured against.
func Run(source []byte, stdin io.Reader, stdout io.Writer) error {
	prog, err := bf.ParseSimple(source)
	if err != nil {
		return err
	}

	rt := bf.NewRuntime(stdin, stdout)
	return exec(rt, prog)
}

// exec is the tight dispatch loop. Per this codebase's own convention for
// tight instruction-execution loops (see bytecode1 and bytecode3; only
// bytecode2 dispatches through a function table), the switch embeds its logic directly rather than calling
// out to one helper per opcode, since a function call per instruction here
// would dominate runtime for programs that are mostly arithmetic.
func exec(rt *bf.Runtime, prog *bf.SimpleProgram) error {
	dp := 0
	pc := 0
	instrs := prog.Instructions
	jumpTable := prog.JumpTable

	for pc < len(instrs) {
		switch instrs[pc] {
		case bf.OpIncPtr:
			dp++
		case bf.OpDecPtr:
			dp--
		case bf.OpIncData:
			rt.SetCell(dp, bf.WrappingAddU8(rt.Cell(dp), 1))
		case bf.OpDecData:
			rt.SetCell(dp, bf.WrappingSubU8(rt.Cell(dp), 1))
		case bf.OpRead:
			b, err := rt.ReadByte()
			if err != nil {
				return err
			}
			rt.SetCell(dp, b)
		case bf.OpWrite:
			if err := rt.WriteByte(rt.Cell(dp)); err != nil {
				return err
			}
		case bf.OpJumpIfZero:
			if rt.Cell(dp) == 0 {
				pc = jumpTable[pc]
			}
		case bf.OpJumpIfNotZero:
			if rt.Cell(dp) != 0 {
				pc = jumpTable[pc]
			}
		}
		pc++
	}

	return nil
}
