// Package bytecode1 is the first of the three bytecode interpreters: it
// executes the run-length form, where adjacent identical commands have
// already been coalesced into one counted instruction and jump
// destinations are pre-resolved, removing the jump-table indirection the
// tree-walking engine needs.
package bytecode1

import (
	"io"

	"bfjit/bf"
)

func Run(source []byte, stdin io.Reader, stdout io.Writer) error {
	prog, err := bf.ParseRunLength(source)
	if err != nil {
		return err
	}

	rt := bf.NewRuntime(stdin, stdout)
	return exec(rt, prog)
}

func exec(rt *bf.Runtime, prog *bf.RunLengthProgram) error {
	dp := 0
	pc := 0
	instrs := prog.Instructions

	for pc < len(instrs) {
		instr := instrs[pc]
		switch instr.Op {
		case bf.OpIncPtr:
			dp += instr.Count
		case bf.OpDecPtr:
			dp -= instr.Count
		case bf.OpIncData:
			rt.SetCell(dp, bf.WrappingAddU8(rt.Cell(dp), uint64(instr.Count)))
		case bf.OpDecData:
			rt.SetCell(dp, bf.WrappingSubU8(rt.Cell(dp), uint64(instr.Count)))
		case bf.OpRead:
			// Only the last byte read persists, per SPEC_FULL.md section
			// 4.3, so earlier reads in the run are still performed (for
			// their side effects on the input stream) but their results
			// are discarded.
			var b byte
			var err error
			for i := 0; i < instr.Count; i++ {
				b, err = rt.ReadByte()
				if err != nil {
					return err
				}
			}
			rt.SetCell(dp, b)
		case bf.OpWrite:
			cell := rt.Cell(dp)
			for i := 0; i < instr.Count; i++ {
				if err := rt.WriteByte(cell); err != nil {
					return err
				}
			}
		case bf.OpJumpIfZero:
			if rt.Cell(dp) == 0 {
				pc = instr.Dest
			}
		case bf.OpJumpIfNotZero:
			if rt.Cell(dp) != 0 {
				pc = instr.Dest
			}
		}
		pc++
	}

	return nil
}
