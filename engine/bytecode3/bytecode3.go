// Package bytecode3 is the third and most optimized bytecode interpreter:
// it executes the fully optimized instruction stream, including the three
// loop super-ops, directly rather than handing them to the JIT.
package bytecode3

import (
	"io"

	"bfjit/bf"
)

func Run(source []byte, stdin io.Reader, stdout io.Writer) error {
	prog, err := bf.ParseOptimizing(source)
	if err != nil {
		return err
	}

	rt := bf.NewRuntime(stdin, stdout)
	return exec(rt, prog)
}

func exec(rt *bf.Runtime, prog *bf.OptimizedProgram) error {
	dp := 0
	pc := 0
	instrs := prog.Instructions

	for pc < len(instrs) {
		instr := instrs[pc]
		switch instr.Kind {
		case bf.OptIncPtr:
			dp += instr.Count
		case bf.OptDecPtr:
			dp -= instr.Count
		case bf.OptIncData:
			rt.SetCell(dp, bf.WrappingAddU8(rt.Cell(dp), uint64(instr.Count)))
		case bf.OptDecData:
			rt.SetCell(dp, bf.WrappingSubU8(rt.Cell(dp), uint64(instr.Count)))
		case bf.OptRead:
			var b byte
			var err error
			for i := 0; i < instr.Count; i++ {
				b, err = rt.ReadByte()
				if err != nil {
					return err
				}
			}
			rt.SetCell(dp, b)
		case bf.OptWrite:
			cell := rt.Cell(dp)
			for i := 0; i < instr.Count; i++ {
				if err := rt.WriteByte(cell); err != nil {
					return err
				}
			}
		case bf.OptJumpBegin:
			if rt.Cell(dp) == 0 {
				pc = instr.Dest
			}
		case bf.OptJumpEnd:
			if rt.Cell(dp) != 0 {
				pc = instr.Dest
			}
		case bf.OptSetDataToZero:
			// Storing 0 is idempotent, so a coalesced run of adjacent
			// set-to-zero loops needs no repeat loop of its own.
			rt.SetCell(dp, 0)
		case bf.OptMovePtrUntilZero:
			for i := 0; i < instr.Count; i++ {
				for rt.Cell(dp) != 0 {
					if instr.Forward {
						dp += instr.Amount
					} else {
						dp -= instr.Amount
					}
				}
			}
		case bf.OptMoveData:
			for i := 0; i < instr.Count; i++ {
				if rt.Cell(dp) != 0 {
					target := dp + instr.Amount
					if !instr.Forward {
						target = dp - instr.Amount
					}
					rt.SetCell(target, bf.WrappingAddU8(rt.Cell(target), uint64(rt.Cell(dp))))
					rt.SetCell(dp, 0)
				}
			}
		}
		pc++
	}

	return nil
}
