// Package bytecode2 is the second bytecode interpreter. It executes the
// same run-length instruction stream as bytecode1 but dispatches through a
// table of function values indexed by opcode instead of a switch, trading
// a branch-predictable switch for an indirect call per instruction — the
// kind of change a production interpreter makes once profiling shows the
// switch's mispredict rate dominating a hot loop, per SPEC_FULL.md section
// 4.3.
package bytecode2

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

// state carries everything a handler needs to mutate; handlers return the
// current pc, or a jump's Dest, and the dispatch loop then advances one
// past it, the same post-increment convention bytecode1 uses.
type state struct {
	rt *bf.Runtime
	dp int
}

type handler func(s *state, instr bf.RLInstr, pc int) (int, error)

var dispatch = [...]handler{
	bf.OpIncPtr:        incPtr,
	bf.OpDecPtr:        decPtr,
	bf.OpIncData:       incData,
	bf.OpDecData:       decData,
	bf.OpRead:          read,
	bf.OpWrite:         write,
	bf.OpJumpIfZero:    jumpIfZero,
	bf.OpJumpIfNotZero: jumpIfNotZero,
}

func exec(rt *bf.Runtime, prog *bf.RunLengthProgram) error {
	s := &state{rt: rt}
	instrs := prog.Instructions

	pc := 0
	for pc < len(instrs) {
		instr := instrs[pc]
		next, err := dispatch[instr.Op](s, instr, pc)
		if err != nil {
			return err
		}
		pc = next + 1
	}

	return nil
}

func incPtr(s *state, instr bf.RLInstr, pc int) (int, error) {
	s.dp += instr.Count
	return pc, nil
}

func decPtr(s *state, instr bf.RLInstr, pc int) (int, error) {
	s.dp -= instr.Count
	return pc, nil
}

func incData(s *state, instr bf.RLInstr, pc int) (int, error) {
	s.rt.SetCell(s.dp, bf.WrappingAddU8(s.rt.Cell(s.dp), uint64(instr.Count)))
	return pc, nil
}

func decData(s *state, instr bf.RLInstr, pc int) (int, error) {
	s.rt.SetCell(s.dp, bf.WrappingSubU8(s.rt.Cell(s.dp), uint64(instr.Count)))
	return pc, nil
}

func read(s *state, instr bf.RLInstr, pc int) (int, error) {
	var b byte
	var err error
	for i := 0; i < instr.Count; i++ {
		b, err = s.rt.ReadByte()
		if err != nil {
			return pc, err
		}
	}
	s.rt.SetCell(s.dp, b)
	return pc, nil
}

func write(s *state, instr bf.RLInstr, pc int) (int, error) {
	cell := s.rt.Cell(s.dp)
	for i := 0; i < instr.Count; i++ {
		if err := s.rt.WriteByte(cell); err != nil {
			return pc, err
		}
	}
	return pc, nil
}

func jumpIfZero(s *state, instr bf.RLInstr, pc int) (int, error) {
	if s.rt.Cell(s.dp) == 0 {
		return instr.Dest, nil
	}
	return pc, nil
}

func jumpIfNotZero(s *state, instr bf.RLInstr, pc int) (int, error) {
	if s.rt.Cell(s.dp) != 0 {
		return instr.Dest, nil
	}
	return pc, nil
}
