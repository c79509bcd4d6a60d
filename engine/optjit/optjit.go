// Package optjit is the optimizing JIT (engine 6): it compiles the fully
// optimized instruction stream, including the three loop super-ops,
// inlining the full read/write callback sequence at every call site
// instead of branching out to a shared helper.
package optjit

import (
	"io"
	"math"
	"unsafe"

	"bfjit/asm"
	"bfjit/bf"
)

func Run(source []byte, stdin io.Reader, stdout io.Writer) error {
	prog, err := bf.ParseOptimizing(source)
	if err != nil {
		return err
	}

	rt := bf.NewRuntime(stdin, stdout)
	readAddr, writeAddr := bf.CallbackAddrs()
	addrs := asm.Addrs{
		Tape:  uint64(rt.MemoryAddress()),
		RT:    uint64(uintptr(unsafe.Pointer(rt))),
		Read:  readAddr,
		Write: writeAddr,
	}

	code, err := compile(prog, addrs)
	if err != nil {
		return err
	}

	exe, err := asm.Load(code)
	if err != nil {
		return err
	}
	defer exe.Close()

	return exe.Run(rt)
}

func compile(prog *bf.OptimizedProgram, addrs asm.Addrs) ([]byte, error) {
	cfg := asm.HostConfig()
	e := asm.NewEmitter(cfg)

	// endLabels is the bracket stack threading JumpBegin's returned
	// end-label id through to its matching JumpEnd call.
	var endLabels []int

	e.Prologue(addrs)

	for _, instr := range prog.Instructions {
		// Pointer moves and super-op strides are emitted as 32-bit
		// immediates; a value that does not fit is a Numeric error.
		isPtrMove := instr.Kind == bf.OptIncPtr || instr.Kind == bf.OptDecPtr
		if instr.Amount > math.MaxInt32 || (isPtrMove && instr.Count > math.MaxInt32) {
			return nil, bf.NumericError("count %d or stride %d does not fit a 32-bit immediate", instr.Count, instr.Amount)
		}

		switch instr.Kind {
		case bf.OptIncPtr:
			e.IncPtr(int32(instr.Count))
		case bf.OptDecPtr:
			e.DecPtr(int32(instr.Count))
		case bf.OptIncData:
			// The wrap is mod 256 regardless of how large Count grew during
			// coalescing, so one emission with the reduced count reproduces
			// a run of any length instead of blowing up code size past 255.
			e.IncData(uint8(instr.Count % 256))
		case bf.OptDecData:
			e.DecData(uint8(instr.Count % 256))
		case bf.OptRead:
			emitRepeated(instr.Count, func() { e.CallRead(addrs) })
		case bf.OptWrite:
			emitRepeated(instr.Count, func() { e.CallWrite(addrs) })
		case bf.OptJumpBegin:
			// The matching OptJumpEnd's Dest names this instruction's own
			// index in the source stream, not a JIT label id; the label
			// stack built by JumpBegin/JumpEnd tracks the real targets,
			// so Dest is unused here.
			endLabels = append(endLabels, e.JumpBegin())
		case bf.OptJumpEnd:
			id := endLabels[len(endLabels)-1]
			endLabels = endLabels[:len(endLabels)-1]
			e.JumpEnd(id)
		case bf.OptSetDataToZero:
			emitRepeated(instr.Count, e.SetDataToZero)
		case bf.OptMovePtrUntilZero:
			emitRepeated(instr.Count, func() { e.MovePtrUntilZero(instr.Forward, int32(instr.Amount)) })
		case bf.OptMoveData:
			emitRepeated(instr.Count, func() { e.MoveData(instr.Forward, int32(instr.Amount)) })
		}
	}

	e.Epilogue()

	return e.Finalize()
}

// emitRepeated issues emit n times; Count folds a run of identical
// optimized-form instructions into one, so replaying the underlying
// single-unit emission n times reproduces the coalesced effect without
// needing the emitter to know about run-length counts itself.
func emitRepeated(n int, emit func()) {
	for i := 0; i < n; i++ {
		emit()
	}
}
