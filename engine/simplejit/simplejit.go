// Package simplejit is the naive JIT (engine 5): it compiles the simple
// instruction form one instruction at a time, with no super-ops, calling
// out to a pair of shared helper routines for every read and write
// instead of inlining the full callback sequence at each call site.
package simplejit

import (
	"io"
	"unsafe"

	"bfjit/asm"
	"bfjit/bf"
)

func Run(source []byte, stdin io.Reader, stdout io.Writer) error {
	prog, err := bf.ParseSimple(source)
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

func compile(prog *bf.SimpleProgram, addrs asm.Addrs) ([]byte, error) {
	cfg := asm.HostConfig()
	e := asm.NewEmitter(cfg)

	e.Prologue(addrs)

	// The shared helpers sit right after the prologue, so execution must
	// branch over them. The tape is all zeros on entry, which makes this
	// zero test always take the branch.
	skipHelpers := e.NewLabel()
	e.JumpBeginTo(skipHelpers)
	readHelper := e.EmitReadHelper(addrs)
	writeHelper := e.EmitWriteHelper(addrs)
	e.PlaceLabel(skipHelpers)

	// One label per source instruction, pre-allocated up front so forward
	// and backward jump targets are both already known labels by the time
	// JumpBeginTo/JumpEndTo reference them — this is what distinguishes
	// the naive JIT's bracket handling from the optimizing JIT's
	// push/pop label-stack approach (SPEC_FULL.md section 4.5.1).
	labels := make([]int, len(prog.Instructions))
	for i := range labels {
		labels[i] = e.NewLabel()
	}

	for pc, instr := range prog.Instructions {
		e.PlaceLabel(labels[pc])
		switch instr {
		case bf.OpIncPtr:
			e.IncPtr(1)
		case bf.OpDecPtr:
			e.DecPtr(1)
		case bf.OpIncData:
			e.IncData(1)
		case bf.OpDecData:
			e.DecData(1)
		case bf.OpRead:
			e.CallReadHelper(readHelper)
		case bf.OpWrite:
			e.CallWriteHelper(writeHelper)
		case bf.OpJumpIfZero:
			e.JumpBeginTo(labels[prog.JumpTable[pc]])
		case bf.OpJumpIfNotZero:
			e.JumpEndTo(labels[prog.JumpTable[pc]])
		}
	}

	e.Epilogue()

	return e.Finalize()
}
