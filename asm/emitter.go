package asm

// Addrs bundles the absolute addresses the prologue and call helpers bake
// in as immediates: the tape base, the runtime's own address (passed as
// arg1 to the read/write callbacks), and the callback entry points
// themselves.
type Addrs struct {
	Tape  uint64
	RT    uint64
	Read  uint64
	Write uint64
}

// Emitter is the per-arch/per-ABI façade every code emitter (simplejit and
// optjit) drives. One concrete implementation exists per architecture
// (AMD64, X86, ARM64); all three share the Buffer type for code storage,
// labels and fixups, differing only in which bytes/words they emit for
// each operation (SPEC_FULL.md section 4.4, design note "favor a single
// assembler configured with a per-arch table... plus a small per-arch
// emitter for ldrb/strb-style byte memory access").
type Emitter interface {
	// Prologue saves the tape-pointer register, reserves the platform
	// stack offset, and loads the tape base address into it.
	Prologue(addrs Addrs)
	// Epilogue restores the tape-pointer register, releases the stack
	// offset, and returns.
	Epilogue()

	// CallRead and CallWrite emit a full call sequence into the runtime's
	// read_byte/write_byte callbacks under the host ABI, storing the
	// returned byte at [tape_ptr] (CallRead) or loading [tape_ptr] into
	// arg2 before the call (CallWrite).
	CallRead(addrs Addrs)
	CallWrite(addrs Addrs)

	// CallReadHelper and CallWriteHelper call a previously emitted shared
	// helper (see EmitReadHelper/EmitWriteHelper) instead of inlining the
	// full sequence; only the naive JIT (engine 5) uses these.
	CallReadHelper(helperOffset int)
	CallWriteHelper(helperOffset int)
	// EmitReadHelper and EmitWriteHelper emit the shared out-of-line call
	// sequences once per compiled buffer and return their start offsets.
	EmitReadHelper(addrs Addrs) int
	EmitWriteHelper(addrs Addrs) int

	IncPtr(n int32)
	DecPtr(n int32)
	IncData(n uint8)
	DecData(n uint8)

	// JumpBegin/JumpEnd implement the label-stack bracket protocol: a
	// JumpBegin call returns its end label's id, which the matching
	// JumpEnd call takes. The simple-form naive JIT instead uses
	// JumpBeginTo/JumpEndTo against a precomputed jump table.
	JumpBegin() int
	JumpEnd(id int)
	JumpBeginTo(matchOffsetLabel int) int
	JumpEndTo(matchOffsetLabel int)

	SetDataToZero()
	MovePtrUntilZero(forward bool, amount int32)
	MoveData(forward bool, amount int32)

	// NewLabel/PlaceLabel expose the underlying buffer's label allocator
	// for the naive JIT, which pre-allocates one label per instruction
	// before it starts emitting (SPEC_FULL.md section 4.5.1).
	NewLabel() int
	PlaceLabel(id int)

	// Finalize resolves all fixups and returns the finished code buffer.
	Finalize() ([]byte, error)
}
