package bf

import (
	"bufio"
	"io"
	"unsafe"
)

// TapeSize is the fixed cell-memory length every engine operates over.
const TapeSize = 30000

// Runtime owns the tape and the I/O handles for exactly one Run call. It is
// always heap-allocated and never copied once constructed: a JIT buffer may
// have baked this value's address into emitted machine code, and moving the
// struct after that point would leave that code pointing at garbage. The
// tape is an inline array field rather than a separately allocated slice so
// there is exactly one object whose address has to stay fixed.
type Runtime struct {
	tape   [TapeSize]byte
	reader *bufio.Reader
	writer *bufio.Writer

	// pendingErr latches an Io failure seen inside a JITted call to
	// hostReadByte/hostWriteByte, where there is no way to propagate a Go
	// error back through hand-emitted machine code. The trampoline checks
	// this once control returns from the compiled buffer.
	pendingErr error
}

// PendingErr returns and clears the latched I/O error set by a JIT
// callback, if any.
func (rt *Runtime) PendingErr() error {
	err := rt.pendingErr
	rt.pendingErr = nil
	return err
}

// NewRuntime wraps stdin/stdout-like streams for one execution. Callers
// must keep the returned value alive (via a pointer, never a copy) for as
// long as any compiled buffer referencing it might still run.
func NewRuntime(stdin io.Reader, stdout io.Writer) *Runtime {
	return &Runtime{
		reader: bufio.NewReader(stdin),
		writer: bufio.NewWriter(stdout),
	}
}

// MemoryAddress returns the absolute address of tape[0], stable for the
// lifetime of rt. JIT emitters bake this in as an immediate.
func (rt *Runtime) MemoryAddress() uintptr {
	return uintptr(unsafe.Pointer(&rt.tape[0]))
}

// Cell reads/writes a single tape cell. Interpreter loops use these instead
// of reaching into the array directly so bounds-checking stays in one
// place; per the data model, out-of-range access is unspecified behavior
// and not guarded against here.
func (rt *Runtime) Cell(dp int) byte       { return rt.tape[dp] }
func (rt *Runtime) SetCell(dp int, v byte) { rt.tape[dp] = v }

// ReadByte blocks for one byte from the input stream. A short read is
// surfaced as an Io error; io.EOF is reported the same way, since the
// eight-command language has no notion of "no more input" other than
// treating it as a failure the caller must decide how to handle (the
// reference engines, and this one, propagate it).
func (rt *Runtime) ReadByte() (byte, error) {
	b, err := rt.reader.ReadByte()
	if err != nil {
		return 0, ioErrorf(err, "read_byte failed")
	}
	return b, nil
}

// WriteByte writes one byte and flushes immediately, so every '.' is
// visible to an external observer in source order before the next
// instruction runs.
func (rt *Runtime) WriteByte(b byte) error {
	if err := rt.writer.WriteByte(b); err != nil {
		return ioErrorf(err, "write_byte failed")
	}
	if err := rt.writer.Flush(); err != nil {
		return ioErrorf(err, "write_byte flush failed")
	}
	return nil
}

// hostReadByte and hostWriteByte are the free-function forms of the above,
// addressed by the JIT backends (see CallbackAddrs below) and called
// under a hand-built register contract rather than Go's own calling
// convention — see SPEC_FULL.md section 9, "Callback ABI". They exist
// separately from the methods above so their signatures exactly match what
// the emitted call sites expect (pointer-sized receiver, byte in/out) with
// nothing else in the frame a future refactor of the methods could change
// out from under the JIT.
func hostReadByte(rt *Runtime) byte {
	b, err := rt.ReadByte()
	if err != nil {
		rt.pendingErr = err
		return 0
	}
	return b
}

func hostWriteByte(rt *Runtime, b byte) {
	if err := rt.WriteByte(b); err != nil {
		rt.pendingErr = err
	}
}

// CallbackAddrs returns the addresses the JIT backends bake into an
// asm.Addrs value's Read/Write fields. On amd64, reflect.ValueOf(fn).
// Pointer() on an ordinary Go function returns its register-based
// ABIInternal entry point, whose argument registers do not match either
// C calling convention CallRead/CallWrite emit (SysV RDI/RSI or Win64
// RCX/RDX) — platformCallbackAddrs routes through a small assembly shim
// with a stable ABI0 entry point on that architecture instead. 386 has
// no ABIInternal to diverge from, and arm64's ABIInternal argument order
// happens to already match AAPCS64 for these one/two-argument callbacks,
// so both address hostReadByte/hostWriteByte directly; see
// callback_abi0_amd64.go and callback_abi0_other.go.
func CallbackAddrs() (read, write uint64) {
	return platformCallbackAddrs()
}
