//go:build linux || darwin

package asm

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"bfjit/bf"
)

// Executable holds a page of JIT'd machine code mapped PROT_READ|PROT_EXEC.
// It must be released with Close once the engine is done running it.
type Executable struct {
	mem []byte
}

// Load copies code into a fresh anonymous mapping, marks it executable and
// read-only, and returns a handle ready to invoke via Run.
func Load(code []byte) (*Executable, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, bf.AssemblerError(err, "mmap %d bytes for JIT buffer", len(code))
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, bf.AssemblerError(err, "mprotect JIT buffer executable")
	}
	return &Executable{mem: mem}, nil
}

func (x *Executable) Close() error {
	if x.mem == nil {
		return nil
	}
	err := unix.Munmap(x.mem)
	x.mem = nil
	return err
}

// Run jumps into the mapped buffer. The tape base, runtime pointer and
// callback addresses were all baked in as immediates at emission time, so
// the compiled function takes no arguments and returns nothing; any I/O
// failure it hit along the way is recovered afterwards from rt.PendingErr.
//
// Go has no supported way to call through an arbitrary code pointer, so
// this reinterprets the mapped page's address as a niladic func() value —
// valid because a Go func value's first word is exactly a code pointer.
// rt is never touched by Go between Load and this call returning, and
// runtime.KeepAlive pins both the runtime and the mapping for the
// duration so neither is collected while the callbacks the emitted code
// calls into are still live on the stack.
func (x *Executable) Run(rt *bf.Runtime) error {
	codePtr := uintptr(unsafe.Pointer(&x.mem[0]))
	fn := *(*func())(unsafe.Pointer(&codePtr))

	fn()

	runtime.KeepAlive(rt)
	runtime.KeepAlive(x)

	return rt.PendingErr()
}
