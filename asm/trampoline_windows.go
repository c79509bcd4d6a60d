//go:build windows

package asm

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"bfjit/bf"
)

// Executable holds a page of JIT'd machine code mapped PAGE_EXECUTE_READ.
type Executable struct {
	addr uintptr
	size uintptr
}

// Load allocates a fresh VirtualAlloc region, copies code in while it is
// still writable, then flips it to PAGE_EXECUTE_READ.
func Load(code []byte) (*Executable, error) {
	size := uintptr(len(code))
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, bf.AssemblerError(err, "VirtualAlloc %d bytes for JIT buffer", len(code))
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	copy(dst, code)

	var oldProtect uint32
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READ, &oldProtect); err != nil {
		_ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		return nil, bf.AssemblerError(err, "VirtualProtect JIT buffer executable")
	}

	return &Executable{addr: addr, size: size}, nil
}

func (x *Executable) Close() error {
	if x.addr == 0 {
		return nil
	}
	err := windows.VirtualFree(x.addr, 0, windows.MEM_RELEASE)
	x.addr = 0
	return err
}

// Run jumps into the mapped buffer; see trampoline.go's Run for the
// func-value reinterpretation this relies on, identical on Windows.
func (x *Executable) Run(rt *bf.Runtime) error {
	codePtr := x.addr
	fn := *(*func())(unsafe.Pointer(&codePtr))

	fn()

	runtime.KeepAlive(rt)
	runtime.KeepAlive(x)

	return rt.PendingErr()
}
