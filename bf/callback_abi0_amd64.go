//go:build amd64

package bf

import "reflect"

// hostReadByteShim and hostWriteByteShim present the host C-style
// register contract asm.AMD64Emitter's CallRead/CallWrite already assume
// (SysV: arg1 in DI, arg2 in SI; Win64: arg1 in CX, arg2 in DX) and
// forward into hostReadByte/hostWriteByte's stable ABI0 entry points.
// They have no Go body: the implementation lives in
// callback_shim_sysv_amd64.s and callback_shim_win64_amd64.s, and taking
// the address of a hand-written assembly symbol (rather than a
// compiler-generated function with a dual ABI0/ABIInternal pair) is what
// gives reflect.ValueOf(...).Pointer() a single, stable entry point to
// return below.
func hostReadByteShim()
func hostWriteByteShim()

func platformCallbackAddrs() (read, write uint64) {
	return uint64(reflect.ValueOf(hostReadByteShim).Pointer()), uint64(reflect.ValueOf(hostWriteByteShim).Pointer())
}
