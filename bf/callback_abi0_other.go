//go:build !amd64

package bf

import "reflect"

// platformCallbackAddrs addresses hostReadByte/hostWriteByte directly.
// 386 has no register-based ABIInternal to diverge from CallRead/
// CallWrite's C-style call sequence, and arm64's ABIInternal argument
// order happens to already coincide with AAPCS64 for these one/two-
// argument callbacks, so neither platform needs the amd64 shim's ABI0
// entry point trick (see callback_abi0_amd64.go).
func platformCallbackAddrs() (read, write uint64) {
	return uint64(reflect.ValueOf(hostReadByte).Pointer()), uint64(reflect.ValueOf(hostWriteByte).Pointer())
}
