package asm

// ARM64Emitter implements Emitter for AArch64 under AAPCS64. The tape
// pointer lives in x19 (callee-saved), the callback address is
// materialized into x9 (caller-saved scratch) before each indirect call,
// and a movz followed by a movk for each non-zero higher 16-bit lane
// builds every 64-bit immediate since AArch64 has no single-instruction
// 64-bit load.
type ARM64Emitter struct {
	cfg        Config
	buf        *Buffer
	beginPairs [][2]int
}

func NewARM64Emitter(cfg Config) *ARM64Emitter {
	return &ARM64Emitter{cfg: cfg, buf: NewBuffer()}
}

const (
	regX0  = 0
	regX1  = 1
	regX9  = 9
	regX10 = 10
	regX19 = 19
	regX29 = 29
	regX30 = 30
	regSP  = 31
)

func (e *ARM64Emitter) movz(rd uint32, imm16 uint32, hw uint32) {
	e.buf.EmitU32(0xD2800000 | (hw << 21) | (imm16 << 5) | rd)
}

func (e *ARM64Emitter) movk(rd uint32, imm16 uint32, hw uint32) {
	e.buf.EmitU32(0xF2800000 | (hw << 21) | (imm16 << 5) | rd)
}

// loadImm64 materializes a 64-bit immediate into rd via one MOVZ and up
// to three MOVKs, skipping any all-zero 16-bit chunk past the first.
func (e *ARM64Emitter) loadImm64(rd uint32, imm uint64) {
	e.movz(rd, uint32(imm&0xFFFF), 0)
	if chunk := uint32((imm >> 16) & 0xFFFF); chunk != 0 {
		e.movk(rd, chunk, 1)
	}
	if chunk := uint32((imm >> 32) & 0xFFFF); chunk != 0 {
		e.movk(rd, chunk, 2)
	}
	if chunk := uint32((imm >> 48) & 0xFFFF); chunk != 0 {
		e.movk(rd, chunk, 3)
	}
}

func (e *ARM64Emitter) stpPreIndex(rt1, rt2, rn uint32, imm7Scaled int32) {
	e.buf.EmitU32(0xA9800000 | ((uint32(imm7Scaled) & 0x7F) << 15) | (rt2 << 10) | (rn << 5) | rt1)
}

func (e *ARM64Emitter) ldpPostIndex(rt1, rt2, rn uint32, imm7Scaled int32) {
	e.buf.EmitU32(0xA8C00000 | ((uint32(imm7Scaled) & 0x7F) << 15) | (rt2 << 10) | (rn << 5) | rt1)
}

func (e *ARM64Emitter) Prologue(addrs Addrs) {
	// stp x19, x30, [sp, #-16]!  — save the tape pointer and the link
	// register across the calls this compiled buffer makes.
	e.stpPreIndex(regX19, regX30, regSP, -2)
	e.loadImm64(regX19, addrs.Tape)
}

func (e *ARM64Emitter) Epilogue() {
	// ldp x19, x30, [sp], #16
	e.ldpPostIndex(regX19, regX30, regSP, 2)
	e.buf.EmitU32(0xD65F03C0) // ret
}

// ldrb/strb address [rn, #imm], imm a byte offset (the unsigned offset
// form of LDRB/STRB scales by the access size, which is 1 for a byte, so
// the raw offset is used as-is). The immediate field is 12 bits wide and
// unsigned, so callers needing a negative or >4095 displacement must
// first fold it into rn's base address rather than passing it here.
func (e *ARM64Emitter) ldrb(rt, rn uint32, imm int32) {
	e.buf.EmitU32(0x39400000 | ((uint32(imm) & 0xFFF) << 10) | (rn << 5) | rt)
}

func (e *ARM64Emitter) strb(rt, rn uint32, imm int32) {
	e.buf.EmitU32(0x39000000 | ((uint32(imm) & 0xFFF) << 10) | (rn << 5) | rt)
}

func (e *ARM64Emitter) ldrbX19(rt uint32, imm int32) { e.ldrb(rt, regX19, imm) }
func (e *ARM64Emitter) strbX19(rt uint32, imm int32) { e.strb(rt, regX19, imm) }

// movReg emits `mov rd, rm` (the ORR rd, xzr, rm alias).
func (e *ARM64Emitter) movReg(rd, rm uint32) {
	e.buf.EmitU32(0xAA0003E0 | (rm << 16) | rd)
}

func (e *ARM64Emitter) blr(rn uint32) { e.buf.EmitU32(0xD63F0000 | (rn << 5)) }

func (e *ARM64Emitter) CallRead(addrs Addrs) {
	e.loadImm64(regX0, addrs.RT)
	e.loadImm64(regX9, addrs.Read)
	e.blr(regX9)
	e.strbX19(regX0, 0) // store the returned byte (w0) at [x19]
}

func (e *ARM64Emitter) CallWrite(addrs Addrs) {
	e.loadImm64(regX0, addrs.RT)
	e.ldrbX19(regX1, 0) // arg2 = [x19]
	e.loadImm64(regX9, addrs.Write)
	e.blr(regX9)
}

func (e *ARM64Emitter) EmitReadHelper(addrs Addrs) int {
	offset := e.buf.Len()
	e.CallRead(addrs)
	e.buf.EmitU32(0xD65F03C0) // ret
	return offset
}

func (e *ARM64Emitter) EmitWriteHelper(addrs Addrs) int {
	offset := e.buf.Len()
	e.CallWrite(addrs)
	e.buf.EmitU32(0xD65F03C0)
	return offset
}

// callHelper emits bl to a helper already placed earlier in this buffer.
func (e *ARM64Emitter) callHelper(targetOffset int) {
	relWords := int32((targetOffset - e.buf.Len()) / 4)
	e.buf.EmitU32(0x94000000 | (uint32(relWords) & 0x03FFFFFF))
}

func (e *ARM64Emitter) CallReadHelper(helperOffset int)  { e.callHelper(helperOffset) }
func (e *ARM64Emitter) CallWriteHelper(helperOffset int) { e.callHelper(helperOffset) }

// addSubImm12Chain decomposes n into 12-bit chunks (a shifted-by-12 high
// part and a low part) so pointer strides larger than 4095 still emit as
// straight-line ADD/SUB immediate forms instead of falling back to a
// register-materialized immediate.
func (e *ARM64Emitter) addSubImm12Chain(isSub bool, rd uint32, n int32) {
	base := uint32(0x91000000)
	if isSub {
		base = 0xD1000000
	}
	hi := uint32(n>>12) & 0xFFF
	lo := uint32(n) & 0xFFF
	if hi != 0 {
		e.buf.EmitU32(base | (1 << 22) | (hi << 10) | (rd << 5) | rd)
	}
	if lo != 0 || hi == 0 {
		e.buf.EmitU32(base | (lo << 10) | (rd << 5) | rd)
	}
}

func (e *ARM64Emitter) IncPtr(n int32) { e.addSubImm12Chain(false, regX19, n) }
func (e *ARM64Emitter) DecPtr(n int32) { e.addSubImm12Chain(true, regX19, n) }

func (e *ARM64Emitter) IncData(n uint8) {
	e.ldrbX19(regX9, 0)
	e.addSubImm12Chain(false, regX9, int32(n))
	e.strbX19(regX9, 0)
}

func (e *ARM64Emitter) DecData(n uint8) {
	e.ldrbX19(regX9, 0)
	e.addSubImm12Chain(true, regX9, int32(n))
	e.strbX19(regX9, 0)
}

func (e *ARM64Emitter) cbzX9FromTape(targetID int, cond bool) {
	e.ldrbX19(regX9, 0)
	opcode := uint32(0xB4000000) // cbz
	if cond {
		opcode = 0xB5000000 // cbnz
	}
	e.buf.EmitArm64BranchFixup(targetID, true, opcode|regX9)
}

func (e *ARM64Emitter) jmp(targetID int) {
	e.buf.EmitArm64BranchFixup(targetID, false, 0x14000000)
}

func (e *ARM64Emitter) NewLabel() int     { return e.buf.NewLabel() }
func (e *ARM64Emitter) PlaceLabel(id int) { e.buf.PlaceLabel(id) }

func (e *ARM64Emitter) JumpBegin() int {
	begin := e.buf.NewLabel()
	end := e.buf.NewLabel()
	e.beginPairs = append(e.beginPairs, [2]int{begin, end})
	e.cbzX9FromTape(end, false) // branch to end if cell == 0
	e.buf.PlaceLabel(begin)
	return end
}

func (e *ARM64Emitter) JumpEnd(endID int) {
	var beginID int
	for i := len(e.beginPairs) - 1; i >= 0; i-- {
		if e.beginPairs[i][1] == endID {
			beginID = e.beginPairs[i][0]
			e.beginPairs = append(e.beginPairs[:i], e.beginPairs[i+1:]...)
			break
		}
	}
	e.cbzX9FromTape(beginID, true) // branch back if cell != 0
	e.buf.PlaceLabel(endID)
}

func (e *ARM64Emitter) JumpBeginTo(matchLabel int) int {
	e.cbzX9FromTape(matchLabel, false)
	return matchLabel
}

func (e *ARM64Emitter) JumpEndTo(matchLabel int) {
	e.cbzX9FromTape(matchLabel, true)
}

func (e *ARM64Emitter) SetDataToZero() {
	e.movz(regX9, 0, 0)
	e.strbX19(regX9, 0)
}

func (e *ARM64Emitter) MovePtrUntilZero(forward bool, amount int32) {
	loop := e.buf.NewLabel()
	end := e.buf.NewLabel()
	e.buf.PlaceLabel(loop)
	e.cbzX9FromTape(end, false)
	if forward {
		e.IncPtr(amount)
	} else {
		e.DecPtr(amount)
	}
	e.jmp(loop)
	e.buf.PlaceLabel(end)
}

func (e *ARM64Emitter) MoveData(forward bool, amount int32) {
	skip := e.buf.NewLabel()
	e.cbzX9FromTape(skip, false)

	// x9 already holds the source cell's value from cbzX9FromTape's load.
	// A backward move needs a negative displacement, and ldrb/strb's
	// unsigned 12-bit offset field has no sign bit to carry that — masking
	// a negative int32 into it would silently address the wrong cell
	// instead of faulting. Materialize the destination address into x10
	// first so ldrb/strb always see a plain zero offset.
	e.movReg(regX10, regX19)
	e.addSubImm12Chain(!forward, regX10, amount)

	e.ldrb(regX1, regX10, 0)
	e.buf.EmitU32(0x0B000000 | (regX9 << 16) | (regX1 << 5) | regX1) // add w1, w1, w9
	e.strb(regX1, regX10, 0)

	e.SetDataToZero()

	e.buf.PlaceLabel(skip)
}

func (e *ARM64Emitter) Finalize() ([]byte, error) {
	if err := e.buf.ResolveFixups(); err != nil {
		return nil, err
	}
	return e.buf.Code, nil
}
