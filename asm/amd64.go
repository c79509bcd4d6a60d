package asm

// AMD64Emitter implements Emitter for x86-64 under either SysV (Linux,
// macOS) or Win64 (Microsoft x64). The tape-pointer register is the
// non-volatile r13 under both ABIs; only the argument registers and the
// Windows calling convention's shadow-space reservation differ, both
// captured in cfg.
type AMD64Emitter struct {
	cfg        Config
	buf        *Buffer
	beginPairs [][2]int // open JumpBegin label pairs, most recent last
}

func NewAMD64Emitter(cfg Config) *AMD64Emitter {
	return &AMD64Emitter{cfg: cfg, buf: NewBuffer()}
}

// Register encodings (low 3 bits; REX.B/R/X extend the field to r8-r15).
const (
	regRAX = 0
	regRCX = 1
	regRDX = 2
	regRBX = 3
	regRSP = 4
	regRBP = 5
	regRSI = 6
	regRDI = 7
	regR8  = 0 // with REX.B/R set
	regR13 = 5 // with REX.B/R set
)

// argRegs returns the low-3-bit codes of the first two integer argument
// registers under cfg.ABI. Both are < r8, so no REX.B is ever needed to
// address them directly (only r13 and r8 need that extension bit).
func (e *AMD64Emitter) argRegs() (arg1, arg2 byte) {
	if e.cfg.ABI == Win64 {
		return regRCX, regRDX
	}
	return regRDI, regRSI
}

// movRegImm64 emits `mov reg, imm64` (REX.W[+B] B8+reg imm64).
func (e *AMD64Emitter) movRegImm64(regCode byte, extended bool, imm uint64) {
	rex := byte(0x48)
	if extended {
		rex |= 0x01 // REX.B
	}
	e.buf.EmitByte(rex)
	e.buf.EmitByte(0xB8 + regCode)
	e.buf.EmitU64(imm)
}

func (e *AMD64Emitter) Prologue(addrs Addrs) {
	if e.cfg.StackOffset != 0 {
		// sub rsp, StackOffset (Win64 shadow space; SysV needs none).
		e.buf.EmitBytes(0x48, 0x81, 0xEC)
		e.buf.EmitU32(uint32(e.cfg.StackOffset))
	}
	e.buf.EmitBytes(0x41, 0x55) // push r13
	e.movRegImm64(regR13, true, addrs.Tape)
}

func (e *AMD64Emitter) Epilogue() {
	e.buf.EmitBytes(0x41, 0x5D) // pop r13
	if e.cfg.StackOffset != 0 {
		e.buf.EmitBytes(0x48, 0x81, 0xC4) // add rsp, StackOffset
		e.buf.EmitU32(uint32(e.cfg.StackOffset))
	}
	e.buf.EmitByte(0xC3) // ret
}

// emitCallSequence is the shared body of CallRead/CallWrite: load rt's
// address into arg1, optionally load [r13] into arg2 (write_byte's second
// argument), load the callback address into r8, and call it indirectly.
func (e *AMD64Emitter) emitCallSequence(rtAddr, fnAddr uint64, loadArg2FromTape bool) {
	arg1, arg2 := e.argRegs()
	e.movRegImm64(arg1, false, rtAddr)
	if loadArg2FromTape {
		// mov arg2(8-bit alias), byte [r13+0]  (opcode 8A /r, mod=01 disp8=0)
		e.buf.EmitByte(0x41) // REX.B: rm selects r13
		e.buf.EmitByte(0x8A)
		e.buf.EmitByte(byte(0x40) | (arg2 << 3) | regRBP)
		e.buf.EmitByte(0x00)
	}
	e.movRegImm64(regR8, true, fnAddr)
	e.buf.EmitBytes(0x41, 0xFF, 0xD0) // call r8
}

func (e *AMD64Emitter) CallRead(addrs Addrs) {
	e.emitCallSequence(addrs.RT, addrs.Read, false)
	// mov byte [r13+0], al
	e.buf.EmitByte(0x41)
	e.buf.EmitByte(0x88)
	e.buf.EmitByte(byte(0x40) | (regRAX << 3) | regRBP)
	e.buf.EmitByte(0x00)
}

func (e *AMD64Emitter) CallWrite(addrs Addrs) {
	e.emitCallSequence(addrs.RT, addrs.Write, true)
}

func (e *AMD64Emitter) EmitReadHelper(addrs Addrs) int {
	offset := e.buf.Len()
	e.CallRead(addrs)
	e.buf.EmitByte(0xC3) // ret
	return offset
}

func (e *AMD64Emitter) EmitWriteHelper(addrs Addrs) int {
	offset := e.buf.Len()
	e.CallWrite(addrs)
	e.buf.EmitByte(0xC3) // ret
	return offset
}

// callRel32 targets a helper already placed earlier in this same buffer,
// so the displacement is computed directly rather than through the label
// fixup table.
func (e *AMD64Emitter) callRel32(targetOffset int) {
	e.buf.EmitByte(0xE8)
	instrEnd := e.buf.Len() + 4
	rel := int32(targetOffset - instrEnd)
	e.buf.EmitU32(uint32(rel))
}

func (e *AMD64Emitter) CallReadHelper(helperOffset int)  { e.callRel32(helperOffset) }
func (e *AMD64Emitter) CallWriteHelper(helperOffset int) { e.callRel32(helperOffset) }

func (e *AMD64Emitter) IncPtr(n int32) { e.addSubR13Imm32(0x00, n) } // ADD /0
func (e *AMD64Emitter) DecPtr(n int32) { e.addSubR13Imm32(0x05, n) } // SUB /5

func (e *AMD64Emitter) addSubR13Imm32(regField byte, n int32) {
	e.buf.EmitBytes(0x49, 0x81) // REX.WB, opcode 81 /0 or /5
	modrm := byte(0xC0) | (regField << 3) | regRBP
	e.buf.EmitByte(modrm)
	e.buf.EmitU32(uint32(n))
}

func (e *AMD64Emitter) IncData(n uint8) { e.addSubMemR13Imm8(0x00, n) }
func (e *AMD64Emitter) DecData(n uint8) { e.addSubMemR13Imm8(0x05, n) }

func (e *AMD64Emitter) addSubMemR13Imm8(regField byte, n uint8) {
	e.buf.EmitBytes(0x41, 0x80) // REX.B, opcode 80 /0 or /5
	modrm := byte(0x40) | (regField << 3) | regRBP
	e.buf.EmitByte(modrm)
	e.buf.EmitByte(0x00) // disp8
	e.buf.EmitByte(n)
}

func (e *AMD64Emitter) cmpMemR13Zero() {
	e.buf.EmitBytes(0x41, 0x80) // REX.B, opcode 80 /7 imm8
	modrm := byte(0x40) | (0x07 << 3) | regRBP
	e.buf.EmitByte(modrm)
	e.buf.EmitByte(0x00) // disp8
	e.buf.EmitByte(0x00) // imm8: compare against 0
}

func (e *AMD64Emitter) jz(targetID int) {
	e.buf.EmitBytes(0x0F, 0x84)
	e.buf.EmitRel32Fixup(targetID)
}

func (e *AMD64Emitter) jnz(targetID int) {
	e.buf.EmitBytes(0x0F, 0x85)
	e.buf.EmitRel32Fixup(targetID)
}

func (e *AMD64Emitter) jmp(targetID int) {
	e.buf.EmitByte(0xE9)
	e.buf.EmitRel32Fixup(targetID)
}

func (e *AMD64Emitter) NewLabel() int      { return e.buf.NewLabel() }
func (e *AMD64Emitter) PlaceLabel(id int) { e.buf.PlaceLabel(id) }

// JumpBegin implements the bracket-stack protocol used by the optimizing
// JIT: it allocates the begin/end label pair, emits the "skip to end if
// zero" test, places the begin label and returns the end id so the
// matching JumpEnd call knows which begin to branch back to.
func (e *AMD64Emitter) JumpBegin() int {
	begin := e.buf.NewLabel()
	end := e.buf.NewLabel()
	e.beginPairs = append(e.beginPairs, [2]int{begin, end})
	e.cmpMemR13Zero()
	e.jz(end)
	e.buf.PlaceLabel(begin)
	return end
}

func (e *AMD64Emitter) JumpEnd(endID int) {
	var beginID int
	for i := len(e.beginPairs) - 1; i >= 0; i-- {
		if e.beginPairs[i][1] == endID {
			beginID = e.beginPairs[i][0]
			e.beginPairs = append(e.beginPairs[:i], e.beginPairs[i+1:]...)
			break
		}
	}
	e.cmpMemR13Zero()
	e.jnz(beginID)
	e.buf.PlaceLabel(endID)
}

// JumpBeginTo/JumpEndTo are the naive JIT's form: the matching label id was
// already allocated up front from the parser's jump table, so no stack
// bookkeeping is needed here.
func (e *AMD64Emitter) JumpBeginTo(matchLabel int) int {
	e.cmpMemR13Zero()
	e.jz(matchLabel)
	return matchLabel
}

func (e *AMD64Emitter) JumpEndTo(matchLabel int) {
	e.cmpMemR13Zero()
	e.jnz(matchLabel)
}

func (e *AMD64Emitter) SetDataToZero() {
	// mov byte [r13+0], 0 — a single-byte store needs no read-modify-write.
	e.buf.EmitBytes(0x41, 0xC6)
	e.buf.EmitByte(byte(0x40) | (0x00 << 3) | regRBP)
	e.buf.EmitByte(0x00) // disp8
	e.buf.EmitByte(0x00) // imm8
}

func (e *AMD64Emitter) MovePtrUntilZero(forward bool, amount int32) {
	loop := e.buf.NewLabel()
	end := e.buf.NewLabel()
	e.buf.PlaceLabel(loop)
	e.cmpMemR13Zero()
	e.jz(end)
	if forward {
		e.IncPtr(amount)
	} else {
		e.DecPtr(amount)
	}
	e.jmp(loop)
	e.buf.PlaceLabel(end)
}

func (e *AMD64Emitter) MoveData(forward bool, amount int32) {
	skip := e.buf.NewLabel()
	e.cmpMemR13Zero()
	e.jz(skip)

	// mov al, byte [r13+0]
	e.buf.EmitBytes(0x41, 0x8A)
	e.buf.EmitByte(byte(0x40) | (regRAX << 3) | regRBP)
	e.buf.EmitByte(0x00)

	// add byte [r13+disp32], al
	disp := amount
	if !forward {
		disp = -amount
	}
	e.buf.EmitBytes(0x41, 0x00)
	modrm := byte(0x80) | (regRAX << 3) | regRBP // mod=10 -> disp32
	e.buf.EmitByte(modrm)
	e.buf.EmitU32(uint32(disp))

	e.SetDataToZero()

	e.buf.PlaceLabel(skip)
}

func (e *AMD64Emitter) Finalize() ([]byte, error) {
	if err := e.buf.ResolveFixups(); err != nil {
		return nil, err
	}
	return e.buf.Code, nil
}
