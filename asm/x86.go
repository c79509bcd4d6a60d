package asm

// X86Emitter implements Emitter for 32-bit x86 under the SysV/cdecl
// convention: arguments pushed right-to-left, caller cleans the stack.
// The tape pointer lives in esi, callee-saved across the call sequences
// below exactly as r13 is on amd64 — the same design, one register size
// down.
type X86Emitter struct {
	cfg        Config
	buf        *Buffer
	beginPairs [][2]int
}

func NewX86Emitter(cfg Config) *X86Emitter {
	return &X86Emitter{cfg: cfg, buf: NewBuffer()}
}

const (
	reg32EAX = 0
	reg32ECX = 1
	reg32EDX = 2
	reg32EBX = 3
	reg32ESP = 4
	reg32EBP = 5
	reg32ESI = 6
	reg32EDI = 7
)

func (e *X86Emitter) Prologue(addrs Addrs) {
	e.buf.EmitByte(0x56) // push esi
	e.buf.EmitByte(0xBE) // mov esi, imm32
	e.buf.EmitU32(uint32(addrs.Tape))
}

func (e *X86Emitter) Epilogue() {
	e.buf.EmitByte(0x5E) // pop esi
	e.buf.EmitByte(0xC3) // ret
}

func (e *X86Emitter) pushImm32(v uint32) {
	e.buf.EmitByte(0x68)
	e.buf.EmitU32(v)
}

func (e *X86Emitter) movEaxImm32(v uint32) {
	e.buf.EmitByte(0xB8)
	e.buf.EmitU32(v)
}

func (e *X86Emitter) callEax() { e.buf.EmitBytes(0xFF, 0xD0) }

func (e *X86Emitter) addEspImm8(n byte) { e.buf.EmitBytes(0x83, 0xC4, n) }

func (e *X86Emitter) CallRead(addrs Addrs) {
	e.pushImm32(uint32(addrs.RT))
	e.movEaxImm32(uint32(addrs.Read))
	e.callEax()
	e.addEspImm8(4)
	// mov byte [esi], al
	e.buf.EmitBytes(0x88, 0x06)
}

func (e *X86Emitter) CallWrite(addrs Addrs) {
	// movzx eax, byte [esi]
	e.buf.EmitBytes(0x0F, 0xB6, 0x06)
	e.buf.EmitByte(0x50) // push eax  (arg2: the byte, widened to a cell)
	e.pushImm32(uint32(addrs.RT))
	e.movEaxImm32(uint32(addrs.Write))
	e.callEax()
	e.addEspImm8(8)
}

func (e *X86Emitter) EmitReadHelper(addrs Addrs) int {
	offset := e.buf.Len()
	e.CallRead(addrs)
	e.buf.EmitByte(0xC3)
	return offset
}

func (e *X86Emitter) EmitWriteHelper(addrs Addrs) int {
	offset := e.buf.Len()
	e.CallWrite(addrs)
	e.buf.EmitByte(0xC3)
	return offset
}

func (e *X86Emitter) callRel32(targetOffset int) {
	e.buf.EmitByte(0xE8)
	instrEnd := e.buf.Len() + 4
	e.buf.EmitU32(uint32(int32(targetOffset - instrEnd)))
}

func (e *X86Emitter) CallReadHelper(helperOffset int)  { e.callRel32(helperOffset) }
func (e *X86Emitter) CallWriteHelper(helperOffset int) { e.callRel32(helperOffset) }

func (e *X86Emitter) addSubEsiImm32(regField byte, n int32) {
	e.buf.EmitByte(0x81)
	e.buf.EmitByte(0xC0 | (regField << 3) | reg32ESI)
	e.buf.EmitU32(uint32(n))
}

func (e *X86Emitter) IncPtr(n int32) { e.addSubEsiImm32(0x00, n) }
func (e *X86Emitter) DecPtr(n int32) { e.addSubEsiImm32(0x05, n) }

func (e *X86Emitter) addSubMemEsiImm8(regField byte, n uint8) {
	e.buf.EmitByte(0x80)
	e.buf.EmitByte((regField << 3) | reg32ESI)
	e.buf.EmitByte(n)
}

func (e *X86Emitter) IncData(n uint8) { e.addSubMemEsiImm8(0x00, n) }
func (e *X86Emitter) DecData(n uint8) { e.addSubMemEsiImm8(0x05, n) }

func (e *X86Emitter) cmpMemEsiZero() {
	e.buf.EmitByte(0x80)
	e.buf.EmitByte((0x07 << 3) | reg32ESI)
	e.buf.EmitByte(0x00)
}

func (e *X86Emitter) jz(targetID int) {
	e.buf.EmitBytes(0x0F, 0x84)
	e.buf.EmitRel32Fixup(targetID)
}

func (e *X86Emitter) jnz(targetID int) {
	e.buf.EmitBytes(0x0F, 0x85)
	e.buf.EmitRel32Fixup(targetID)
}

func (e *X86Emitter) jmp(targetID int) {
	e.buf.EmitByte(0xE9)
	e.buf.EmitRel32Fixup(targetID)
}

func (e *X86Emitter) NewLabel() int     { return e.buf.NewLabel() }
func (e *X86Emitter) PlaceLabel(id int) { e.buf.PlaceLabel(id) }

func (e *X86Emitter) JumpBegin() int {
	begin := e.buf.NewLabel()
	end := e.buf.NewLabel()
	e.beginPairs = append(e.beginPairs, [2]int{begin, end})
	e.cmpMemEsiZero()
	e.jz(end)
	e.buf.PlaceLabel(begin)
	return end
}

func (e *X86Emitter) JumpEnd(endID int) {
	var beginID int
	for i := len(e.beginPairs) - 1; i >= 0; i-- {
		if e.beginPairs[i][1] == endID {
			beginID = e.beginPairs[i][0]
			e.beginPairs = append(e.beginPairs[:i], e.beginPairs[i+1:]...)
			break
		}
	}
	e.cmpMemEsiZero()
	e.jnz(beginID)
	e.buf.PlaceLabel(endID)
}

func (e *X86Emitter) JumpBeginTo(matchLabel int) int {
	e.cmpMemEsiZero()
	e.jz(matchLabel)
	return matchLabel
}

func (e *X86Emitter) JumpEndTo(matchLabel int) {
	e.cmpMemEsiZero()
	e.jnz(matchLabel)
}

func (e *X86Emitter) SetDataToZero() {
	e.buf.EmitBytes(0xC6, 0x06, 0x00)
}

func (e *X86Emitter) MovePtrUntilZero(forward bool, amount int32) {
	loop := e.buf.NewLabel()
	end := e.buf.NewLabel()
	e.buf.PlaceLabel(loop)
	e.cmpMemEsiZero()
	e.jz(end)
	if forward {
		e.IncPtr(amount)
	} else {
		e.DecPtr(amount)
	}
	e.jmp(loop)
	e.buf.PlaceLabel(end)
}

func (e *X86Emitter) MoveData(forward bool, amount int32) {
	skip := e.buf.NewLabel()
	e.cmpMemEsiZero()
	e.jz(skip)

	e.buf.EmitBytes(0x8A, 0x06) // mov al, [esi]

	disp := amount
	if !forward {
		disp = -amount
	}
	e.buf.EmitByte(0x00)
	e.buf.EmitByte(0x86) // ModRM mod=10, reg=al(000), rm=esi(110)
	e.buf.EmitU32(uint32(disp))

	e.SetDataToZero()

	e.buf.PlaceLabel(skip)
}

func (e *X86Emitter) Finalize() ([]byte, error) {
	if err := e.buf.ResolveFixups(); err != nil {
		return nil, err
	}
	return e.buf.Code, nil
}
