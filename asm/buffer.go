package asm

import (
	"encoding/binary"

	"bfjit/bf"
)

func errUnresolvedLabel(id int) error {
	return bf.AssemblerError(nil, "unresolved label %d at finalize", id)
}

// fixupKind distinguishes a rel32 branch fixup (x86/x86-32) from a
// pc-relative-word fixup (arm64 conditional/unconditional branches encode
// their offset in instruction words, not bytes).
type fixupKind int

const (
	fixupRel32 fixupKind = iota
	fixupArm64Branch26
	fixupArm64CondBranch19
)

// fixup is one backpatch record: once the label it targets has a known
// address, resolveFixups patches the bytes at Offset. This is the same
// shape as the jumpFixup record used by this pack's own x86-64 code
// generator and by its arch/amd64 control-flow emitter, independently
// converging on a "byte offset + target label id" pair — apparently the
// natural way to do this in a language without a dynamic-label assembler.
type fixup struct {
	kind     fixupKind
	offset   int // byte offset of the field to patch
	targetID int // label id
}

// Buffer accumulates emitted machine code plus its label table and
// pending fixups. Each per-arch emitter embeds one.
type Buffer struct {
	Code      []byte
	labelAddr map[int]int // label id -> byte offset, once known
	fixups    []fixup
	nextLabel int
}

func NewBuffer() *Buffer {
	return &Buffer{labelAddr: make(map[int]int)}
}

func (b *Buffer) Len() int { return len(b.Code) }

func (b *Buffer) EmitByte(v byte) { b.Code = append(b.Code, v) }

func (b *Buffer) EmitBytes(v ...byte) { b.Code = append(b.Code, v...) }

func (b *Buffer) EmitU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Code = append(b.Code, buf[:]...)
}

func (b *Buffer) EmitU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.Code = append(b.Code, buf[:]...)
}

// NewLabel allocates a fresh, as-yet-unplaced label id.
func (b *Buffer) NewLabel() int {
	id := b.nextLabel
	b.nextLabel++
	return id
}

// PlaceLabel records that label id resolves to the current end of the
// buffer — call this exactly once execution reaches the point the label
// names.
func (b *Buffer) PlaceLabel(id int) {
	b.labelAddr[id] = len(b.Code)
}

// EmitRel32Fixup reserves four zero bytes for a rel32 displacement to be
// patched once target is placed, and records the fixup.
func (b *Buffer) EmitRel32Fixup(targetID int) {
	b.fixups = append(b.fixups, fixup{kind: fixupRel32, offset: len(b.Code), targetID: targetID})
	b.EmitU32(0)
}

// EmitArm64BranchFixup reserves one 4-byte instruction word whose low 26
// bits (unconditional B/BL) or low 19 bits shifted by 5 (conditional
// B.cond) will be patched with the word-granularity pc-relative offset to
// target, and records the fixup. opcodeBits are the fixed bits of the
// instruction (everything but the offset field), already shifted into
// position; the offset bits are OR'd in during resolution.
func (b *Buffer) EmitArm64BranchFixup(targetID int, cond bool, opcodeBits uint32) {
	kind := fixupArm64Branch26
	if cond {
		kind = fixupArm64CondBranch19
	}
	b.fixups = append(b.fixups, fixup{kind: kind, offset: len(b.Code), targetID: targetID})
	b.EmitU32(opcodeBits)
}

// ResolveFixups patches every recorded fixup now that all labels the
// buffer will ever place have been placed. It must run exactly once, after
// emission finishes.
func (b *Buffer) ResolveFixups() error {
	for _, f := range b.fixups {
		targetAddr, ok := b.labelAddr[f.targetID]
		if !ok {
			return errUnresolvedLabel(f.targetID)
		}

		switch f.kind {
		case fixupRel32:
			instrEnd := f.offset + 4
			rel := int32(targetAddr - instrEnd)
			binary.LittleEndian.PutUint32(b.Code[f.offset:], uint32(rel))

		case fixupArm64Branch26:
			relWords := int32((targetAddr - f.offset) / 4)
			existing := binary.LittleEndian.Uint32(b.Code[f.offset:])
			patched := existing | (uint32(relWords) & 0x03FFFFFF)
			binary.LittleEndian.PutUint32(b.Code[f.offset:], patched)

		case fixupArm64CondBranch19:
			relWords := int32((targetAddr - f.offset) / 4)
			existing := binary.LittleEndian.Uint32(b.Code[f.offset:])
			patched := existing | ((uint32(relWords) & 0x7FFFF) << 5)
			binary.LittleEndian.PutUint32(b.Code[f.offset:], patched)
		}
	}
	return nil
}
