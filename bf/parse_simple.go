package bf

// ParseSimple implements the two-pass simple parser (SPEC_FULL.md section
// 4.2). Pass 1 filters source bytes down to opcodes; pass 2 is a linear
// scan tracking bracket nesting depth that fills in the jump table and
// reports unbalanced brackets at parse time, for both bracket kinds,
// always with the offending source index.
func ParseSimple(source []byte) (*SimpleProgram, error) {
	prog := &SimpleProgram{}

	// sourceIndex[i] remembers which byte of source produced
	// Instructions[i], so an unmatched '[' can be reported against the
	// original source position rather than the opcode-list position.
	var sourceIndex []int
	for i, c := range source {
		op, ok := charToOp(c)
		if !ok {
			continue
		}
		prog.Instructions = append(prog.Instructions, op)
		sourceIndex = append(sourceIndex, i)
	}

	prog.JumpTable = make([]int, len(prog.Instructions))

	var openStack []int
	for i, op := range prog.Instructions {
		switch op {
		case OpJumpIfZero:
			openStack = append(openStack, i)
		case OpJumpIfNotZero:
			if len(openStack) == 0 {
				return nil, UnmatchedClose(sourceIndex[i])
			}
			open := openStack[len(openStack)-1]
			openStack = openStack[:len(openStack)-1]
			prog.JumpTable[open] = i
			prog.JumpTable[i] = open
		}
	}
	if len(openStack) > 0 {
		return nil, UnmatchedOpen(sourceIndex[openStack[0]])
	}

	return prog, nil
}
