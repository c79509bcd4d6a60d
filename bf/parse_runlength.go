package bf

// ParseRunLength implements the run-length parser (SPEC_FULL.md section
// 4.2): a single forward scan that coalesces maximal runs of identical
// commands into one instruction and resolves jump destinations as it goes,
// using a stack of pending '[' output positions.
func ParseRunLength(source []byte) (*RunLengthProgram, error) {
	prog := &RunLengthProgram{}

	type pending struct {
		outIdx    int
		sourceIdx int
	}
	var openStack []pending

	i := 0
	for i < len(source) {
		c := source[i]
		op, ok := charToOp(c)
		if !ok {
			i++
			continue
		}

		switch op {
		case OpJumpIfZero:
			openStack = append(openStack, pending{outIdx: len(prog.Instructions), sourceIdx: i})
			prog.Instructions = append(prog.Instructions, RLInstr{Op: OpJumpIfZero})
			i++
		case OpJumpIfNotZero:
			if len(openStack) == 0 {
				return nil, UnmatchedClose(i)
			}
			top := openStack[len(openStack)-1]
			openStack = openStack[:len(openStack)-1]
			closeIdx := len(prog.Instructions)
			prog.Instructions[top.outIdx].Dest = closeIdx
			prog.Instructions = append(prog.Instructions, RLInstr{Op: OpJumpIfNotZero, Dest: top.outIdx})
			i++
		default:
			run := 1
			for i+run < len(source) && source[i+run] == c {
				run++
			}
			prog.Instructions = append(prog.Instructions, RLInstr{Op: op, Count: run})
			i += run
		}
	}

	if len(openStack) > 0 {
		return nil, UnmatchedOpen(openStack[0].sourceIdx)
	}

	return prog, nil
}
