package bf

// Lower flattens an optimized AST to the instruction stream the third
// bytecode interpreter and the optimizing JIT both consume (SPEC_FULL.md
// section 4.2, stage 3). Adjacent identical scalar or super-op nodes
// coalesce into one instruction with an incremented Count, the same way
// the run-length parser coalesces adjacent identical source commands.
func Lower(seq []AstNode) OptimizedProgram {
	var prog OptimizedProgram
	lowerInto(&prog.Instructions, seq)
	return prog
}

func lowerInto(out *[]OptInstr, seq []AstNode) {
	for _, n := range seq {
		switch n.Kind {
		case NodeLeaf:
			appendCoalesced(out, OptInstr{Kind: leafToOptKind(n.Op), Count: 1})
		case NodeSuper:
			appendCoalesced(out, OptInstr{Kind: n.Super, Count: 1, Forward: n.Forward, Amount: n.Amount})
		case NodeLoop:
			beginIdx := len(*out)
			*out = append(*out, OptInstr{Kind: OptJumpBegin})
			lowerInto(out, n.Body)
			endIdx := len(*out)
			(*out)[beginIdx].Dest = endIdx
			*out = append(*out, OptInstr{Kind: OptJumpEnd, Dest: beginIdx})
		}
	}
}

func appendCoalesced(out *[]OptInstr, instr OptInstr) {
	if n := len(*out); n > 0 {
		last := &(*out)[n-1]
		if last.Kind == instr.Kind && last.Forward == instr.Forward && last.Amount == instr.Amount {
			last.Count += instr.Count
			return
		}
	}
	*out = append(*out, instr)
}

func leafToOptKind(op Op) OptKind {
	switch op {
	case OpIncPtr:
		return OptIncPtr
	case OpDecPtr:
		return OptDecPtr
	case OpIncData:
		return OptIncData
	case OpDecData:
		return OptDecData
	case OpRead:
		return OptRead
	case OpWrite:
		return OptWrite
	default:
		panic("bf: leafToOptKind: unexpected op in lowered AST leaf")
	}
}

// ParseOptimizing runs all three stages of the optimizing parser:
// CreateAST, OptimizeLoops, Lower.
func ParseOptimizing(source []byte) (*OptimizedProgram, error) {
	ast, err := CreateAST(source)
	if err != nil {
		return nil, err
	}
	optimized := OptimizeLoops(ast)
	prog := Lower(optimized)
	return &prog, nil
}
