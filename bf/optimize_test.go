package bf

import "testing"

func TestOptimizeRecognizesSetDataToZero(t *testing.T) {
	seq, err := CreateAST([]byte("[-]"))
	assert(t, err == nil, "unexpected error: %v", err)
	opt := OptimizeLoops(seq)
	assert(t, len(opt) == 1, "expected 1 node, got %d", len(opt))
	assert(t, opt[0].Kind == NodeSuper && opt[0].Super == OptSetDataToZero, "expected a set-to-zero super-op")
}

func TestOptimizeRecognizesMovePtrUntilZero(t *testing.T) {
	seq, err := CreateAST([]byte("[>>>]"))
	assert(t, err == nil, "unexpected error: %v", err)
	opt := OptimizeLoops(seq)
	assert(t, opt[0].Kind == NodeSuper && opt[0].Super == OptMovePtrUntilZero, "expected a move-ptr-until-zero super-op")
	assert(t, opt[0].Forward && opt[0].Amount == 3, "expected forward by 3, got forward=%v amount=%d", opt[0].Forward, opt[0].Amount)
}

func TestOptimizeRecognizesMoveData(t *testing.T) {
	seq, err := CreateAST([]byte("[->>+<<]"))
	assert(t, err == nil, "unexpected error: %v", err)
	opt := OptimizeLoops(seq)
	assert(t, opt[0].Kind == NodeSuper && opt[0].Super == OptMoveData, "expected a move-data super-op")
	assert(t, opt[0].Forward && opt[0].Amount == 2, "expected forward by 2, got forward=%v amount=%d", opt[0].Forward, opt[0].Amount)
}

func TestOptimizeRejectsTrailingJunkAfterMoveDataPattern(t *testing.T) {
	// "- >+< +" has a dangling '+' after the otherwise-valid move-data
	// shape, so the strict all-or-nothing recognizer must fall through to
	// an ordinary (unoptimized) loop instead of matching a prefix.
	seq, err := CreateAST([]byte("[->+<+]"))
	assert(t, err == nil, "unexpected error: %v", err)
	opt := OptimizeLoops(seq)
	assert(t, opt[0].Kind == NodeLoop, "expected an ordinary loop, got kind %v", opt[0].Kind)
}

func TestOptimizeLeavesUnrecognizedLoopsIntact(t *testing.T) {
	seq, err := CreateAST([]byte("[.-]"))
	assert(t, err == nil, "unexpected error: %v", err)
	opt := OptimizeLoops(seq)
	assert(t, opt[0].Kind == NodeLoop, "expected an ordinary loop")
	assert(t, len(opt[0].Body) == 2, "expected loop body to survive unchanged")
}

func TestLowerEmitsNoJumpsForRecognizedLoops(t *testing.T) {
	prog, err := ParseOptimizing([]byte("++[-]++[>>>]"))
	assert(t, err == nil, "unexpected error: %v", err)

	var begins, ends int
	for _, instr := range prog.Instructions {
		switch instr.Kind {
		case OptJumpBegin:
			begins++
		case OptJumpEnd:
			ends++
		}
	}
	assert(t, begins == 0 && ends == 0, "expected both loops to be recognized as super-ops, found %d begins and %d ends", begins, ends)
}

func TestLowerCoalescesAdjacentRuns(t *testing.T) {
	prog, err := ParseOptimizing([]byte("++++++"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.Instructions) == 1, "expected coalesced run of 1 instruction, got %d", len(prog.Instructions))
	assert(t, prog.Instructions[0].Kind == OptIncData && prog.Instructions[0].Count == 6, "expected IncData x6")
}

func TestLowerKeepsUnmatchedLoopJumpsBalanced(t *testing.T) {
	prog, err := ParseOptimizing([]byte("+[.-]+"))
	assert(t, err == nil, "unexpected error: %v", err)

	var beginIdx, endIdx int = -1, -1
	for i, instr := range prog.Instructions {
		if instr.Kind == OptJumpBegin {
			beginIdx = i
		}
		if instr.Kind == OptJumpEnd {
			endIdx = i
		}
	}
	assert(t, beginIdx >= 0 && endIdx >= 0, "expected an unoptimized loop to lower to jump begin/end")
	assert(t, prog.Instructions[beginIdx].Dest == endIdx, "expected begin.Dest to point at end index %d, got %d", endIdx, prog.Instructions[beginIdx].Dest)
	assert(t, prog.Instructions[endIdx].Dest == beginIdx, "expected end.Dest to point at begin index %d, got %d", beginIdx, prog.Instructions[endIdx].Dest)
}
