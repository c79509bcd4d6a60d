package bf

// OptimizeLoops runs the loop-pattern rewrite pass (SPEC_FULL.md section
// 4.2, stage 2) over a sequence produced by CreateAST, returning a new
// sequence with matched loops replaced by super-op nodes. Unmatched loops
// are returned unchanged except that their own bodies are recursively
// optimized, so nested set-to-zero/move-ptr/move-data loops are found no
// matter how deep they sit.
func OptimizeLoops(seq []AstNode) []AstNode {
	out := make([]AstNode, len(seq))
	for i, n := range seq {
		out[i] = optimizeNode(n)
	}
	return out
}

func optimizeNode(n AstNode) AstNode {
	if n.Kind != NodeLoop {
		return n
	}

	// Patterns are tried in this order — set-to-zero, move-ptr-until-zero,
	// move-data — per SPEC_FULL.md section 4.2; the first match wins.
	if super, ok := trySetDataToZero(n.Body); ok {
		return super
	}
	if super, ok := tryMovePtrUntilZero(n.Body); ok {
		return super
	}
	if super, ok := tryMoveData(n.Body); ok {
		return super
	}

	return AstNode{Kind: NodeLoop, Body: OptimizeLoops(n.Body)}
}

func trySetDataToZero(body []AstNode) (AstNode, bool) {
	if len(body) == 0 {
		return AstNode{}, false
	}
	allInc, allDec := true, true
	for _, n := range body {
		if n.Kind != NodeLeaf {
			return AstNode{}, false
		}
		if n.Op != OpIncData {
			allInc = false
		}
		if n.Op != OpDecData {
			allDec = false
		}
	}
	if allInc || allDec {
		return AstNode{Kind: NodeSuper, Super: OptSetDataToZero}, true
	}
	return AstNode{}, false
}

func tryMovePtrUntilZero(body []AstNode) (AstNode, bool) {
	if len(body) == 0 {
		return AstNode{}, false
	}
	allInc, allDec := true, true
	for _, n := range body {
		if n.Kind != NodeLeaf {
			return AstNode{}, false
		}
		if n.Op != OpIncPtr {
			allInc = false
		}
		if n.Op != OpDecPtr {
			allDec = false
		}
	}
	if allInc {
		return AstNode{Kind: NodeSuper, Super: OptMovePtrUntilZero, Forward: true, Amount: len(body)}, true
	}
	if allDec {
		return AstNode{Kind: NodeSuper, Super: OptMovePtrUntilZero, Forward: false, Amount: len(body)}, true
	}
	return AstNode{}, false
}

// tryMoveData recognizes `- >…> + <…<` and its mirror `- <…< + >…>`,
// requiring the two pointer runs to have exactly equal length and the
// pattern to consume the entire body with nothing left over. This is the
// strict reading of the recognizer (SPEC_FULL.md section 4.2, resolving
// the third design-notes open question): a run of the wrong length, wrong
// direction, or any trailing node disqualifies the match outright rather
// than silently matching a prefix.
func tryMoveData(body []AstNode) (AstNode, bool) {
	i := 0
	next := func() (AstNode, bool) {
		if i >= len(body) {
			return AstNode{}, false
		}
		n := body[i]
		return n, true
	}

	n, ok := next()
	if !ok || n.Kind != NodeLeaf || n.Op != OpDecData {
		return AstNode{}, false
	}
	i++

	n, ok = next()
	if !ok || n.Kind != NodeLeaf || (n.Op != OpIncPtr && n.Op != OpDecPtr) {
		return AstNode{}, false
	}
	firstDir := n.Op

	k := 0
	for {
		n, ok = next()
		if !ok || n.Kind != NodeLeaf || n.Op != firstDir {
			break
		}
		k++
		i++
	}
	if k == 0 {
		return AstNode{}, false
	}

	n, ok = next()
	if !ok || n.Kind != NodeLeaf || n.Op != OpIncData {
		return AstNode{}, false
	}
	i++

	oppositeDir := OpDecPtr
	if firstDir == OpDecPtr {
		oppositeDir = OpIncPtr
	}

	k2 := 0
	for {
		n, ok = next()
		if !ok || n.Kind != NodeLeaf || n.Op != oppositeDir {
			break
		}
		k2++
		i++
	}

	if k2 != k || i != len(body) {
		return AstNode{}, false
	}

	return AstNode{Kind: NodeSuper, Super: OptMoveData, Forward: firstDir == OpIncPtr, Amount: k}, true
}
