package bf

// NodeKind distinguishes the three shapes an AstNode can take once loop
// rewriting has run; before rewriting every loop is NodeLoop.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeLoop
	NodeSuper
)

// AstNode is the optimizing parser's tree representation (SPEC_FULL.md
// section 4.2, stage 1). A single concrete struct rather than an
// interface-per-variant hierarchy, since the set of shapes is small and
// fixed and every consumer (the loop rewriter, the lowering pass) already
// needs to switch on Kind regardless of representation.
type AstNode struct {
	Kind NodeKind

	Op Op // valid when Kind == NodeLeaf

	Body []AstNode // valid when Kind == NodeLoop

	Super   OptKind // valid when Kind == NodeSuper: one of the three super-ops
	Forward bool    // valid when Kind == NodeSuper
	Amount  int     // valid when Kind == NodeSuper
}

func leaf(op Op) AstNode { return AstNode{Kind: NodeLeaf, Op: op} }

// CreateAST runs the recursive-descent construction pass: a sequence tree
// of scalar leaves and Loop{body} nodes, reporting unbalanced brackets at
// the source index that introduced them.
func CreateAST(source []byte) ([]AstNode, error) {
	seq, next, closed, err := parseSeq(source, 0)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, UnmatchedClose(next)
	}
	return seq, nil
}

// parseSeq consumes source starting at i until either the source is
// exhausted or an unconsumed ']' is reached. closed reports which case
// stopped the scan; next is the index it stopped at (len(source) in the
// exhaustion case, the ']' byte's index in the other). A nested loop that
// never finds its ']' surfaces as err rather than as a closed/exhaustion
// signal, since that failure belongs to the inner '[', not the caller.
func parseSeq(source []byte, i int) (seq []AstNode, next int, closed bool, err error) {
	for i < len(source) {
		c := source[i]
		op, ok := charToOp(c)
		if !ok {
			i++
			continue
		}

		if op == OpJumpIfNotZero {
			return seq, i, true, nil
		}

		if op == OpJumpIfZero {
			openIdx := i
			body, bodyNext, bodyClosed, berr := parseSeq(source, i+1)
			if berr != nil {
				return nil, 0, false, berr
			}
			if !bodyClosed {
				return nil, 0, false, UnmatchedOpen(openIdx)
			}
			seq = append(seq, AstNode{Kind: NodeLoop, Body: body})
			i = bodyNext + 1 // skip past the ']'
			continue
		}

		seq = append(seq, leaf(op))
		i++
	}

	return seq, i, false, nil
}
