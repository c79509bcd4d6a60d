package bf

import "testing"

func TestCreateASTFlatSequence(t *testing.T) {
	seq, err := CreateAST([]byte("+-><"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(seq) == 4, "expected 4 leaves, got %d", len(seq))
	assert(t, seq[0].Op == OpIncData, "expected OpIncData")
	assert(t, seq[3].Op == OpDecPtr, "expected OpDecPtr")
}

func TestCreateASTNestedLoops(t *testing.T) {
	seq, err := CreateAST([]byte("[[-]]"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(seq) == 1, "expected 1 top-level loop node")
	assert(t, seq[0].Kind == NodeLoop, "expected NodeLoop")
	assert(t, len(seq[0].Body) == 1 && seq[0].Body[0].Kind == NodeLoop, "expected a nested loop")
}

func TestCreateASTUnmatchedOpenInsideNesting(t *testing.T) {
	_, err := CreateAST([]byte("[[-]"))
	assert(t, err != nil, "expected an unmatched-open error from the unterminated outer loop")
}

func TestCreateASTUnmatchedCloseAtTopLevel(t *testing.T) {
	_, err := CreateAST([]byte("-]"))
	assert(t, err != nil, "expected an unmatched-close error")
}

func TestCreateASTIgnoresNonCommandBytes(t *testing.T) {
	seq, err := CreateAST([]byte("hello + world"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(seq) == 1, "expected only the '+' to survive, got %d nodes", len(seq))
}
