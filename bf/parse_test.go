package bf

import (
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestParseSimpleFiltersCommentBytes(t *testing.T) {
	prog, err := ParseSimple([]byte("+this is a comment+"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.Instructions) == 2, "expected 2 instructions, got %d", len(prog.Instructions))
	assert(t, prog.Instructions[0] == OpIncData, "expected OpIncData")
	assert(t, prog.Instructions[1] == OpIncData, "expected OpIncData")
}

func TestParseSimpleJumpTable(t *testing.T) {
	prog, err := ParseSimple([]byte("+[-]+"))
	assert(t, err == nil, "unexpected error: %v", err)
	// indices: 0:+ 1:[ 2:- 3:] 4:+
	assert(t, prog.JumpTable[1] == 3, "expected [ at 1 to target ] at 3, got %d", prog.JumpTable[1])
	assert(t, prog.JumpTable[3] == 1, "expected ] at 3 to target [ at 1, got %d", prog.JumpTable[3])
}

func TestParseSimpleUnmatchedOpen(t *testing.T) {
	_, err := ParseSimple([]byte("[+"))
	assert(t, err != nil, "expected an unmatched-open error")
	var bfErr *Error
	assert(t, asBfError(err, &bfErr), "expected a *bf.Error, got %T", err)
	assert(t, bfErr.Kind == KindParse, "expected KindParse, got %v", bfErr.Kind)
}

func TestParseSimpleUnmatchedClose(t *testing.T) {
	_, err := ParseSimple([]byte("+]"))
	assert(t, err != nil, "expected an unmatched-close error")
}

func TestParseRunLengthCoalescesRuns(t *testing.T) {
	prog, err := ParseRunLength([]byte("+++---"))
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.Instructions) == 2, "expected 2 run-length instructions, got %d", len(prog.Instructions))
	assert(t, prog.Instructions[0].Op == OpIncData && prog.Instructions[0].Count == 3, "expected 3x IncData")
	assert(t, prog.Instructions[1].Op == OpDecData && prog.Instructions[1].Count == 3, "expected 3x DecData")
}

func TestParseRunLengthJumpDest(t *testing.T) {
	prog, err := ParseRunLength([]byte("+[-]+"))
	assert(t, err == nil, "unexpected error: %v", err)
	// Instructions: [0]=+  [1]=[  [2]=-  [3]=]  [4]=+
	begin := prog.Instructions[1]
	end := prog.Instructions[3]
	assert(t, begin.Op == OpJumpIfZero, "expected OpJumpIfZero")
	assert(t, end.Op == OpJumpIfNotZero, "expected OpJumpIfNotZero")
	assert(t, begin.Dest == 3, "expected begin.Dest == 3, got %d", begin.Dest)
	assert(t, end.Dest == 1, "expected end.Dest == 1, got %d", end.Dest)
}

func TestParseRunLengthUnmatchedOpen(t *testing.T) {
	_, err := ParseRunLength([]byte("[["))
	assert(t, err != nil, "expected an unmatched-open error")
}

func asBfError(err error, target **Error) bool {
	be, ok := err.(*Error)
	if ok {
		*target = be
	}
	return ok
}
