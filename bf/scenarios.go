package bf

import "strings"

// Scenario names a source program, its stdin, and the stdout every engine
// must reproduce byte for byte. The set covers sequential arithmetic, cell
// wraparound in both directions, nested non-super loops, input echoing,
// and the three recognized loop super-op shapes, per the testable
// properties every execution engine shares.
type Scenario struct {
	Name   string
	Source string
	Stdin  string
	Want   string
}

var Scenarios = []Scenario{
	{
		Name:   "hello world",
		Source: "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.",
		Want:   "Hello World!\n",
	},
	{
		Name:   "cell increment wraps at 256",
		Source: strings.Repeat("+", 256) + ".",
		Want:   "\x00",
	},
	{
		Name:   "cell decrement wraps below zero",
		Source: "-.",
		Want:   "\xff",
	},
	{
		Name:   "echo three bytes",
		Source: ",.,.,.",
		Stdin:  "xyz",
		Want:   "xyz",
	},
	{
		Name:   "set-data-to-zero loop",
		Source: "+++++[-]+.",
		Want:   "\x01",
	},
	{
		Name:   "move-ptr-until-zero loop",
		Source: ">>>>>>>>>>+++++++<<<<<<<<<<" + "+>>>+>>>+<<<<<<" + "[>>>]" + ">.",
		Want:   "\a",
	},
	{
		Name:   "move-data loop",
		Source: "+++++[->>+<<]>>.",
		Want:   "\x05",
	},
	{
		Name:   "move-data loop backward",
		Source: ">+++++[-<+>]<.",
		Want:   "\x05",
	},
	{
		Name:   "nested non-super loop",
		Source: "++[>++[>+<-]<-]>>.",
		Want:   "\x04",
	},
}
