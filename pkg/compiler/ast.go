package compiler

import "strings"

// Instruction is implemented by every AST node.
type Instruction interface {
	instructionNode()
	String() string
}

// Ast is an ordered instruction sequence: a whole program or one loop body.
type Ast []Instruction

// MoveRight selects the next cell.
//
//	>
type MoveRight struct{}

// MoveLeft selects the previous cell.
//
//	<
type MoveLeft struct{}

// Increment adds one to the current cell.
//
//	+
type Increment struct{}

// Decrement subtracts one from the current cell.
//
//	-
type Decrement struct{}

// Write outputs the current cell.
//
//	.
type Write struct{}

// Read stores one input byte in the current cell.
//
//	,
type Read struct{}

// Loop repeats Body while the current cell is nonzero.
//
//	[ ->+< ]
//	  ^^^^  Body
type Loop struct {
	Body Ast
}

func (MoveRight) instructionNode() {}
func (MoveLeft) instructionNode()  {}
func (Increment) instructionNode() {}
func (Decrement) instructionNode() {}
func (Write) instructionNode()     {}
func (Read) instructionNode()      {}
func (Loop) instructionNode()      {}

func (MoveRight) String() string { return ">" }
func (MoveLeft) String() string  { return "<" }
func (Increment) String() string { return "+" }
func (Decrement) String() string { return "-" }
func (Write) String() string     { return "." }
func (Read) String() string      { return "," }
func (l Loop) String() string    { return "[" + l.Body.String() + "]" }

// String renders the canonical source of the tree: operators only, no
// comments. Parsing the result yields an equal tree.
func (a Ast) String() string {
	var b strings.Builder
	for _, ins := range a {
		b.WriteString(ins.String())
	}
	return b.String()
}

// Depth returns the deepest loop nesting in the tree.
func (a Ast) Depth() int {
	deepest := 0
	for _, ins := range a {
		if l, ok := ins.(Loop); ok {
			if d := l.Body.Depth() + 1; d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}

// Count returns the number of instructions in the tree, loops included.
func (a Ast) Count() int {
	n := 0
	for _, ins := range a {
		n++
		if l, ok := ins.(Loop); ok {
			n += l.Body.Count()
		}
	}
	return n
}
