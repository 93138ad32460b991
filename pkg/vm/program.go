package vm

import (
	"fmt"
	"strings"
)

// Kind identifies a flat instruction.
type Kind uint8

const (
	OpMoveLeft Kind = iota
	OpMoveRight
	OpAdd
	OpSub
	OpWrite
	OpRead
	OpJumpIfZero
	OpJumpUnlessZero
)

var mnemonics = [...]string{
	OpMoveLeft:       "LEFT",
	OpMoveRight:      "RIGHT",
	OpAdd:            "ADD",
	OpSub:            "SUB",
	OpWrite:          "OUT",
	OpRead:           "IN",
	OpJumpIfZero:     "JZ",
	OpJumpUnlessZero: "JNZ",
}

func (k Kind) String() string {
	if int(k) < len(mnemonics) {
		return mnemonics[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// HasArg reports whether opcodes of this kind carry an operand.
func (k Kind) HasArg() bool {
	return k != OpWrite && k != OpRead
}

// IsJump reports whether Arg is an absolute program address.
func (k Kind) IsJump() bool {
	return k == OpJumpIfZero || k == OpJumpUnlessZero
}

// Opcode is one flat instruction.
//
//	Arg is the cell count for OpMoveLeft/OpMoveRight, the delta (0-255) for
//	OpAdd/OpSub, and the absolute jump target for OpJumpIfZero/OpJumpUnlessZero.
//	Write and Read ignore it.
//
// A taken jump sets PC to Arg and the step still advances PC by one, so a
// JZ lands just past its matching JNZ and a JNZ lands just past its JZ.
type Opcode struct {
	Kind Kind
	Arg  int
}

func (o Opcode) String() string {
	if o.Kind.HasArg() {
		return fmt.Sprintf("%-5s %d", o.Kind, o.Arg)
	}
	return o.Kind.String()
}

// Program is an ordered opcode sequence with resolved jump targets.
type Program []Opcode

// String renders a numbered listing, one opcode per line.
//
//	0000  JZ    3
//	0001  ADD   1
func (p Program) String() string {
	var b strings.Builder
	for i, op := range p {
		fmt.Fprintf(&b, "%04d  %s\n", i, op)
	}
	return b.String()
}

// Validate checks that every jump target lies inside the program and that
// jumps are paired the way the code generator emits them.
func (p Program) Validate() error {
	var open []int
	for i, op := range p {
		if op.Kind.IsJump() && (op.Arg < 0 || op.Arg >= len(p)) {
			return fmt.Errorf("opcode %d: jump target %d outside program of %d opcodes", i, op.Arg, len(p))
		}
		switch op.Kind {
		case OpJumpIfZero:
			open = append(open, i)
		case OpJumpUnlessZero:
			if len(open) == 0 {
				return fmt.Errorf("opcode %d: JNZ without matching JZ", i)
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if op.Arg != start || p[start].Arg != i {
				return fmt.Errorf("opcode %d: JNZ %d does not pair with JZ %d at %d", i, op.Arg, p[start].Arg, start)
			}
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("opcode %d: JZ without matching JNZ", open[len(open)-1])
	}
	return nil
}
