package compiler

import "gobf/pkg/vm"

// Generate lowers a tree into a flat program. Runs of >, <, + and - fold
// into one counted opcode; loops become a JZ/JNZ pair with absolute targets.
// Generate never fails and never modifies ast.
func Generate(ast Ast) vm.Program {
	return generateAt(ast, 0)
}

// generateAt lowers one sequence whose first opcode will sit at absolute
// address base in the final program.
//
// For a loop whose JZ lands at address start:
//
//	start              JZ  start+len(body)+1
//	start+1 ...        body
//	start+len(body)+1  JNZ start
func generateAt(ast Ast, base int) vm.Program {
	var program vm.Program

	for _, ins := range ast {
		switch n := ins.(type) {
		case MoveRight:
			program = fold(program, vm.OpMoveRight)
		case MoveLeft:
			program = fold(program, vm.OpMoveLeft)
		case Increment:
			program = fold(program, vm.OpAdd)
		case Decrement:
			program = fold(program, vm.OpSub)
		case Write:
			program = append(program, vm.Opcode{Kind: vm.OpWrite})
		case Read:
			program = append(program, vm.Opcode{Kind: vm.OpRead})
		case Loop:
			start := base + len(program)
			body := generateAt(n.Body, start+1)
			program = append(program, vm.Opcode{Kind: vm.OpJumpIfZero, Arg: start + len(body) + 1})
			program = append(program, body...)
			program = append(program, vm.Opcode{Kind: vm.OpJumpUnlessZero, Arg: start})
		}
	}

	return program
}

// fold bumps the last opcode when it has the same kind, otherwise appends a
// new one with a count of one. Add/Sub deltas wrap at 256.
func fold(program vm.Program, kind vm.Kind) vm.Program {
	if n := len(program); n > 0 && program[n-1].Kind == kind {
		last := &program[n-1]
		last.Arg++
		if kind == vm.OpAdd || kind == vm.OpSub {
			last.Arg &= 0xFF
		}
		return program
	}
	return append(program, vm.Opcode{Kind: kind, Arg: 1})
}
