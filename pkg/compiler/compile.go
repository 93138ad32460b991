package compiler

import (
	"log/slog"

	"gobf/pkg/vm"
)

// Compile parses src and lowers it into a program.
func Compile(src string) (vm.Program, error) {
	ast, err := Parse(src)
	if err != nil {
		return nil, err
	}

	program := Generate(ast)
	slog.Debug("compiled",
		"instructions", ast.Count(),
		"opcodes", len(program),
		"depth", ast.Depth(),
	)

	return program, nil
}
