package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"gobf/pkg/compiler"
	"gobf/pkg/utils"
	"gobf/pkg/vm"
)

const testSource = `++>+++<[->+<]`

func main() {
	showSource := flag.Bool("source", false, "echo the source text")
	flag.Parse()

	src := testSource
	if flag.NArg() > 0 {
		var err error
		src, err = utils.ReadSource(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
	}

	if *showSource {
		fmt.Printf("Source:\n%s\n\n", src)
	}

	// Parse
	ast, err := compiler.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Printf("AST (%d instructions, loop depth %d)\n", ast.Count(), ast.Depth())
	fmt.Println(" ", ast)
	fmt.Println()

	// code Generation
	program := compiler.Generate(ast)
	if err := program.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}

	fmt.Println(listingTable(program).Render())
}

// listingTable renders the program with each jump's landing address, which is
// one past its target.
func listingTable(program vm.Program) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Program (%d opcodes)", len(program)))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Addr", "Op", "Arg", "Lands"})

	for i, op := range program {
		row := table.Row{fmt.Sprintf("%04d", i), op.Kind.String(), "", ""}
		if op.Kind.HasArg() {
			row[2] = op.Arg
		}
		if op.Kind.IsJump() {
			row[3] = fmt.Sprintf("%04d", op.Arg+1)
		}
		t.AppendRow(row)
	}
	return t
}
