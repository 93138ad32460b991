package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"gobf/pkg/compiler"
	"gobf/pkg/utils"
	"gobf/pkg/vm"
)

const usageLine = "Usage: gobf [-tape N] [-show-asm] [-v] [-trace] <path>"

// errUsage marks command-line mistakes; they exit with status 2.
var errUsage = errors.New("incorrect usage")

type options struct {
	tapeSize int
	showAsm  bool
	trace    bool
}

func main() {
	tapeSize := flag.Int("tape", vm.DefaultTapeSize, "number of tape cells")
	showAsm := flag.Bool("show-asm", false, "print the generated program listing to stderr before running")
	verbose := flag.Bool("v", false, "enable debug logging on stderr")
	trace := flag.Bool("trace", false, "log every executed opcode (implies -v)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usageLine)
		flag.PrintDefaults()
	}
	flag.Parse()

	setupLogging(*verbose, *trace)

	path, err := sourcePath(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}

	opts := options{tapeSize: *tapeSize, showAsm: *showAsm, trace: *trace}
	if err := runFile(path, os.Stdin, os.Stdout, os.Stderr, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func setupLogging(verbose, trace bool) {
	level := slog.LevelWarn
	switch {
	case trace:
		level = vm.LevelTrace
	case verbose:
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// sourcePath accepts exactly one positional argument.
func sourcePath(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", fmt.Errorf("%w: no source file given. %s", errUsage, usageLine)
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: %q and all subsequent arguments are not accepted. %s", errUsage, args[1], usageLine)
	}
}

func runFile(path string, stdin io.Reader, stdout, stderr io.Writer, opts options) error {
	source, err := utils.ReadSource(path)
	if err != nil {
		return err
	}

	program, err := compiler.Compile(source)
	if err != nil {
		return fmt.Errorf("the file at %q couldn't be parsed, likely due to misbalanced brackets: %w", path, err)
	}

	if opts.showAsm {
		fmt.Fprint(stderr, program)
	}

	machine, err := vm.New(program, opts.tapeSize)
	if err != nil {
		return err
	}
	machine.Input = bufio.NewReader(stdin)
	machine.Output = stdout
	machine.Tracing = opts.trace

	if err := machine.Run(); err != nil {
		return fmt.Errorf("run failed for %q: %w", path, err)
	}

	slog.Debug("run complete", "path", path, "steps", machine.Steps, "dp", machine.DP)
	return nil
}
