package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultTapeSize is the number of cells allocated when no size is given.
const DefaultTapeSize = 30000

var (
	ErrTapeBounds      = errors.New("data pointer outside tape")
	ErrInputExhausted  = errors.New("input exhausted")
	ErrInvalidTapeSize = errors.New("tape size must be positive")
)

// TapeBoundsError reports a move that would leave the tape. The data pointer
// keeps its last valid value.
type TapeBoundsError struct {
	PC      int
	Pointer int
	Size    int
}

func (e *TapeBoundsError) Error() string {
	return fmt.Sprintf("pc %d: data pointer %d outside tape of %d cells", e.PC, e.Pointer, e.Size)
}

func (e *TapeBoundsError) Unwrap() error { return ErrTapeBounds }

// VM executes a Program against a fixed-size byte tape.
type VM struct {
	Program Program
	Tape    []byte

	PC int
	DP int

	// Steps counts executed opcodes across the VM's lifetime.
	Steps uint64

	Halted bool

	// Tracing logs every executed opcode at LevelTrace.
	Tracing bool

	// Input feeds Read opcodes one byte at a time. If nil, os.Stdin is used.
	Input io.Reader
	// Output receives Write opcodes, one Write call per byte. If nil,
	// os.Stdout is used.
	Output io.Writer

	buf [1]byte
}

// New allocates a zeroed tape of tapeSize cells and loads program.
func New(program Program, tapeSize int) (*VM, error) {
	if tapeSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTapeSize, tapeSize)
	}
	return &VM{
		Program: program,
		Tape:    make([]byte, tapeSize),
		Halted:  len(program) == 0,
	}, nil
}

// Load replaces the program and rewinds PC. The tape and data pointer are kept.
func (v *VM) Load(program Program) {
	v.Program = program
	v.PC = 0
	v.Halted = len(program) == 0
}

// Reset zeroes the tape and rewinds both PC and DP.
func (v *VM) Reset() {
	clear(v.Tape)
	v.PC = 0
	v.DP = 0
	v.Steps = 0
	v.Halted = len(v.Program) == 0
}

// Cell returns the value under the data pointer.
func (v *VM) Cell() byte {
	return v.Tape[v.DP]
}

// NeedsInput reports whether the next opcode is a Read.
func (v *VM) NeedsInput() bool {
	return !v.Halted && v.PC < len(v.Program) && v.Program[v.PC].Kind == OpRead
}

func (v *VM) inputSource() io.Reader {
	if v.Input != nil {
		return v.Input
	}
	return os.Stdin
}

func (v *VM) outputSink() io.Writer {
	if v.Output != nil {
		return v.Output
	}
	return os.Stdout
}

func (v *VM) move(delta int) error {
	dp := v.DP + delta
	if dp < 0 || dp >= len(v.Tape) {
		return &TapeBoundsError{PC: v.PC, Pointer: dp, Size: len(v.Tape)}
	}
	v.DP = dp
	return nil
}

// Step executes the opcode at PC. On error the VM halts with PC left on the
// faulting opcode.
func (v *VM) Step() error {
	if v.Halted {
		return nil
	}
	if v.PC < 0 || v.PC >= len(v.Program) {
		v.Halted = true
		return nil
	}

	op := v.Program[v.PC]
	if v.Tracing {
		Trace("step", "pc", v.PC, "op", op.String(), "dp", v.DP, "cell", v.Tape[v.DP])
	}

	switch op.Kind {
	case OpMoveLeft:
		if err := v.move(-op.Arg); err != nil {
			v.Halted = true
			return err
		}
	case OpMoveRight:
		if err := v.move(op.Arg); err != nil {
			v.Halted = true
			return err
		}
	case OpAdd:
		v.Tape[v.DP] += byte(op.Arg)
	case OpSub:
		v.Tape[v.DP] -= byte(op.Arg)
	case OpWrite:
		v.buf[0] = v.Tape[v.DP]
		if _, err := v.outputSink().Write(v.buf[:]); err != nil {
			v.Halted = true
			return fmt.Errorf("pc %d: write: %w", v.PC, err)
		}
	case OpRead:
		if _, err := io.ReadFull(v.inputSource(), v.buf[:]); err != nil {
			v.Halted = true
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("pc %d: %w", v.PC, ErrInputExhausted)
			}
			return fmt.Errorf("pc %d: read: %w", v.PC, err)
		}
		v.Tape[v.DP] = v.buf[0]
	case OpJumpIfZero:
		if v.Tape[v.DP] == 0 {
			v.PC = op.Arg
		}
	case OpJumpUnlessZero:
		if v.Tape[v.DP] != 0 {
			v.PC = op.Arg
		}
	default:
		v.Halted = true
		return fmt.Errorf("pc %d: unknown opcode %s", v.PC, op.Kind)
	}

	v.PC++
	v.Steps++
	if v.PC >= len(v.Program) {
		v.Halted = true
	}
	return nil
}

// Run steps until the program counter passes the end of the program or an
// opcode fails.
func (v *VM) Run() error {
	for !v.Halted {
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}
