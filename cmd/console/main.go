package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/peterh/liner"
	"github.com/tebeka/atexit"

	"gobf/pkg/compiler"
	"gobf/pkg/vm"
)

const (
	banner      = "gobf console. Cells persist between lines. :tape, :reset, :quit"
	promptMain  = "bf> "
	promptCont  = "... "
	historyFile = ".gobf_history"

	tapeRadius = 8
)

// lineWriter remembers the last byte written so the prompt can start on a
// fresh line.
type lineWriter struct {
	w    io.Writer
	last byte
}

func (l *lineWriter) Write(p []byte) (int, error) {
	n, err := l.w.Write(p)
	if n > 0 {
		l.last = p[n-1]
	}
	return n, err
}

func (l *lineWriter) endLine() {
	if l.last != 0 && l.last != '\n' {
		fmt.Fprintln(l.w)
	}
	l.last = 0
}

// session is one REPL's machine. Every entered line is compiled into a fresh
// program that runs against the same tape.
type session struct {
	vm  *vm.VM
	out *lineWriter
}

func newSession(tapeSize int, in io.Reader, out io.Writer) (*session, error) {
	machine, err := vm.New(nil, tapeSize)
	if err != nil {
		return nil, err
	}
	lw := &lineWriter{w: out}
	machine.Input = in
	machine.Output = lw
	return &session{vm: machine, out: lw}, nil
}

func (s *session) eval(code string) error {
	program, err := compiler.Compile(code)
	if err != nil {
		return err
	}
	s.vm.Load(program)
	err = s.vm.Run()
	s.out.endLine()
	return err
}

// command runs a ':' command and reports whether the REPL should exit.
func (s *session) command(cmd string) (quit bool) {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case ":quit", ":q":
		return true
	case ":tape":
		fmt.Fprintln(s.out.w, tapeTable(s.vm, tapeRadius).Render())
	case ":reset":
		s.vm.Reset()
		fmt.Fprintln(s.out.w, "tape cleared")
	default:
		fmt.Fprintln(s.out.w, "unknown command. Type :tape, :reset or :quit.")
	}
	return false
}

// tapeTable shows the cells within radius of the data pointer.
func tapeTable(machine *vm.VM, radius int) table.Writer {
	lo := max(machine.DP-radius, 0)
	hi := min(machine.DP+radius, len(machine.Tape)-1)

	cells := table.Row{"cell"}
	values := table.Row{"value"}
	pointer := table.Row{""}
	for i := lo; i <= hi; i++ {
		cells = append(cells, i)
		values = append(values, machine.Tape[i])
		if i == machine.DP {
			pointer = append(pointer, "^")
		} else {
			pointer = append(pointer, "")
		}
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("dp=%d steps=%d", machine.DP, machine.Steps))
	t.AppendRow(cells)
	t.AppendRow(values)
	t.AppendRow(pointer)
	return t
}

// readByParseProbe keeps prompting while the entered code ends inside a loop.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := compiler.Parse(src); compiler.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

func repl(tapeSize int) int {
	s, err := newSession(tapeSize, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	atexit.Register(func() { ln.Close() })
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed) {
				return 0
			}
			continue
		}

		if err := s.eval(code); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}

	return 0
}

func main() {
	tapeSize := flag.Int("tape", vm.DefaultTapeSize, "number of tape cells")
	flag.Parse()

	atexit.Exit(repl(*tapeSize))
}
