package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"gobf/pkg/compiler"
	"gobf/pkg/grid"
	"gobf/pkg/utils"
	"gobf/pkg/vm"
)

const (
	screenWidth  = 640
	screenHeight = 480

	gridCols   = 16
	gridRows   = 12
	cellWidth  = 40
	cellHeight = 24
	gridTop    = 24

	outputTop   = gridTop + gridRows*cellHeight + 8
	outputLines = 10
)

var (
	cellColor    = color.RGBA{0x1D, 0x2B, 0x53, 0xFF}
	pointerColor = color.RGBA{0xFF, 0xA3, 0x00, 0xFF}
	textColor    = color.RGBA{0xFF, 0xF1, 0xE8, 0xFF}
)

// keyBuffer queues typed bytes for Read opcodes.
type keyBuffer struct {
	keys []byte
}

func (k *keyBuffer) Push(b byte) { k.keys = append(k.keys, b) }

func (k *keyBuffer) Len() int { return len(k.keys) }

func (k *keyBuffer) Read(p []byte) (int, error) {
	if len(p) == 0 || len(k.keys) == 0 {
		return 0, nil
	}
	n := copy(p, k.keys)
	k.keys = k.keys[n:]
	return n, nil
}

// outputLog collects program output for display.
type outputLog struct {
	buf strings.Builder
}

func (o *outputLog) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

// Tail returns at most n of the last lines written.
func (o *outputLog) Tail(n int) []string {
	lines := strings.Split(o.buf.String(), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

type Game struct {
	vm            *vm.VM
	keys          *keyBuffer
	output        *outputLog
	stepsPerFrame int
	err           error

	face *text.GoXFace
	cell *ebiten.Image // reused cell background
}

func NewGame(machine *vm.VM, stepsPerFrame int) *Game {
	g := &Game{
		vm:            machine,
		keys:          &keyBuffer{},
		output:        &outputLog{},
		stepsPerFrame: stepsPerFrame,
		face:          text.NewGoXFace(basicfont.Face7x13),
	}
	machine.Input = g.keys
	machine.Output = g.output
	return g
}

// advance runs up to stepsPerFrame opcodes. The VM is held, not blocked, while
// it waits for a key.
func (g *Game) advance() {
	for i := 0; i < g.stepsPerFrame; i++ {
		if g.vm.Halted || g.err != nil {
			return
		}
		if g.vm.NeedsInput() && g.keys.Len() == 0 {
			return
		}
		if err := g.vm.Step(); err != nil {
			g.err = err
			return
		}
	}
}

func (g *Game) status() string {
	state := "running"
	switch {
	case g.err != nil:
		state = "fault: " + g.err.Error()
	case g.vm.Halted:
		state = "done"
	case g.vm.NeedsInput() && g.keys.Len() == 0:
		state = "waiting for input"
	}
	return fmt.Sprintf("pc=%d dp=%d steps=%d  %s", g.vm.PC, g.vm.DP, g.vm.Steps, state)
}

func (g *Game) Update() error {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x100 {
			g.keys.Push(byte(r))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.keys.Push(10) // ASCII newline
	}

	g.advance()
	return nil
}

func (g *Game) drawTape(screen *ebiten.Image) {
	if g.cell == nil {
		g.cell = ebiten.NewImage(cellWidth-2, cellHeight-2)
	}

	start := grid.PageStart(g.vm.DP, gridCols, gridRows)
	for i := start; i < start+gridCols*gridRows && i < len(g.vm.Tape); i++ {
		x, y := grid.GetGridCoords(i-start, gridCols)
		px := float64(x * cellWidth)
		py := float64(gridTop + y*cellHeight)

		if i == g.vm.DP {
			g.cell.Fill(pointerColor)
		} else {
			g.cell.Fill(cellColor)
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(px, py)
		screen.DrawImage(g.cell, op)

		top := &text.DrawOptions{}
		top.GeoM.Translate(px+6, py+4)
		top.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, fmt.Sprintf("%3d", g.vm.Tape[i]), g.face, top)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, g.status(), 4, 4)
	g.drawTape(screen)

	for i, line := range g.output.Tail(outputLines) {
		op := &text.DrawOptions{}
		op.GeoM.Translate(4, float64(outputTop+i*14))
		op.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, line, g.face, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	tapeSize := flag.Int("tape", vm.DefaultTapeSize, "number of tape cells")
	speed := flag.Int("speed", 2000, "opcodes executed per frame")
	showAsm := flag.Bool("show-asm", false, "print the generated program listing")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Usage: desktop [-tape N] [-speed N] [-show-asm] <path>")
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to resolve source path: %v", err)
	}
	source, err := utils.ReadSource(fullPath)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	program, err := compiler.Compile(source)
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}
	if *showAsm {
		print("Generated Program:\n", program.String(), "\n")
	}

	machine, err := vm.New(program, *tapeSize)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("gobf Desktop")

	game := NewGame(machine, *speed)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
