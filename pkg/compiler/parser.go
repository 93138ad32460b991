package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every parse failure.
	ErrParse          = errors.New("could not parse")
	ErrUnmatchedOpen  = fmt.Errorf("%w: '[' is never closed", ErrParse)
	ErrUnmatchedClose = fmt.Errorf("%w: ']' has no loop to close", ErrParse)
)

// ParseError locates the bracket that made the source unparsable.
type ParseError struct {
	Line int
	Col  int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Col, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsIncomplete reports whether err came from source that ends inside a loop,
// i.e. more input could still make it parse.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrUnmatchedOpen)
}

// Parser scans source one rune at a time. Every rune other than the eight
// operators is a comment.
type Parser struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int
	col  int
}

func NewParser(source string) *Parser {
	return &Parser{src: []rune(source), line: 1, col: 1}
}

// Parse builds the tree for a whole program. No partial tree is returned on
// failure.
func Parse(source string) (Ast, error) {
	return NewParser(source).Parse()
}

func (p *Parser) Parse() (Ast, error) {
	ast, _, err := p.parseAtDepth(0)
	if err != nil {
		return nil, err
	}
	return ast, nil
}

// advance consumes one rune and returns it with its position.
func (p *Parser) advance() (r rune, line, col int) {
	r, line, col = p.src[p.pos], p.line, p.col
	p.pos++
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r, line, col
}

// parseAtDepth parses one sequence opened at the given loop depth and
// returns the depth after it. A sequence closed by ']' returns depth-1; a
// sequence that runs out of input returns depth unchanged, which tells the
// frame that opened it that the loop was never closed.
func (p *Parser) parseAtDepth(depth int) (Ast, int, error) {
	var ast Ast

	for p.pos < len(p.src) {
		r, line, col := p.advance()

		switch r {
		case '>':
			ast = append(ast, MoveRight{})
		case '<':
			ast = append(ast, MoveLeft{})
		case '+':
			ast = append(ast, Increment{})
		case '-':
			ast = append(ast, Decrement{})
		case '.':
			ast = append(ast, Write{})
		case ',':
			ast = append(ast, Read{})
		case '[':
			body, after, err := p.parseAtDepth(depth + 1)
			if err != nil {
				return nil, depth, err
			}
			if after != depth {
				return nil, depth, &ParseError{Line: line, Col: col, Err: ErrUnmatchedOpen}
			}
			ast = append(ast, Loop{Body: body})
		case ']':
			if depth == 0 {
				return nil, depth, &ParseError{Line: line, Col: col, Err: ErrUnmatchedClose}
			}
			return ast, depth - 1, nil
		}
	}

	return ast, depth, nil
}
