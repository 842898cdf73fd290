package wordledomain

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ErrNoMatch is wrapped by every parse failure. A failure only means the
// text is not a score report.
var ErrNoMatch = errors.New("not a score report")

// ParseError describes where and why a message stopped matching.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrNoMatch, e.Offset, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrNoMatch }

const headerTag = "Wordle"

// Parse reads a score report from the start of input. On success it returns
// the score and whatever input followed the last grid row.
func Parse(input string) (Score, string, error) {
	c := &cursor{src: input}

	day, success, guesses, hard, err := c.header()
	if err != nil {
		return Score{}, input, err
	}

	// Some clients put one blank line between header and grid.
	c.blankLine()

	grid, err := c.grid(guesses)
	if err != nil {
		return Score{}, input, err
	}

	return Score{
		Day:      day,
		Success:  success,
		Guesses:  guesses,
		HardMode: hard,
		Grid:     grid,
	}, c.rest(), nil
}

type cursor struct {
	src string
	pos int
}

func (c *cursor) fail(reason string) error {
	return &ParseError{Offset: c.pos, Reason: reason}
}

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

func (c *cursor) rest() string { return c.src[c.pos:] }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *cursor) literal(s string) bool {
	if len(c.src)-c.pos < len(s) || c.src[c.pos:c.pos+len(s)] != s {
		return false
	}
	c.pos += len(s)
	return true
}

// spaces consumes one or more blanks.
func (c *cursor) spaces() bool {
	start := c.pos
	for b := c.peek(); b == ' ' || b == '\t'; b = c.peek() {
		c.pos++
	}
	return c.pos > start
}

func (c *cursor) digits() (string, bool) {
	start := c.pos
	for b := c.peek(); b >= '0' && b <= '9'; b = c.peek() {
		c.pos++
	}
	return c.src[start:c.pos], c.pos > start
}

// lineEnding consumes "\n" or "\r\n".
func (c *cursor) lineEnding() bool {
	return c.literal("\n") || c.literal("\r\n")
}

func (c *cursor) header() (day uint32, success bool, guesses uint8, hard bool, err error) {
	if !c.literal(headerTag) {
		return 0, false, 0, false, c.fail("missing header tag")
	}
	if !c.spaces() {
		return 0, false, 0, false, c.fail("expected space after tag")
	}

	raw, ok := c.digits()
	if !ok {
		return 0, false, 0, false, c.fail("expected day number")
	}
	d, perr := strconv.ParseUint(raw, 10, 32)
	if perr != nil {
		return 0, false, 0, false, c.fail("day number out of range")
	}
	if d == 0 {
		return 0, false, 0, false, c.fail("day numbers start at 1")
	}
	if !c.spaces() {
		return 0, false, 0, false, c.fail("expected space after day")
	}

	switch b := c.peek(); {
	case b >= '1' && b <= '6':
		success, guesses = true, b-'0'
	case b == 'X':
		success, guesses = false, MaxGuesses
	default:
		return 0, false, 0, false, c.fail("expected guess count or X")
	}
	c.pos++

	if !c.literal("/") {
		return 0, false, 0, false, c.fail("expected '/'")
	}
	if _, ok := c.digits(); !ok {
		return 0, false, 0, false, c.fail("expected guess limit")
	}
	hard = c.literal("*")
	c.spaces()

	if !c.lineEnding() && !c.eof() {
		return 0, false, 0, false, c.fail("expected end of header line")
	}
	return uint32(d), success, guesses, hard, nil
}

func (c *cursor) blankLine() {
	save := c.pos
	c.spaces()
	if !c.lineEnding() {
		c.pos = save
	}
}

func (c *cursor) grid(rows uint8) (Grid, error) {
	grid := make(Grid, 0, rows)
	for i := 0; i < int(rows); i++ {
		row, err := c.row()
		if err != nil {
			return nil, err
		}
		last := i == int(rows)-1
		if !c.lineEnding() && !(last && c.eof()) {
			return nil, c.fail(fmt.Sprintf("row %d not terminated", i+1))
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func (c *cursor) row() (Row, error) {
	var row Row
	for i := range row {
		r, size := utf8.DecodeRuneInString(c.rest())
		if size == 0 {
			return Row{}, c.fail("grid ended early")
		}
		l, ok := DecodeGlyph(r)
		if !ok {
			return Row{}, c.fail(fmt.Sprintf("unexpected %q in grid", r))
		}
		row[i] = l
		c.pos += size
	}
	return row, nil
}
