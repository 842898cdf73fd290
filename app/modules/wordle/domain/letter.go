package wordledomain

import "fmt"

// Letter is the result of one tile in a guess row.
type Letter uint8

const (
	Incorrect Letter = iota
	Partial
	Correct
)

// Glyphs recognised in a shared grid. Both the dark and light theme "miss"
// squares decode to Incorrect.
const (
	GlyphCorrect        = '\U0001F7E9' // 🟩
	GlyphPartial        = '\U0001F7E8' // 🟨
	GlyphIncorrectDark  = '\u2B1B'     // ⬛
	GlyphIncorrectLight = '\u2B1C'     // ⬜
)

// DecodeGlyph maps a grid glyph to its Letter. ok is false for any other rune.
func DecodeGlyph(r rune) (Letter, bool) {
	switch r {
	case GlyphCorrect:
		return Correct, true
	case GlyphPartial:
		return Partial, true
	case GlyphIncorrectDark, GlyphIncorrectLight:
		return Incorrect, true
	default:
		return 0, false
	}
}

// EncodeLetter returns the canonical glyph for l. Incorrect encodes as the
// dark square.
func EncodeLetter(l Letter) rune {
	switch l {
	case Correct:
		return GlyphCorrect
	case Partial:
		return GlyphPartial
	default:
		return GlyphIncorrectDark
	}
}

func (l Letter) Valid() bool {
	return l <= Correct
}

func (l Letter) String() string {
	switch l {
	case Correct:
		return "Correct"
	case Partial:
		return "Partial"
	case Incorrect:
		return "Incorrect"
	default:
		return fmt.Sprintf("Letter(%d)", uint8(l))
	}
}

// RowWidth is the number of tiles in every guess row.
const RowWidth = 5

// Row is one guess.
type Row [RowWidth]Letter

// Solved reports whether every tile in the row is Correct.
func (r Row) Solved() bool {
	for _, l := range r {
		if l != Correct {
			return false
		}
	}
	return true
}

func (r Row) String() string {
	out := make([]rune, 0, RowWidth)
	for _, l := range r {
		out = append(out, EncodeLetter(l))
	}
	return string(out)
}

// Grid is the ordered list of guess rows in a report.
type Grid []Row

func (g Grid) String() string {
	s := ""
	for i, row := range g {
		if i > 0 {
			s += "\n"
		}
		s += row.String()
	}
	return s
}
