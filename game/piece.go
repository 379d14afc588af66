package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Piece is a set of attribute flags. Every real piece carries exactly one flag
// of each pair, so the AND of pieces is non-zero iff they share an attribute.
type Piece uint8

const (
	Dark Piece = 1 << iota
	Light
	Short
	Tall
	Hollow
	Flat
	Circle
	Square
)

const NoPiece Piece = 0

const NumPieces = 16

type attribute struct {
	off, on Piece
	codeOff byte
	codeOn  byte
	nameOff string
	nameOn  string
}

var attributes = [4]attribute{
	{Dark, Light, 'D', 'L', "dark", "light"},
	{Short, Tall, 'S', 'T', "short", "tall"},
	{Hollow, Flat, 'H', 'F', "hollow", "flat"},
	{Circle, Square, 'C', 'Q', "circle", "square"},
}

// NewPiece builds the piece numbered i (0..15): bit k of i selects the second
// value of the k-th attribute.
func NewPiece(i int) Piece {
	var p Piece
	for k, attr := range attributes {
		if i&(1<<k) != 0 {
			p |= attr.on
		} else {
			p |= attr.off
		}
	}
	return p
}

func AllPieces() []Piece {
	pieces := make([]Piece, NumPieces)
	for i := range pieces {
		pieces[i] = NewPiece(i)
	}
	return pieces
}

// Index is the inverse of NewPiece.
func (p Piece) Index() int {
	i := 0
	for k, attr := range attributes {
		if p&attr.on != 0 {
			i |= 1 << k
		}
	}
	return i
}

func (p Piece) Valid() bool {
	for _, attr := range attributes {
		if (p&attr.on != 0) == (p&attr.off != 0) {
			return false
		}
	}
	return true
}

func (p Piece) Has(flag Piece) bool {
	return p&flag == flag
}

func (p Piece) Shares(other Piece) bool {
	return p&other != 0
}

func (p Piece) isMove() {}

// String renders the piece as four attribute letters, e.g. "LTFQ" for a light
// tall flat square piece. Empty cells render as "....".
func (p Piece) String() string {
	if p == NoPiece {
		return "...."
	}
	code := make([]byte, len(attributes))
	for k, attr := range attributes {
		if p&attr.on != 0 {
			code[k] = attr.codeOn
		} else {
			code[k] = attr.codeOff
		}
	}
	return string(code)
}

func (p Piece) Describe() string {
	names := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		if p&attr.on != 0 {
			names = append(names, attr.nameOn)
		} else {
			names = append(names, attr.nameOff)
		}
	}
	return strings.Join(names, " ")
}

// ParsePiece accepts either the four-letter code produced by String (in any
// case) or the piece number 0..15.
func ParsePiece(s string) (Piece, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= NumPieces {
			return NoPiece, fmt.Errorf("piece number %d out of range", n)
		}
		return NewPiece(n), nil
	}
	if len(s) != len(attributes) {
		return NoPiece, fmt.Errorf("invalid piece %q", s)
	}
	s = strings.ToUpper(s)
	var p Piece
	for k, attr := range attributes {
		switch s[k] {
		case attr.codeOn:
			p |= attr.on
		case attr.codeOff:
			p |= attr.off
		default:
			return NoPiece, fmt.Errorf("invalid piece %q: unexpected %q at position %d", s, s[k], k+1)
		}
	}
	return p, nil
}
