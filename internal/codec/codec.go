package codec

import (
	"fmt"
	"strings"
)

// Encoding identifies the byte encoding the codec classifies text under.
type Encoding int

const (
	Unknown Encoding = iota
	UTF8
	ShiftJIS
	EUC
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case ShiftJIS:
		return "sjis"
	case EUC:
		return "euc"
	default:
		return "unknown"
	}
}

// ParseEncoding maps a user supplied encoding name to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unknown", "auto":
		return Unknown, nil
	case "utf8", "utf-8":
		return UTF8, nil
	case "sjis", "shiftjis", "shift_jis", "shift-jis", "cp932":
		return ShiftJIS, nil
	case "euc", "euc-jp", "eucjp":
		return EUC, nil
	}
	return Unknown, fmt.Errorf("unsupported encoding %q", name)
}

// candidate bits for auto-detection.
const (
	candUTF8 uint8 = 1 << iota
	candEUC
	candSJIS

	candAll = candUTF8 | candEUC | candSJIS
)

// Codec measures text in display columns. An Unknown codec narrows down the
// encoding from the non-ASCII characters it sees and latches once a single
// candidate remains. A latched codec never goes back.
type Codec struct {
	enc        Encoding
	candidates uint8
	hinted     bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithEncoding forces the codec to enc and disables auto-detection.
// Unknown keeps auto-detection on.
func WithEncoding(enc Encoding) Option {
	return func(c *Codec) {
		if enc != Unknown {
			c.enc = enc
			c.hinted = true
		}
	}
}

// New creates a codec in the Unknown state unless an encoding is forced.
func New(opts ...Option) *Codec {
	c := &Codec{candidates: candAll}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encoding reports the current, possibly latched, encoding.
func (c *Codec) Encoding() Encoding {
	return c.enc
}

// Classify returns the byte length and display cost of the character that
// starts at b[i]. While the encoding is Unknown the character also feeds
// auto-detection.
func (c *Codec) Classify(b []byte, i int) (size, cost int) {
	if i >= len(b) {
		return 0, 0
	}
	if c.enc == Unknown && !isASCII(b[i]) {
		c.detect(b, i)
	}
	return classifyAs(c.enc, b, i)
}

// DisplayWidth returns the number of display columns s occupies.
func (c *Codec) DisplayWidth(s string) int {
	b := []byte(s)
	width := 0
	for i := 0; i < len(b); {
		size, cost := c.Classify(b, i)
		i += size
		width += cost
	}
	return width
}

// DisplayWidth measures s under the Unknown rules without auto-detection.
func DisplayWidth(s string) int {
	b := []byte(s)
	width := 0
	for i := 0; i < len(b); {
		size, cost := classifyAs(Unknown, b, i)
		i += size
		width += cost
	}
	return width
}

// CharCost returns the size and cost of the character at b[i] under the
// Unknown rules without auto-detection.
func CharCost(b []byte, i int) (size, cost int) {
	if i >= len(b) {
		return 0, 0
	}
	return classifyAs(Unknown, b, i)
}

func (c *Codec) detect(b []byte, i int) {
	if !isUTF8Double(b, i) && !isUTF8Triple(b, i) {
		c.candidates &^= candUTF8
	}
	if !isEUCHalfKana(b, i) && !isEUCDouble(b, i) {
		c.candidates &^= candEUC
	}
	if !isSJISHalfKana(b, i) && !isSJISDouble(b, i) {
		c.candidates &^= candSJIS
	}

	switch c.candidates {
	case candUTF8:
		c.enc = UTF8
	case candEUC:
		c.enc = EUC
	case candSJIS:
		c.enc = ShiftJIS
	}
}

func classifyAs(enc Encoding, b []byte, i int) (size, cost int) {
	if isASCII(b[i]) {
		return 1, 1
	}

	switch enc {
	case UTF8:
		switch {
		case isUTF8Double(b, i):
			return 2, 2
		case isUTF8Triple(b, i):
			return 3, 2
		}
	case ShiftJIS:
		switch {
		case isSJISHalfKana(b, i):
			return 1, 1
		case isSJISDouble(b, i):
			return 2, 2
		}
	case EUC:
		switch {
		case isEUCHalfKana(b, i):
			return 2, 1
		case isEUCDouble(b, i):
			return 2, 2
		}
	default:
		switch {
		case isUTF8Triple(b, i):
			return 3, 2
		case isUTF8Double(b, i), isEUCDouble(b, i), isSJISDouble(b, i):
			return 2, 2
		case isEUCHalfKana(b, i):
			return 2, 1
		case isSJISHalfKana(b, i):
			return 1, 1
		}
	}
	return 1, 1
}

// at returns b[i], or 0 past the end so range checks on a truncated
// sequence fail.
func at(b []byte, i int) byte {
	if i < len(b) {
		return b[i]
	}
	return 0
}

func between(c, lo, hi byte) bool {
	return lo <= c && c <= hi
}

func isASCII(c byte) bool {
	return c <= 0x7F
}

func isSJISHalfKana(b []byte, i int) bool {
	return between(at(b, i), 0xA1, 0xDF)
}

func isSJISDouble(b []byte, i int) bool {
	lead, trail := at(b, i), at(b, i+1)
	if !between(lead, 0x81, 0x9F) && !between(lead, 0xE0, 0xFC) {
		return false
	}
	return between(trail, 0x40, 0x7E) || between(trail, 0x80, 0xFC)
}

func isEUCHalfKana(b []byte, i int) bool {
	return at(b, i) == 0x8E && between(at(b, i+1), 0xA1, 0xDF)
}

// isEUCDouble checks both bytes of a JIS X 0208 pair.
func isEUCDouble(b []byte, i int) bool {
	return between(at(b, i), 0xA1, 0xFE) && between(at(b, i+1), 0xA1, 0xFE)
}

func isUTF8Double(b []byte, i int) bool {
	return between(at(b, i), 0xC2, 0xDF) && between(at(b, i+1), 0x80, 0xBF)
}

func isUTF8Triple(b []byte, i int) bool {
	return between(at(b, i), 0xE0, 0xEF) &&
		between(at(b, i+1), 0x80, 0xBF) &&
		between(at(b, i+2), 0x80, 0xBF)
}
