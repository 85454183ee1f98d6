// Package romanizer converts Han script to toneless pinyin.
package romanizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pinyin romanizes Han characters using the go-pinyin dictionary.
// Adjacent Han characters are separated by a single space; all other
// characters, including Han characters the dictionary has no reading for
// (iteration marks, radicals), pass through unchanged.
type Pinyin struct {
	args pinyin.Args
}

// NewPinyin creates a Pinyin romanizer.
func NewPinyin() *Pinyin {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	return &Pinyin{args: args}
}

// Romanize returns text with every Han character replaced by its first
// pinyin reading, tone marks removed. It never fails.
func (p *Pinyin) Romanize(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	prevHan := false
	for _, r := range text {
		reading, ok := p.reading(r)
		if !ok {
			b.WriteRune(r)
			prevHan = false
			continue
		}
		if prevHan {
			b.WriteByte(' ')
		}
		b.WriteString(reading)
		prevHan = true
	}

	return b.String(), nil
}

// reading returns the toneless first reading of r, if r is a Han character
// the dictionary knows.
func (p *Pinyin) reading(r rune) (string, bool) {
	if !unicode.Is(unicode.Han, r) {
		return "", false
	}
	readings := pinyin.SinglePinyin(r, p.args)
	if len(readings) == 0 || readings[0] == "" {
		return "", false
	}
	return StripMarks(readings[0]), true
}

// StripMarks removes combining marks (tones, umlauts) from s, so "lǜ"
// becomes "lu".
func StripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
