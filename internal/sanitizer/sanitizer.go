package sanitizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"fwsanitize/internal/romanizer"
)

// Romanizer converts Han script in text to Latin letters, leaving every
// other character untouched.
type Romanizer interface {
	Romanize(text string) (string, error)
}

// EmptyNamePolicy decides what happens to a name whose stem is stripped away.
type EmptyNamePolicy string

const (
	// EmptyNameKeep returns the stripped name as-is (e.g. ".mp3").
	EmptyNameKeep EmptyNamePolicy = "keep"
	// EmptyNamePlaceholder substitutes audio-<hash>.<ext>, where hash is
	// derived from the original name.
	EmptyNamePlaceholder EmptyNamePolicy = "placeholder"
)

// Options configures a Sanitizer.
type Options struct {
	Romanizer       Romanizer       // Defaults to pinyin romanization
	EmptyNamePolicy EmptyNamePolicy // Defaults to EmptyNameKeep
	OnWarning       func(err error) // Receives non-fatal *Error values
}

// Sanitizer converts audio filenames to safe ASCII names and remembers every
// name it changed. One Sanitizer serves one processing run and is not safe
// for concurrent use.
type Sanitizer struct {
	mapping   map[string]string
	romanizer Romanizer
	policy    EmptyNamePolicy
	onWarning func(err error)
}

// New creates a Sanitizer with an empty mapping.
func New(opts Options) *Sanitizer {
	if opts.Romanizer == nil {
		opts.Romanizer = romanizer.NewPinyin()
	}
	if opts.EmptyNamePolicy == "" {
		opts.EmptyNamePolicy = EmptyNameKeep
	}
	return &Sanitizer{
		mapping:   make(map[string]string),
		romanizer: opts.Romanizer,
		policy:    opts.EmptyNamePolicy,
		onWarning: opts.OnWarning,
	}
}

// ConvertAudioFileName returns name with every character outside
// [A-Za-z0-9 .-] removed, after stripping private-use and emoji code points
// and romanizing Han script. Names that change are recorded in the mapping.
func (s *Sanitizer) ConvertAudioFileName(name string) (string, error) {
	if name == "" {
		return "", &Error{Type: InvalidInput, Name: name}
	}
	if IsSafeName(name) {
		return name, nil
	}

	newName := s.transform(name)
	if newName != name {
		s.mapping[name] = newName
	}
	return newName, nil
}

// transform runs the conversion stages in order. Each stage only fires when
// its trigger is present in the current string.
func (s *Sanitizer) transform(name string) string {
	newName := name

	if strings.ContainsFunc(newName, isPrivateUse) {
		newName = strings.Map(func(r rune) rune {
			if isPrivateUse(r) {
				return -1
			}
			return r
		}, newName)
	}

	if containsEmoji(newName) {
		newName = stripEmoji(newName)
	}

	if strings.ContainsFunc(newName, isHan) {
		romanized, err := s.romanizer.Romanize(newName)
		if err != nil {
			s.warn(&Error{Type: TransliterationFailure, Name: name, Err: err})
		} else {
			newName = romanized
		}
	}

	if strings.ContainsFunc(newName, func(r rune) bool { return !isAllowed(r) }) {
		newName = strings.Map(func(r rune) rune {
			if isAllowed(r) {
				return r
			}
			return -1
		}, newName)
	}

	if s.policy == EmptyNamePlaceholder && lostStem(name, newName) {
		newName = placeholderName(name)
	}
	return newName
}

func (s *Sanitizer) warn(err error) {
	if s.onWarning != nil {
		s.onWarning(err)
	}
}

func containsEmoji(name string) bool {
	runes := []rune(name)
	for i, r := range runes {
		if isEmoji(r) || keycapLen(runes, i) > 0 {
			return true
		}
	}
	return false
}

func stripEmoji(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(runes); i++ {
		if n := keycapLen(runes, i); n > 0 {
			i += n - 1
			continue
		}
		if isEmoji(runes[i]) {
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// audioExtension returns the lower-cased ".mp3"/".m4a" suffix of name, or "".
func audioExtension(name string) string {
	if len(name) < 4 {
		return ""
	}
	ext := strings.ToLower(name[len(name)-4:])
	if ext == ".mp3" || ext == ".m4a" {
		return ext
	}
	return ""
}

// lostStem reports whether sanitizing emptied the stem or dropped the
// audio extension of original.
func lostStem(original, converted string) bool {
	ext := audioExtension(original)
	if ext == "" {
		return false
	}
	if audioExtension(converted) == "" {
		return true
	}
	stem := converted[:len(converted)-len(ext)]
	return strings.Trim(stem, " .-") == ""
}

func placeholderName(original string) string {
	sum := sha256.Sum256([]byte(original))
	return "audio-" + hex.EncodeToString(sum[:])[:8] + audioExtension(original)
}
