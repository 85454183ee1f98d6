package romanizer

import (
	"testing"
	"unicode"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPinyin_Romanize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single character", "龙", "long"},
		{"adjacent characters separated by space", "龙卷风", "long juan feng"},
		{"keeps extension", "龙.mp3", "long.mp3"},
		{"keeps latin text", "song 龙", "song long"},
		{"latin between han", "中a国", "zhongaguo"},
		{"umlaut vowel stripped", "绿", "lu"},
		{"iteration mark passes through", "日々", "ri々"},
		{"radical passes through", "⺀龙", "⺀long"},
		{"no han", "plain.mp3", "plain.mp3"},
		{"empty", "", ""},
	}

	p := NewPinyin()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Romanize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Romanize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripMarks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lóng", "long"},
		{"lǜ", "lu"},
		{"zhōng", "zhong"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StripMarks(tt.input); got != tt.expected {
				t.Errorf("StripMarks(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

var mixedAlphabet = []rune{'龙', '卷', '风', '中', '国', 'a', ' ', '.'}

// Romanizing text without Han characters is the identity.
func TestRomanizeLeavesNonHanUntouched(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	p := NewPinyin()

	properties.Property("non-Han text passes through unchanged", prop.ForAll(
		func(s string) bool {
			got, err := p.Romanize(s)
			if err != nil {
				t.Logf("unexpected error for %q: %v", s, err)
				return false
			}
			return got == s
		},
		gen.AnyString().SuchThat(func(s string) bool {
			for _, r := range s {
				if unicode.Is(unicode.Han, r) {
					return false
				}
			}
			return true
		}),
	))

	properties.Property("known Han characters are all romanized", prop.ForAll(
		func(s string) bool {
			got, err := p.Romanize(s)
			if err != nil {
				return false
			}
			for _, r := range got {
				if unicode.Is(unicode.Han, r) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(mixedAlphabet)-1)).Map(func(idx []int) string {
			rs := make([]rune, len(idx))
			for i, n := range idx {
				rs[i] = mixedAlphabet[n]
			}
			return string(rs)
		}),
	))

	properties.TestingRun(t)
}
