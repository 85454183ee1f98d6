package sanitizer

import "regexp"

// audioVisualPattern matches a whole fwdata line referencing an audio file.
var audioVisualPattern = regexp.MustCompile(`^<Uni>AudioVisual\\(.*\.(mp3|m4a))</Uni>$`)

// LineResult is the outcome of sanitizing one fwdata line.
type LineResult struct {
	Line              string // The line, rewritten if its filename changed
	Matched           bool   // True if the line referenced an audio file
	OriginalAudioName string // Set only when Matched
	NewAudioName      string // Set only when Matched
}

// Renamed returns true if the referenced audio file needs renaming.
func (r LineResult) Renamed() bool {
	return r.Matched && r.OriginalAudioName != r.NewAudioName
}

// SanitizeLine rewrites the audio filename in line, if the line is an
// AudioVisual reference. Lines that don't match are returned unchanged.
// On error the returned result holds the original line untouched.
func (s *Sanitizer) SanitizeLine(line string) (LineResult, error) {
	result := LineResult{Line: line}

	loc := audioVisualPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return result, nil
	}

	original := line[loc[2]:loc[3]]
	newName, err := s.ConvertAudioFileName(original)
	if err != nil {
		return result, err
	}

	result.Line = line[:loc[2]] + newName + line[loc[3]:]
	result.Matched = true
	result.OriginalAudioName = original
	result.NewAudioName = newName
	return result, nil
}
